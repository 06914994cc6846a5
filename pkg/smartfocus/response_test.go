package smartfocus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantKind ResultKind
		wantText string
	}{
		{name: "result", response: "<x><result>OK</result></x>", wantKind: ResultSuccess, wantText: "OK"},
		{
			name:     "result with declaration",
			response: `<?xml version="1.0" encoding="UTF-8"?><response responseStatus="success"><result>a1b2c3</result></response>`,
			wantKind: ResultSuccess,
			wantText: "a1b2c3",
		},
		{name: "empty result", response: "<x><result></result></x>", wantKind: ResultSuccess, wantText: ""},
		{name: "result wins over description", response: "<x><description>d</description><result>r</result></x>", wantKind: ResultSuccess, wantText: "r"},
		{name: "empty description", response: "<x><description></description></x>", wantKind: ResultUnknown},
		{name: "trailing garbage", response: "<x><result>OK</result></x><<<garbage", wantKind: ResultMalformed},
		{name: "second root element", response: "<x><result>OK</result></x><y>", wantKind: ResultMalformed},
		{name: "trailing whitespace and comment", response: "<x><result>OK</result></x>\n<!-- done -->\n", wantKind: ResultSuccess, wantText: "OK"},
		{
			name:     "latin-1 declaration",
			response: "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><x><result>caf\xe9</result></x>",
			wantKind: ResultSuccess,
			wantText: "café",
		},
		{name: "description", response: "<x><description>Bad login</description></x>", wantKind: ResultAPIError, wantText: "Bad login"},
		{name: "neither node", response: "<x><status>error</status></x>", wantKind: ResultUnknown},
		{name: "nested result is not a direct child", response: "<x><y><result>OK</result></y></x>", wantKind: ResultUnknown},
		{name: "not xml", response: "not xml", wantKind: ResultMalformed},
		{name: "empty", response: "", wantKind: ResultMalformed},
		{name: "unterminated", response: "<x><result>OK</result>", wantKind: ResultMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.response)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.response, got.Raw)
			assert.Equal(t, tt.wantKind == ResultSuccess, got.OK())
		})
	}
}

func TestResult_Err(t *testing.T) {
	value, err := ParseResponse("<x><result>OK</result></x>").Value()
	require.NoError(t, err)
	assert.Equal(t, "OK", value)

	_, err = ParseResponse("<x><description>Bad login</description></x>").Value()
	require.Error(t, err)
	assert.True(t, IsAPIError(err))
	assert.EqualError(t, err, "Bad login")

	_, err = ParseResponse("not xml").Value()
	require.Error(t, err)
	assert.True(t, IsMalformedResponse(err))
	assert.False(t, IsAPIError(err))
	assert.Contains(t, err.Error(), "not xml")

	_, err = ParseResponse("<x/>").Value()
	require.Error(t, err)
	var unknown *UnknownResponseError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "<x/>", unknown.Raw)
}

func TestResultKind_String(t *testing.T) {
	assert.Equal(t, "Success", ResultSuccess.String())
	assert.Equal(t, "ApiError", ResultAPIError.String())
	assert.Equal(t, "MalformedResponse", ResultMalformed.String())
	assert.Equal(t, "UnknownError", ResultUnknown.String())
}

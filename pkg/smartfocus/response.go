package smartfocus

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ResultKind classifies a parsed API response.
type ResultKind int

const (
	// ResultUnknown is a well-formed response with neither a result nor a
	// non-empty description.
	ResultUnknown ResultKind = iota
	// ResultSuccess carries the text of the result node.
	ResultSuccess
	// ResultAPIError carries the text of the description node.
	ResultAPIError
	// ResultMalformed is a response that is not well-formed XML.
	ResultMalformed
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "Success"
	case ResultAPIError:
		return "ApiError"
	case ResultMalformed:
		return "MalformedResponse"
	default:
		return "UnknownError"
	}
}

// Result is the outcome of parsing an API response.
//
// Text holds the result value on success and the server message on an API
// error. Raw always holds the response as received.
type Result struct {
	Kind ResultKind
	Text string
	Raw  string

	parseErr error
}

// responseEnvelope captures the direct children of the root element the API
// uses to report outcomes.
type responseEnvelope struct {
	Result      *string `xml:"result"`
	Description *string `xml:"description"`
}

// ParseResponse classifies an XML response body.
func ParseResponse(response string) Result {
	env, err := decodeEnvelope(response)
	if err != nil {
		return Result{Kind: ResultMalformed, Raw: response, parseErr: err}
	}

	switch {
	case env.Result != nil:
		return Result{Kind: ResultSuccess, Text: *env.Result, Raw: response}
	case env.Description != nil && *env.Description != "":
		return Result{Kind: ResultAPIError, Text: *env.Description, Raw: response}
	default:
		return Result{Kind: ResultUnknown, Raw: response}
	}
}

// decodeEnvelope decodes the root element and requires that nothing but
// whitespace, comments and processing instructions follow it.
func decodeEnvelope(response string) (responseEnvelope, error) {
	var env responseEnvelope
	d := xml.NewDecoder(strings.NewReader(response))
	d.CharsetReader = charset.NewReaderLabel
	if err := d.Decode(&env); err != nil {
		return env, err
	}

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return env, nil
		}
		if err != nil {
			return env, err
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return env, fmt.Errorf("unexpected content after root element")
			}
		default:
			return env, fmt.Errorf("unexpected %T after root element", tok)
		}
	}
}

// OK reports whether the response carried a result.
func (r Result) OK() bool {
	return r.Kind == ResultSuccess
}

// Err returns nil on success and the matching typed error otherwise.
func (r Result) Err() error {
	switch r.Kind {
	case ResultSuccess:
		return nil
	case ResultAPIError:
		return &APIError{Message: r.Text}
	case ResultMalformed:
		return &MalformedResponseError{Raw: r.Raw, Err: r.parseErr}
	default:
		return &UnknownResponseError{Raw: r.Raw}
	}
}

// Value returns the result text, or the error describing why there is none.
func (r Result) Value() (string, error) {
	if err := r.Err(); err != nil {
		return "", err
	}
	return r.Text, nil
}

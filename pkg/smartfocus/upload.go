package smartfocus

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const crlf = "\r\n"

const (
	insertPartName = "insertUpload"
	mergePartName  = "mergeUpload"
)

// UploadRequest describes a member file to upload in bulk.
type UploadRequest struct {
	// FilePath is the delimited text file holding the member rows.
	FilePath string
	// DateFormat tells the server how to read date columns, e.g. "yyyy-MM-dd".
	DateFormat string
	// Dedup skips duplicate rows by lower-cased email. Insert only.
	Dedup bool
}

// UploadBuilder assembles multipart bodies for insertUpload and mergeUpload.
// It keeps no state between calls and is safe for concurrent use as long as
// its boundary sources are.
type UploadBuilder struct {
	codec *BoundaryCodec
}

// NewUploadBuilder creates a builder minting boundaries with codec, or with a
// default codec when codec is nil.
func NewUploadBuilder(codec *BoundaryCodec) *UploadBuilder {
	if codec == nil {
		codec = NewBoundaryCodec()
	}
	return &UploadBuilder{codec: codec}
}

// BuildInsertBody returns the insertUpload body for req. The whole file is
// uploaded and the server maps columns automatically.
func (b *UploadBuilder) BuildInsertBody(req UploadRequest) (string, error) {
	content, sep, err := readUploadFile(req.FilePath)
	if err != nil {
		return "", err
	}
	boundary := b.codec.Generate()

	fileName := filepath.Base(req.FilePath)
	manifest, err := marshalManifest(newInsertManifest(fileName, sep, req.DateFormat, req.Dedup))
	if err != nil {
		return "", err
	}
	return frameBody(boundary, insertPartName, manifest, fileName, content), nil
}

// BuildUpdateBody returns the mergeUpload body for req. The first line of the
// file names the columns; it is turned into the column mapping and left out
// of the uploaded data.
func (b *UploadBuilder) BuildUpdateBody(req UploadRequest) (string, error) {
	content, sep, err := readUploadFile(req.FilePath)
	if err != nil {
		return "", err
	}
	boundary := b.codec.Generate()

	header, data := splitHeaderRow(content)
	headers := splitHeaders(header, sep)
	if len(headers) == 0 {
		return "", &InvalidInputError{Path: req.FilePath, Err: fmt.Errorf("missing header row")}
	}

	fileName := filepath.Base(req.FilePath)
	manifest, err := marshalManifest(newMergeManifest(fileName, sep, req.DateFormat, headers))
	if err != nil {
		return "", err
	}
	return frameBody(boundary, mergePartName, manifest, fileName, data), nil
}

// readUploadFile detects the delimiter and loads the file content.
func readUploadFile(path string) ([]byte, Delimiter, error) {
	sep, err := DetectDelimiter(path)
	if err != nil {
		return nil, sep, err
	}
	if name := filepath.Base(path); strings.ContainsAny(name, "'\r\n") {
		return nil, Comma, &InvalidInputError{Path: path, Err: fmt.Errorf("file name %q cannot be quoted in a part header", name)}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, sep, &InvalidInputError{Path: path, Err: err}
	}
	return content, sep, nil
}

// splitHeaderRow separates the first line from the rest of the content. The
// line terminator belongs to neither part.
func splitHeaderRow(content []byte) (string, []byte) {
	header, data, found := bytes.Cut(content, []byte("\n"))
	if !found {
		return string(content), nil
	}
	return string(header), data
}

func splitHeaders(line string, sep Delimiter) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	fields := strings.Split(line, string(rune(sep)))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func frameBody(boundary, partName, manifest, fileName string, data []byte) string {
	var sb strings.Builder
	delimiter := "--" + boundary

	sb.WriteString(delimiter + crlf)
	sb.WriteString("Content-Type: text/xml" + crlf)
	sb.WriteString("Content-Disposition: form-data; name='" + partName + "'" + crlf + crlf)
	sb.WriteString(manifest + crlf)

	sb.WriteString(delimiter + crlf)
	sb.WriteString("Content-Type: application/octet-stream" + crlf)
	sb.WriteString("Content-Disposition: form-data; name='inputStream'; filename='" + fileName + "'" + crlf)
	sb.WriteString("Content-Transfer-Encoding: base64" + crlf + crlf)
	sb.WriteString(base64.StdEncoding.EncodeToString(data) + crlf)

	sb.WriteString(delimiter + "--" + crlf)
	return sb.String()
}

var defaultBuilder = NewUploadBuilder(nil)

// BuildInsertBody builds an insertUpload body with a default builder.
func BuildInsertBody(req UploadRequest) (string, error) {
	return defaultBuilder.BuildInsertBody(req)
}

// BuildUpdateBody builds a mergeUpload body with a default builder.
func BuildUpdateBody(req UploadRequest) (string, error) {
	return defaultBuilder.BuildUpdateBody(req)
}

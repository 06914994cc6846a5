package smartfocus

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// Delimiter is a field separator of an upload file.
type Delimiter rune

const (
	Comma     Delimiter = ','
	Semicolon Delimiter = ';'
	Pipe      Delimiter = '|'
	Tab       Delimiter = '\t'
)

// candidates is ordered by priority; earlier entries win ties.
var candidates = []Delimiter{Comma, Semicolon, Pipe, Tab}

// String returns the delimiter as written in an upload manifest.
func (d Delimiter) String() string {
	if d == Tab {
		return "tab"
	}
	return string(rune(d))
}

// DetectDelimiter infers the field separator of the file at path from its
// first line. A line without any candidate yields Comma.
func DetectDelimiter(path string) (Delimiter, error) {
	f, err := os.Open(path)
	if err != nil {
		return Comma, &InvalidInputError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	line, err := readFirstLine(f)
	if err != nil {
		return Comma, &InvalidInputError{Path: path, Err: err}
	}
	return detectDelimiter(line), nil
}

func detectDelimiter(line string) Delimiter {
	result := candidates[0]
	count := 0
	for _, d := range candidates {
		if n := strings.Count(line, string(rune(d))); n > count {
			count = n
			result = d
		}
	}
	return result
}

// readFirstLine returns the first line of r including its terminator, without
// consuming the rest of the input.
func readFirstLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

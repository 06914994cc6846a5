package smartfocus

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput is returned when an upload source file is missing or unreadable.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidFormat is returned when a multipart body carries no boundary.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidURL is returned when a request URL cannot be built.
	ErrInvalidURL = errors.New("invalid url")
)

// Error represents an HTTP status failure returned by the SmartFocus API.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Body)
}

// InvalidInputError reports an upload source file that cannot be used.
type InvalidInputError struct {
	Path string
	Err  error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("file %s is not readable: %v", e.Path, e.Err)
}

func (e *InvalidInputError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Err}
}

// APIError is a business-level failure reported by the API in a description node.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// MalformedResponseError is returned when a response is not well-formed XML.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("cannot parse the response: %s", e.Raw)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// UnknownResponseError is returned when a response parses but carries neither
// a result nor a description.
type UnknownResponseError struct {
	Raw string
}

func (e *UnknownResponseError) Error() string {
	return fmt.Sprintf("unknown error while parsing the response: %s", e.Raw)
}

func isErrorStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// IsBadRequest checks if the error represents a 400 Bad Request response.
func IsBadRequest(err error) bool {
	return isErrorStatus(err, http.StatusBadRequest)
}

// IsNotFound checks if the error represents a 404 Not Found response.
func IsNotFound(err error) bool {
	return isErrorStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error represents a 401 Unauthorized response.
func IsUnauthorized(err error) bool {
	return isErrorStatus(err, http.StatusUnauthorized)
}

// IsAPIError checks if the server reported a business error.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsMalformedResponse checks if the response could not be parsed as XML.
func IsMalformedResponse(err error) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed)
}

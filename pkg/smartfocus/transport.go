package smartfocus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// HTTPClient is the transport the API services send requests through. Each
// call returns the raw response body.
type HTTPClient interface {
	Get(ctx context.Context, url string) (string, error)
	Post(ctx context.Context, url, body string) (string, error)
	Put(ctx context.Context, url string, header http.Header, body string) (string, error)
}

// Transport is the net/http implementation of HTTPClient.
type Transport struct {
	httpClient *http.Client
}

var _ HTTPClient = (*Transport)(nil)

// TransportOption defines a functional option for configuring the Transport.
type TransportOption func(*Transport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *Transport) {
		t.httpClient = client
	}
}

// WithTimeout sets the timeout of the configured HTTP client. The client is
// copied so a client passed to WithHTTPClient is not modified.
func WithTimeout(timeout time.Duration) TransportOption {
	return func(t *Transport) {
		client := &http.Client{}
		if t.httpClient != nil {
			*client = *t.httpClient
		}
		client.Timeout = timeout
		t.httpClient = client
	}
}

// NewTransport creates a Transport with a 10 second timeout unless overridden.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get performs a GET request.
func (t *Transport) Get(ctx context.Context, url string) (string, error) {
	return t.sendRequest(ctx, http.MethodGet, url, nil, "")
}

// Post performs a POST request with an XML body.
func (t *Transport) Post(ctx context.Context, url, body string) (string, error) {
	header := http.Header{}
	header.Set("Content-Type", "text/xml; charset=utf-8")
	return t.sendRequest(ctx, http.MethodPost, url, header, body)
}

// Put performs a PUT request with the given headers.
func (t *Transport) Put(ctx context.Context, url string, header http.Header, body string) (string, error) {
	return t.sendRequest(ctx, http.MethodPut, url, header, body)
}

func (t *Transport) sendRequest(ctx context.Context, method, url string, header http.Header, body string) (string, error) {
	var bodyReader io.Reader
	if method != http.MethodGet {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &Error{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
	return string(respBody), nil
}

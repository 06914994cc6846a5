package smartfocus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
)

const batchMemberPath = "/apibatchmember/services/rest"

// BatchMember is the client of the batch member (data mass update) service.
type BatchMember struct {
	client  HTTPClient
	baseURL string
	builder *UploadBuilder
}

var _ BatchAPI = (*BatchMember)(nil)

// ClientOption defines a functional option for configuring BatchMember.
type ClientOption func(*BatchMember)

// WithBaseURL replaces the service URL derived from the server host.
func WithBaseURL(baseURL string) ClientOption {
	return func(b *BatchMember) {
		b.baseURL = baseURL
	}
}

// WithTransport sets the HTTP client requests are sent through.
func WithTransport(client HTTPClient) ClientOption {
	return func(b *BatchMember) {
		b.client = client
	}
}

// WithUploadBuilder sets the builder used by InsertFile and UpdateFile.
func WithUploadBuilder(builder *UploadBuilder) ClientOption {
	return func(b *BatchMember) {
		b.builder = builder
	}
}

// NewBatchMember creates a client for the batch member service hosted on server.
func NewBatchMember(server string, opts ...ClientOption) (*BatchMember, error) {
	b := &BatchMember{
		client:  NewTransport(),
		builder: NewUploadBuilder(nil),
	}
	if server != "" {
		b.baseURL = "https://" + server + batchMemberPath
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.baseURL == "" {
		return nil, fmt.Errorf("server is required")
	}
	if b.client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if b.builder == nil {
		return nil, fmt.Errorf("upload builder is required")
	}
	return b, nil
}

// OpenConnection returns a session token for the given credentials.
//
// API: GET /connect/open/{login}/{password}/{key}
//
// The token is valid for 60 minutes.
func (b *BatchMember) OpenConnection(ctx context.Context, login, password, key string) (string, error) {
	u, err := b.url("connect", "open", login, password, key)
	if err != nil {
		return "", err
	}
	logr.FromContextOrDiscard(ctx).V(1).Info("Opening SmartFocus connection", "login", login)
	return b.get(ctx, u)
}

// CloseConnection terminates the session token.
//
// API: GET /connect/close/{token}
func (b *BatchMember) CloseConnection(ctx context.Context, token string) error {
	u, err := b.url("connect", "close", token)
	if err != nil {
		return err
	}
	logr.FromContextOrDiscard(ctx).V(1).Info("Closing SmartFocus connection")
	_, err = b.get(ctx, u)
	return err
}

// Insert uploads a body built by UploadBuilder.BuildInsertBody and returns
// the upload id.
//
// API: PUT /batchmemberservice/{token}/batchmember/insertUpload
func (b *BatchMember) Insert(ctx context.Context, token, body string) (string, error) {
	return b.upload(ctx, token, insertPartName, body)
}

// Update uploads a body built by UploadBuilder.BuildUpdateBody and returns
// the upload id.
//
// API: PUT /batchmemberservice/{token}/batchmember/mergeUpload
func (b *BatchMember) Update(ctx context.Context, token, body string) (string, error) {
	return b.upload(ctx, token, mergePartName, body)
}

// InsertFile builds an insertUpload body for req and sends it.
func (b *BatchMember) InsertFile(ctx context.Context, token string, req UploadRequest) (string, error) {
	body, err := b.builder.BuildInsertBody(req)
	if err != nil {
		return "", fmt.Errorf("failed to build insert body: %w", err)
	}
	return b.Insert(ctx, token, body)
}

// UpdateFile builds a mergeUpload body for req and sends it.
func (b *BatchMember) UpdateFile(ctx context.Context, token string, req UploadRequest) (string, error) {
	body, err := b.builder.BuildUpdateBody(req)
	if err != nil {
		return "", fmt.Errorf("failed to build update body: %w", err)
	}
	return b.Update(ctx, token, body)
}

func (b *BatchMember) upload(ctx context.Context, token, operation, body string) (string, error) {
	// The declared boundary must be the one already written into body.
	boundary, err := ExtractBoundary(body)
	if err != nil {
		return "", err
	}
	u, err := b.url("batchmemberservice", token, "batchmember", operation)
	if err != nil {
		return "", err
	}

	header := http.Header{}
	header.Set("Content-Type", "multipart/form-data; boundary="+boundary)

	logr.FromContextOrDiscard(ctx).V(1).Info("Uploading member file", "operation", operation, "bytes", len(body))
	resp, err := b.client.Put(ctx, u, header, body)
	return parseReply(resp, err)
}

func (b *BatchMember) get(ctx context.Context, u string) (string, error) {
	resp, err := b.client.Get(ctx, u)
	return parseReply(resp, err)
}

// parseReply hands the response to ParseResponse. Status failures that carry
// a body are parsed as well, so a server description surfaces as *APIError.
func parseReply(resp string, err error) (string, error) {
	if err != nil {
		var statusErr *Error
		if !errors.As(err, &statusErr) || strings.TrimSpace(statusErr.Body) == "" {
			return "", err
		}
		result := ParseResponse(statusErr.Body)
		if result.Kind != ResultAPIError {
			return "", err
		}
		return "", result.Err()
	}
	return ParseResponse(resp).Value()
}

// url joins path segments onto the service URL, escaping each segment.
func (b *BatchMember) url(segments ...string) (string, error) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		if s == "" {
			return "", fmt.Errorf("%w: empty path segment %d", ErrInvalidURL, i)
		}
		escaped[i] = url.PathEscape(s)
	}

	result := strings.TrimSuffix(b.baseURL, "/") + "/" + strings.Join(escaped, "/")
	u, err := url.Parse(result)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, result)
	}
	return result, nil
}

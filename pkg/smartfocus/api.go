// Package smartfocus is a client for the SmartFocus batch member API.
package smartfocus

import "context"

// BatchAPI defines the interface for the SmartFocus batch member service.
type BatchAPI interface {
	// OpenConnection exchanges API credentials for a session token.
	OpenConnection(ctx context.Context, login, password, key string) (string, error)

	// CloseConnection terminates a session token.
	CloseConnection(ctx context.Context, token string) error

	// InsertFile uploads a member file and inserts its rows.
	InsertFile(ctx context.Context, token string, req UploadRequest) (string, error)

	// UpdateFile uploads a member file and merges its rows into existing members.
	UpdateFile(ctx context.Context, token string, req UploadRequest) (string, error)
}

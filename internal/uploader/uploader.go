package uploader

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"go.miloapis.com/email-provider-smartfocus/internal/config"
	"go.miloapis.com/email-provider-smartfocus/pkg/smartfocus"
)

// Mode selects the batch member operation.
type Mode string

const (
	// ModeInsert adds the file's rows as new members.
	ModeInsert Mode = "insert"
	// ModeUpdate merges the file's rows into existing members.
	ModeUpdate Mode = "update"
)

// Uploader runs a complete upload: open a session, send the file, close the session.
type Uploader struct {
	API         smartfocus.BatchAPI
	Credentials config.Credentials
}

// Run uploads req in the given mode and returns the upload id reported by the server.
func (u *Uploader) Run(ctx context.Context, mode Mode, req smartfocus.UploadRequest) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("uploadID", uuid.NewString(), "mode", mode, "file", req.FilePath)
	ctx = logr.NewContext(ctx, log)

	if mode != ModeInsert && mode != ModeUpdate {
		return "", fmt.Errorf("unsupported upload mode: %s", mode)
	}

	log.Info("Opening connection", "login", u.Credentials.Login)
	token, err := u.API.OpenConnection(ctx, u.Credentials.Login, u.Credentials.Password, u.Credentials.Key)
	if err != nil {
		log.Error(err, "Failed to open connection")
		return "", fmt.Errorf("failed to open connection: %w", err)
	}

	defer func() {
		if err := u.API.CloseConnection(ctx, token); err != nil {
			log.Error(err, "Failed to close connection")
		}
	}()

	var id string
	switch mode {
	case ModeInsert:
		id, err = u.API.InsertFile(ctx, token, req)
	case ModeUpdate:
		id, err = u.API.UpdateFile(ctx, token, req)
	}
	if err != nil {
		if smartfocus.IsAPIError(err) {
			log.Info("Upload rejected by server", "reason", err.Error())
		} else {
			log.Error(err, "Failed to upload member file")
		}
		return "", fmt.Errorf("failed to %s members: %w", mode, err)
	}

	log.Info("Upload accepted", "id", id)
	return id, nil
}

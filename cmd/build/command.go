package build

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"go.miloapis.com/email-provider-smartfocus/internal/config"
	"go.miloapis.com/email-provider-smartfocus/internal/uploader"
	"go.miloapis.com/email-provider-smartfocus/pkg/smartfocus"
)

// CreateBuildCommand returns the build command, which writes an upload body
// without contacting the API.
func CreateBuildCommand() *cobra.Command {
	var (
		cfg    config.Config
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an upload body without sending it",
		Long: "Write the Content-Type header line, a blank line and the multipart body " +
			"that an upload would send.",
	}

	cfg.BindUploadFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")

	for _, mode := range []uploader.Mode{uploader.ModeInsert, uploader.ModeUpdate} {
		cmd.AddCommand(newModeCommand(&cfg, &output, mode))
	}

	return cmd
}

func newModeCommand(cfg *config.Config, output *string, mode uploader.Mode) *cobra.Command {
	var req smartfocus.UploadRequest

	cmd := &cobra.Command{
		Use:   string(mode),
		Short: fmt.Sprintf("Build a %s body", mode),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateUpload(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			req.DateFormat = cfg.DateFormat

			var (
				body string
				err  error
			)
			if mode == uploader.ModeInsert {
				body, err = smartfocus.BuildInsertBody(req)
			} else {
				body, err = smartfocus.BuildUpdateBody(req)
			}
			if err != nil {
				return err
			}
			boundary, err := smartfocus.ExtractBoundary(body)
			if err != nil {
				return err
			}
			logr.FromContextOrDiscard(cmd.Context()).V(1).Info("Built upload body", "mode", mode, "boundary", boundary, "bytes", len(body))

			if *output == "-" {
				return writeBody(cmd.OutOrStdout(), boundary, body)
			}
			return writeBodyFile(*output, boundary, body)
		},
	}

	cmd.Flags().StringVarP(&req.FilePath, "file", "f", "", "Delimited member file")
	_ = cmd.MarkFlagRequired("file")
	if mode == uploader.ModeInsert {
		cmd.Flags().BoolVar(&req.Dedup, "dedup", true, "Skip duplicate rows by lower-cased EMAIL")
	}

	return cmd
}

func writeBodyFile(path, boundary, body string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()
	return writeBody(f, boundary, body)
}

func writeBody(w io.Writer, boundary, body string) error {
	_, err := fmt.Fprintf(w, "Content-Type: multipart/form-data; boundary=%s\r\n\r\n%s", boundary, body)
	return err
}

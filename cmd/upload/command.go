package upload

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.miloapis.com/email-provider-smartfocus/internal/config"
	"go.miloapis.com/email-provider-smartfocus/internal/uploader"
	"go.miloapis.com/email-provider-smartfocus/pkg/smartfocus"
)

// CreateUploadCommand returns the upload command with insert and update subcommands.
func CreateUploadCommand() *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a member file to SmartFocus",
		Long: "Open a session, upload a delimited member file and close the session. " +
			"The upload id reported by the server is printed on success.",
	}

	cfg.BindConnectionFlags(cmd.PersistentFlags())
	cfg.BindUploadFlags(cmd.PersistentFlags())

	cmd.AddCommand(newModeCommand(&cfg, uploader.ModeInsert, "Insert the file's rows as new members"))
	cmd.AddCommand(newModeCommand(&cfg, uploader.ModeUpdate, "Merge the file's rows into existing members; the first line names the columns"))

	return cmd
}

func newModeCommand(cfg *config.Config, mode uploader.Mode, short string) *cobra.Command {
	var req smartfocus.UploadRequest

	cmd := &cobra.Command{
		Use:   string(mode),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			req.DateFormat = cfg.DateFormat

			api, err := smartfocus.NewBatchMember(cfg.Server,
				smartfocus.WithTransport(smartfocus.NewTransport(smartfocus.WithTimeout(cfg.Timeout))))
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			u := &uploader.Uploader{API: api, Credentials: cfg.Credentials}
			id, err := u.Run(cmd.Context(), mode, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}

	cmd.Flags().StringVarP(&req.FilePath, "file", "f", "", "Delimited member file to upload")
	_ = cmd.MarkFlagRequired("file")
	if mode == uploader.ModeInsert {
		cmd.Flags().BoolVar(&req.Dedup, "dedup", true, "Skip duplicate rows by lower-cased EMAIL")
	}

	return cmd
}

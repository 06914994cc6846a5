package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"go.miloapis.com/email-provider-smartfocus/cmd/build"
	"go.miloapis.com/email-provider-smartfocus/cmd/parse"
	"go.miloapis.com/email-provider-smartfocus/cmd/upload"
	version "go.miloapis.com/email-provider-smartfocus/cmd/version"
	"go.miloapis.com/email-provider-smartfocus/internal/logging"
)

func main() {
	var logOpts logging.Options

	rootCmd := &cobra.Command{
		Use:           "smartfocus",
		Short:         "SmartFocus batch member uploads",
		Long:          "Build and send bulk member insert and update uploads to the SmartFocus API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(logOpts)
			if err != nil {
				return err
			}
			cmd.SetContext(logr.NewContext(cmd.Context(), log.WithName("smartfocus")))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logOpts.Level, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logOpts.Format, "log-format", "json", "Log format (json, console)")

	rootCmd.AddCommand(upload.CreateUploadCommand())
	rootCmd.AddCommand(build.CreateBuildCommand())
	rootCmd.AddCommand(parse.CreateParseCommand())
	rootCmd.AddCommand(version.NewVersionCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

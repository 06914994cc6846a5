package parse

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.miloapis.com/email-provider-smartfocus/pkg/smartfocus"
)

// CreateParseCommand returns the parse command, which classifies a saved API response.
func CreateParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Parse a saved API response",
		Long: "Read an XML API response from FILE, or stdin when FILE is - or omitted, " +
			"and print its result. Exits non-zero unless the response carries a result.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open response: %w", err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			data, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			result := smartfocus.ParseResponse(string(data))
			if err := result.Err(); err != nil {
				return fmt.Errorf("%s: %w", result.Kind, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return err
		},
	}

	return cmd
}

// main holds the entry point for the spc daemon and validation CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags.
var version = "dev"

// errValidationFailed signals a document that parsed as JSON but violated
// the schema. The violations have already been printed.
var errValidationFailed = errors.New("validation failed")

var rootCmd = &cobra.Command{
	Use:           "spc",
	Short:         "Validate and normalize SpcQueryResponse podcast metrics documents.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newValidateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintln(os.Stderr, "❌", err)
		}
		os.Exit(1)
	}
}

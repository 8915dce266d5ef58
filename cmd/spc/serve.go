package main

import (
	"spc/internal/di"
	"spc/internal/structures"

	"github.com/spf13/cobra"
)

var serveFlags = &structures.CliFlags{}

// serveCmd runs the validation daemon until SIGINT or SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the validation HTTP daemon.",
	Long: `Run the HTTP daemon exposing /validate, /normalize, /stats, /health and /metrics.

Validation statistics are restored from persistence.filePath on start, saved
every persistence.saveInterval and once more on shutdown.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		app, err := di.InitApp(serveFlags)
		if err != nil {
			return err
		}
		return app.Run()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file")
	serveCmd.Flags().BoolVarP(&serveFlags.DebugMode, "debug", "d", false, "mirror logs to stderr")
}

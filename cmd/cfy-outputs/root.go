package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/NotMyFault/cloudify-plugin/internal/cli"
	"github.com/NotMyFault/cloudify-plugin/internal/logging"
	"github.com/NotMyFault/cloudify-plugin/internal/presentation/tui"
)

var logger = logging.New(slog.LevelInfo)

var rootCmd = &cobra.Command{
	Use:   "cfy-outputs",
	Short: "Convert deployment outputs into deployment inputs",
	Long: `cfy-outputs reads the outputs of one deployment (JSON or YAML), applies a mapping
of input names to dot-separated paths and writes the inputs of the next deployment as JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := cli.NewLogger(level, format)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The exit status reflects the class of the failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "Log format (auto, text, json)")
}

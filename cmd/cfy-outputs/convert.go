package main

import (
	"github.com/spf13/cobra"

	"github.com/NotMyFault/cloudify-plugin/internal/cli"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Build an inputs document from an outputs document",
	Long: `Loads the outputs document and the mapping, resolves every mapping entry and writes
the inputs document. Entries whose path does not resolve are left out.

Every flag can also be set with a CFY_ environment variable (CFY_MAPPING_FILE for
--mapping-file) or in the file given with --config. $VAR references in the values are
expanded from the environment.`,
	Example: `  cfy-outputs convert --outputs outputs.json --mapping-file mapping.yaml --inputs next/inputs.json
  cfy-outputs convert --outputs out.yaml --mapping '{"ip": "endpoint.ip"}' --inputs in.json --compact`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")

		ctx, cancel := cli.WithSignals(cmd.Context())
		defer cancel()

		_, err := cli.RunConvert(ctx, cli.Options{
			ConfigFile:  configFile,
			MetricsFile: metricsFile,
			Flags:       cmd.Flags(),
			Logger:      logger,
			Out:         cmd.OutOrStdout(),
		})
		return err
	},
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().String("workdir", "", "Working directory all locations are relative to (default: current directory)")
	cmd.Flags().String("mapping", "", "Inline mapping (JSON or YAML)")
	cmd.Flags().String("mapping-file", "", "Location of the mapping file")
	cmd.Flags().String("config", "", "Config file with the same keys as the flags")
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addJobFlags(convertCmd)
	convertCmd.Flags().String("outputs", "", "Location of the outputs document")
	convertCmd.Flags().String("inputs", "", "Location of the inputs document to write")
	convertCmd.Flags().Bool("compact", false, "Write compact JSON instead of indented JSON")
	convertCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile after the conversion")
}

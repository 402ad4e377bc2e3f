package main

import (
	"github.com/spf13/cobra"

	"github.com/NotMyFault/cloudify-plugin/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a mapping without reading any outputs",
	Long:  `Parses the mapping and checks that every entry is a well-formed path expression.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		_, err := cli.RunValidate(cmd.Context(), cli.Options{
			ConfigFile: configFile,
			Flags:      cmd.Flags(),
			Logger:     logger,
			Out:        cmd.OutOrStdout(),
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addJobFlags(validateCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cloudify "github.com/NotMyFault/cloudify-plugin"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cfy-outputs",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cfy-outputs version %s\n", strings.TrimSpace(cloudify.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

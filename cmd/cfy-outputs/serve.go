package main

import (
	"github.com/spf13/cobra"

	"github.com/NotMyFault/cloudify-plugin/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Exposes the transform over HTTP: POST /transform, POST /validate, GET /healthz
and Prometheus metrics on GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, cancel := cli.WithSignals(cmd.Context())
		defer cancel()

		if err := cli.RunServe(ctx, addr, logger, cmd.OutOrStdout()); err != nil {
			return err
		}
		if sig := cli.ReceivedSignal(ctx); sig != nil {
			logger.Info("Received signal", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}

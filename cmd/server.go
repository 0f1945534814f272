package cmd

import (
	"fmt"
	"os"

	"github.com/omarwdev/feedhub/internal/config"
	"github.com/omarwdev/feedhub/internal/server"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the feedhub HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		srv, err := server.New(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

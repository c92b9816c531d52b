package main

import (
	"os"

	"github.com/shieldpool/proof-gateway/cmd/gateway/commands"
	"github.com/spf13/cobra"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "proof-gateway",
		Short: "HTTP gateway for the shield pool proving and verification engines",
		Long: `A gateway service that validates withdrawal proof requests, forwards them
to an external proving engine, and checks proof artifacts against an external
verification engine.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.StartCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "mblog",
	Short: "Blog and user management API server",
	Long: `mblog is the blog/user-management API server. It exposes CRUD
endpoints for blog posts and user accounts with token-based
authentication and email verification.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smartshop",
	Short: "Conversational product discovery for Indian marketplaces",
	Long: `SmartShop is a chat-driven shopping assistant. It gathers requirements
through conversation, searches the local catalog, and explains why each
recommendation fits (or doesn't).

Start with:
  smartshop seed     # load the sample catalog
  smartshop serve    # web UI + JSON API
  smartshop chat     # terminal chat session`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

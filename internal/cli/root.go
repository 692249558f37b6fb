// Package cli defines the wafflebot command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "wafflebot",
	Short: "Slack/GitHub team bot",
	Long: `wafflebot receives Slack and GitHub webhooks and runs the team's
chat automation: channel lifecycle notifications, the waffle recognition
economy, release deployment threads and contribution dashboards.`,
	Version: "0.1.0",
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
}

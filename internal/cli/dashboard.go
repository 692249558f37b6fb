package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teamwaffle/wafflebot/internal/config"
	"github.com/teamwaffle/wafflebot/internal/logging"
)

// dashboardCmd is the one-shot weekly dashboard run, intended for an
// external cron trigger.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Compute and post the weekly dashboard once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func runDashboard() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	return deps.Dashboards.SendWeekly(ctx)
}

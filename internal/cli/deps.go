package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/teamwaffle/wafflebot/internal/capture"
	"github.com/teamwaffle/wafflebot/internal/config"
	"github.com/teamwaffle/wafflebot/internal/correlation"
	"github.com/teamwaffle/wafflebot/internal/dashboard"
	"github.com/teamwaffle/wafflebot/internal/deploy"
	"github.com/teamwaffle/wafflebot/internal/directory"
	"github.com/teamwaffle/wafflebot/internal/githubclient"
	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/messenger"
	"github.com/teamwaffle/wafflebot/internal/repository"
	"github.com/teamwaffle/wafflebot/internal/summarize"
	"github.com/teamwaffle/wafflebot/internal/waffle"
	"github.com/teamwaffle/wafflebot/internal/watcher"
)

// deps holds the assembled service graph.
type deps struct {
	Waffles    *waffle.Engine
	Channels   *watcher.Watcher
	Deploys    *deploy.Watcher
	Dashboards *dashboard.Aggregator
	Sink       capture.Sink

	ledger *repository.PostgresLedger
	store  correlation.Store
}

// buildDeps wires every service against the configured backends.
func buildDeps(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*deps, error) {
	ledger, err := repository.NewPostgresLedger(ctx, cfg.Database.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store, err := buildCorrelationStore(cfg, logger)
	if err != nil {
		ledger.Close()
		return nil, err
	}

	slackClient := messenger.NewSlackMessenger(cfg.Slack.BotToken)
	members := directory.New(cfg.Members.URL)
	github := githubclient.New(cfg.GitHub.APIBaseURL, cfg.GitHub.Token)

	sink := capture.NewSlackSink(slackClient, cfg.Slack.FallbackChannelID, logger)

	var summarizer deploy.Summarizer
	if cfg.Summarizer.Enabled {
		summarizer = summarize.New(cfg.Summarizer.APIKey, cfg.Summarizer.Model)
	}

	return &deps{
		Waffles:  waffle.NewEngine(ledger, slackClient, logger, time.Now),
		Channels: watcher.New(slackClient, cfg.Slack.WatcherChannelID, logger),
		Deploys: deploy.NewWatcher(store, slackClient, members, summarizer, deploy.Config{
			ChannelID:        cfg.Slack.DeployChannelID,
			SummarizeEnabled: cfg.Summarizer.Enabled,
			SummarizeMaxLen:  cfg.Summarizer.MaxLength,
		}, logger),
		Dashboards: dashboard.New(github, members, ledger, slackClient, logger, dashboard.Config{
			Organization: cfg.GitHub.Organization,
			ChannelID:    cfg.Dashboard.ChannelID,
			TopK:         cfg.Dashboard.TopK,
			Window:       cfg.Dashboard.Window,
		}),
		Sink:   sink,
		ledger: ledger,
		store:  store,
	}, nil
}

// buildCorrelationStore picks the Redis-backed store when enabled so deploy
// threads survive restarts, falling back to the in-process map.
func buildCorrelationStore(cfg *config.Config, logger *logging.Logger) (correlation.Store, error) {
	if !cfg.Redis.Enabled {
		logger.InfoContext(context.Background(), "redis disabled, using in-memory correlation store")
		return correlation.NewMemoryStore(), nil
	}
	store, err := correlation.NewRedisStore(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return store, nil
}

// Close releases backend connections.
func (d *deps) Close() {
	d.ledger.Close()
	if c, ok := d.store.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

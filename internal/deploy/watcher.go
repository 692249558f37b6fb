// Package deploy correlates GitHub release webhooks with the CI workflow
// runs that ship them, threading status updates under the release
// announcement in the deploy channel.
package deploy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/teamwaffle/wafflebot/internal/correlation"
	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/messenger"
	"github.com/teamwaffle/wafflebot/internal/metrics"
	"github.com/teamwaffle/wafflebot/internal/models"
)

// CannotSummarize is posted when the summarizer call fails.
const CannotSummarize = "요약할 수 없습니다."

// Directory resolves the member snapshot used to mention release authors.
type Directory interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
}

// Summarizer condenses a release note to at most maxLen characters.
type Summarizer interface {
	Summarize(ctx context.Context, content string, maxLen int) (string, error)
}

// Config holds watcher settings.
type Config struct {
	ChannelID        string
	SummarizeEnabled bool
	SummarizeMaxLen  int
}

// Watcher is the deploy state machine. All state lives in the injected
// correlation store.
type Watcher struct {
	store      correlation.Store
	messenger  messenger.Messenger
	directory  Directory
	summarizer Summarizer
	cfg        Config
	logger     *logging.Logger
}

// NewWatcher creates a watcher. summarizer may be nil when summarization is
// disabled.
func NewWatcher(store correlation.Store, m messenger.Messenger, dir Directory, sum Summarizer, cfg Config, logger *logging.Logger) *Watcher {
	return &Watcher{
		store:      store,
		messenger:  m,
		directory:  dir,
		summarizer: sum,
		cfg:        cfg,
		logger:     logger,
	}
}

// IsDeployWorkflow reports whether a workflow run is deployment-related.
// Any workflow with "deploy" in its display name qualifies; this is a known
// coarse heuristic carried over from the upstream webhook contract.
func IsDeployWorkflow(name string) bool {
	return strings.Contains(strings.ToLower(name), "deploy")
}

// HandleRelease announces a published release and opens its thread.
func (w *Watcher) HandleRelease(ctx context.Context, rel models.ReleaseEvent) error {
	members, err := w.directory.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	lines := []string{fmt.Sprintf("%s *%s/%s* %s (%s)",
		messenger.FormatEmoji("rocket"),
		rel.Repository, rel.Tag,
		mentionOrHandle(members, rel.AuthorLogin),
		messenger.FormatLink(rel.Tag, rel.URL),
	)}
	for _, c := range ParseChanges(rel.Body) {
		lines = append(lines, fmt.Sprintf(" - %s by %s", c.Content, mentionOrHandle(members, c.Author)))
	}

	sent, err := w.messenger.Send(ctx, messenger.Message{
		Channel: w.cfg.ChannelID,
		Text:    strings.Join(lines, "\n"),
	})
	if err != nil {
		return fmt.Errorf("announce release: %w", err)
	}

	key := correlation.Key(rel.Repository, rel.Tag)
	if err := w.store.Put(ctx, key, sent.TS); err != nil {
		return fmt.Errorf("track release thread: %w", err)
	}

	note := w.renderNote(ctx, rel.Body)
	_, err = w.messenger.Send(ctx, messenger.Message{
		Channel:  w.cfg.ChannelID,
		Text:     fmt.Sprintf("%s %s\n\n%s", messenger.FormatEmoji("memo"), messenger.FormatLink("릴리즈 노트", rel.URL), note),
		ThreadTS: sent.TS,
	})
	if err != nil {
		return fmt.Errorf("post release note: %w", err)
	}

	metrics.DeployEventsTotal.WithLabelValues("released").Inc()
	return nil
}

// renderNote produces the threaded release-note body: a length-bounded
// summary when configured, the verbatim note in a code block otherwise.
func (w *Watcher) renderNote(ctx context.Context, body string) string {
	if !w.cfg.SummarizeEnabled || w.summarizer == nil {
		return messenger.FormatCodeBlock(body)
	}
	summary, err := w.summarizer.Summarize(ctx, body, w.cfg.SummarizeMaxLen)
	if err != nil {
		w.logger.WarnContext(ctx, "release note summarization failed", logging.Error(err))
		return CannotSummarize
	}
	return summary
}

// HandleWorkflowStart posts a threaded "deployment started" reply when a
// deploy workflow is requested for a tracked release.
func (w *Watcher) HandleWorkflowStart(ctx context.Context, run models.WorkflowEvent) error {
	if !IsDeployWorkflow(run.Name) {
		return nil
	}

	key := correlation.Key(run.Repository, run.Tag)
	ts, ok, err := w.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load release thread: %w", err)
	}
	if !ok {
		// No announcement to attach to; a restart may have dropped the
		// in-memory map.
		return nil
	}

	_, err = w.messenger.Send(ctx, messenger.Message{
		Channel: w.cfg.ChannelID,
		Text: fmt.Sprintf("%s deployment started %s",
			messenger.FormatEmoji("wip"),
			messenger.FormatLink(strconv.FormatInt(run.RunID, 10), run.URL)),
		ThreadTS: ts,
	})
	if err != nil {
		return fmt.Errorf("post deployment start: %w", err)
	}

	metrics.DeployEventsTotal.WithLabelValues("requested").Inc()
	return nil
}

// HandleWorkflowComplete posts the terminal threaded reply and forgets the
// correlation entry.
func (w *Watcher) HandleWorkflowComplete(ctx context.Context, run models.WorkflowEvent) error {
	if !IsDeployWorkflow(run.Name) {
		return nil
	}

	key := correlation.Key(run.Repository, run.Tag)
	ts, ok, err := w.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load release thread: %w", err)
	}
	if !ok {
		return nil
	}

	_, err = w.messenger.Send(ctx, messenger.Message{
		Channel: w.cfg.ChannelID,
		Text: fmt.Sprintf("%s deployment completed %s",
			messenger.FormatEmoji("tada"),
			messenger.FormatLink(strconv.FormatInt(run.RunID, 10), run.URL)),
		ThreadTS: ts,
	})
	if err != nil {
		return fmt.Errorf("post deployment completion: %w", err)
	}

	if err := w.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("forget release thread: %w", err)
	}

	metrics.DeployEventsTotal.WithLabelValues("completed").Inc()
	return nil
}

func mentionOrHandle(members []models.Member, login string) string {
	for _, m := range members {
		if m.GithubUsername == login {
			return messenger.FormatMention(m.SlackUserID)
		}
	}
	return "@" + login
}

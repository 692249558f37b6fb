// Package handlers implements the webhook HTTP endpoints.
//
// Webhook senders redeliver on slow responses, so every side-effecting route
// acknowledges immediately and runs its business logic as a detached
// background task. Task failures go to the capture sink, never back to the
// caller.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teamwaffle/wafflebot/internal/capture"
	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/metrics"
	"github.com/teamwaffle/wafflebot/internal/middleware"
	"github.com/teamwaffle/wafflebot/internal/models"
)

// maxBodySize bounds webhook request bodies.
const maxBodySize = 1 << 20

// WaffleEngine handles recognition messages.
type WaffleEngine interface {
	HandleMessage(ctx context.Context, ev models.MessageEvent) error
}

// ChannelWatcher handles channel lifecycle events.
type ChannelWatcher interface {
	HandleChannelEvent(ctx context.Context, ev models.ChannelEvent) error
}

// DeployWatcher handles release and workflow deliveries.
type DeployWatcher interface {
	HandleRelease(ctx context.Context, rel models.ReleaseEvent) error
	HandleWorkflowStart(ctx context.Context, run models.WorkflowEvent) error
	HandleWorkflowComplete(ctx context.Context, run models.WorkflowEvent) error
}

// Dashboards sends the personal waffle dashboard.
type Dashboards interface {
	SendPersonal(ctx context.Context, userID, channelID string) error
}

// Handler serves the webhook endpoints.
type Handler struct {
	verificationToken string
	taskTimeout       time.Duration

	waffles    WaffleEngine
	channels   ChannelWatcher
	deploys    DeployWatcher
	dashboards Dashboards

	sink   capture.Sink
	logger *logging.Logger
}

// New wires a handler.
func New(
	verificationToken string,
	taskTimeout time.Duration,
	waffles WaffleEngine,
	channels ChannelWatcher,
	deploys DeployWatcher,
	dashboards Dashboards,
	sink capture.Sink,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		verificationToken: verificationToken,
		taskTimeout:       taskTimeout,
		waffles:           waffles,
		channels:          channels,
		deploys:           deploys,
		dashboards:        dashboards,
		sink:              sink,
		logger:            logger,
	}
}

// HealthCheck handles GET /health-check.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// SlackActionEndpoint handles POST /slack/action-endpoint: Slack event
// subscription callbacks.
func (h *Handler) SlackActionEndpoint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.respondError(w, r, "slack_action", fmt.Errorf("read body: %w", err))
		return
	}

	env, err := models.ParseSlackEnvelope(body)
	if err != nil {
		h.respondError(w, r, "slack_action", err)
		return
	}

	if env.Token != h.verificationToken {
		h.logger.WarnContext(r.Context(), "slack event with bad verification token",
			logging.Path(r.URL.Path))
		metrics.WebhookRequestsTotal.WithLabelValues("slack_action", "403").Inc()
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if env.Type == "url_verification" {
		metrics.WebhookRequestsTotal.WithLabelValues("slack_action", "200").Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, env.Challenge)
		return
	}

	event, err := models.ParseSlackEvent(env.Event)
	if err != nil {
		h.respondError(w, r, "slack_action", err)
		return
	}

	switch ev := event.(type) {
	case models.ChannelEvent:
		metrics.SlackEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
		h.dispatch(r.Context(), "channel_event", func(ctx context.Context) error {
			return h.channels.HandleChannelEvent(ctx, ev)
		})
	case models.MessageEvent:
		metrics.SlackEventsTotal.WithLabelValues("message").Inc()
		h.dispatch(r.Context(), "waffle_message", func(ctx context.Context) error {
			return h.waffles.HandleMessage(ctx, ev)
		})
	case models.UnknownEvent:
		metrics.SlackEventsTotal.WithLabelValues("unknown").Inc()
		h.logger.DebugContext(r.Context(), "ignoring unhandled slack event",
			logging.EventType(ev.Type))
	}

	metrics.WebhookRequestsTotal.WithLabelValues("slack_action", "204").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// SlashCommand handles POST /slack/slash-command. The only supported command
// text is "waffle"; anything else is a hard error.
func (h *Handler) SlashCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondError(w, r, "slash_command", fmt.Errorf("parse form: %w", err))
		return
	}

	cmd := models.SlashCommand{
		Token:     r.PostFormValue("token"),
		Text:      r.PostFormValue("text"),
		UserID:    r.PostFormValue("user_id"),
		ChannelID: r.PostFormValue("channel_id"),
	}

	if cmd.Token != h.verificationToken {
		h.logger.WarnContext(r.Context(), "slash command with bad verification token",
			logging.Path(r.URL.Path))
		metrics.WebhookRequestsTotal.WithLabelValues("slash_command", "403").Inc()
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if cmd.Text != "waffle" || cmd.UserID == "" || cmd.ChannelID == "" {
		h.respondError(w, r, "slash_command", fmt.Errorf("unsupported slash command: %q", cmd.Text))
		return
	}

	h.dispatch(r.Context(), "personal_dashboard", func(ctx context.Context) error {
		return h.dashboards.SendPersonal(ctx, cmd.UserID, cmd.ChannelID)
	})

	metrics.WebhookRequestsTotal.WithLabelValues("slash_command", "204").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// GitHubWebhook handles POST /github/webhook-endpoint: release and
// workflow_run deliveries. Deliveries for other event kinds are acknowledged
// and dropped.
func (h *Handler) GitHubWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.respondError(w, r, "github_webhook", fmt.Errorf("read body: %w", err))
		return
	}

	hook, err := models.ParseGitHubWebhook(body)
	if err != nil {
		h.respondError(w, r, "github_webhook", err)
		return
	}

	action := *hook.Action
	switch {
	case hook.Release != nil && action == "released":
		rel := models.ReleaseEvent{
			Repository:  hook.Repository.Name,
			Tag:         hook.Release.TagName,
			AuthorLogin: hook.Release.Author.Login,
			Body:        hook.Release.Body,
			URL:         hook.Release.HTMLURL,
		}
		h.dispatch(r.Context(), "release", func(ctx context.Context) error {
			return h.deploys.HandleRelease(ctx, rel)
		})

	case hook.WorkflowRun != nil && (action == "requested" || action == "completed"):
		run := models.WorkflowEvent{
			Repository: hook.Repository.Name,
			Tag:        hook.WorkflowRun.HeadBranch,
			Name:       hook.WorkflowRun.Name,
			RunID:      hook.WorkflowRun.ID,
			URL:        hook.WorkflowRun.HTMLURL,
		}
		if action == "requested" {
			h.dispatch(r.Context(), "workflow_start", func(ctx context.Context) error {
				return h.deploys.HandleWorkflowStart(ctx, run)
			})
		} else {
			h.dispatch(r.Context(), "workflow_complete", func(ctx context.Context) error {
				return h.deploys.HandleWorkflowComplete(ctx, run)
			})
		}

	default:
		h.logger.DebugContext(r.Context(), "ignoring github delivery",
			logging.EventType(action))
	}

	metrics.WebhookRequestsTotal.WithLabelValues("github_webhook", "200").Inc()
	w.WriteHeader(http.StatusOK)
}

// dispatch runs a task detached from the request so the webhook response is
// never blocked on business logic. The request's ID is carried over for log
// correlation; the request's deadline is not.
func (h *Handler) dispatch(reqCtx context.Context, name string, fn func(ctx context.Context) error) {
	ctx := context.Background()
	if id := middleware.GetRequestID(reqCtx); id != "" {
		ctx = middleware.WithRequestID(ctx, id)
	}
	ctx, cancel := context.WithTimeout(ctx, h.taskTimeout)

	go func() {
		defer cancel()
		defer func() {
			if rec := recover(); rec != nil {
				metrics.TaskFailuresTotal.WithLabelValues(name).Inc()
				h.sink.Capture(ctx, fmt.Errorf("task %s panicked: %v", name, rec))
			}
		}()

		start := time.Now()
		err := fn(ctx)
		metrics.TaskDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.TaskFailuresTotal.WithLabelValues(name).Inc()
			h.sink.Capture(ctx, err)
			return
		}
		h.logger.DebugContext(ctx, "task finished", logging.Task(name))
	}()
}

// respondError maps an error to a status code. Malformed payloads are bad
// traffic and answer 400 without reaching the capture sink; anything else is
// unexpected, answers 500 and is reported.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	if errors.Is(err, models.ErrMalformedPayload) {
		h.logger.WarnContext(r.Context(), "malformed payload",
			logging.Path(r.URL.Path), logging.Error(err))
		metrics.WebhookRequestsTotal.WithLabelValues(endpoint, "400").Inc()
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	h.sink.Capture(r.Context(), err)
	metrics.WebhookRequestsTotal.WithLabelValues(endpoint, "500").Inc()
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

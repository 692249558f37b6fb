package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamwaffle/wafflebot/internal/handlers"
	"github.com/teamwaffle/wafflebot/internal/middleware"
)

// NewRouter constructs a ServeMux with the webhook routes registered.
// Unregistered paths fall through to the mux's 404; unexpected methods on a
// registered path also answer 404 inside the handler.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	// Webhook endpoints
	mux.HandleFunc("/health-check", h.HealthCheck)
	mux.HandleFunc("/slack/action-endpoint", h.SlackActionEndpoint)
	mux.HandleFunc("/slack/slash-command", h.SlashCommand)
	mux.HandleFunc("/github/webhook-endpoint", h.GitHubWebhook)

	// Operational endpoints
	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}

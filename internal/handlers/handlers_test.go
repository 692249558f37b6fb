package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/metrics"
	"github.com/teamwaffle/wafflebot/internal/models"
)

type recordingServices struct {
	mu        sync.Mutex
	messages  []models.MessageEvent
	channels  []models.ChannelEvent
	releases  []models.ReleaseEvent
	starts    []models.WorkflowEvent
	completes []models.WorkflowEvent
	personal  []string
	err       error
}

func (r *recordingServices) HandleMessage(_ context.Context, ev models.MessageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, ev)
	return r.err
}

func (r *recordingServices) HandleChannelEvent(_ context.Context, ev models.ChannelEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append(r.channels, ev)
	return r.err
}

func (r *recordingServices) HandleRelease(_ context.Context, rel models.ReleaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releases = append(r.releases, rel)
	return r.err
}

func (r *recordingServices) HandleWorkflowStart(_ context.Context, run models.WorkflowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, run)
	return r.err
}

func (r *recordingServices) HandleWorkflowComplete(_ context.Context, run models.WorkflowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completes = append(r.completes, run)
	return r.err
}

func (r *recordingServices) SendPersonal(_ context.Context, userID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.personal = append(r.personal, userID+"/"+channelID)
	return r.err
}

type recordingSink struct {
	mu       sync.Mutex
	captured []error
}

func (s *recordingSink) Capture(_ context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = append(s.captured, err)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.captured)
}

func newTestHandler(svc *recordingServices, sink *recordingSink) *Handler {
	return New("secret", time.Second, svc, svc, svc, svc, sink, logging.Default())
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(&recordingServices{}, &recordingSink{})

	rr := httptest.NewRecorder()
	h.HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health-check", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestHealthCheck_PostIs404(t *testing.T) {
	h := newTestHandler(&recordingServices{}, &recordingSink{})

	rr := httptest.NewRecorder()
	h.HealthCheck(rr, httptest.NewRequest(http.MethodPost, "/health-check", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSlackActionEndpoint_BadToken(t *testing.T) {
	svc := &recordingServices{}
	sink := &recordingSink{}
	h := newTestHandler(svc, sink)

	body := `{"token":"wrong","type":"event_callback","event":{"type":"message","user":"U1"}}`
	rr := httptest.NewRecorder()
	h.SlackActionEndpoint(rr, httptest.NewRequest(http.MethodPost, "/slack/action-endpoint", strings.NewReader(body)))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, svc.messages)
	assert.Zero(t, sink.count())
}

func TestSlackActionEndpoint_URLVerificationEchoesChallenge(t *testing.T) {
	h := newTestHandler(&recordingServices{}, &recordingSink{})

	body := `{"token":"secret","type":"url_verification","challenge":"abc123"}`
	rr := httptest.NewRecorder()
	h.SlackActionEndpoint(rr, httptest.NewRequest(http.MethodPost, "/slack/action-endpoint", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc123", rr.Body.String())
}

func TestSlackActionEndpoint_MessageEventDispatched(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	body := `{"token":"secret","type":"event_callback","event":{"type":"message","user":"U1","text":":waffle: <@U2>","channel":"C1","ts":"1.0"}}`
	rr := httptest.NewRecorder()
	h.SlackActionEndpoint(rr, httptest.NewRequest(http.MethodPost, "/slack/action-endpoint", strings.NewReader(body)))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.messages) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "U1", svc.messages[0].User)
}

func TestSlackActionEndpoint_ChannelEventDispatched(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	body := `{"token":"secret","type":"event_callback","event":{"type":"channel_rename","channel":{"id":"C9"}}}`
	rr := httptest.NewRecorder()
	h.SlackActionEndpoint(rr, httptest.NewRequest(http.MethodPost, "/slack/action-endpoint", strings.NewReader(body)))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.channels) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, models.ChannelRenamed, svc.channels[0].Kind)
	assert.Equal(t, "C9", svc.channels[0].ChannelID)
}

func TestSlackActionEndpoint_UnknownEventAcknowledged(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	body := `{"token":"secret","type":"event_callback","event":{"type":"reaction_added"}}`
	rr := httptest.NewRecorder()
	h.SlackActionEndpoint(rr, httptest.NewRequest(http.MethodPost, "/slack/action-endpoint", strings.NewReader(body)))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

// requestCount reads the per-endpoint status counter.
func requestCount(endpoint, status string) float64 {
	return testutil.ToFloat64(metrics.WebhookRequestsTotal.WithLabelValues(endpoint, status))
}

func TestSlackActionEndpoint_MalformedBodyIs400(t *testing.T) {
	sink := &recordingSink{}
	h := newTestHandler(&recordingServices{}, sink)
	before := requestCount("slack_action", "400")

	rr := httptest.NewRecorder()
	h.SlackActionEndpoint(rr, httptest.NewRequest(http.MethodPost, "/slack/action-endpoint", strings.NewReader("{broken")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, sink.count())
	assert.Equal(t, before+1, requestCount("slack_action", "400"))
}

func TestSlackActionEndpoint_TaskErrorReachesSink(t *testing.T) {
	svc := &recordingServices{err: errors.New("engine exploded")}
	sink := &recordingSink{}
	h := newTestHandler(svc, sink)

	body := `{"token":"secret","type":"event_callback","event":{"type":"message","user":"U1","text":"hi","channel":"C1","ts":"1.0"}}`
	rr := httptest.NewRecorder()
	h.SlackActionEndpoint(rr, httptest.NewRequest(http.MethodPost, "/slack/action-endpoint", strings.NewReader(body)))

	// The response never reflects the background failure.
	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
}

func slashForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/slack/slash-command", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSlashCommand_SendsPersonalDashboard(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	rr := httptest.NewRecorder()
	h.SlashCommand(rr, slashForm(url.Values{
		"token":      {"secret"},
		"text":       {"waffle"},
		"user_id":    {"U1"},
		"channel_id": {"C1"},
	}))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.personal) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "U1/C1", svc.personal[0])
}

func TestSlashCommand_BadToken(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	rr := httptest.NewRecorder()
	h.SlashCommand(rr, slashForm(url.Values{
		"token":      {"wrong"},
		"text":       {"waffle"},
		"user_id":    {"U1"},
		"channel_id": {"C1"},
	}))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, svc.personal)
}

func TestSlashCommand_UnsupportedTextIs500(t *testing.T) {
	svc := &recordingServices{}
	sink := &recordingSink{}
	h := newTestHandler(svc, sink)
	before := requestCount("slash_command", "500")

	rr := httptest.NewRecorder()
	h.SlashCommand(rr, slashForm(url.Values{
		"token":      {"secret"},
		"text":       {"pancake"},
		"user_id":    {"U1"},
		"channel_id": {"C1"},
	}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1, sink.count())
	assert.Empty(t, svc.personal)
	assert.Equal(t, before+1, requestCount("slash_command", "500"))
}

func TestGitHubWebhook_ReleaseDispatched(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	body := `{
		"action": "released",
		"release": {"author":{"login":"alice"},"body":"","tag_name":"v1.0.0","html_url":"https://example.com/rel"},
		"repository": {"name":"repo"}
	}`
	rr := httptest.NewRecorder()
	h.GitHubWebhook(rr, httptest.NewRequest(http.MethodPost, "/github/webhook-endpoint", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.releases) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "repo", svc.releases[0].Repository)
	assert.Equal(t, "v1.0.0", svc.releases[0].Tag)
}

func TestGitHubWebhook_WorkflowTransitions(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	for _, action := range []string{"requested", "completed"} {
		body := `{
			"action": "` + action + `",
			"workflow_run": {"name":"deploy","head_branch":"v1.0.0","id":7,"html_url":"https://example.com/run"},
			"repository": {"name":"repo"}
		}`
		rr := httptest.NewRecorder()
		h.GitHubWebhook(rr, httptest.NewRequest(http.MethodPost, "/github/webhook-endpoint", strings.NewReader(body)))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.starts) == 1 && len(svc.completes) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestGitHubWebhook_MissingActionIs400(t *testing.T) {
	sink := &recordingSink{}
	h := newTestHandler(&recordingServices{}, sink)

	rr := httptest.NewRecorder()
	h.GitHubWebhook(rr, httptest.NewRequest(http.MethodPost, "/github/webhook-endpoint", strings.NewReader(`{"repository":{"name":"repo"}}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, sink.count())
}

func TestGitHubWebhook_UnrelatedDeliveryAcknowledged(t *testing.T) {
	svc := &recordingServices{}
	h := newTestHandler(svc, &recordingSink{})

	rr := httptest.NewRecorder()
	h.GitHubWebhook(rr, httptest.NewRequest(http.MethodPost, "/github/webhook-endpoint",
		strings.NewReader(`{"action":"opened","repository":{"name":"repo"}}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.releases)
	assert.Empty(t, svc.starts)
}

package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srvURL string) *Client {
	c := New("sk-test", "gpt-3.5-turbo")
	c.baseURL = srvURL
	return c
}

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "100자 이내")
		assert.Equal(t, "release note body", req.Messages[1].Content)

		w.Write([]byte(`{"choices": [{"message": {"content": "로그인 버그를 고쳤어요."}}]}`))
	}))
	defer srv.Close()

	summary, err := newTestClient(srv.URL).Summarize(context.Background(), "release note body", 100)
	require.NoError(t, err)
	assert.Equal(t, "로그인 버그를 고쳤어요.", summary)
}

func TestSummarize_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Summarize(context.Background(), "body", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSummarize_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Summarize(context.Background(), "body", 100)
	assert.Error(t, err)
}

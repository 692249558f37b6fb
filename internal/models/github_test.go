package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubWebhook_Release(t *testing.T) {
	body := []byte(`{
		"action": "released",
		"release": {
			"author": {"login": "alice"},
			"body": "* Fix by @alice in https://github.com/org/repo/pull/1",
			"tag_name": "v1.0.0",
			"html_url": "https://github.com/org/repo/releases/tag/v1.0.0"
		},
		"repository": {"name": "repo"}
	}`)

	hook, err := ParseGitHubWebhook(body)
	require.NoError(t, err)
	require.NotNil(t, hook.Action)
	assert.Equal(t, "released", *hook.Action)
	require.NotNil(t, hook.Release)
	assert.Equal(t, "alice", hook.Release.Author.Login)
	assert.Equal(t, "v1.0.0", hook.Release.TagName)
	assert.Equal(t, "repo", hook.Repository.Name)
	assert.Nil(t, hook.WorkflowRun)
}

func TestParseGitHubWebhook_WorkflowRun(t *testing.T) {
	body := []byte(`{
		"action": "completed",
		"workflow_run": {
			"name": "Deploy to production",
			"head_branch": "v1.0.0",
			"id": 987,
			"html_url": "https://github.com/org/repo/actions/runs/987"
		},
		"repository": {"name": "repo"}
	}`)

	hook, err := ParseGitHubWebhook(body)
	require.NoError(t, err)
	require.NotNil(t, hook.WorkflowRun)
	assert.Equal(t, "Deploy to production", hook.WorkflowRun.Name)
	assert.Equal(t, "v1.0.0", hook.WorkflowRun.HeadBranch)
	assert.Equal(t, int64(987), hook.WorkflowRun.ID)
}

func TestParseGitHubWebhook_MissingActionIsMalformed(t *testing.T) {
	_, err := ParseGitHubWebhook([]byte(`{"repository": {"name": "repo"}}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseGitHubWebhook_InvalidJSONIsMalformed(t *testing.T) {
	_, err := ParseGitHubWebhook([]byte(`{`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// GitHubWebhook is the outer shape of a repository webhook delivery.
// Exactly one of Release or WorkflowRun is set for the deliveries the bot
// reacts to; anything else is ignored.
type GitHubWebhook struct {
	Action      *string         `json:"action"`
	Release     *ReleasePayload `json:"release,omitempty"`
	WorkflowRun *WorkflowRun    `json:"workflow_run,omitempty"`
	Repository  RepositoryRef   `json:"repository"`
}

// ReleasePayload is the release object of a "released" delivery.
type ReleasePayload struct {
	Author  AuthorRef `json:"author"`
	Body    string    `json:"body"`
	TagName string    `json:"tag_name"`
	HTMLURL string    `json:"html_url"`
}

// WorkflowRun is the workflow_run object of a CI workflow delivery.
type WorkflowRun struct {
	Name       string `json:"name"`
	HeadBranch string `json:"head_branch"`
	ID         int64  `json:"id"`
	HTMLURL    string `json:"html_url"`
}

// RepositoryRef identifies the repository a delivery belongs to.
type RepositoryRef struct {
	Name string `json:"name"`
}

// AuthorRef identifies a GitHub user.
type AuthorRef struct {
	Login string `json:"login"`
}

// ParseGitHubWebhook decodes a repository webhook body. A missing action
// field is malformed; an unrecognized shape is not.
func ParseGitHubWebhook(body []byte) (GitHubWebhook, error) {
	var hook GitHubWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return GitHubWebhook{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if hook.Action == nil {
		return GitHubWebhook{}, fmt.Errorf("%w: missing action", ErrMalformedPayload)
	}
	return hook, nil
}

// ReleaseEvent is the deploy watcher's view of a published release.
type ReleaseEvent struct {
	Repository  string
	Tag         string
	AuthorLogin string
	Body        string
	URL         string
}

// WorkflowEvent is the deploy watcher's view of a CI workflow transition.
// Tag carries the workflow run's head branch, which is the release tag for
// tag-triggered deploy workflows.
type WorkflowEvent struct {
	Repository string
	Tag        string
	Name       string
	RunID      int64
	URL        string
}

// Repo is one organization repository returned by the GitHub API.
type Repo struct {
	Name   string `json:"name"`
	WebURL string `json:"html_url"`
}

// PullRequest is the slice of the GitHub pulls API the dashboard needs.
type PullRequest struct {
	AssigneeLogin string
	MergedAt      *time.Time
}

// ReviewComment is the slice of the GitHub review comments API the dashboard
// needs.
type ReviewComment struct {
	UserLogin string
	CreatedAt time.Time
}

// Package directory resolves team members from the member-directory service.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teamwaffle/wafflebot/internal/models"
)

// Client fetches the member snapshot. Each call returns a fresh snapshot;
// nothing is cached.
type Client struct {
	httpClient *http.Client
	url        string
}

// New creates a client for the directory endpoint.
func New(url string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
	}
}

// ListMembers returns all known members.
func (c *Client) ListMembers(ctx context.Context) ([]models.Member, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("member directory: %s: %s", resp.Status, body)
	}

	var users []struct {
		GithubID string `json:"github_id"`
		SlackID  string `json:"slack_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}

	members := make([]models.Member, len(users))
	for i, u := range users {
		members[i] = models.Member{SlackUserID: u.SlackID, GithubUsername: u.GithubID}
	}
	return members, nil
}

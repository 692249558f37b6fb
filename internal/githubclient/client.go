// Package githubclient is a lightweight REST client for the slice of the
// GitHub API the dashboard aggregator consumes.
package githubclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teamwaffle/wafflebot/internal/models"
)

// Page sizes and orderings are fixed: the dashboard looks at recent activity
// only, so one bounded page per listing is enough.
const (
	repoPageSize = 30
	itemPageSize = 100
)

// Client calls the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New creates a client. Token is optional; when set it is sent as a Bearer
// token for higher rate limits. baseURL defaults to the public API.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

type ghRepo struct {
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

type ghPull struct {
	Assignee *struct {
		Login string `json:"login"`
	} `json:"assignee"`
	MergedAt *time.Time `json:"merged_at"`
}

type ghComment struct {
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOrgRepos lists organization repositories, most recently pushed first.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]models.Repo, error) {
	url := fmt.Sprintf("%s/orgs/%s/repos?per_page=%d&sort=pushed", c.baseURL, org, repoPageSize)
	var raw []ghRepo
	if err := c.doJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("list repos for %s: %w", org, err)
	}

	repos := make([]models.Repo, len(raw))
	for i, r := range raw {
		repos[i] = models.Repo{Name: r.Name, WebURL: r.HTMLURL}
	}
	return repos, nil
}

// ListClosedPullRequests lists recently updated closed pull requests.
func (c *Client) ListClosedPullRequests(ctx context.Context, org, repo string) ([]models.PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls?state=closed&sort=updated&direction=desc&per_page=%d",
		c.baseURL, org, repo, itemPageSize)
	var raw []ghPull
	if err := c.doJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("list pulls for %s/%s: %w", org, repo, err)
	}

	pulls := make([]models.PullRequest, len(raw))
	for i, p := range raw {
		pr := models.PullRequest{MergedAt: p.MergedAt}
		if p.Assignee != nil {
			pr.AssigneeLogin = p.Assignee.Login
		}
		pulls[i] = pr
	}
	return pulls, nil
}

// ListReviewComments lists recently created pull request review comments.
func (c *Client) ListReviewComments(ctx context.Context, org, repo string) ([]models.ReviewComment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/comments?sort=created&direction=desc&per_page=%d",
		c.baseURL, org, repo, itemPageSize)
	var raw []ghComment
	if err := c.doJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("list comments for %s/%s: %w", org, repo, err)
	}

	comments := make([]models.ReviewComment, len(raw))
	for i, cm := range raw {
		comments[i] = models.ReviewComment{UserLogin: cm.User.Login, CreatedAt: cm.CreatedAt}
	}
	return comments, nil
}

func (c *Client) doJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github api %s: %s: %s", url, resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

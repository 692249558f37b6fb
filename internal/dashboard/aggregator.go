// Package dashboard computes ranked contribution summaries from GitHub
// activity and the waffle ledger.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/messenger"
	"github.com/teamwaffle/wafflebot/internal/models"
	"github.com/teamwaffle/wafflebot/internal/repository"
)

// personalTop caps the personal dashboard listing.
const personalTop = 20

// Score is the ranking formula for both repositories and contributors.
func Score(pullRequests, comments int) int {
	return pullRequests*5 + comments
}

// GitHubAPI is the slice of the GitHub client the aggregator consumes.
type GitHubAPI interface {
	ListOrgRepos(ctx context.Context, org string) ([]models.Repo, error)
	ListClosedPullRequests(ctx context.Context, org, repo string) ([]models.PullRequest, error)
	ListReviewComments(ctx context.Context, org, repo string) ([]models.ReviewComment, error)
}

// Directory resolves team members.
type Directory interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
}

// Config carries the aggregation parameters.
type Config struct {
	Organization string
	ChannelID    string
	TopK         int
	Window       time.Duration
}

// Aggregator builds and sends the weekly and personal dashboards.
type Aggregator struct {
	github    GitHubAPI
	directory Directory
	ledger    repository.Ledger
	messenger messenger.Messenger
	logger    *logging.Logger
	cfg       Config
	now       func() time.Time
}

// New wires an aggregator.
func New(github GitHubAPI, directory Directory, ledger repository.Ledger, m messenger.Messenger, logger *logging.Logger, cfg Config) *Aggregator {
	return &Aggregator{
		github:    github,
		directory: directory,
		ledger:    ledger,
		messenger: m,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

type repoActivity struct {
	repo         models.Repo
	pullRequests []models.PullRequest
	comments     []models.ReviewComment
}

func (r repoActivity) score() int {
	return Score(len(r.pullRequests), len(r.comments))
}

type contributorStats struct {
	login        string
	pullRequests int
	comments     int
}

func (c contributorStats) score() int {
	return Score(c.pullRequests, c.comments)
}

type waffleStats struct {
	slackID string
	given   int
	taken   int
}

// SendWeekly posts the weekly summary: top contributors, top repositories
// and top waffle earners over the trailing window.
func (a *Aggregator) SendWeekly(ctx context.Context) error {
	now := a.now()
	since := now.Add(-a.cfg.Window)

	members, err := a.directory.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	repos, err := a.github.ListOrgRepos(ctx, a.cfg.Organization)
	if err != nil {
		return err
	}
	transfers, err := a.ledger.ListRange(ctx, since, now)
	if err != nil {
		return fmt.Errorf("list transfers: %w", err)
	}

	activity, err := a.fetchActivity(ctx, repos, since)
	if err != nil {
		return err
	}

	topRepos := rankRepositories(activity, a.cfg.TopK)
	topUsers := rankContributors(activity, a.cfg.TopK)
	topWaffles := rankWaffles(transfers, a.cfg.TopK)

	title := ":tada: 지난 주 통계 :blob-clap:"
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewDividerBlock(),
		mrkdwnSection("*Contributors* :blobgamer:"),
		fieldsSection(contributorFields(topUsers, members)),
		slack.NewDividerBlock(),
		mrkdwnSection("*Top Repositories* :github:"),
		fieldsSection(repositoryFields(topRepos)),
		slack.NewDividerBlock(),
		mrkdwnSection("*Top Waffles* :waffle:"),
		fieldsSection(waffleFields(topWaffles, members)),
	}

	_, err = a.messenger.Send(ctx, messenger.Message{
		Channel: a.cfg.ChannelID,
		Text:    title,
		Blocks:  blocks,
	})
	if err != nil {
		return fmt.Errorf("send weekly dashboard: %w", err)
	}

	a.logger.InfoContext(ctx, "weekly dashboard sent",
		logging.Channel(a.cfg.ChannelID))
	return nil
}

// SendPersonal posts the all-time given/received tally, triggered by the
// waffle slash command. Replies in the invoking channel when it is a public
// channel, otherwise as a DM to the caller.
func (a *Aggregator) SendPersonal(ctx context.Context, userID, channelID string) error {
	transfers, err := a.ledger.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list transfers: %w", err)
	}

	stats := accumulateWaffles(transfers)
	if len(stats) > personalTop {
		stats = stats[:personalTop]
	}

	lines := make([]string, len(stats))
	for i, s := range stats {
		lines[i] = fmt.Sprintf("%s (`%d Given, %d Received`)",
			messenger.FormatMention(s.slackID), s.given, s.taken)
	}

	channel := userID
	if strings.HasPrefix(channelID, "C") {
		channel = channelID
	}

	_, err = a.messenger.Send(ctx, messenger.Message{
		Channel: channel,
		Text:    "Waffle Dashboard",
		Blocks: []slack.Block{
			mrkdwnSection(":waffle: Waffle Dashboard"),
			mrkdwnSection(strings.Join(lines, "\n")),
		},
	})
	if err != nil {
		return fmt.Errorf("send personal dashboard: %w", err)
	}
	return nil
}

// fetchActivity pulls pull requests and review comments for every repository
// concurrently, filtered to the trailing window. Repository order is
// preserved so ties rank deterministically.
func (a *Aggregator) fetchActivity(ctx context.Context, repos []models.Repo, since time.Time) ([]repoActivity, error) {
	activity := make([]repoActivity, len(repos))
	errs := make([]error, len(repos))

	var wg sync.WaitGroup
	for i, repo := range repos {
		wg.Add(1)
		go func(i int, repo models.Repo) {
			defer wg.Done()

			pulls, err := a.github.ListClosedPullRequests(ctx, a.cfg.Organization, repo.Name)
			if err != nil {
				errs[i] = err
				return
			}
			comments, err := a.github.ListReviewComments(ctx, a.cfg.Organization, repo.Name)
			if err != nil {
				errs[i] = err
				return
			}

			act := repoActivity{repo: repo}
			for _, pr := range pulls {
				if pr.MergedAt != nil && pr.MergedAt.After(since) {
					act.pullRequests = append(act.pullRequests, pr)
				}
			}
			for _, c := range comments {
				if c.CreatedAt.After(since) {
					act.comments = append(act.comments, c)
				}
			}
			activity[i] = act
		}(i, repo)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return activity, nil
}

func rankRepositories(activity []repoActivity, topK int) []repoActivity {
	scored := make([]repoActivity, 0, len(activity))
	for _, act := range activity {
		if act.score() > 0 {
			scored = append(scored, act)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score() > scored[j].score()
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func rankContributors(activity []repoActivity, topK int) []contributorStats {
	byLogin := make(map[string]*contributorStats)
	var order []string

	bump := func(login string, pr bool) {
		if login == "" {
			return
		}
		s, ok := byLogin[login]
		if !ok {
			s = &contributorStats{login: login}
			byLogin[login] = s
			order = append(order, login)
		}
		if pr {
			s.pullRequests++
		} else {
			s.comments++
		}
	}

	for _, act := range activity {
		for _, pr := range act.pullRequests {
			bump(pr.AssigneeLogin, true)
		}
		for _, c := range act.comments {
			bump(c.UserLogin, false)
		}
	}

	stats := make([]contributorStats, 0, len(order))
	for _, login := range order {
		stats = append(stats, *byLogin[login])
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].score() > stats[j].score()
	})
	if len(stats) > topK {
		stats = stats[:topK]
	}
	return stats
}

func rankWaffles(transfers []models.PointTransfer, topK int) []waffleStats {
	stats := accumulateWaffles(transfers)
	if len(stats) > topK {
		stats = stats[:topK]
	}
	return stats
}

// accumulateWaffles sums gives and takes per user, sorted descending by
// combined total. First-seen order breaks ties.
func accumulateWaffles(transfers []models.PointTransfer) []waffleStats {
	byID := make(map[string]*waffleStats)
	var order []string

	get := func(id string) *waffleStats {
		s, ok := byID[id]
		if !ok {
			s = &waffleStats{slackID: id}
			byID[id] = s
			order = append(order, id)
		}
		return s
	}

	for _, t := range transfers {
		get(t.From).given += t.Count
		get(t.To).taken += t.Count
	}

	stats := make([]waffleStats, 0, len(order))
	for _, id := range order {
		stats = append(stats, *byID[id])
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].given+stats[i].taken > stats[j].given+stats[j].taken
	})
	return stats
}

// rankMarker returns the medal for positions 1..3 and a numeric emoji
// beyond that.
func rankMarker(i int) string {
	switch i {
	case 0:
		return ":first_place_medal:"
	case 1:
		return ":second_place_medal:"
	case 2:
		return ":third_place_medal:"
	case 3:
		return ":four:"
	case 4:
		return ":five:"
	default:
		return fmt.Sprintf("%d.", i+1)
	}
}

func contributorFields(stats []contributorStats, members []models.Member) []*slack.TextBlockObject {
	fields := make([]*slack.TextBlockObject, 0, len(stats)*2)
	for i, s := range stats {
		fields = append(fields,
			mrkdwnField(fmt.Sprintf("%s %s", rankMarker(i), mentionByGithub(members, s.login))),
			mrkdwnField(fmt.Sprintf("*%dp* (%d PR, %d comments)", s.score(), s.pullRequests, s.comments)),
		)
	}
	return fields
}

func repositoryFields(activity []repoActivity) []*slack.TextBlockObject {
	fields := make([]*slack.TextBlockObject, 0, len(activity)*2)
	for i, act := range activity {
		fields = append(fields,
			mrkdwnField(fmt.Sprintf("%s %s", rankMarker(i),
				messenger.FormatLink(messenger.FormatBold(act.repo.Name), act.repo.WebURL))),
			mrkdwnField(fmt.Sprintf("*%dp* (%d PR, %d comments)",
				act.score(), len(act.pullRequests), len(act.comments))),
		)
	}
	return fields
}

func waffleFields(stats []waffleStats, members []models.Member) []*slack.TextBlockObject {
	fields := make([]*slack.TextBlockObject, 0, len(stats)*2)
	for i, s := range stats {
		fields = append(fields,
			mrkdwnField(fmt.Sprintf("%s %s", rankMarker(i), messenger.FormatMention(s.slackID))),
			mrkdwnField(fmt.Sprintf("*%d given, %d received*", s.given, s.taken)),
		)
	}
	return fields
}

// mentionByGithub maps a GitHub login to a Slack mention, falling back to
// "@login" when the member is unknown.
func mentionByGithub(members []models.Member, login string) string {
	for _, m := range members {
		if m.GithubUsername == login {
			return messenger.FormatMention(m.SlackUserID)
		}
	}
	return "@" + login
}

func mrkdwnField(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func mrkdwnSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(mrkdwnField(text), nil, nil)
}

// fieldsSection renders rank fields, or the "-" placeholder when a ranking
// is empty so Slack does not reject an empty fields array.
func fieldsSection(fields []*slack.TextBlockObject) *slack.SectionBlock {
	if len(fields) == 0 {
		fields = []*slack.TextBlockObject{mrkdwnField("-")}
	}
	return slack.NewSectionBlock(nil, fields, nil)
}

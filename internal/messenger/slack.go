package messenger

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackMessenger implements Messenger over the Slack Web API.
type SlackMessenger struct {
	api *slack.Client
}

// NewSlackMessenger creates a messenger from a bot token.
func NewSlackMessenger(botToken string) *SlackMessenger {
	return &SlackMessenger{api: slack.New(botToken)}
}

// Send posts a message, optionally threaded, and returns its handle.
func (m *SlackMessenger) Send(ctx context.Context, msg Message) (Sent, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if len(msg.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(msg.Blocks...))
	}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}

	channel, ts, err := m.api.PostMessageContext(ctx, msg.Channel, opts...)
	if err != nil {
		return Sent{}, fmt.Errorf("post message to %s: %w", msg.Channel, err)
	}
	return Sent{Channel: channel, TS: ts}, nil
}

// Permalink resolves the permanent link for a previously sent message.
func (m *SlackMessenger) Permalink(ctx context.Context, channel, ts string) (string, error) {
	link, err := m.api.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channel,
		Ts:      ts,
	})
	if err != nil {
		return "", fmt.Errorf("get permalink for %s/%s: %w", channel, ts, err)
	}
	return link, nil
}

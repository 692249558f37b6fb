// Package messenger is the outbound chat transport adapter.
//
// Services format message text with the helpers in format.go and hand the
// result to a Messenger. The Slack implementation lives in slack.go; tests
// substitute a fake.
package messenger

import (
	"context"

	"github.com/slack-go/slack"
)

// Message is one outbound chat message. ThreadTS, when set, posts the
// message as a threaded reply under an earlier message.
type Message struct {
	Channel  string
	Text     string
	Blocks   []slack.Block
	ThreadTS string
}

// Sent identifies a delivered message. TS is the opaque thread handle usable
// for later threaded replies.
type Sent struct {
	Channel string
	TS      string
}

// Messenger sends messages and resolves permalinks.
type Messenger interface {
	Send(ctx context.Context, msg Message) (Sent, error)
	Permalink(ctx context.Context, channel, ts string) (string, error)
}

// Package watcher posts channel lifecycle notices to the monitoring channel.
package watcher

import (
	"context"
	"fmt"

	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/messenger"
	"github.com/teamwaffle/wafflebot/internal/models"
)

// Watcher is stateless: one notice per event, nothing persisted.
type Watcher struct {
	messenger messenger.Messenger
	channelID string
	logger    *logging.Logger
}

// New creates a watcher that posts to channelID.
func New(m messenger.Messenger, channelID string, logger *logging.Logger) *Watcher {
	return &Watcher{messenger: m, channelID: channelID, logger: logger}
}

// HandleChannelEvent posts the notice for one lifecycle event. Unknown kinds
// are logged and dropped, never an error.
func (w *Watcher) HandleChannelEvent(ctx context.Context, ev models.ChannelEvent) error {
	var text string
	ref := messenger.FormatChannel(ev.ChannelID)

	switch ev.Kind {
	case models.ChannelArchived:
		text = fmt.Sprintf("%s 채널이 보관되었어요", ref)
	case models.ChannelCreated:
		text = fmt.Sprintf("%s 채널이 생성되었어요", ref)
	case models.ChannelRenamed:
		text = fmt.Sprintf("%s 채널 이름이 변경되었어요", ref)
	case models.ChannelUnarchived:
		text = fmt.Sprintf("%s 채널이 보관 취소되었어요", ref)
	default:
		w.logger.DebugContext(ctx, "unhandled channel event", logging.EventType(string(ev.Kind)))
		return nil
	}

	if _, err := w.messenger.Send(ctx, messenger.Message{Channel: w.channelID, Text: text}); err != nil {
		return fmt.Errorf("send channel notice: %w", err)
	}
	return nil
}

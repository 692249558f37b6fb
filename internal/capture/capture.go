// Package capture reports unexpected errors to an external sink.
//
// Expected failures (bad tokens, malformed payloads, daily-cap denials) never
// reach a sink; only unclassified errors from the router and background
// tasks do.
package capture

import (
	"context"

	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/messenger"
)

// Sink receives unexpected errors. The original error is passed through
// unwrapped so implementations can inspect the chain.
type Sink interface {
	Capture(ctx context.Context, err error)
}

// LogSink writes captured errors to the structured log.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink backed by the structured log.
func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Capture(ctx context.Context, err error) {
	s.logger.ErrorContext(ctx, "unexpected error", logging.Error(err))
}

// SlackSink posts captured errors to a fallback alert channel. Send failures
// are swallowed; alerting on an alert failure has nowhere left to go but the
// log.
type SlackSink struct {
	messenger messenger.Messenger
	channelID string
	logger    *logging.Logger
}

// NewSlackSink creates a sink that posts to channelID.
func NewSlackSink(m messenger.Messenger, channelID string, logger *logging.Logger) *SlackSink {
	return &SlackSink{messenger: m, channelID: channelID, logger: logger}
}

func (s *SlackSink) Capture(ctx context.Context, err error) {
	s.logger.ErrorContext(ctx, "unexpected error", logging.Error(err))

	if s.channelID == "" {
		return
	}
	_, sendErr := s.messenger.Send(ctx, messenger.Message{
		Channel: s.channelID,
		Text:    err.Error(),
	})
	if sendErr != nil {
		s.logger.ErrorContext(ctx, "failed to report error to fallback channel", logging.Error(sendErr))
	}
}

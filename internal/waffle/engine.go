// Package waffle implements the point-gift economy: parsing gift messages,
// enforcing the daily cap, persisting transfers, and notifying participants.
package waffle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/messenger"
	"github.com/teamwaffle/wafflebot/internal/metrics"
	"github.com/teamwaffle/wafflebot/internal/models"
	"github.com/teamwaffle/wafflebot/internal/repository"
)

// DailyMax is the number of points one sender may give per KST day.
const DailyMax = 5

// Engine interprets chat messages as point gifts.
type Engine struct {
	ledger    repository.Ledger
	messenger messenger.Messenger
	logger    *logging.Logger
	now       func() time.Time
}

// NewEngine creates an engine. now is the clock; pass nil for time.Now.
func NewEngine(ledger repository.Ledger, m messenger.Messenger, logger *logging.Logger, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{ledger: ledger, messenger: m, logger: logger, now: now}
}

// HandleMessage processes one chat message. Messages without a gift are a
// silent no-op. A gift over the sender's remaining daily allowance persists
// nothing and sends only a denial message; that is a normal branch, not an
// error.
func (e *Engine) HandleMessage(ctx context.Context, ev models.MessageEvent) error {
	// Edits, bot messages, joins and other subtyped messages are ignored,
	// as are messages with no user.
	if ev.Subtype != "" || ev.User == "" {
		e.logger.DebugContext(ctx, "ignoring message without plain user", logging.EventType(ev.Subtype))
		return nil
	}

	gift := ParseGift(ev.User, ev.Text)
	if gift.Empty() {
		return nil
	}

	now := e.now()
	logs, err := e.ledger.ListRange(ctx, TodayStart(now), now)
	if err != nil {
		return fmt.Errorf("list today's transfers: %w", err)
	}

	given := 0
	for _, l := range logs {
		if l.From == ev.User {
			given += l.Count
		}
	}
	left := DailyMax - given

	href, err := e.messenger.Permalink(ctx, ev.Channel, ev.TS)
	if err != nil {
		return fmt.Errorf("resolve gift permalink: %w", err)
	}

	if left < gift.Total() {
		return e.deny(ctx, ev.User, left, href)
	}
	return e.grant(ctx, ev.User, gift, left, href, now)
}

func (e *Engine) deny(ctx context.Context, sender string, left int, href string) error {
	text := fmt.Sprintf("*You have only %d %s left for today!*", left, waffleWord(left))
	_, err := e.messenger.Send(ctx, messenger.Message{
		Channel: sender,
		Text:    text,
		Blocks:  messenger.LinkButtonSection(text, href),
	})
	if err != nil {
		return fmt.Errorf("send denial: %w", err)
	}
	metrics.WafflesDeniedTotal.Inc()
	return nil
}

func (e *Engine) grant(ctx context.Context, sender string, gift Gift, left int, href string, now time.Time) error {
	mentions := make([]string, len(gift.Targets))
	transfers := make([]models.PointTransfer, len(gift.Targets))
	for i, target := range gift.Targets {
		mentions[i] = messenger.FormatMention(target)
		transfers[i] = models.PointTransfer{
			From:  sender,
			To:    target,
			Count: gift.Count,
			Href:  &href,
			Date:  now,
		}
	}

	outbox := []messenger.Message{{
		Channel: sender,
		Text: fmt.Sprintf("*You Gave %d %s to %s (%d left)*",
			gift.Count, waffleWord(gift.Count), strings.Join(mentions, ","), left-gift.Total()),
	}}
	for _, target := range gift.Targets {
		outbox = append(outbox, messenger.Message{
			Channel: target,
			Text: fmt.Sprintf("*You Received %d %s from %s!*",
				gift.Count, waffleWord(gift.Count), messenger.FormatMention(sender)),
		})
	}

	// Persistence and all notifications fan out together and are joined
	// before returning.
	var wg sync.WaitGroup
	errs := make([]error, len(outbox)+1)

	for i := range outbox {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := outbox[i]
			msg.Blocks = messenger.LinkButtonSection(msg.Text, href)
			_, err := e.messenger.Send(ctx, msg)
			errs[i] = err
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[len(outbox)] = e.ledger.Insert(ctx, transfers)
	}()

	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("grant gift: %w", err)
	}

	metrics.WafflesGivenTotal.Add(float64(gift.Total()))
	return nil
}

func waffleWord(n int) string {
	if n == 1 {
		return "Waffle"
	}
	return "Waffles"
}

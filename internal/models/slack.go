package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks inbound payloads that fail structural validation.
// The router maps it to a 400 response; it is expected bad traffic and is not
// reported to the error-capture sink.
var ErrMalformedPayload = errors.New("malformed payload")

// SlackEnvelope is the outer shape of a Slack event subscription callback.
type SlackEnvelope struct {
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	Challenge string          `json:"challenge,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

// ParseSlackEnvelope decodes the body of a POST /slack/action-endpoint request.
func ParseSlackEnvelope(body []byte) (SlackEnvelope, error) {
	var env SlackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return SlackEnvelope{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return env, nil
}

// ChannelEventKind enumerates the channel lifecycle events the bot watches.
type ChannelEventKind string

const (
	ChannelArchived   ChannelEventKind = "channel_archive"
	ChannelCreated    ChannelEventKind = "channel_created"
	ChannelRenamed    ChannelEventKind = "channel_rename"
	ChannelUnarchived ChannelEventKind = "channel_unarchive"
)

// SlackEvent is the tagged union of inner event shapes the bot understands.
// Exactly one of ChannelEvent, MessageEvent, or UnknownEvent is produced per
// callback; unknown types are never an error.
type SlackEvent interface {
	slackEvent()
}

// ChannelEvent is a channel lifecycle event (create/rename/archive/unarchive).
type ChannelEvent struct {
	Kind      ChannelEventKind
	ChannelID string
}

// MessageEvent is a chat message posted to a channel the bot can see.
type MessageEvent struct {
	User    string
	Text    string
	Channel string
	TS      string
	Subtype string
}

// UnknownEvent is any event type the bot does not handle. Callers log and
// drop it.
type UnknownEvent struct {
	Type string
}

func (ChannelEvent) slackEvent() {}
func (MessageEvent) slackEvent() {}
func (UnknownEvent) slackEvent() {}

// channelRef tolerates Slack's two channel encodings: a bare ID string
// (archive/unarchive) or an object with an id field (created/rename).
type channelRef struct {
	ID string
}

func (c *channelRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		c.ID = id
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	c.ID = obj.ID
	return nil
}

// ParseSlackEvent classifies the inner event of an event callback envelope.
func ParseSlackEvent(raw json.RawMessage) (SlackEvent, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing event", ErrMalformedPayload)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch head.Type {
	case "channel_archive", "channel_created", "channel_rename", "channel_unarchive":
		var ev struct {
			Channel channelRef `json:"channel"`
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return ChannelEvent{Kind: ChannelEventKind(head.Type), ChannelID: ev.Channel.ID}, nil
	case "message":
		var ev struct {
			User    string `json:"user"`
			Text    string `json:"text"`
			Channel string `json:"channel"`
			TS      string `json:"ts"`
			Subtype string `json:"subtype"`
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return MessageEvent{
			User:    ev.User,
			Text:    ev.Text,
			Channel: ev.Channel,
			TS:      ev.TS,
			Subtype: ev.Subtype,
		}, nil
	default:
		return UnknownEvent{Type: head.Type}, nil
	}
}

// SlashCommand is the form-encoded body of a Slack slash command invocation.
type SlashCommand struct {
	Token     string
	Text      string
	UserID    string
	ChannelID string
}

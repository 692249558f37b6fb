package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlackEnvelope(t *testing.T) {
	body := []byte(`{
		"token": "secret",
		"type": "event_callback",
		"event": {"type": "message", "user": "U1", "text": "hi", "channel": "C1", "ts": "1.0"}
	}`)

	env, err := ParseSlackEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, "secret", env.Token)
	assert.Equal(t, "event_callback", env.Type)
	assert.NotEmpty(t, env.Event)
}

func TestParseSlackEnvelope_URLVerification(t *testing.T) {
	env, err := ParseSlackEnvelope([]byte(`{"token":"secret","type":"url_verification","challenge":"abc123"}`))
	require.NoError(t, err)
	assert.Equal(t, "url_verification", env.Type)
	assert.Equal(t, "abc123", env.Challenge)
}

func TestParseSlackEnvelope_Malformed(t *testing.T) {
	_, err := ParseSlackEnvelope([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseSlackEvent_Message(t *testing.T) {
	ev, err := ParseSlackEvent(json.RawMessage(
		`{"type":"message","user":"U1","text":":waffle: <@U2>","channel":"C1","ts":"1.0","subtype":""}`))
	require.NoError(t, err)

	msg, ok := ev.(MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "U1", msg.User)
	assert.Equal(t, ":waffle: <@U2>", msg.Text)
	assert.Equal(t, "C1", msg.Channel)
	assert.Equal(t, "1.0", msg.TS)
}

func TestParseSlackEvent_ChannelCreatedObjectForm(t *testing.T) {
	ev, err := ParseSlackEvent(json.RawMessage(
		`{"type":"channel_created","channel":{"id":"C42","name":"new-channel"}}`))
	require.NoError(t, err)

	ch, ok := ev.(ChannelEvent)
	require.True(t, ok)
	assert.Equal(t, ChannelCreated, ch.Kind)
	assert.Equal(t, "C42", ch.ChannelID)
}

func TestParseSlackEvent_ChannelArchiveStringForm(t *testing.T) {
	ev, err := ParseSlackEvent(json.RawMessage(
		`{"type":"channel_archive","channel":"C42","user":"U1"}`))
	require.NoError(t, err)

	ch, ok := ev.(ChannelEvent)
	require.True(t, ok)
	assert.Equal(t, ChannelArchived, ch.Kind)
	assert.Equal(t, "C42", ch.ChannelID)
}

func TestParseSlackEvent_UnknownTypeIsNotAnError(t *testing.T) {
	ev, err := ParseSlackEvent(json.RawMessage(`{"type":"reaction_added"}`))
	require.NoError(t, err)

	unknown, ok := ev.(UnknownEvent)
	require.True(t, ok)
	assert.Equal(t, "reaction_added", unknown.Type)
}

func TestParseSlackEvent_MissingEvent(t *testing.T) {
	_, err := ParseSlackEvent(nil)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

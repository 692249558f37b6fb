package messenger

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "<@U1>", FormatMention("U1"))
	assert.Equal(t, "<#C1>", FormatChannel("C1"))
	assert.Equal(t, ":waffle:", FormatEmoji("waffle"))
	assert.Equal(t, "*bold*", FormatBold("bold"))
	assert.Equal(t, "```code```", FormatCodeBlock("code"))
}

func TestFormatLink(t *testing.T) {
	assert.Equal(t, "<https://example.com|label>", FormatLink("label", "https://example.com"))
	// Labels are escaped per Slack's rules, URLs are not.
	assert.Equal(t, "<https://example.com|a &amp;b &lt;c&gt;>", FormatLink("a &b <c>", "https://example.com"))
}

func TestLinkButtonSection(t *testing.T) {
	blocks := LinkButtonSection("*You Gave 1 Waffle to <@U2> (4 left)*", "https://slack/p1")
	require.Len(t, blocks, 1)

	section, ok := blocks[0].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "*You Gave 1 Waffle to <@U2> (4 left)*", section.Text.Text)

	require.NotNil(t, section.Accessory)
	button := section.Accessory.ButtonElement
	require.NotNil(t, button)
	assert.Equal(t, "View Message", button.Text.Text)
	assert.Equal(t, "https://slack/p1", button.URL)
}

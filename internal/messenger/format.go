package messenger

import (
	"strings"

	"github.com/slack-go/slack"
)

// Slack mrkdwn formatting helpers shared by all message-producing services.

// FormatMention renders a user mention token for a Slack user ID.
func FormatMention(userID string) string {
	return "<@" + userID + ">"
}

// FormatChannel renders a channel reference token.
func FormatChannel(channelID string) string {
	return "<#" + channelID + ">"
}

// FormatEmoji renders an emoji token.
func FormatEmoji(name string) string {
	return ":" + name + ":"
}

// FormatBold renders bold text.
func FormatBold(text string) string {
	return "*" + text + "*"
}

// FormatLink renders a hyperlink, escaping the label per Slack's rules.
func FormatLink(text, url string) string {
	return "<" + url + "|" + escapeSymbols(text) + ">"
}

// FormatCodeBlock renders a fenced code block.
func FormatCodeBlock(text string) string {
	return "```" + text + "```"
}

func escapeSymbols(text string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(text)
}

// LinkButtonSection builds a mrkdwn section block with a "View Message"
// button pointing at url. Used by gift and denial notifications.
func LinkButtonSection(text, url string) []slack.Block {
	button := slack.NewButtonBlockElement(
		"", "",
		slack.NewTextBlockObject(slack.PlainTextType, "View Message", false, false),
	)
	button.URL = url

	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
		nil,
		slack.NewAccessory(button),
	)
	return []slack.Block{section}
}

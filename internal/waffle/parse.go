package waffle

import (
	"regexp"
	"strings"
)

// Emoji is the point marker counted in message text.
const Emoji = ":waffle:"

var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// Gift is the parsed point-gift intent of a chat message.
type Gift struct {
	// Count is the number of points given to each target.
	Count int
	// Targets are the mentioned user IDs, self excluded, deduplicated,
	// in order of first appearance.
	Targets []string
}

// Total is the number of points the gift would consume from the sender's
// daily allowance.
func (g Gift) Total() int {
	return g.Count * len(g.Targets)
}

// Empty reports whether the message carries no actionable gift.
func (g Gift) Empty() bool {
	return g.Count == 0 || len(g.Targets) == 0
}

// ParseGift extracts the gift intent from message text sent by sender.
func ParseGift(sender, text string) Gift {
	count := strings.Count(text, Emoji)

	var targets []string
	seen := make(map[string]bool)
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		id := match[1]
		if id == sender || seen[id] {
			continue
		}
		seen[id] = true
		targets = append(targets, id)
	}

	return Gift{Count: count, Targets: targets}
}

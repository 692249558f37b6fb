package deploy

import (
	"regexp"
	"strings"
)

// Change is one parsed release-note line of the shape GitHub generates:
//
//	* Fix login redirect by @alice in https://github.com/org/repo/pull/42
type Change struct {
	Content string
	Author  string
	Ref     string
}

var changePattern = regexp.MustCompile(`^[*-]\s+(.+)\s+by\s+@([A-Za-z0-9-]+)\s+in\s+(\S+)\s*$`)

// ParseChanges splits a release body into change lines. Lines that do not
// match the expected shape are dropped, not an error.
func ParseChanges(body string) []Change {
	var changes []Change
	for _, line := range strings.Split(body, "\n") {
		m := changePattern.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
		if m == nil {
			continue
		}
		changes = append(changes, Change{Content: m[1], Author: m[2], Ref: m[3]})
	}
	return changes
}

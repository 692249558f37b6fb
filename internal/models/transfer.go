// Package models defines the wire and storage shapes shared across the bot.
package models

import "time"

// PointTransfer is one row of the append-only waffle ledger.
// Records are created once by the waffle engine and never mutated.
type PointTransfer struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Count int       `json:"count"`
	Href  *string   `json:"href"`
	Date  time.Time `json:"date"`
}

// Member maps a Slack user to a GitHub username.
// Snapshots are fetched fresh from the member directory per operation.
type Member struct {
	SlackUserID    string `json:"slack_id"`
	GithubUsername string `json:"github_id"`
	DisplayName    string `json:"display_name,omitempty"`
}

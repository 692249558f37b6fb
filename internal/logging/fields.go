package logging

import "log/slog"

// Common field names for consistent logging across the bot.
const (
	FieldChannel    = "channel"
	FieldUserID     = "user_id"
	FieldRepository = "repository"
	FieldTag        = "tag"
	FieldWorkflow   = "workflow"
	FieldEventType  = "event_type"
	FieldTask       = "task"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldPort       = "port"
	FieldError      = "error"
)

// Channel returns a slog attribute for a Slack channel ID.
func Channel(id string) slog.Attr {
	return slog.String(FieldChannel, id)
}

// UserID returns a slog attribute for a Slack user ID.
func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

// Repository returns a slog attribute for a GitHub repository name.
func Repository(name string) slog.Attr {
	return slog.String(FieldRepository, name)
}

// Tag returns a slog attribute for a release tag.
func Tag(tag string) slog.Attr {
	return slog.String(FieldTag, tag)
}

// Workflow returns a slog attribute for a workflow name.
func Workflow(name string) slog.Attr {
	return slog.String(FieldWorkflow, name)
}

// EventType returns a slog attribute for an inbound event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Task returns a slog attribute for a background task name.
func Task(name string) slog.Attr {
	return slog.String(FieldTask, name)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Port returns a slog attribute for a listen port.
func Port(port int) slog.Attr {
	return slog.Int(FieldPort, port)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

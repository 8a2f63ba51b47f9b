package contract

import "strings"

type Status string

const (
	StatusQueued     Status = "queued"
	StatusRinging    Status = "ringing"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
	StatusVoicemail  Status = "voicemail"
	StatusBusy       Status = "busy"
	StatusUnknown    Status = "unknown"
)

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCanceled:  {},
	StatusVoicemail: {},
	StatusBusy:      {},
}

// Normalize maps an empty status to unknown. Other values are kept literally.
func (s Status) Normalize() Status {
	trimmed := Status(strings.TrimSpace(string(s)))
	if trimmed == "" {
		return StatusUnknown
	}
	return trimmed
}

// IsTerminal reports whether the platform considers the call finished.
// Unrecognized statuses are not terminal, so the caller keeps polling.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s.Normalize()]
	return ok
}

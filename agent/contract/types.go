package contract

import (
	"encoding/json"
	"strings"
	"time"
)

type CallHandle string

type VoiceOverride struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

// CallRequest is built once per invocation and not changed after submission.
type CallRequest struct {
	Destination   string
	Goal          string
	AssistantID   string
	PhoneNumberID string
	Voice         *VoiceOverride
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns the message body, preferring content over the legacy message field.
func (m Message) Text() string {
	if m.Content != "" {
		return m.Content
	}
	return m.Message
}

// CallSnapshot is a point-in-time view of a call. Every fetch yields a fresh one.
type CallSnapshot struct {
	ID          string         `json:"id"`
	Status      Status         `json:"status"`
	Duration    float64        `json:"duration,omitempty"`
	EndedReason string         `json:"endedReason,omitempty"`
	StartedAt   string         `json:"startedAt,omitempty"`
	Transcript  string         `json:"transcript,omitempty"`
	Analysis    map[string]any `json:"analysis,omitempty"`
	Artifact    map[string]any `json:"artifact,omitempty"`
	Messages    []Message      `json:"messages,omitempty"`

	// Raw is the undecoded response body, kept for raw output modes.
	Raw json.RawMessage `json:"-"`
}

// DecodeSnapshot parses a call payload and keeps the original bytes.
func DecodeSnapshot(raw []byte) (*CallSnapshot, error) {
	var snap CallSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	snap.Raw = append(json.RawMessage(nil), raw...)
	return &snap, nil
}

// OrderSummary is a best-effort annotation. A nil field means "not found".
type OrderSummary struct {
	Total      *string  `json:"total,omitempty"`
	PickupTime *string  `json:"pickup_time,omitempty"`
	Name       *string  `json:"name,omitempty"`
	Items      []string `json:"items"`
	Notes      []string `json:"notes"`
}

func NewOrderSummary() OrderSummary {
	return OrderSummary{Items: []string{}, Notes: []string{}}
}

// HasOrderDetails reports whether the summary carries a total or a pickup time.
func (s *OrderSummary) HasOrderDetails() bool {
	return s != nil && (s.Total != nil || s.PickupTime != nil)
}

type Outcome string

const (
	OutcomeTerminal Outcome = "terminal"
	OutcomeTimeout  Outcome = "timeout"
	// OutcomeFetched marks a single lookup of an existing call, with no waiting.
	OutcomeFetched Outcome = "fetched"
)

// CallRecord is what gets persisted and published once a run finishes.
type CallRecord struct {
	CallID      string        `json:"call_id"`
	Destination string        `json:"destination,omitempty"`
	Goal        string        `json:"goal,omitempty"`
	Status      Status        `json:"status"`
	Outcome     Outcome       `json:"outcome"`
	Summary     *OrderSummary `json:"summary,omitempty"`
	Snapshot    *CallSnapshot `json:"snapshot,omitempty"`
	RawSnapshot string        `json:"raw_snapshot,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewCallRecord builds a record from a finished snapshot.
func NewCallRecord(req *CallRequest, snap *CallSnapshot, outcome Outcome, summary *OrderSummary, now time.Time) *CallRecord {
	rec := &CallRecord{
		Outcome:   outcome,
		Summary:   summary,
		Snapshot:  snap,
		CreatedAt: now.UTC(),
	}
	if req != nil {
		rec.Destination = req.Destination
		rec.Goal = strings.TrimSpace(req.Goal)
	}
	if snap != nil {
		rec.CallID = snap.ID
		rec.Status = snap.Status.Normalize()
		rec.RawSnapshot = string(snap.Raw)
	}
	return rec
}

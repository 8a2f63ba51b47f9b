package contract

import (
	"errors"
	"testing"
	"time"
)

func TestStatusIsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusRinging, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCanceled, true},
		{StatusVoicemail, true},
		{StatusBusy, true},
		{"", false},
		{"forwarding", false},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("Status(%q).IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusNormalize(t *testing.T) {
	t.Parallel()

	if got := Status("").Normalize(); got != StatusUnknown {
		t.Fatalf("Normalize() = %q, want %q", got, StatusUnknown)
	}
	if got := Status("forwarding").Normalize(); got != "forwarding" {
		t.Fatalf("Normalize() = %q, want literal status", got)
	}
}

func TestTransportErrorRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tt := range tests {
		err := &TransportError{Op: "get call", StatusCode: tt.code}
		if got := err.Retryable(); got != tt.want {
			t.Errorf("Retryable() for %d = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := error(&TransportError{Op: "create call", Err: cause})
	if !errors.Is(err, ErrTransport) {
		t.Fatal("errors.Is(err, ErrTransport) = false")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false")
	}
}

func TestMessageText(t *testing.T) {
	t.Parallel()

	if got := (Message{Content: "hi", Message: "old"}).Text(); got != "hi" {
		t.Fatalf("Text() = %q, want %q", got, "hi")
	}
	if got := (Message{Message: "old"}).Text(); got != "old" {
		t.Fatalf("Text() = %q, want %q", got, "old")
	}
}

func TestDecodeSnapshotKeepsRaw(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"id":"call-1","status":"completed","duration":12.5,"messages":[{"role":"bot","message":"hello"}]}`)
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if snap.ID != "call-1" || snap.Status != StatusCompleted || snap.Duration != 12.5 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if string(snap.Raw) != string(raw) {
		t.Fatalf("Raw = %s", snap.Raw)
	}
	if snap.Messages[0].Text() != "hello" {
		t.Fatalf("message text = %q", snap.Messages[0].Text())
	}
}

func TestNewCallRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	snap := &CallSnapshot{ID: "call-1", Raw: []byte(`{"id":"call-1"}`)}
	req := &CallRequest{Destination: "+15551234567", Goal: " order pad thai "}

	rec := NewCallRecord(req, snap, OutcomeTimeout, nil, now)
	if rec.CallID != "call-1" {
		t.Fatalf("CallID = %q", rec.CallID)
	}
	if rec.Status != StatusUnknown {
		t.Fatalf("Status = %q, want unknown", rec.Status)
	}
	if rec.Goal != "order pad thai" {
		t.Fatalf("Goal = %q", rec.Goal)
	}
	if rec.RawSnapshot != `{"id":"call-1"}` {
		t.Fatalf("RawSnapshot = %q", rec.RawSnapshot)
	}
	if !rec.CreatedAt.Equal(now) || rec.CreatedAt.Location() != time.UTC {
		t.Fatalf("CreatedAt = %v", rec.CreatedAt)
	}
}

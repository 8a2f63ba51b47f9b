package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	pollerx "github.com/tanpawarit/vapi-caller/agent/poller"
)

const padThaiTranscript = "AI: Hi, I'd like to order pad thai for pickup.\n" +
	"User: Sure, it will be ready in 15 minutes.\n" +
	"User: Your total is $18.50.\n" +
	"User: Under what name?\n" +
	"AI: Under the name Johnny."

type fakeTransport struct {
	mu        sync.Mutex
	handle    contractx.CallHandle
	createErr error
	statuses  []contractx.Status
	getErr    error
	final     contractx.CallSnapshot

	created []contractx.CallRequest
	fetches int
}

func (f *fakeTransport) CreateCall(ctx context.Context, req contractx.CallRequest) (contractx.CallHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.handle, nil
}

// GetCall walks the status script and repeats the last entry once it runs out.
func (f *fakeTransport) GetCall(ctx context.Context, handle contractx.CallHandle) (*contractx.CallSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.getErr != nil {
		return nil, f.getErr
	}

	status := contractx.StatusUnknown
	if len(f.statuses) > 0 {
		idx := f.fetches - 1
		if idx >= len(f.statuses) {
			idx = len(f.statuses) - 1
		}
		status = f.statuses[idx]
	}

	snap := f.final
	snap.ID = string(handle)
	snap.Status = status
	if !status.IsTerminal() {
		snap.Transcript = ""
	}
	return &snap, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return ctx.Err()
}

type fakeStore struct {
	saveErr error
	saved   []*contractx.CallRecord
}

func (f *fakeStore) Save(ctx context.Context, rec *contractx.CallRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeStore) Load(ctx context.Context, callID string) (*contractx.CallRecord, error) {
	for _, rec := range f.saved {
		if rec.CallID == callID {
			return rec, nil
		}
	}
	return nil, contractx.ErrRecordNotFound
}

type fakeNotifier struct {
	err      error
	notified []*contractx.CallRecord
}

func (f *fakeNotifier) Notify(ctx context.Context, rec *contractx.CallRecord) error {
	f.notified = append(f.notified, rec)
	return f.err
}

func newTestOrchestrator(t *testing.T, transport contractx.Transport, store contractx.RecordStore, notifier contractx.Notifier) *Orchestrator {
	t.Helper()

	clock := newFakeClock()
	o, err := New(transport, nil, store, notifier, Config{
		AssistantID:   "assistant-1",
		PhoneNumberID: "phone-1",
		Poll: pollerx.Options{
			Timeout: pollerx.DefaultTimeout,
			Now:     clock.Now,
			Sleep:   clock.Sleep,
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	o.now = clock.Now
	return o
}

func padThaiTransport() *fakeTransport {
	return &fakeTransport{
		handle: "call-123",
		statuses: []contractx.Status{
			contractx.StatusInProgress,
			contractx.StatusInProgress,
			contractx.StatusCompleted,
		},
		final: contractx.CallSnapshot{
			Duration:    42,
			EndedReason: "customer-ended-call",
			Transcript:  padThaiTranscript,
		},
	}
}

func TestNewRequiresTransport(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, nil, nil, nil, Config{}); err == nil {
		t.Fatal("expected error without transport")
	}
}

func TestCallEndToEnd(t *testing.T) {
	t.Parallel()

	transport := padThaiTransport()
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	o := newTestOrchestrator(t, transport, store, notifier)

	res, err := o.Call(context.Background(), CallInput{Destination: "5551234567", Goal: "order pad thai"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if len(transport.created) != 1 {
		t.Fatalf("CreateCall called %d times, want 1", len(transport.created))
	}
	req := transport.created[0]
	if req.Destination != "+15551234567" {
		t.Fatalf("Destination = %q, want %q", req.Destination, "+15551234567")
	}
	if req.AssistantID != "assistant-1" || req.PhoneNumberID != "phone-1" {
		t.Fatalf("request ids = %q/%q", req.AssistantID, req.PhoneNumberID)
	}
	if transport.fetches != 3 {
		t.Fatalf("GetCall called %d times, want 3", transport.fetches)
	}
	if res.Outcome != contractx.OutcomeTerminal || res.Polls != 3 {
		t.Fatalf("outcome = %q polls = %d", res.Outcome, res.Polls)
	}
	if res.CallID != "call-123" {
		t.Fatalf("CallID = %q", res.CallID)
	}

	for _, want := range []string{"Status: COMPLETED", "Pickup: 15 minutes", "Total: $18.50", "Name: Johnny"} {
		if !strings.Contains(res.Report, want) {
			t.Fatalf("report missing %q:\n%s", want, res.Report)
		}
	}

	if len(store.saved) != 1 || store.saved[0].CallID != "call-123" {
		t.Fatalf("saved = %+v", store.saved)
	}
	if store.saved[0].Summary == nil || *store.saved[0].Summary.Total != "$18.50" {
		t.Fatalf("saved summary = %+v", store.saved[0].Summary)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("notified %d times, want 1", len(notifier.notified))
	}
}

func TestCallWithoutOrderKeywordSkipsExtraction(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, padThaiTransport(), nil, nil)

	res, err := o.Call(context.Background(), CallInput{Destination: "5551234567", Goal: "confirm the appointment"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if res.Summary != nil {
		t.Fatalf("Summary = %+v, want nil", res.Summary)
	}
	if strings.Contains(res.Report, "ORDER SUMMARY") {
		t.Fatalf("report has order section:\n%s", res.Report)
	}
}

func TestCallTimeoutIsNotAnError(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		handle:   "call-slow",
		statuses: []contractx.Status{contractx.StatusInProgress},
	}
	store := &fakeStore{}
	o := newTestOrchestrator(t, transport, store, nil)

	res, err := o.Call(context.Background(), CallInput{Destination: "+445551234567", Goal: "order food", Wait: 10 * time.Second})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if res.Outcome != contractx.OutcomeTimeout {
		t.Fatalf("Outcome = %q, want timeout", res.Outcome)
	}
	if transport.fetches != 3 {
		t.Fatalf("GetCall called %d times, want 3", transport.fetches)
	}
	if !strings.Contains(res.Report, "WARNING") {
		t.Fatalf("report missing timeout warning:\n%s", res.Report)
	}
	if len(store.saved) != 1 || store.saved[0].Outcome != contractx.OutcomeTimeout {
		t.Fatalf("saved = %+v", store.saved)
	}
}

func TestCallZeroTimeoutFetchesOnce(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		handle:   "call-now",
		statuses: []contractx.Status{contractx.StatusInProgress},
	}
	clock := newFakeClock()
	o, err := New(transport, nil, nil, nil, Config{
		Poll: pollerx.Options{Timeout: 0, Now: clock.Now, Sleep: clock.Sleep},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := o.Call(context.Background(), CallInput{Destination: "5551234567", Goal: "order food"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if transport.fetches != 1 {
		t.Fatalf("GetCall called %d times, want 1", transport.fetches)
	}
	if res.Outcome != contractx.OutcomeTimeout {
		t.Fatalf("Outcome = %q, want timeout", res.Outcome)
	}
	if !clock.Now().Equal(newFakeClock().Now()) {
		t.Fatalf("clock advanced to %v, want no waiting", clock.Now())
	}
}

func TestCallCreateErrorStopsPipeline(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		createErr: &contractx.TransportError{Op: "create call", StatusCode: 400, Body: "bad number"},
	}
	o := newTestOrchestrator(t, transport, nil, nil)

	_, err := o.Call(context.Background(), CallInput{Destination: "5551234567", Goal: "order pad thai"})
	if !errors.Is(err, contractx.ErrTransport) {
		t.Fatalf("Call() error = %v, want ErrTransport", err)
	}
	if len(transport.created) != 1 {
		t.Fatalf("CreateCall called %d times, want 1", len(transport.created))
	}
	if transport.fetches != 0 {
		t.Fatalf("GetCall called %d times, want 0", transport.fetches)
	}
}

func TestCallValidationError(t *testing.T) {
	t.Parallel()

	transport := padThaiTransport()
	o := newTestOrchestrator(t, transport, nil, nil)

	_, err := o.Call(context.Background(), CallInput{Destination: "5551234567", Goal: "  "})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Call() error = %v, want ErrValidation", err)
	}
	if len(transport.created) != 0 {
		t.Fatal("CreateCall must not be called on invalid input")
	}
}

func TestCallPersistAndNotifyFailuresAreIgnored(t *testing.T) {
	t.Parallel()

	store := &fakeStore{saveErr: errors.New("db down")}
	notifier := &fakeNotifier{err: errors.New("queue down")}
	o := newTestOrchestrator(t, padThaiTransport(), store, notifier)

	res, err := o.Call(context.Background(), CallInput{Destination: "5551234567", Goal: "order pad thai"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if res.Record == nil || res.Record.CallID != "call-123" {
		t.Fatalf("Record = %+v", res.Record)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("notified %d times, want 1", len(notifier.notified))
	}
}

func TestFetchAlwaysExtracts(t *testing.T) {
	t.Parallel()

	const callID = "6f1d7c3e-58a4-4b0e-9a65-2f9e2d4c1b11"
	transport := padThaiTransport()
	transport.statuses = []contractx.Status{contractx.StatusCompleted}
	notifier := &fakeNotifier{}
	o := newTestOrchestrator(t, transport, nil, notifier)

	res, err := o.Fetch(context.Background(), callID)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if transport.fetches != 1 {
		t.Fatalf("GetCall called %d times, want 1", transport.fetches)
	}
	if len(transport.created) != 0 {
		t.Fatal("Fetch must not create calls")
	}
	if res.Outcome != contractx.OutcomeFetched {
		t.Fatalf("Outcome = %q, want fetched", res.Outcome)
	}
	if res.Summary == nil || res.Summary.PickupTime == nil || *res.Summary.PickupTime != "15 minutes" {
		t.Fatalf("Summary = %+v", res.Summary)
	}
	if len(notifier.notified) != 0 {
		t.Fatal("Fetch must not publish events")
	}
}

func TestFetchRejectsMalformedID(t *testing.T) {
	t.Parallel()

	transport := padThaiTransport()
	o := newTestOrchestrator(t, transport, nil, nil)

	if _, err := o.Fetch(context.Background(), "nope"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Fetch() error = %v, want ErrValidation", err)
	}
	if transport.fetches != 0 {
		t.Fatal("GetCall must not be called for a malformed id")
	}
}

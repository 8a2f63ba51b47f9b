package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	extractx "github.com/tanpawarit/vapi-caller/agent/extract"
	initiatorx "github.com/tanpawarit/vapi-caller/agent/initiator"
	nodex "github.com/tanpawarit/vapi-caller/agent/nodes/orchestrator"
	pollerx "github.com/tanpawarit/vapi-caller/agent/poller"
)

type Result = nodex.GraphOutput

type Config struct {
	AssistantID   string
	PhoneNumberID string
	VoiceProvider string
	// Poll.Timeout is used as given; zero means a single status fetch.
	Poll pollerx.Options
}

// CallInput describes one outbound call. Wait overrides Config.Poll.Timeout when positive.
type CallInput struct {
	Destination string
	Goal        string
	Voice       string
	Wait        time.Duration
}

type Orchestrator struct {
	transport contractx.Transport
	extractor contractx.Extractor
	store     contractx.RecordStore
	notifier  contractx.Notifier

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	initOpts initiatorx.Options
	poll     pollerx.Options

	now func() time.Time
}

func New(
	transport contractx.Transport,
	extractor contractx.Extractor,
	store contractx.RecordStore,
	notifier contractx.Notifier,
	cfg Config,
) (*Orchestrator, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if extractor == nil {
		extractor = extractx.NewHeuristic()
	}
	if store == nil {
		store = noopRecordStore{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	o := &Orchestrator{
		transport: transport,
		extractor: extractor,
		store:     store,
		notifier:  notifier,
		initOpts: initiatorx.Options{
			AssistantID:   cfg.AssistantID,
			PhoneNumberID: cfg.PhoneNumberID,
			VoiceProvider: cfg.VoiceProvider,
		},
		poll: cfg.Poll,
		now:  time.Now,
	}

	graphRunner, err := o.compileCallGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Call places a call, waits for it to finish and returns the report.
// A wait that times out is not an error; check Result.Outcome.
func (o *Orchestrator) Call(ctx context.Context, in CallInput) (Result, error) {
	return o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Mode:        nodex.ModeCall,
		Destination: in.Destination,
		Goal:        in.Goal,
		Voice:       in.Voice,
		Wait:        in.Wait,
	})
}

// Fetch looks up an existing call once and always extracts an order summary.
func (o *Orchestrator) Fetch(ctx context.Context, callID string) (Result, error) {
	return o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Mode:   nodex.ModeFetch,
		CallID: callID,
	})
}

type noopRecordStore struct{}

func (noopRecordStore) Save(context.Context, *contractx.CallRecord) error {
	return nil
}

func (noopRecordStore) Load(context.Context, string) (*contractx.CallRecord, error) {
	return nil, contractx.ErrRecordNotFound
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, *contractx.CallRecord) error {
	return nil
}

package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	initiatorx "github.com/tanpawarit/vapi-caller/agent/initiator"
	vapix "github.com/tanpawarit/vapi-caller/pkg/vapi"
)

type Mode string

const (
	// ModeCall places a new call and waits for it to finish.
	ModeCall Mode = "call"
	// ModeFetch looks up an existing call once.
	ModeFetch Mode = "fetch"
)

type GraphInput struct {
	Mode        Mode
	Destination string
	Goal        string
	Voice       string
	CallID      string
	// Wait overrides the poll timeout for ModeCall when positive.
	Wait time.Duration
}

type GraphOutput struct {
	CallID   string
	Snapshot *contractx.CallSnapshot
	Outcome  contractx.Outcome
	Polls    int
	Summary  *contractx.OrderSummary
	Record   *contractx.CallRecord
	Report   string
}

type GraphState struct {
	Mode Mode
	Now  time.Time
	Wait time.Duration

	Request *contractx.CallRequest
	Handle  contractx.CallHandle

	Snapshot *contractx.CallSnapshot
	Outcome  contractx.Outcome
	Polls    int

	Summary *contractx.OrderSummary
	Record  *contractx.CallRecord
}

func ValidateRequest(in GraphInput, opts initiatorx.Options, nowFn func() time.Time) (*GraphState, error) {
	mode := in.Mode
	if mode == "" {
		mode = ModeCall
	}

	st := &GraphState{
		Mode: mode,
		Now:  nowFn().UTC(),
		Wait: in.Wait,
	}

	switch mode {
	case ModeCall:
		opts.Voice = in.Voice
		req, err := initiatorx.BuildRequest(in.Destination, in.Goal, opts)
		if err != nil {
			return nil, err
		}
		st.Request = &req
	case ModeFetch:
		callID := strings.TrimSpace(in.CallID)
		if callID == "" {
			return nil, fmt.Errorf("%w: call id is empty", contractx.ErrValidation)
		}
		if err := vapix.ValidateID("call id", callID); err != nil {
			return nil, err
		}
		st.Handle = contractx.CallHandle(callID)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", contractx.ErrValidation, mode)
	}
	return st, nil
}

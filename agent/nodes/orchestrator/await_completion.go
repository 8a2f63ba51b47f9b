package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	pollerx "github.com/tanpawarit/vapi-caller/agent/poller"
)

func AwaitCompletion(ctx context.Context, in *GraphState, transport contractx.Transport, opts pollerx.Options) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Mode == ModeFetch {
		snap, err := transport.GetCall(ctx, in.Handle)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, &contractx.TransportError{Op: "get call", Err: fmt.Errorf("empty snapshot for %s", in.Handle)}
		}
		in.Snapshot = snap
		in.Outcome = contractx.OutcomeFetched
		in.Polls = 1
		return in, nil
	}

	if in.Wait > 0 {
		opts.Timeout = in.Wait
	}
	p, err := pollerx.New(transport, opts)
	if err != nil {
		return nil, err
	}

	res, err := p.Wait(ctx, in.Handle)
	if err != nil {
		return nil, err
	}
	if res.TimedOut() {
		log.Warn().Str("call_id", string(in.Handle)).
			Str("status", string(res.Snapshot.Status.Normalize())).
			Int("polls", res.Polls).
			Msg("call did not finish before the wait timeout")
	}
	in.Snapshot = res.Snapshot
	in.Outcome = res.Outcome
	in.Polls = res.Polls
	return in, nil
}

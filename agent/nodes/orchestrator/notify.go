package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

// NotifyCompletion announces calls placed by this run. Lookups are not announced.
func NotifyCompletion(ctx context.Context, in *GraphState, notifier contractx.Notifier) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Mode != ModeCall || in.Record == nil {
		return in, nil
	}

	if err := notifier.Notify(ctx, in.Record); err != nil {
		log.Warn().Err(err).Str("call_id", in.Record.CallID).Msg("failed to publish call event")
	}
	return in, nil
}

package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	initiatorx "github.com/tanpawarit/vapi-caller/agent/initiator"
)

// InitiateCall submits the call in ModeCall. ModeFetch already carries its handle.
func InitiateCall(ctx context.Context, in *GraphState, transport contractx.Transport) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Mode != ModeCall {
		return in, nil
	}
	if in.Request == nil {
		return nil, fmt.Errorf("%w: call request is missing", contractx.ErrValidation)
	}

	log.Info().Str("destination", in.Request.Destination).Str("goal", in.Request.Goal).Msg("initiating call")

	handle, err := initiatorx.Initiate(ctx, transport, *in.Request)
	if err != nil {
		return nil, err
	}
	in.Handle = handle

	log.Info().Str("call_id", string(handle)).Msg("call initiated")
	return in, nil
}

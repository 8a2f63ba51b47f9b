package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	summaryx "github.com/tanpawarit/vapi-caller/agent/summary"
)

func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Snapshot == nil {
		return GraphOutput{}, fmt.Errorf("%w: snapshot is missing", contractx.ErrValidation)
	}

	return GraphOutput{
		CallID:   string(in.Handle),
		Snapshot: in.Snapshot,
		Outcome:  in.Outcome,
		Polls:    in.Polls,
		Summary:  in.Summary,
		Record:   in.Record,
		Report:   summaryx.Format(in.Snapshot, in.Summary, in.Outcome),
	}, nil
}

package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

// PersistRecord stores the finished call. A failed save is logged and the run continues.
func PersistRecord(ctx context.Context, in *GraphState, store contractx.RecordStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot is missing", contractx.ErrValidation)
	}

	rec := contractx.NewCallRecord(in.Request, in.Snapshot, in.Outcome, in.Summary, in.Now)
	if rec.CallID == "" {
		rec.CallID = string(in.Handle)
	}
	in.Record = rec

	if err := store.Save(ctx, rec); err != nil {
		log.Warn().Err(err).Str("call_id", rec.CallID).Msg("failed to persist call record")
	}
	return in, nil
}

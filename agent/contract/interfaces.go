package contract

import "context"

// Transport is the call-control service as seen by the orchestrator.
type Transport interface {
	CreateCall(ctx context.Context, req CallRequest) (CallHandle, error)
	GetCall(ctx context.Context, handle CallHandle) (*CallSnapshot, error)
}

type Extractor interface {
	Extract(ctx context.Context, transcript string) OrderSummary
}

type RecordStore interface {
	Save(ctx context.Context, rec *CallRecord) error
	Load(ctx context.Context, callID string) (*CallRecord, error)
}

type Notifier interface {
	Notify(ctx context.Context, rec *CallRecord) error
}

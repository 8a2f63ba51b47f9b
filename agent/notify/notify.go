// Package notify announces finished calls to downstream consumers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	qstashx "github.com/tanpawarit/vapi-caller/pkg/qstash"
)

type publisher interface {
	Publish(ctx context.Context, payload any) (*qstashx.PublishResponse, error)
}

// Event is the message body delivered for each finished call.
type Event struct {
	Type        string                  `json:"type"`
	CallID      string                  `json:"call_id"`
	Destination string                  `json:"destination,omitempty"`
	Goal        string                  `json:"goal,omitempty"`
	Status      contractx.Status        `json:"status"`
	Outcome     contractx.Outcome       `json:"outcome"`
	Summary     *contractx.OrderSummary `json:"summary,omitempty"`
	CreatedAt   string                  `json:"created_at"`
}

const eventCallFinished = "call.finished"

type QStashNotifier struct {
	client publisher
}

func NewQStash(client publisher) (*QStashNotifier, error) {
	if client == nil {
		return nil, errors.New("qstash client is required")
	}
	return &QStashNotifier{client: client}, nil
}

func (n *QStashNotifier) Notify(ctx context.Context, rec *contractx.CallRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", contractx.ErrValidation)
	}

	resp, err := n.client.Publish(ctx, NewEvent(rec))
	if err != nil {
		return fmt.Errorf("publish call event: %w", err)
	}
	log.Debug().Str("call_id", rec.CallID).Str("message_id", resp.MessageID).Msg("call event published")
	return nil
}

func NewEvent(rec *contractx.CallRecord) Event {
	return Event{
		Type:        eventCallFinished,
		CallID:      rec.CallID,
		Destination: rec.Destination,
		Goal:        rec.Goal,
		Status:      rec.Status,
		Outcome:     rec.Outcome,
		Summary:     rec.Summary,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

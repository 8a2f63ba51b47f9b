package extract

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

type fieldExtractor interface {
	Extract(ctx context.Context, transcript string) (contractx.OrderSummary, error)
}

var _ contractx.Extractor = (*Chain)(nil)

// Chain runs the heuristic first and asks the model only for fields it left empty.
// Model failures are logged and the heuristic result is kept.
type Chain struct {
	heuristic *Heuristic
	model     fieldExtractor
	logger    *zerolog.Logger
}

func NewChain(heuristic *Heuristic, model fieldExtractor) *Chain {
	if heuristic == nil {
		heuristic = NewHeuristic()
	}
	return &Chain{heuristic: heuristic, model: model}
}

func (c *Chain) WithLogger(logger *zerolog.Logger) *Chain {
	c.logger = logger
	return c
}

func (c *Chain) Extract(ctx context.Context, transcript string) contractx.OrderSummary {
	summary := c.heuristic.extract(transcript)
	if c.model == nil || complete(summary) {
		return summary
	}

	fromModel, err := c.model.Extract(ctx, transcript)
	if err != nil {
		c.log().Warn().Err(err).Msg("model order extraction failed, keeping heuristic result")
		return summary
	}

	if summary.Total == nil {
		summary.Total = fromModel.Total
	}
	if summary.PickupTime == nil {
		summary.PickupTime = fromModel.PickupTime
	}
	if summary.Name == nil {
		summary.Name = fromModel.Name
	}
	if len(summary.Items) == 0 && len(fromModel.Items) > 0 {
		summary.Items = append([]string{}, fromModel.Items...)
	}
	return summary
}

func complete(s contractx.OrderSummary) bool {
	return s.Total != nil && s.PickupTime != nil && s.Name != nil
}

func (c *Chain) log() *zerolog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return &log.Logger
}

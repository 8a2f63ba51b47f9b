package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

// OrderKeywords gate extraction in ModeCall. A goal mentioning none of them is
// not an ordering call and gets no order section.
var OrderKeywords = []string{"order", "food", "restaurant", "curry", "pad thai"}

// ShouldExtract reports whether an order summary is worth computing.
func ShouldExtract(mode Mode, goal, transcript string) bool {
	if strings.TrimSpace(transcript) == "" {
		return false
	}
	if mode == ModeFetch {
		return true
	}

	goal = strings.ToLower(goal)
	for _, keyword := range OrderKeywords {
		if strings.Contains(goal, keyword) {
			return true
		}
	}
	return false
}

func ExtractOrder(ctx context.Context, in *GraphState, extractor contractx.Extractor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Snapshot == nil {
		return in, nil
	}

	goal := ""
	if in.Request != nil {
		goal = in.Request.Goal
	}
	if !ShouldExtract(in.Mode, goal, in.Snapshot.Transcript) {
		return in, nil
	}

	summary := extractor.Extract(ctx, in.Snapshot.Transcript)
	in.Summary = &summary
	return in, nil
}

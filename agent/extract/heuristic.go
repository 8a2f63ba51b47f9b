package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

// DefaultKnownNames is used when no names are configured.
var DefaultKnownNames = []string{"Johnny"}

var (
	amountPattern = regexp.MustCompile(`\$?(\d+\.?\d*)`)
	pickupPattern = regexp.MustCompile(`(\d+)[\s-]?(minute|min|hour)`)

	totalKeywords  = []string{"total", "$", "dollar", "price"}
	pickupKeywords = []string{"pickup", "pick up", "ready", "minute", "hour"}
)

// totalThreshold separates a plausible order total from quantities and per-item prices.
const totalThreshold = 5.0

var _ contractx.Extractor = (*Heuristic)(nil)

// Heuristic scans a transcript line by line for an order total, a pickup time and
// the name the order was placed under. It never fills Items or Notes.
type Heuristic struct {
	knownNames []string
}

// NewHeuristic recognizes the given names in "under the name ..." lines.
// With no names it falls back to DefaultKnownNames.
func NewHeuristic(knownNames ...string) *Heuristic {
	names := make([]string, 0, len(knownNames))
	for _, n := range knownNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		names = append(names, DefaultKnownNames...)
	}
	return &Heuristic{knownNames: names}
}

func (h *Heuristic) Extract(_ context.Context, transcript string) contractx.OrderSummary {
	return h.extract(transcript)
}

// extractOrderSummary runs the heuristic with the default known names.
func extractOrderSummary(transcript string) contractx.OrderSummary {
	return NewHeuristic().extract(transcript)
}

func (h *Heuristic) extract(transcript string) contractx.OrderSummary {
	summary := contractx.NewOrderSummary()

	for _, line := range strings.Split(strings.ToLower(transcript), "\n") {
		if summary.Total == nil && containsAny(line, totalKeywords) {
			if total, ok := findTotal(line); ok {
				summary.Total = &total
			}
		}

		if containsAny(line, pickupKeywords) {
			if m := pickupPattern.FindStringSubmatch(line); m != nil {
				pickup := m[1] + " " + m[2] + "s"
				summary.PickupTime = &pickup
			}
		}

		if name, ok := h.findName(line); ok {
			summary.Name = &name
		}
	}

	return summary
}

func findTotal(line string) (string, bool) {
	for _, m := range amountPattern.FindAllStringSubmatch(line, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if value > totalThreshold {
			return "$" + m[1], true
		}
	}
	return "", false
}

func (h *Heuristic) findName(line string) (string, bool) {
	if !strings.Contains(line, "under") {
		return "", false
	}
	gated := strings.Contains(line, "name")
	if !gated {
		for _, n := range h.knownNames {
			if strings.Contains(line, strings.ToLower(n)) {
				gated = true
				break
			}
		}
	}
	if !gated {
		return "", false
	}
	for _, n := range h.knownNames {
		if strings.Contains(line, strings.ToLower(n)) {
			return n, true
		}
	}
	return "", false
}

func containsAny(line string, words []string) bool {
	for _, w := range words {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

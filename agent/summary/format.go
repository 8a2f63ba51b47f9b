// Package summary renders a finished call into a sectioned text report.
package summary

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

const (
	width = 60
	na    = "N/A"
)

var (
	heavyRule = strings.Repeat("=", width)
	lightRule = strings.Repeat("-", width)
)

// Format renders the snapshot. Sections without data are left out; order is fixed:
// header, transcript, order summary, analysis, structured output, messages.
// order may be nil. The order section appears only with a total or a pickup time.
func Format(snap *contractx.CallSnapshot, order *contractx.OrderSummary, outcome contractx.Outcome) string {
	if snap == nil {
		snap = &contractx.CallSnapshot{}
	}

	var b strings.Builder
	writeHeader(&b, snap, outcome)

	if snap.Transcript != "" {
		section(&b, "TRANSCRIPT")
		b.WriteString(snap.Transcript)
		b.WriteString("\n\n")
	}

	if order.HasOrderDetails() {
		section(&b, "ORDER SUMMARY (Auto-extracted)")
		if len(order.Items) > 0 {
			fmt.Fprintf(&b, "Items: %s\n", strings.Join(order.Items, ", "))
		}
		if order.Total != nil {
			fmt.Fprintf(&b, "Total: %s\n", *order.Total)
		}
		if order.PickupTime != nil {
			fmt.Fprintf(&b, "Pickup: %s\n", *order.PickupTime)
		}
		if order.Name != nil {
			fmt.Fprintf(&b, "Name: %s\n", *order.Name)
		}
		b.WriteString("\n")
	}

	if len(snap.Analysis) > 0 {
		section(&b, "ANALYSIS")
		b.WriteString(indentJSON(snap.Analysis))
		b.WriteString("\n\n")
	}

	if len(snap.Artifact) > 0 {
		section(&b, "STRUCTURED OUTPUT")
		b.WriteString(indentJSON(snap.Artifact))
		b.WriteString("\n\n")
	}

	if len(snap.Messages) > 0 {
		section(&b, "MESSAGES")
		for _, msg := range snap.Messages {
			role := msg.Role
			if role == "" {
				role = "unknown"
			}
			fmt.Fprintf(&b, "[%s]: %s\n", strings.ToUpper(role), msg.Text())
		}
		b.WriteString("\n")
	}

	b.WriteString(heavyRule)
	return b.String()
}

func writeHeader(b *strings.Builder, snap *contractx.CallSnapshot, outcome contractx.Outcome) {
	b.WriteString(heavyRule + "\n")
	b.WriteString("VAPI CALL SUMMARY\n")
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(b, "Status: %s\n", strings.ToUpper(string(snap.Status.Normalize())))
	fmt.Fprintf(b, "Call ID: %s\n", orNA(snap.ID))
	if snap.StartedAt != "" {
		fmt.Fprintf(b, "Started: %s\n", snap.StartedAt)
	}
	fmt.Fprintf(b, "Duration: %s seconds\n", strconv.FormatFloat(snap.Duration, 'f', -1, 64))
	fmt.Fprintf(b, "Ended Reason: %s\n", orNA(snap.EndedReason))
	if outcome == contractx.OutcomeTimeout {
		b.WriteString("WARNING: call did not reach a terminal status before the wait timed out\n")
	}
	b.WriteString("\n")
}

func section(b *strings.Builder, title string) {
	b.WriteString(lightRule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(lightRule + "\n")
}

func indentJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return na
	}
	return s
}

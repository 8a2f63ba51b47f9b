package extract

import (
	"context"
	"reflect"
	"testing"
)

func strValue(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestExtractTotalThreshold(t *testing.T) {
	t.Parallel()

	if got := extractOrderSummary("total $4.50"); got.Total != nil {
		t.Fatalf("Total = %q, want unset for 4.50", *got.Total)
	}
	got := extractOrderSummary("total $12.00")
	if strValue(got.Total) != "$12.00" {
		t.Fatalf("Total = %s, want $12.00", strValue(got.Total))
	}
}

func TestExtractTotalSkipsSmallAmountsOnSameLine(t *testing.T) {
	t.Parallel()

	got := extractOrderSummary("That's 2 items, the price comes to 23.75")
	if strValue(got.Total) != "$23.75" {
		t.Fatalf("Total = %s, want $23.75", strValue(got.Total))
	}
}

func TestExtractTotalFirstQualifyingLineWins(t *testing.T) {
	t.Parallel()

	transcript := "User: pad thai is $14\nAI: and the total with tax is $15.80"
	got := extractOrderSummary(transcript)
	if strValue(got.Total) != "$14" {
		t.Fatalf("Total = %s, want $14", strValue(got.Total))
	}
}

func TestExtractTotalNeedsKeyword(t *testing.T) {
	t.Parallel()

	if got := extractOrderSummary("we have 25 tables"); got.Total != nil {
		t.Fatalf("Total = %s, want unset", *got.Total)
	}
}

func TestExtractPickupTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		transcript string
		want       string
	}{
		{"It'll be ready in 15 minutes", "15 minutes"},
		{"pickup in 20-min", "20 mins"},
		{"Ready in about 1 hour", "1 hours"},
		{"pick up in 10min", "10 mins"},
	}
	for _, tc := range cases {
		got := extractOrderSummary(tc.transcript)
		if strValue(got.PickupTime) != tc.want {
			t.Errorf("PickupTime(%q) = %s, want %s", tc.transcript, strValue(got.PickupTime), tc.want)
		}
	}
}

func TestExtractPickupTimeLastLineWins(t *testing.T) {
	t.Parallel()

	transcript := "ready in 15 minutes\nsorry, make that ready in 25 minutes"
	got := extractOrderSummary(transcript)
	if strValue(got.PickupTime) != "25 minutes" {
		t.Fatalf("PickupTime = %s, want 25 minutes", strValue(got.PickupTime))
	}
}

func TestExtractNameRule(t *testing.T) {
	t.Parallel()

	if got := extractOrderSummary("under the name Johnny"); strValue(got.Name) != "Johnny" {
		t.Fatalf("Name = %s, want Johnny", strValue(got.Name))
	}
	if got := extractOrderSummary("under the name Cosmo"); got.Name != nil {
		t.Fatalf("Name = %s, want unset", *got.Name)
	}
	if got := extractOrderSummary("Johnny will pick it up"); got.Name != nil {
		t.Fatalf("Name = %s, want unset without 'under'", *got.Name)
	}
}

func TestExtractConfiguredNames(t *testing.T) {
	t.Parallel()

	h := NewHeuristic("Cosmo", "Johnny")
	got := h.Extract(context.Background(), "put it under Cosmo please")
	if strValue(got.Name) != "Cosmo" {
		t.Fatalf("Name = %s, want Cosmo", strValue(got.Name))
	}
}

func TestExtractNeverFillsItemsOrNotes(t *testing.T) {
	t.Parallel()

	got := extractOrderSummary("one pad thai and two spring rolls, total $18.50")
	if got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("Items = %#v, want empty", got.Items)
	}
	if got.Notes == nil || len(got.Notes) != 0 {
		t.Fatalf("Notes = %#v, want empty", got.Notes)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	t.Parallel()

	transcript := "AI: Hi, I'd like to order pad thai.\nUser: Sure, under what name?\nAI: Under the name Johnny.\n" +
		"User: It'll be ready for pickup in 15 minutes.\nUser: Your total is $18.50."
	h := NewHeuristic()
	first := h.Extract(context.Background(), transcript)
	second := h.Extract(context.Background(), transcript)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Extract() not idempotent: %#v vs %#v", first, second)
	}
	if strValue(first.Total) != "$18.50" || strValue(first.PickupTime) != "15 minutes" || strValue(first.Name) != "Johnny" {
		t.Fatalf("unexpected summary: total=%s pickup=%s name=%s",
			strValue(first.Total), strValue(first.PickupTime), strValue(first.Name))
	}
}

package prompt

import (
	"strings"
	"testing"
)

func TestOrderExtractionRendersNames(t *testing.T) {
	t.Parallel()

	got := LoadPromptSet().OrderExtraction([]string{"Johnny", " ", "Cosmo"})
	if !strings.Contains(got, `"Johnny", "Cosmo"`) {
		t.Fatalf("prompt does not list names: %s", got)
	}
	if strings.Contains(got, "{{known_names}}") {
		t.Fatal("placeholder not replaced")
	}
}

func TestOrderExtractionWithoutNames(t *testing.T) {
	t.Parallel()

	got := LoadPromptSet().OrderExtraction(nil)
	if !strings.Contains(got, "these names: none") {
		t.Fatalf("unexpected prompt: %s", got)
	}
}

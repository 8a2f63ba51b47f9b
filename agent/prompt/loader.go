package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/order_extraction.txt
	orderExtractionRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	orderExtraction string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		orderExtraction: strings.TrimSpace(orderExtractionRaw),
	}
}

// OrderExtraction renders the extraction prompt for the given expected names.
func (p PromptSet) OrderExtraction(knownNames []string) string {
	names := make([]string, 0, len(knownNames))
	for _, n := range knownNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, `"`+n+`"`)
		}
	}
	list := "none"
	if len(names) > 0 {
		list = strings.Join(names, ", ")
	}
	return strings.ReplaceAll(p.orderExtraction, "{{known_names}}", list)
}

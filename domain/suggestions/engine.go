// Package suggestions proposes child labels for a selected idea.
package suggestions

// MaxSuggestions bounds the number of labels returned for one idea
const MaxSuggestions = 4

var fallback = []string{"New Idea", "Related Concept", "Example", "Sub-category"}

var curated = map[string][]string{
	"Central Idea":    {"Feature 1", "User Benefits", "Technical Stack", "Business Model"},
	"Feature 1":       {"Drag & Drop", "Real-time Updates", "Export Options"},
	"User Benefits":   {"Improved Productivity", "Visual Organization", "Brainstorming Tool"},
	"Technical Stack": {"Front-end", "Back-end", "Database", "AI Components"},
	"Business Model":  {"Freemium", "Subscription", "Enterprise"},
	"Drag & Drop":     {"Touch Support", "Multi-select", "Grouping"},
	"Export Options":  {"PNG", "PDF", "SVG", "JSON"},
	"AI Components":   {"NLP Processing", "Suggestion Engine", "Auto-layout"},
}

// Engine maps an idea's label to proposed child labels.
// Lookups are exact and case-sensitive.
type Engine struct {
	table map[string][]string
}

// NewEngine returns an engine over the built-in table
func NewEngine() *Engine {
	return &Engine{table: curated}
}

// Generate returns at most MaxSuggestions labels for label, or the generic
// fallback when the label has no entry. The result is a fresh slice.
func (e *Engine) Generate(label string) []string {
	src, ok := e.table[label]
	if !ok {
		src = fallback
	}
	if len(src) > MaxSuggestions {
		src = src[:MaxSuggestions]
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Known reports whether label has a curated entry
func (e *Engine) Known(label string) bool {
	_, ok := e.table[label]
	return ok
}

// Fallback returns a copy of the generic suggestions
func Fallback() []string {
	out := make([]string, len(fallback))
	copy(out, fallback)
	return out
}

package suggestions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  []string
	}{
		{
			name:  "root label",
			label: "Central Idea",
			want:  []string{"Feature 1", "User Benefits", "Technical Stack", "Business Model"},
		},
		{
			name:  "feature branch",
			label: "Feature 1",
			want:  []string{"Drag & Drop", "Real-time Updates", "Export Options"},
		},
		{
			name:  "export formats",
			label: "Export Options",
			want:  []string{"PNG", "PDF", "SVG", "JSON"},
		},
		{
			name:  "unknown label uses fallback",
			label: "Quantum Gardening",
			want:  []string{"New Idea", "Related Concept", "Example", "Sub-category"},
		},
		{
			name:  "lookup is case sensitive",
			label: "feature 1",
			want:  []string{"New Idea", "Related Concept", "Example", "Sub-category"},
		},
		{
			name:  "empty label uses fallback",
			label: "",
			want:  []string{"New Idea", "Related Concept", "Example", "Sub-category"},
		},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Generate(tt.label)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), MaxSuggestions)
		})
	}
}

func TestGenerateIsDeterministicAndIsolated(t *testing.T) {
	e := NewEngine()

	first := e.Generate("Feature 1")
	first[0] = "mutated"
	assert.Equal(t, []string{"Drag & Drop", "Real-time Updates", "Export Options"}, e.Generate("Feature 1"))

	fb := e.Generate("nothing here")
	fb[0] = "mutated"
	assert.Equal(t, "New Idea", e.Generate("nothing here")[0])
	assert.Equal(t, "New Idea", Fallback()[0])
}

func TestKnown(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.Known("AI Components"))
	assert.False(t, e.Known("PNG"))
}

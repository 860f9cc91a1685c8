package domain

// Question is a single prompt in the questionnaire. The ID is stable across
// sessions and releases; Text is display-only and may be reworded without
// invalidating answers already keyed by ID.
type Question struct {
	ID   int
	Text string
}

// Catalog is the ordered list of prompts presented to a visitor. It is fixed
// at process start and never mutated.
type Catalog []Question

// DefaultCatalog returns the seven questions asked of every visitor.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: 1, Text: "What GenAI tool(s) did you use?"},
		{ID: 2, Text: "How did you use it in your teaching or assessment?"},
		{ID: 3, Text: "What were your goals or intended outcomes?"},
		{ID: 4, Text: "What was the observed impact?"},
		{ID: 5, Text: "What challenges or concerns did you face?"},
		{ID: 6, Text: "What would you do differently next time?"},
		{ID: 7, Text: "Do you have any advice for others wanting to try this?"},
	}
}

func (c Catalog) Len() int {
	return len(c)
}

// At returns the question at position i, or false when i is out of range.
func (c Catalog) At(i int) (Question, bool) {
	if i < 0 || i >= len(c) {
		return Question{}, false
	}
	return c[i], true
}

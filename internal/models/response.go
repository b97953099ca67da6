package models

// Candidate represents a single response candidate from Gemini
type Candidate struct {
	Text         string
	FinishReason string
}

// ModelOutput represents a generateContent response
type ModelOutput struct {
	Candidates []Candidate
	ModelName  string
}

// Text returns the first candidate's text
func (m *ModelOutput) Text() string {
	if m == nil || len(m.Candidates) == 0 {
		return ""
	}
	return m.Candidates[0].Text
}

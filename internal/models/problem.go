package models

import "strings"

// ProblemContext is a snapshot of the problem page, read fresh on every chat turn
type ProblemContext struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CurrentAnswer string `json:"currentAnswer"`
}

// IsEmpty reports whether nothing at all was scraped
func (p ProblemContext) IsEmpty() bool {
	return strings.TrimSpace(p.Title) == "" &&
		strings.TrimSpace(p.Description) == "" &&
		strings.TrimSpace(p.CurrentAnswer) == ""
}

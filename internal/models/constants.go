// Package models contains data types and constants shared across leety.
package models

// Endpoints for the Gemini REST API
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	APIVersion     = "v1beta"

	// PathListModels is the lightweight request used to verify an API key
	PathListModels = "/" + APIVersion + "/models"
)

// Header carrying the API key on every request
const HeaderAPIKey = "x-goog-api-key"

// Model names
const (
	Model25Flash = "gemini-2.5-flash"
	Model25Pro   = "gemini-2.5-pro"

	DefaultModel = Model25Flash
)

// CredentialName is the fixed storage key of the API key
const CredentialName = "apiKey"

// AllModels returns the model names offered by the config command
func AllModels() []string {
	return []string{Model25Flash, Model25Pro}
}

// GeneratePath returns the generateContent path for a model
func GeneratePath(model string) string {
	if model == "" {
		model = DefaultModel
	}
	return "/" + APIVersion + "/models/" + model + ":generateContent"
}

// DefaultHeaders returns the default headers for Gemini REST requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "leety/0.1 (+https://github.com/diogo/leety)",
	}
}

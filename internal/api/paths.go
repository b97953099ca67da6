package api

// gjson paths into Gemini REST responses
const (
	PathCandidates   = "candidates"
	PathFirstText    = "candidates.0.content.parts.0.text"
	PathFinishReason = "finishReason"
	PathCandText     = "content.parts.0.text"
	PathBlockReason  = "promptFeedback.blockReason"
	PathModelVersion = "modelVersion"

	PathErrorMessage = "error.message"
	PathErrorStatus  = "error.status"
	PathErrorReasons = "error.details.#.reason"
)

// errorBodyLimit caps how much of a failed response is kept for diagnostics
const errorBodyLimit = 4096

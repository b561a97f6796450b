// Package pipeline orchestrates the lead-to-quote flow: retrieve context,
// draft the quote, render the document, stage the email draft.
package pipeline

// Stage identifies where a run currently is, or where it failed.
type Stage string

const (
	StageReceived       Stage = "received"
	StageContextFetched Stage = "context_fetched"
	StageDrafted        Stage = "drafted"
	StageRendered       Stage = "rendered"
	StageStaged         Stage = "staged"
	StageCompleted      Stage = "completed"
)

// Failure reason codes surfaced in results and logs.
const (
	ReasonRetrievalUnavailable = "retrieval_unavailable"
	ReasonInvalidQuery         = "invalid_query"
	ReasonUnknownSpecialty     = "unknown_specialty"
	ReasonMalformedModelOutput = "malformed_model_output"
	ReasonDraftFailure         = "draft_failure"
	ReasonRenderFailure        = "render_failure"
	ReasonAuthExpired          = "auth_expired"
	ReasonStagingFailure       = "staging_failure"
	ReasonInvalidLead          = "invalid_lead"
)

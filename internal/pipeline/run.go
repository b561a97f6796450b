package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nana-intelligence/agent-juliette/internal/mailer"
	"github.com/nana-intelligence/agent-juliette/internal/quote"
	"github.com/nana-intelligence/agent-juliette/internal/retrieval"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// ProgressEvent represents a progress update during a pipeline run.
type ProgressEvent struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// ProgressCallback is called as the run advances through stages.
type ProgressCallback func(event ProgressEvent)

// Result summarizes one pipeline run. A run either fails at a stage or
// completes; degradations list the non-fatal problems encountered on the way.
type Result struct {
	Success      bool     `json:"success"`
	Stage        Stage    `json:"stage"`
	Reference    string   `json:"reference,omitempty"`
	ArtifactPath string   `json:"artifact_path,omitempty"`
	DraftID      string   `json:"draft_id,omitempty"`
	TotalTTC     float64  `json:"total_ttc,omitempty"`
	ContextUsed  int      `json:"context_used"`
	Degradations []string `json:"degradations,omitempty"`

	FailureStage  Stage  `json:"failure_stage,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	ElapsedMS     int64  `json:"elapsed_ms"`

	// Err carries the underlying error for logs; not serialized.
	Err error `json:"-"`
}

// Orchestrator wires the pipeline stages together. Researcher is optional;
// every other dependency is required.
type Orchestrator struct {
	Retriever  Retriever
	Drafter    Drafter
	Renderer   Renderer
	Composer   EmailComposer
	Stager     Stager
	Researcher CompanyResearcher

	OnProgress ProgressCallback
	Verbose    bool
}

func (o *Orchestrator) emit(stage Stage, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if o.Verbose {
		fmt.Printf("[%s] %s\n", stage, message)
	}
	if o.OnProgress != nil {
		o.OnProgress(ProgressEvent{Stage: stage, Message: message})
	}
}

func fail(start time.Time, stage Stage, reason string, err error) *Result {
	return &Result{
		Success:       false,
		Stage:         stage,
		FailureStage:  stage,
		FailureReason: reason,
		ElapsedMS:     time.Since(start).Milliseconds(),
		Err:           err,
	}
}

// Run executes the full flow for one lead. Retrieval and research failures
// degrade the run; drafting and rendering failures are fatal; an expired
// mailbox credential completes the run without a staged draft.
func (o *Orchestrator) Run(ctx context.Context, lead *types.Lead) *Result {
	start := time.Now()

	o.emit(StageReceived, "processing lead %s (%s, %s)", lead.ResponseID, lead.FullName(), lead.Specialty)
	if err := lead.Validate(); err != nil {
		return fail(start, StageReceived, ReasonInvalidLead, err)
	}

	// Context retrieval and company research are independent; run both at
	// once. Research never fails, retrieval failures degrade to an empty
	// context.
	var snippets []types.ContextSnippet
	var companyContext string
	var degradations []string

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := o.Retriever.Retrieve(gCtx, lead.NeedDescription, retrieval.DefaultLimit)
		if err != nil {
			switch {
			case retrieval.IsInvalidQuery(err):
				degradations = append(degradations, ReasonInvalidQuery)
			default:
				degradations = append(degradations, ReasonRetrievalUnavailable)
			}
			o.emit(StageContextFetched, "retrieval degraded, drafting without context: %v", err)
			return nil
		}
		snippets = found
		return nil
	})
	g.Go(func() error {
		if o.Researcher != nil {
			companyContext = o.Researcher.Research(gCtx, lead)
		}
		return nil
	})
	_ = g.Wait()

	o.emit(StageContextFetched, "retrieved %d context snippets", len(snippets))

	draftResult, err := o.Drafter.Draft(ctx, lead, snippets)
	if err != nil {
		switch {
		case quote.IsUnknownSpecialty(err):
			return fail(start, StageDrafted, ReasonUnknownSpecialty, err)
		case quote.IsMalformedOutput(err):
			return fail(start, StageDrafted, ReasonMalformedModelOutput, err)
		default:
			return fail(start, StageDrafted, ReasonDraftFailure, err)
		}
	}
	draft := draftResult.Quote
	o.emit(StageDrafted, "drafted quote %s: %d lines, %.2f € TTC", draft.Reference, len(draft.Items), draft.TotalWithTax())

	artifact, err := o.Renderer.Render(draft)
	if err != nil {
		return fail(start, StageRendered, ReasonRenderFailure, err)
	}
	o.emit(StageRendered, "rendered %s", artifact.Path)

	cover := o.Composer.Compose(ctx, lead, draft, draftResult.PersonalMessage, companyContext)

	result := &Result{
		Success:      true,
		Stage:        StageCompleted,
		Reference:    draft.Reference,
		ArtifactPath: artifact.Path,
		TotalTTC:     draft.TotalWithTax(),
		ContextUsed:  len(snippets),
		Degradations: degradations,
	}

	draftID, err := o.Stager.StageDraft(ctx, lead.Email, cover.Subject, cover.Body, artifact.Path)
	if err != nil {
		// The rendered quote survives a staging failure; a human can send
		// it manually once credentials are fixed.
		reason := ReasonStagingFailure
		if mailer.IsAuthExpired(err) {
			reason = ReasonAuthExpired
		}
		result.Degradations = append(result.Degradations, reason)
		o.emit(StageStaged, "staging degraded (%s): %v", reason, err)
	} else {
		result.DraftID = draftID
		o.emit(StageStaged, "staged gmail draft %s", draftID)
	}

	result.ElapsedMS = time.Since(start).Milliseconds()
	o.emit(StageCompleted, "lead %s completed in %d ms", lead.ResponseID, result.ElapsedMS)
	return result
}

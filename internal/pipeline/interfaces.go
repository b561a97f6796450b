package pipeline

import (
	"context"

	"github.com/nana-intelligence/agent-juliette/internal/email"
	"github.com/nana-intelligence/agent-juliette/internal/quote"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// Retriever fetches knowledge base snippets relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]types.ContextSnippet, error)
}

// Drafter turns a lead plus context into a priced quote.
type Drafter interface {
	Draft(ctx context.Context, lead *types.Lead, snippets []types.ContextSnippet) (*quote.Result, error)
}

// Renderer produces the client-facing document for a quote draft.
type Renderer interface {
	Render(draft *types.QuoteDraft) (*types.QuoteArtifact, error)
}

// Stager places the quote email as a draft in the outbound mailbox.
type Stager interface {
	StageDraft(ctx context.Context, to, subject, body, attachmentPath string) (string, error)
}

// EmailComposer writes the cover email accompanying the quote.
type EmailComposer interface {
	Compose(ctx context.Context, lead *types.Lead, draft *types.QuoteDraft, personalMessage, companyContext string) *email.CoverEmail
}

// CompanyResearcher builds an optional company profile for personalization.
type CompanyResearcher interface {
	Research(ctx context.Context, lead *types.Lead) string
}

package types

import (
	"math"
	"time"
)

// TaxRate is the VAT rate applied to every quote (French standard rate).
const TaxRate = 0.20

// ValidityDays is how long a quote remains valid after creation.
const ValidityDays = 30

// LineItem is a single billable entry on a quote.
type LineItem struct {
	Description string  `json:"description"`
	Details     string  `json:"details,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Total returns the pre-tax total for this line.
func (li LineItem) Total() float64 {
	return float64(li.Quantity) * li.UnitPrice
}

// QuoteDraft is the structured quote produced by the drafter. Totals are
// always derived from the line items, never stored, so the
// total = subtotal * (1 + TaxRate) invariant holds by construction.
type QuoteDraft struct {
	Reference  string    `json:"reference"`
	CreatedAt  time.Time `json:"created_at"`
	ValidUntil time.Time `json:"valid_until"`

	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ClientCompany string `json:"client_company,omitempty"`

	Title        string     `json:"title"`
	Introduction string     `json:"introduction"`
	Items        []LineItem `json:"items"`
	Conditions   string     `json:"conditions"`
}

// Subtotal returns the pre-tax sum of all line items.
func (q *QuoteDraft) Subtotal() float64 {
	var sum float64
	for _, item := range q.Items {
		sum += item.Total()
	}
	return roundCents(sum)
}

// Tax returns the VAT amount.
func (q *QuoteDraft) Tax() float64 {
	return roundCents(q.Subtotal() * TaxRate)
}

// TotalWithTax returns the tax-inclusive total.
func (q *QuoteDraft) TotalWithTax() float64 {
	return roundCents(q.Subtotal() + q.Tax())
}

// QuoteArtifact references the rendered quote document on disk.
type QuoteArtifact struct {
	Reference  string    `json:"reference"`
	Path       string    `json:"path"`
	RenderedAt time.Time `json:"rendered_at"`
}

// ContextSnippet is one piece of retrieved knowledge, scored by relevance.
// Snippets live for a single orchestration run and are never persisted.
type ContextSnippet struct {
	Text   string  `json:"text"`
	Score  float32 `json:"score"`
	Source string  `json:"source,omitempty"`
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

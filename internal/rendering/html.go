package rendering

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nana-intelligence/agent-juliette/internal/types"
)

//go:embed template.html
var quoteTemplate string

// maxDescriptionLen bounds a line item description so the table stays
// readable on one printed page.
const maxDescriptionLen = 300

// templateData is what the HTML template consumes. All money fields are
// pre-formatted strings so the template stays logic-free.
type templateData struct {
	Reference     string
	CreatedAt     string
	ValidUntil    string
	ClientName    string
	ClientCompany string
	ClientEmail   string
	Title         string
	Introduction  string
	Items         []templateItem
	Subtotal      string
	TaxRate       string
	Tax           string
	Total         string
	Conditions    string
}

type templateItem struct {
	Description string
	Details     string
	Quantity    int
	UnitPrice   string
	Total       string
}

// Renderer writes quote documents under OutputDir. Output is deterministic:
// the same draft always produces identical bytes.
type Renderer struct {
	OutputDir string

	tmpl *template.Template
	// now stamps the artifact, injectable for tests.
	now func() time.Time
}

// NewRenderer parses the embedded template and prepares the output directory.
func NewRenderer(outputDir string) (*Renderer, error) {
	tmpl, err := template.New("quote").Parse(quoteTemplate)
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse quote template", Cause: err}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &RenderError{Message: fmt.Sprintf("failed to create output dir %s", outputDir), Cause: err}
	}
	return &Renderer{OutputDir: outputDir, tmpl: tmpl, now: time.Now}, nil
}

// Render validates the draft, renders it to HTML, and writes the artifact to
// disk as <reference>.html.
func (r *Renderer) Render(draft *types.QuoteDraft) (*types.QuoteArtifact, error) {
	html, err := r.RenderHTML(draft)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(r.OutputDir, draft.Reference+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return nil, &RenderError{Message: fmt.Sprintf("failed to write artifact %s", path), Cause: err}
	}

	return &types.QuoteArtifact{
		Reference:  draft.Reference,
		Path:       path,
		RenderedAt: r.now().UTC(),
	}, nil
}

// RenderHTML renders the draft to an HTML document string without touching
// the filesystem. Output depends only on the draft's fields.
func (r *Renderer) RenderHTML(draft *types.QuoteDraft) (string, error) {
	if err := validateDraft(draft); err != nil {
		return "", err
	}

	data := templateData{
		Reference:     draft.Reference,
		CreatedAt:     FormatDate(draft.CreatedAt),
		ValidUntil:    FormatDate(draft.ValidUntil),
		ClientName:    draft.ClientName,
		ClientCompany: draft.ClientCompany,
		ClientEmail:   draft.ClientEmail,
		Title:         draft.Title,
		Introduction:  draft.Introduction,
		Subtotal:      FormatEuro(draft.Subtotal()),
		TaxRate:       fmt.Sprintf("%.0f %%", types.TaxRate*100),
		Tax:           FormatEuro(draft.Tax()),
		Total:         FormatEuro(draft.TotalWithTax()),
		Conditions:    draft.Conditions,
	}
	for _, item := range draft.Items {
		data.Items = append(data.Items, templateItem{
			Description: item.Description,
			Details:     item.Details,
			Quantity:    item.Quantity,
			UnitPrice:   FormatEuro(item.UnitPrice),
			Total:       FormatEuro(item.Total()),
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{Message: "failed to execute quote template", Cause: err}
	}
	return sb.String(), nil
}

// validateDraft rejects drafts that would render an unusable document.
func validateDraft(draft *types.QuoteDraft) error {
	if draft == nil {
		return &RenderError{Message: "draft is nil"}
	}
	if draft.Reference == "" {
		return &RenderError{Message: "draft has no reference"}
	}
	if draft.Title == "" {
		return &RenderError{Message: "draft has no title"}
	}
	if len(draft.Items) == 0 {
		return &RenderError{Message: "draft has no line items"}
	}
	for i, item := range draft.Items {
		if strings.TrimSpace(item.Description) == "" {
			return &RenderError{Message: fmt.Sprintf("line %d has an empty description", i+1)}
		}
		if len(item.Description) > maxDescriptionLen {
			return &RenderError{Message: fmt.Sprintf("line %d description exceeds %d characters", i+1, maxDescriptionLen)}
		}
	}
	return nil
}

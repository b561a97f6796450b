// Package email composes the personalized cover email that accompanies a
// staged quote.
package email

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/prompts"
	"github.com/nana-intelligence/agent-juliette/internal/rendering"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// CoverEmail is the subject and HTML body of the email carrying a quote.
// The model writes plain text; WrapHTML frames it before staging.
type CoverEmail struct {
	Subject string
	Body    string
}

// Writer composes cover emails with an LLM, falling back to a deterministic
// template when the model is unavailable or answers off-format.
type Writer struct {
	llm  llm.Client
	tier llm.ModelTier
}

// NewWriter creates a Writer using the lite model tier; email copy does not
// need heavy reasoning.
func NewWriter(client llm.Client) *Writer {
	return &Writer{llm: client, tier: llm.TierLite}
}

// Compose writes the cover email for a drafted quote. personalMessage is the
// note the drafting model wrote for this lead; companyContext is optional
// research about the lead's company. Compose never fails: any model problem
// falls back to the template email.
func (w *Writer) Compose(ctx context.Context, lead *types.Lead, draft *types.QuoteDraft, personalMessage, companyContext string) *CoverEmail {
	prompt, err := w.buildPrompt(lead, draft, personalMessage, companyContext)
	if err != nil {
		log.Printf("cover email prompt failed, using template: %v", err)
		return Fallback(lead, draft)
	}

	response, err := w.llm.GenerateContent(ctx, prompt, w.tier)
	if err != nil {
		log.Printf("cover email generation failed, using template: %v", err)
		return Fallback(lead, draft)
	}

	subject, body, ok := ParseSubjectBody(response)
	if !ok {
		log.Printf("cover email response off-format, using template")
		return Fallback(lead, draft)
	}
	return &CoverEmail{Subject: subject, Body: WrapHTML(body)}
}

func (w *Writer) buildPrompt(lead *types.Lead, draft *types.QuoteDraft, personalMessage, companyContext string) (string, error) {
	system, err := prompts.Get("email.json", "system")
	if err != nil {
		return "", err
	}
	user, err := prompts.Get("email.json", "user")
	if err != nil {
		return "", err
	}

	if companyContext == "" {
		companyContext = "(aucune information disponible)"
	}
	if personalMessage != "" {
		companyContext += "\n\nNote de la consultante : " + personalMessage
	}

	filled := prompts.Format(user, map[string]string{
		"LeadName":       lead.FullName(),
		"FirstName":      lead.FirstName,
		"Company":        lead.Company,
		"Service":        lead.Specialty.DisplayName(),
		"Need":           lead.NeedDescription,
		"Reference":      draft.Reference,
		"Title":          draft.Title,
		"Total":          rendering.FormatEuro(draft.TotalWithTax()),
		"CompanyContext": companyContext,
	})

	return system + "\n\n" + filled, nil
}

// ParseSubjectBody extracts the subject and body from a model response in
// the "SUJET: ...\nCORPS:\n..." format.
func ParseSubjectBody(text string) (subject, body string, ok bool) {
	text = strings.TrimSpace(text)

	subjectIdx := strings.Index(text, "SUJET:")
	bodyIdx := strings.Index(text, "CORPS:")
	if subjectIdx == -1 || bodyIdx == -1 || bodyIdx < subjectIdx {
		return "", "", false
	}

	subject = strings.TrimSpace(text[subjectIdx+len("SUJET:") : bodyIdx])
	body = strings.TrimSpace(text[bodyIdx+len("CORPS:"):])
	if subject == "" || body == "" {
		return "", "", false
	}
	return subject, body, true
}

// htmlLayout frames the email copy in the same visual register as the quote
// document. Inline styles only; email clients strip <style> blocks.
const htmlLayout = `<!DOCTYPE html>
<html lang="fr">
<body style="margin:0;padding:24px;background-color:#f5f5f5;">
<div style="max-width:600px;margin:0 auto;background-color:#ffffff;padding:32px;font-family:Arial,Helvetica,sans-serif;font-size:15px;line-height:1.6;color:#2a2a2a;">
%s</div>
</body>
</html>`

// WrapHTML converts plain email copy into the styled HTML body shown in the
// staged draft. Blank-line separated paragraphs become <p> elements, single
// newlines become line breaks, and the text is escaped.
func WrapHTML(text string) string {
	var b strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		escaped := strings.ReplaceAll(html.EscapeString(para), "\n", "<br>")
		fmt.Fprintf(&b, "<p style=\"margin:0 0 16px;\">%s</p>\n", escaped)
	}
	return fmt.Sprintf(htmlLayout, b.String())
}

// Fallback builds the deterministic cover email used when the model cannot.
func Fallback(lead *types.Lead, draft *types.QuoteDraft) *CoverEmail {
	subject := fmt.Sprintf("Votre devis %s - %s", draft.Reference, draft.Title)
	body := fmt.Sprintf(`Bonjour %s,

Merci pour votre demande concernant notre offre %s.

Vous trouverez ci-joint votre devis %s d'un montant de %s TTC, valable %d jours.

Je reste à votre disposition pour en discuter ou l'ajuster à vos besoins.

Bien cordialement,
Juliette
Nana Intelligence`,
		lead.FirstName,
		lead.Specialty.DisplayName(),
		draft.Reference,
		rendering.FormatEuro(draft.TotalWithTax()),
		types.ValidityDays,
	)
	return &CoverEmail{Subject: subject, Body: WrapHTML(body)}
}

package quote

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/prompts"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// maxContextChars bounds how much retrieved knowledge goes into the prompt.
const maxContextChars = 6000

// specialtyPromptKeys maps each specialty to its prompt key in quote.json.
var specialtyPromptKeys = map[types.Specialty]string{
	types.SpecialtyMassMailing:  "specialty-mass_mailing",
	types.SpecialtyAutomationIA: "specialty-automation_ia",
	types.SpecialtySEOGrowth:    "specialty-seo_growth",
}

// Result is the outcome of one drafting call: the priced quote plus the
// personal message the model wrote for the cover email.
type Result struct {
	Quote           *types.QuoteDraft
	PersonalMessage string
}

// Generator drafts quotes by prompting an LLM with the lead's need,
// retrieved agency knowledge, and the specialty's pricing structure.
type Generator struct {
	llm  llm.Client
	tier llm.ModelTier
	// now is injectable for deterministic references in tests.
	now func() time.Time
}

// NewGenerator creates a Generator drafting with the standard model tier.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{
		llm:  client,
		tier: llm.TierStandard,
		now:  time.Now,
	}
}

// Draft produces a quote for the lead. Snippets may be empty; drafting then
// relies on the specialty pricing structure alone. Fails with
// UnknownSpecialtyError or MalformedOutputError.
func (g *Generator) Draft(ctx context.Context, lead *types.Lead, snippets []types.ContextSnippet) (*Result, error) {
	prompt, err := g.BuildPrompt(lead, snippets)
	if err != nil {
		return nil, err
	}

	response, err := g.llm.GenerateJSON(ctx, prompt, g.tier)
	if err != nil {
		return nil, fmt.Errorf("drafting call failed: %w", err)
	}

	payload, err := ParsePayload(response)
	if err != nil {
		return nil, err
	}

	now := g.now().UTC()
	draft := &types.QuoteDraft{
		Reference:     NewReference(now),
		CreatedAt:     now,
		ValidUntil:    now.AddDate(0, 0, types.ValidityDays),
		ClientName:    lead.FullName(),
		ClientEmail:   lead.Email,
		ClientCompany: lead.Company,
		Title:         payload.Title,
		Introduction:  payload.Introduction,
		Items:         payload.Items,
		Conditions:    payload.Conditions,
	}
	if draft.Conditions == "" {
		draft.Conditions = defaultConditions()
	}

	checkBudgetFit(lead, draft)

	return &Result{Quote: draft, PersonalMessage: payload.PersonalMessage}, nil
}

// BuildPrompt assembles the drafting prompt: base persona, specialty pricing
// structure, the lead's details, and retrieved context.
func (g *Generator) BuildPrompt(lead *types.Lead, snippets []types.ContextSnippet) (string, error) {
	specialtyKey, ok := specialtyPromptKeys[lead.Specialty]
	if !ok {
		return "", &UnknownSpecialtyError{Specialty: string(lead.Specialty)}
	}

	base, err := prompts.Get("quote.json", "system-base")
	if err != nil {
		return "", fmt.Errorf("failed to load base prompt: %w", err)
	}
	specialty, err := prompts.Get("quote.json", specialtyKey)
	if err != nil {
		return "", fmt.Errorf("failed to load specialty prompt: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n")
	sb.WriteString(specialty)

	sb.WriteString("\n\n--- DEMANDE DU CLIENT ---\n")
	sb.WriteString(fmt.Sprintf("Nom : %s\n", lead.FullName()))
	if lead.Company != "" {
		sb.WriteString(fmt.Sprintf("Entreprise : %s\n", lead.Company))
	}
	sb.WriteString(fmt.Sprintf("Service demandé : %s\n", lead.Specialty.DisplayName()))
	sb.WriteString(fmt.Sprintf("Besoin exprimé : %s\n", lead.NeedDescription))
	if budget := interpretBudget(lead.BudgetHint); budget != "" {
		sb.WriteString(fmt.Sprintf("Budget indiqué : %s\n", budget))
	}

	if knowledge := formatContext(snippets); knowledge != "" {
		sb.WriteString("\n--- CONTEXTE AGENCE (base de connaissances) ---\n")
		sb.WriteString(knowledge)
	}

	sb.WriteString("\nRéponds uniquement avec le JSON demandé.")
	return sb.String(), nil
}

// formatContext joins snippet texts into a bounded context block. Snippets
// arrive ordered by relevance, so truncation drops the weakest first.
func formatContext(snippets []types.ContextSnippet) string {
	var sb strings.Builder
	for _, s := range snippets {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if sb.Len()+len(text) > maxContextChars {
			break
		}
		sb.WriteString("- ")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// interpretBudget normalizes the free-text budget hint for the prompt.
// Unparseable hints pass through unchanged; the model handles the nuance.
func interpretBudget(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return ""
	}
	if amount, err := parseNumericString(hint); err == nil && amount > 0 {
		return fmt.Sprintf("environ %.0f € (adapter la structure du devis à ce budget)", amount)
	}
	return hint
}

// checkBudgetFit logs when the drafted total strays far from the lead's
// stated budget. The draft is kept either way; the log line is for the
// human reviewing the staged draft.
func checkBudgetFit(lead *types.Lead, draft *types.QuoteDraft) {
	budget, err := parseNumericString(lead.BudgetHint)
	if err != nil || budget <= 0 {
		return
	}
	total := draft.TotalWithTax()
	if math.Abs(total-budget) > budget*0.5 {
		log.Printf("quote %s total %.2f € is far from stated budget %.2f €", draft.Reference, total, budget)
	}
}

func defaultConditions() string {
	return fmt.Sprintf(
		"Devis valable %d jours. Acompte de 30%% à la commande, solde à la livraison. TVA %.0f%% incluse dans le total TTC.",
		types.ValidityDays, types.TaxRate*100,
	)
}

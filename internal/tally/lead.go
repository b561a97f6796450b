package tally

import (
	"fmt"
	"strings"

	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// Form field labels as configured on the Tally intake form.
const (
	labelFirstName = "Prénom"
	labelLastName  = "Nom"
	labelEmail     = "Email Pro"
	labelCompany   = "Entreprise"
	labelWebsite   = "Site Web"
	labelService   = "Type de service"
	labelNeed      = "Votre Besoin"
	labelBudget    = "Budget estimé"
	labelConsent   = "Consentement"
)

// serviceTypeMapping maps the form's dropdown texts to specialty tags.
var serviceTypeMapping = map[string]types.Specialty{
	"mass mailing & lead gen": types.SpecialtyMassMailing,
	"automatisation & ia":     types.SpecialtyAutomationIA,
	"seo & growth hacking":    types.SpecialtySEOGrowth,
}

// ParseLead converts a webhook payload into a validated Lead. A service
// text with no specialty mapping is an error; drafting a quote for the
// wrong service line is worse than asking the sender to fix the form.
func ParseLead(payload *WebhookPayload) (*types.Lead, error) {
	if payload.EventType != EventTypeFormResponse {
		return nil, fmt.Errorf("unsupported event type %q", payload.EventType)
	}
	data := &payload.Data

	serviceText := data.FieldValue(labelService)
	specialty, ok := serviceTypeMapping[strings.ToLower(strings.TrimSpace(serviceText))]
	if !ok {
		return nil, fmt.Errorf("unknown service type %q", serviceText)
	}

	lead := &types.Lead{
		FirstName:       strings.TrimSpace(data.FieldValue(labelFirstName)),
		LastName:        strings.TrimSpace(data.FieldValue(labelLastName)),
		Email:           strings.TrimSpace(data.FieldValue(labelEmail)),
		Company:         strings.TrimSpace(data.FieldValue(labelCompany)),
		Website:         strings.TrimSpace(data.FieldValue(labelWebsite)),
		Specialty:       specialty,
		NeedDescription: strings.TrimSpace(data.FieldValue(labelNeed)),
		BudgetHint:      strings.TrimSpace(data.FieldValue(labelBudget)),
		ResponseID:      data.ResponseID,
		Source:          data.FormName,
		ReceivedAt:      data.CreatedAt,
		Consent:         data.FieldValue(labelConsent) != "",
	}

	if err := lead.Validate(); err != nil {
		return nil, fmt.Errorf("incomplete submission %s: %w", data.ResponseID, err)
	}
	return lead, nil
}

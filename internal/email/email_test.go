package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (s *stubLLM) GetModel(_ llm.ModelTier) string { return "stub-model" }
func (s *stubLLM) Close() error                    { return nil }

func testLead() *types.Lead {
	return &types.Lead{
		FirstName:       "Claire",
		LastName:        "Moreau",
		Email:           "claire@moreau-conseil.fr",
		Company:         "Moreau Conseil",
		Specialty:       types.SpecialtyAutomationIA,
		NeedDescription: "Automatiser le suivi des relances clients.",
		ResponseID:      "resp_abc123",
	}
}

func testDraft() *types.QuoteDraft {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &types.QuoteDraft{
		Reference:  "DEV-20260401-AB12CD34",
		CreatedAt:  created,
		ValidUntil: created.AddDate(0, 0, types.ValidityDays),
		ClientName: "Claire Moreau",
		Title:      "Automatisation des relances",
		Items:      []types.LineItem{{Description: "Mise en place", Quantity: 1, UnitPrice: 2000}},
	}
}

func TestParseSubjectBody(t *testing.T) {
	subject, body, ok := ParseSubjectBody("SUJET: Votre devis\nCORPS:\nBonjour Claire,\n\nVoici le devis.")
	require.True(t, ok)
	assert.Equal(t, "Votre devis", subject)
	assert.Contains(t, body, "Bonjour Claire")
}

func TestParseSubjectBody_Malformed(t *testing.T) {
	cases := []string{
		"Bonjour, voici un email sans structure.",
		"CORPS:\ntexte\nSUJET: inversé",
		"SUJET: \nCORPS:\n",
	}
	for _, in := range cases {
		_, _, ok := ParseSubjectBody(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestCompose_UsesModelOutput(t *testing.T) {
	w := NewWriter(&stubLLM{response: "SUJET: Votre devis automatisation\nCORPS:\nBonjour Claire,\n\nAvec plaisir."})

	mail := w.Compose(context.Background(), testLead(), testDraft(), "", "")
	assert.Equal(t, "Votre devis automatisation", mail.Subject)
	assert.Contains(t, mail.Body, "Bonjour Claire")
}

func TestCompose_FallsBackOnLLMError(t *testing.T) {
	w := NewWriter(&stubLLM{err: errors.New("quota exceeded")})

	mail := w.Compose(context.Background(), testLead(), testDraft(), "", "")
	assert.Contains(t, mail.Subject, "DEV-20260401-AB12CD34")
	assert.Contains(t, mail.Body, "Bonjour Claire")
	assert.Contains(t, mail.Body, "2 400,00 €")
}

func TestCompose_FallsBackOnOffFormatResponse(t *testing.T) {
	w := NewWriter(&stubLLM{response: "Voici un email sans le format demandé."})

	mail := w.Compose(context.Background(), testLead(), testDraft(), "", "")
	assert.Contains(t, mail.Subject, "Votre devis")
}

func TestFallback_MentionsAmountAndValidity(t *testing.T) {
	mail := Fallback(testLead(), testDraft())
	assert.Contains(t, mail.Body, "2 400,00 €")
	assert.Contains(t, mail.Body, "30 jours")
	assert.Contains(t, mail.Body, "Automatisation &amp; IA")
}

func TestWrapHTML_ParagraphsAndEscaping(t *testing.T) {
	got := WrapHTML("Bonjour Claire,\n\nVotre offre Mass Mailing & Lead Gen\nest prête.")

	assert.Contains(t, got, "<!DOCTYPE html>")
	assert.Contains(t, got, `<p style="margin:0 0 16px;">Bonjour Claire,</p>`)
	assert.Contains(t, got, "Mass Mailing &amp; Lead Gen<br>est prête.")
	assert.NotContains(t, got, "& Lead Gen\n")
}

func TestCompose_BodyIsHTML(t *testing.T) {
	w := NewWriter(&stubLLM{response: "SUJET: Votre devis\nCORPS:\nBonjour Claire,\n\nVoici le devis."})

	mail := w.Compose(context.Background(), testLead(), testDraft(), "", "")
	assert.Contains(t, mail.Body, "<p style=")
	assert.Contains(t, mail.Body, "Bonjour Claire,")
}

package tally

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nana-intelligence/agent-juliette/internal/types"
)

const sampleSubmission = `{
	"eventId": "evt_123",
	"eventType": "FORM_RESPONSE",
	"createdAt": "2026-04-01T09:00:00.000Z",
	"data": {
		"responseId": "resp_abc123",
		"submissionId": "sub_1",
		"respondentId": "rsp_1",
		"formId": "form_1",
		"formName": "Demande de devis",
		"createdAt": "2026-04-01T09:00:00.000Z",
		"fields": [
			{"key": "q1", "label": "Prénom", "type": "INPUT_TEXT", "value": "Claire"},
			{"key": "q2", "label": "Nom", "type": "INPUT_TEXT", "value": "Moreau"},
			{"key": "q3", "label": "Email Pro", "type": "INPUT_EMAIL", "value": "claire@moreau-conseil.fr"},
			{"key": "q4", "label": "Entreprise", "type": "INPUT_TEXT", "value": "Moreau Conseil"},
			{"key": "q5", "label": "Site Web", "type": "INPUT_TEXT", "value": "moreau-conseil.fr"},
			{"key": "q6", "label": "Type de service", "type": "DROPDOWN", "value": ["opt_1"],
				"options": [
					{"id": "opt_1", "text": "Automatisation & IA"},
					{"id": "opt_2", "text": "Mass Mailing & Lead Gen"}
				]},
			{"key": "q7", "label": "Votre Besoin", "type": "TEXTAREA", "value": "Automatiser le suivi des relances clients."},
			{"key": "q8", "label": "Budget estimé", "type": "INPUT_TEXT", "value": "3000 €"},
			{"key": "q9", "label": "Consentement", "type": "CHECKBOXES", "value": ["opt_c"],
				"options": [{"id": "opt_c", "text": "J'accepte"}]}
		]
	}
}`

func TestParseWebhook_Object(t *testing.T) {
	payload, err := ParseWebhook([]byte(sampleSubmission))
	require.NoError(t, err)
	assert.Equal(t, "FORM_RESPONSE", payload.EventType)
	assert.Equal(t, "resp_abc123", payload.Data.ResponseID)
}

func TestParseWebhook_Array(t *testing.T) {
	payload, err := ParseWebhook([]byte("[" + sampleSubmission + "]"))
	require.NoError(t, err)
	assert.Equal(t, "resp_abc123", payload.Data.ResponseID)
}

func TestParseWebhook_Invalid(t *testing.T) {
	for _, body := range []string{"", "[]", "not json", "{"} {
		_, err := ParseWebhook([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestParseLead_FullSubmission(t *testing.T) {
	payload, err := ParseWebhook([]byte(sampleSubmission))
	require.NoError(t, err)

	lead, err := ParseLead(payload)
	require.NoError(t, err)

	assert.Equal(t, "Claire", lead.FirstName)
	assert.Equal(t, "Moreau", lead.LastName)
	assert.Equal(t, "claire@moreau-conseil.fr", lead.Email)
	assert.Equal(t, types.SpecialtyAutomationIA, lead.Specialty)
	assert.Equal(t, "Automatiser le suivi des relances clients.", lead.NeedDescription)
	assert.Equal(t, "3000 €", lead.BudgetHint)
	assert.Equal(t, "resp_abc123", lead.ResponseID)
	assert.Equal(t, "Demande de devis", lead.Source)
	assert.True(t, lead.Consent)
}

func TestParseLead_LabelMatchingIsLenient(t *testing.T) {
	payload, err := ParseWebhook([]byte(sampleSubmission))
	require.NoError(t, err)

	assert.Equal(t, "Claire", payload.Data.FieldValue("  prénom "))
	assert.Equal(t, "Moreau", payload.Data.FieldValue("NOM"))
}

func TestParseLead_RejectsNonFormResponseEvent(t *testing.T) {
	payload, err := ParseWebhook([]byte(sampleSubmission))
	require.NoError(t, err)
	payload.EventType = "FORM_UPDATED"

	_, err = ParseLead(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported event type")
}

func TestParseLead_UnknownServiceType(t *testing.T) {
	payload, err := ParseWebhook([]byte(sampleSubmission))
	require.NoError(t, err)
	service := payload.Data.FieldByLabel("Type de service")
	require.NotNil(t, service)
	service.Options[0].Text = "Conseil Quantique"

	_, err = ParseLead(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service type")
}

func TestParseLead_MissingRequiredField(t *testing.T) {
	payload, err := ParseWebhook([]byte(sampleSubmission))
	require.NoError(t, err)
	email := payload.Data.FieldByLabel("Email Pro")
	require.NotNil(t, email)
	email.Value = ""

	_, err = ParseLead(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete submission")
}

func TestFieldTextValue_Types(t *testing.T) {
	boolField := &Field{Value: true}
	assert.Equal(t, "true", boolField.TextValue())

	nilField := &Field{}
	assert.Equal(t, "", nilField.TextValue())

	multi := &Field{
		Value: []any{"a", "b"},
		Options: []FieldOption{
			{ID: "a", Text: "Première"},
			{ID: "b", Text: "Deuxième"},
		},
	}
	assert.Equal(t, "Première, Deuxième", multi.TextValue())
}

func TestVerifySignature(t *testing.T) {
	body := []byte(sampleSubmission)
	secret := "signing-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	valid := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(body, valid, secret))
	assert.False(t, VerifySignature(body, valid, "other-secret"))
	assert.False(t, VerifySignature(body, "forged", secret))
	assert.False(t, VerifySignature(body, "", secret))
	assert.False(t, VerifySignature(body, valid, ""))
}

func TestParseWebhook_ArrayWithSeveralEventsUsesFirst(t *testing.T) {
	body := fmt.Sprintf("[%s,%s]", sampleSubmission, sampleSubmission)
	payload, err := ParseWebhook([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "evt_123", payload.EventID)
}

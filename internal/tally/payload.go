// Package tally parses Tally form webhook payloads into leads.
package tally

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventTypeFormResponse is the only event type carrying a form submission.
const EventTypeFormResponse = "FORM_RESPONSE"

// FieldOption is one choice of a dropdown or checkbox field.
type FieldOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Field is one form field in a submission. Value is a string, bool, or a
// list of selected option IDs depending on the field type.
type Field struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	Type    string        `json:"type"`
	Value   any           `json:"value"`
	Options []FieldOption `json:"options,omitempty"`
}

// TextValue returns the field's value as text. Dropdown and checkbox values
// are resolved from option IDs to their display texts.
func (f *Field) TextValue() string {
	switch v := f.Value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []any:
		var texts []string
		for _, raw := range v {
			id, ok := raw.(string)
			if !ok {
				continue
			}
			for _, option := range f.Options {
				if option.ID == id {
					texts = append(texts, option.Text)
					break
				}
			}
		}
		return strings.Join(texts, ", ")
	default:
		return ""
	}
}

// FormData is the submission content of a webhook payload.
type FormData struct {
	ResponseID   string    `json:"responseId"`
	SubmissionID string    `json:"submissionId"`
	RespondentID string    `json:"respondentId"`
	FormID       string    `json:"formId"`
	FormName     string    `json:"formName"`
	CreatedAt    time.Time `json:"createdAt"`
	Fields       []Field   `json:"fields"`
}

// FieldByLabel finds a field by label, ignoring case, surrounding space,
// and embedded newlines (Tally labels sometimes wrap).
func (d *FormData) FieldByLabel(label string) *Field {
	want := normalizeLabel(label)
	for i := range d.Fields {
		if normalizeLabel(d.Fields[i].Label) == want {
			return &d.Fields[i]
		}
	}
	return nil
}

// FieldValue returns the text value of the field with the given label, or
// an empty string when the field is absent.
func (d *FormData) FieldValue(label string) string {
	if field := d.FieldByLabel(label); field != nil {
		return field.TextValue()
	}
	return ""
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(label, "\n", "")))
}

// WebhookPayload is one webhook event from Tally.
type WebhookPayload struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	CreatedAt time.Time `json:"createdAt"`
	Data      FormData  `json:"data"`
}

// ParseWebhook decodes a webhook request body. Tally sends either a single
// payload object or an array with one element; both forms are accepted.
func ParseWebhook(body []byte) (*WebhookPayload, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, fmt.Errorf("empty webhook body")
	}

	if strings.HasPrefix(trimmed, "[") {
		var payloads []WebhookPayload
		if err := json.Unmarshal(body, &payloads); err != nil {
			return nil, fmt.Errorf("failed to parse webhook array: %w", err)
		}
		if len(payloads) == 0 {
			return nil, fmt.Errorf("webhook array is empty")
		}
		return &payloads[0], nil
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	return &payload, nil
}

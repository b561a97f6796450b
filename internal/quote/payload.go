package quote

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// payloadSchema validates the shape of the model's JSON before coercion.
// Prices and quantities accept both numbers and strings because models
// routinely emit formatted values like "1 500,00 €".
const payloadSchema = `{
  "type": "object",
  "required": ["titre", "lignes_devis"],
  "properties": {
    "titre": {"type": "string", "minLength": 1},
    "introduction": {"type": "string"},
    "lignes_devis": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["description", "prix_unitaire"],
        "properties": {
          "description": {"type": "string", "minLength": 1},
          "details": {"type": "string"},
          "quantite": {"type": ["number", "string"]},
          "prix_unitaire": {"type": ["number", "string"]}
        }
      }
    },
    "conditions": {"type": "string"},
    "message_personnel": {"type": "string"}
  }
}`

// Payload is the coerced, validated content of one model drafting response.
type Payload struct {
	Title           string
	Introduction    string
	Items           []types.LineItem
	Conditions      string
	PersonalMessage string
}

type rawPayload struct {
	Titre            string    `json:"titre"`
	Introduction     string    `json:"introduction"`
	LignesDevis      []rawLine `json:"lignes_devis"`
	Conditions       string    `json:"conditions"`
	MessagePersonnel string    `json:"message_personnel"`
}

type rawLine struct {
	Description  string `json:"description"`
	Details      string `json:"details"`
	Quantite     any    `json:"quantite"`
	PrixUnitaire any    `json:"prix_unitaire"`
}

// ParsePayload parses the raw model response into a Payload. It tolerates
// markdown fences and surrounding prose, then validates the JSON shape and
// coerces formatted prices and quantities into numbers. Any failure surfaces
// as a MalformedOutputError.
func ParsePayload(text string) (*Payload, error) {
	cleaned := llm.CleanJSONBlock(text)

	var raw rawPayload
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		// The model sometimes wraps its JSON in explanation text. Pull out
		// the first balanced object and retry before giving up.
		extracted := llm.ExtractJSONObject(cleaned)
		if extracted == "" {
			return nil, &MalformedOutputError{Message: "response contains no JSON object", Raw: text, Cause: err}
		}
		cleaned = extracted
		if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
			return nil, &MalformedOutputError{Message: "extracted JSON does not parse", Raw: text, Cause: err}
		}
	}

	if err := validateShape(cleaned); err != nil {
		return nil, &MalformedOutputError{Message: "payload failed schema validation", Raw: text, Cause: err}
	}

	payload := &Payload{
		Title:           strings.TrimSpace(raw.Titre),
		Introduction:    strings.TrimSpace(raw.Introduction),
		Conditions:      strings.TrimSpace(raw.Conditions),
		PersonalMessage: strings.TrimSpace(raw.MessagePersonnel),
		Items:           make([]types.LineItem, 0, len(raw.LignesDevis)),
	}

	for i, line := range raw.LignesDevis {
		price, err := coercePrice(line.PrixUnitaire)
		if err != nil {
			return nil, &MalformedOutputError{
				Message: fmt.Sprintf("line %d has unusable unit price", i+1),
				Raw:     text,
				Cause:   err,
			}
		}
		qty, err := coerceQuantity(line.Quantite)
		if err != nil {
			return nil, &MalformedOutputError{
				Message: fmt.Sprintf("line %d has unusable quantity", i+1),
				Raw:     text,
				Cause:   err,
			}
		}
		payload.Items = append(payload.Items, types.LineItem{
			Description: strings.TrimSpace(line.Description),
			Details:     strings.TrimSpace(line.Details),
			Quantity:    qty,
			UnitPrice:   price,
		})
	}

	return payload, nil
}

func validateShape(document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(payloadSchema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	for i, desc := range result.Errors() {
		if i > 0 {
			sb.WriteString("; ")
		}
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		sb.WriteString(fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return fmt.Errorf("%s", sb.String())
}

// coercePrice accepts a JSON number or a formatted string like "1 500,00 €"
// and returns a non-negative float.
func coercePrice(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		if val < 0 {
			return 0, fmt.Errorf("negative price %v", val)
		}
		return val, nil
	case string:
		parsed, err := parseNumericString(val)
		if err != nil {
			return 0, err
		}
		if parsed < 0 {
			return 0, fmt.Errorf("negative price %q", val)
		}
		return parsed, nil
	case nil:
		return 0, fmt.Errorf("price is missing")
	default:
		return 0, fmt.Errorf("price has unsupported type %T", v)
	}
}

// coerceQuantity accepts a JSON number or string and returns a positive
// integer. A missing quantity defaults to 1.
func coerceQuantity(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 1, nil
	case float64:
		qty := int(math.Round(val))
		if qty < 0 {
			return 0, fmt.Errorf("negative quantity %v", val)
		}
		if qty == 0 {
			qty = 1
		}
		return qty, nil
	case string:
		parsed, err := parseNumericString(val)
		if err != nil {
			return 0, err
		}
		qty := int(math.Round(parsed))
		if qty < 0 {
			return 0, fmt.Errorf("negative quantity %q", val)
		}
		if qty == 0 {
			qty = 1
		}
		return qty, nil
	default:
		return 0, fmt.Errorf("quantity has unsupported type %T", v)
	}
}

// parseNumericString handles French-formatted numbers: currency symbols,
// regular and non-breaking spaces as thousand separators, and either comma
// or dot as the decimal separator.
func parseNumericString(s string) (float64, error) {
	cleaned := strings.NewReplacer(
		"€", "",
		"EUR", "",
		"eur", "",
		" ", "",
		" ", "",
		" ", "",
	).Replace(strings.TrimSpace(s))

	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric value %q", s)
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		// "1.500,00" style: dots are thousand separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as number: %w", s, err)
	}
	return parsed, nil
}

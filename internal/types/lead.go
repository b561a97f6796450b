// Package types provides type definitions for structured data used throughout the quote agent.
package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Specialty identifies which service line a lead is asking about.
// It selects the prompt template and pricing structure used for drafting.
type Specialty string

// Specialty constants match the service lines offered on nana-intelligence.fr.
const (
	SpecialtyMassMailing  Specialty = "mass_mailing"
	SpecialtyAutomationIA Specialty = "automation_ia"
	SpecialtySEOGrowth    Specialty = "seo_growth"
)

// AllSpecialties lists every known specialty tag.
func AllSpecialties() []Specialty {
	return []Specialty{SpecialtyMassMailing, SpecialtyAutomationIA, SpecialtySEOGrowth}
}

// Valid reports whether s is one of the known specialty tags.
func (s Specialty) Valid() bool {
	switch s {
	case SpecialtyMassMailing, SpecialtyAutomationIA, SpecialtySEOGrowth:
		return true
	}
	return false
}

// DisplayName returns the human-readable service name used in prompts and documents.
func (s Specialty) DisplayName() string {
	switch s {
	case SpecialtyMassMailing:
		return "Mass Mailing & Lead Generation"
	case SpecialtyAutomationIA:
		return "Automatisation & IA"
	case SpecialtySEOGrowth:
		return "SEO & Growth"
	default:
		return string(s)
	}
}

// Lead represents one inbound quote request from the intake form.
// A Lead is immutable once parsed; every pipeline stage reads it, none mutate it.
type Lead struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Company   string `json:"company,omitempty"`
	Website   string `json:"website,omitempty"`

	Specialty       Specialty `json:"specialty" validate:"required"`
	NeedDescription string    `json:"need_description" validate:"required,min=10"`
	BudgetHint      string    `json:"budget_hint,omitempty"`

	// ResponseID is the form backend's submission identifier. It doubles as
	// the idempotency key for webhook redeliveries.
	ResponseID string    `json:"response_id" validate:"required"`
	Source     string    `json:"source,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	Consent    bool      `json:"consent"`
}

// FullName returns the lead's display name.
func (l *Lead) FullName() string {
	return fmt.Sprintf("%s %s", l.FirstName, l.LastName)
}

// Validate validates the Lead using the validator.
func (l *Lead) Validate() error {
	validate := validator.New()
	if err := validate.Struct(l); err != nil {
		return err
	}
	if !l.Specialty.Valid() {
		return fmt.Errorf("unknown specialty: %q", l.Specialty)
	}
	return nil
}

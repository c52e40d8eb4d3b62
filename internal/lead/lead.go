package lead

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrValidation marks a recoverable field-level validation failure. The
// offending field is left unset and the conversation continues.
var ErrValidation = errors.New("validation failed")

// Status is the lead lifecycle state.
type Status string

const (
	StatusNew          Status = "new"
	StatusContacted    Status = "contacted"
	StatusQualified    Status = "qualified"
	StatusDisqualified Status = "disqualified"
	StatusConverted    Status = "converted"
)

// Lead is the evolving prospect record built up across a conversation.
// Derived fields (Score, Category, Grade, Priority) are recomputed by the
// scorer after every merge and never set by hand.
type Lead struct {
	ID uuid.UUID `json:"id"`

	// Identity
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Industry    string `json:"industry,omitempty"`
	CompanySize int    `json:"company_size,omitempty"`

	// Contact
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	PreferredChannel string `json:"preferred_channel,omitempty"`

	// Need
	NeedDescription string `json:"need_description,omitempty"`
	Urgency         string `json:"urgency,omitempty"` // low | medium | high
	CurrentProblems string `json:"current_problems,omitempty"`
	Budget          string `json:"budget,omitempty"` // verbatim statement
	BudgetAmount    float64 `json:"budget_amount,omitempty"`
	BudgetCurrency  string  `json:"budget_currency,omitempty"`
	Timeline        string  `json:"timeline,omitempty"`
	HasAuthority    *bool   `json:"has_authority,omitempty"`
	IsDecisionMaker *bool   `json:"is_decision_maker,omitempty"`

	// Derived
	Score    int    `json:"score"`
	Category string `json:"category,omitempty"` // high | medium | low
	Grade    string `json:"grade,omitempty"`    // A | B | C
	Priority string `json:"priority,omitempty"`

	Status     Status          `json:"status"`
	AssignedTo string          `json:"assigned_to,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Identified reports whether any extraction has populated the record yet.
// A lead row is only created once this is true.
func (l Lead) Identified() bool {
	return l.Name != "" || l.Company != "" || l.Email != "" || l.Phone != "" ||
		l.NeedDescription != "" || l.Budget != ""
}

// Contactable reports whether at least one contact channel is known.
func (l Lead) Contactable() bool {
	return l.Email != "" || l.Phone != ""
}

// MarkQualified transitions the lead to qualified. A lead with no email and
// no phone cannot be qualified; the status is left unchanged in that case.
func (l *Lead) MarkQualified() error {
	if !l.Contactable() {
		return fmt.Errorf("qualify lead without contact channel: %w", ErrValidation)
	}
	l.Status = StatusQualified
	return nil
}

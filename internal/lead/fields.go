package lead

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Fields is the enumerated extraction payload for a single turn. The
// upstream LLM collaborator emits arbitrary JSON; ParseFields maps it onto
// this schema and rejects anything it does not recognise. Pointers
// distinguish "not mentioned" from an explicit false.
type Fields struct {
	Name             string `json:"name,omitempty"`
	Title            string `json:"title,omitempty"`
	Company          string `json:"company,omitempty"`
	Industry         string `json:"industry,omitempty"`
	CompanySize      int    `json:"company_size,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	PreferredChannel string `json:"preferred_channel,omitempty"`
	NeedDescription  string `json:"need_description,omitempty"`
	Urgency          string `json:"urgency,omitempty"`
	CurrentProblems  string `json:"current_problems,omitempty"`
	Budget           string `json:"budget,omitempty"`
	Timeline         string `json:"timeline,omitempty"`
	HasAuthority     *bool  `json:"has_authority,omitempty"`
	IsDecisionMaker  *bool  `json:"is_decision_maker,omitempty"`
}

// Empty reports whether no field carries a value.
func (f Fields) Empty() bool {
	return f.Name == "" && f.Title == "" && f.Company == "" && f.Industry == "" &&
		f.CompanySize == 0 && f.Email == "" && f.Phone == "" && f.PreferredChannel == "" &&
		f.NeedDescription == "" && f.Urgency == "" && f.CurrentProblems == "" &&
		f.Budget == "" && f.Timeline == "" && f.HasAuthority == nil && f.IsDecisionMaker == nil
}

var knownFieldKeys = map[string]bool{
	"name": true, "title": true, "company": true, "industry": true,
	"company_size": true, "email": true, "phone": true,
	"preferred_channel": true, "need_description": true, "urgency": true,
	"current_problems": true, "budget": true, "timeline": true,
	"has_authority": true, "is_decision_maker": true,
}

// ParseFields decodes a raw extraction payload into the enumerated schema.
// Unrecognised keys make the whole payload invalid (ErrValidation) so a
// drifting prompt can't silently smuggle data into the lead record.
func ParseFields(raw json.RawMessage) (Fields, error) {
	if len(raw) == 0 {
		return Fields{}, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Fields{}, fmt.Errorf("extraction payload is not an object: %w", ErrValidation)
	}

	var unknown []string
	for k := range keys {
		if !knownFieldKeys[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Fields{}, fmt.Errorf("unrecognised extraction keys %v: %w", unknown, ErrValidation)
	}

	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return Fields{}, fmt.Errorf("decode extraction payload: %w", ErrValidation)
	}
	f.Urgency = normalizeUrgency(f.Urgency)
	return f, nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail checks the basic shape of an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidPhone requires at least seven digits, ignoring separators.
func ValidPhone(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}

var budgetPattern = regexp.MustCompile(`(?i)([0-9][0-9.,]*)\s*(mil\b|k\b|m\b)?`)

var currencyTokens = []struct {
	token string
	code  string
}{
	{"eur", "EUR"}, {"euro", "EUR"}, {"€", "EUR"},
	{"usd", "USD"}, {"dollar", "USD"}, {"dolares", "USD"}, {"dólares", "USD"}, {"$", "USD"},
	{"mxn", "MXN"}, {"pesos", "MXN"},
	{"gbp", "GBP"}, {"£", "GBP"},
}

// ParseBudget extracts a monetary magnitude and currency from a free-text
// budget statement like "50000 EUR" or "between 15k and 25k dollars".
// Ranges resolve to their first figure. ok is false when no magnitude is
// present — the statement is kept verbatim but scores as vague.
func ParseBudget(s string) (amount float64, currency string, ok bool) {
	m := budgetPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}

	num := strings.ReplaceAll(m[1], ",", "")
	// "50.000" style thousands separators: drop dots not followed by cents.
	if dot := strings.Index(num, "."); dot >= 0 && len(num)-dot-1 == 3 {
		num = strings.ReplaceAll(num, ".", "")
	}
	amount, err := strconv.ParseFloat(num, 64)
	if err != nil || amount <= 0 {
		return 0, "", false
	}

	switch strings.ToLower(m[2]) {
	case "k", "mil":
		amount *= 1_000
	case "m":
		amount *= 1_000_000
	}

	// When a statement names several currencies, the one mentioned first
	// wins, so repeated parses of the same text always agree.
	lower := strings.ToLower(s)
	first := -1
	for _, ct := range currencyTokens {
		if i := strings.Index(lower, ct.token); i >= 0 && (first == -1 || i < first) {
			first = i
			currency = ct.code
		}
	}
	return amount, currency, true
}

// ValidUrgency accepts the normalized urgency enum.
func ValidUrgency(s string) bool {
	switch s {
	case "low", "medium", "high":
		return true
	}
	return false
}

func normalizeUrgency(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "baja":
		return "low"
	case "medium", "media":
		return "medium"
	case "high", "alta", "urgente", "urgent":
		return "high"
	case "":
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

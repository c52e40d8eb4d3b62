package lead

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseFields_KnownKeys(t *testing.T) {
	raw := json.RawMessage(`{"name":"María","budget":"50000 EUR","urgency":"alta"}`)

	f, err := ParseFields(raw)
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	if f.Name != "María" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Urgency != "high" {
		t.Errorf("Urgency = %q, want high (normalized from alta)", f.Urgency)
	}
}

func TestParseFields_UnknownKeyRejected(t *testing.T) {
	raw := json.RawMessage(`{"name":"María","favorite_color":"blue"}`)

	_, err := ParseFields(raw)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestParseFields_NotAnObject(t *testing.T) {
	_, err := ParseFields(json.RawMessage(`["a","b"]`))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestParseFields_Empty(t *testing.T) {
	f, err := ParseFields(nil)
	if err != nil {
		t.Fatalf("ParseFields(nil): %v", err)
	}
	if !f.Empty() {
		t.Errorf("Empty() = false for zero payload")
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"maria@norte.es", true},
		{"a@b.co", true},
		{" user@host.com ", true},
		{"no-at-sign", false},
		{"two@@host.com", false},
		{"user@nodot", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidEmail(tt.in); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+34 600 123 456", true},
		{"6001234", true},
		{"600-123", false},
		{"call me", false},
	}
	for _, tt := range tests {
		if got := ValidPhone(tt.in); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		amount   float64
		currency string
		ok       bool
	}{
		{"plain euros", "50000 EUR", 50000, "EUR", true},
		{"thousands separator", "50.000 euros", 50000, "EUR", true},
		{"comma separator", "50,000 dollars", 50000, "USD", true},
		{"k suffix", "20k USD", 20000, "USD", true},
		{"spanish mil", "50 mil pesos", 50000, "MXN", true},
		{"million", "1.5m", 1500000, "", true},
		{"range takes first figure", "between 15k and 25k euros", 15000, "EUR", true},
		{"symbol currency", "€30000", 30000, "EUR", true},
		{"mixed currencies keep the first", "10000 dollars, though in euros around 9000", 10000, "USD", true},
		{"mixed currencies euro first", "9000 euros, maybe 10000 dollars", 9000, "EUR", true},
		{"vague", "we have not decided", 0, "", false},
		{"empty", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, currency, ok := ParseBudget(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if amount != tt.amount {
				t.Errorf("amount = %f, want %f", amount, tt.amount)
			}
			if currency != tt.currency {
				t.Errorf("currency = %q, want %q", currency, tt.currency)
			}
		})
	}
}

func TestParseBudget_MixedCurrencyStable(t *testing.T) {
	const in = "10000 dollars, though in euros around 9000"
	_, first, _ := ParseBudget(in)
	for i := 0; i < 200; i++ {
		_, currency, _ := ParseBudget(in)
		if currency != first {
			t.Fatalf("currency flapped on iteration %d: %q then %q", i, first, currency)
		}
	}
	if first != "USD" {
		t.Errorf("currency = %q, want USD (first mention)", first)
	}
}

func TestMarkQualified(t *testing.T) {
	l := Lead{Name: "Ana"}
	if err := l.MarkQualified(); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for uncontactable lead", err)
	}
	if l.Status == StatusQualified {
		t.Error("status changed despite validation failure")
	}

	l.Email = "ana@corp.com"
	if err := l.MarkQualified(); err != nil {
		t.Fatalf("MarkQualified: %v", err)
	}
	if l.Status != StatusQualified {
		t.Errorf("Status = %q, want qualified", l.Status)
	}
}

package lead

import (
	"reflect"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestMerge_FillsEmptyFields(t *testing.T) {
	l := Lead{}
	f := Fields{
		Name:            "María González",
		Company:         "Distribuciones Norte",
		Email:           "maria@norte.es",
		Phone:           "+34 600 123 456",
		NeedDescription: "inventory management for 50 employees",
		Budget:          "50000 EUR",
		IsDecisionMaker: boolPtr(true),
	}

	got := Merge(l, f)

	if got.Name != "María González" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Email != "maria@norte.es" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.Budget != "50000 EUR" {
		t.Errorf("Budget = %q", got.Budget)
	}
	if got.BudgetAmount != 50000 {
		t.Errorf("BudgetAmount = %f, want 50000", got.BudgetAmount)
	}
	if got.BudgetCurrency != "EUR" {
		t.Errorf("BudgetCurrency = %q, want EUR", got.BudgetCurrency)
	}
	if got.IsDecisionMaker == nil || !*got.IsDecisionMaker {
		t.Error("IsDecisionMaker not set")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	f := Fields{
		Name:         "Carlos",
		Email:        "carlos@acme.com",
		Budget:       "20k USD",
		Urgency:      "high",
		HasAuthority: boolPtr(true),
	}

	once := Merge(Lead{}, f)
	twice := Merge(once, f)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce  = %+v\ntwice = %+v", once, twice)
	}
}

func TestMerge_IdempotentWithMixedCurrencyBudget(t *testing.T) {
	f := Fields{Budget: "10000 dollars, though in euros around 9000"}

	once := Merge(Lead{}, f)
	twice := Merge(once, f)

	if once.BudgetCurrency != "USD" {
		t.Errorf("BudgetCurrency = %q, want USD (first mention)", once.BudgetCurrency)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce  = %+v\ntwice = %+v", once, twice)
	}
}

func TestMerge_AbsentFieldsDoNotRegress(t *testing.T) {
	l := Lead{Name: "Ana", Email: "ana@corp.com", Urgency: "medium"}

	got := Merge(l, Fields{Company: "Corp SA"})

	if got.Name != "Ana" || got.Email != "ana@corp.com" || got.Urgency != "medium" {
		t.Errorf("existing fields regressed: %+v", got)
	}
	if got.Company != "Corp SA" {
		t.Errorf("Company = %q", got.Company)
	}
}

func TestMerge_RestatementOverwrites(t *testing.T) {
	l := Lead{Budget: "around 10k", BudgetAmount: 10000}

	got := Merge(l, Fields{Budget: "actually 25000 EUR"})

	if got.BudgetAmount != 25000 {
		t.Errorf("BudgetAmount = %f, want 25000", got.BudgetAmount)
	}
	if got.BudgetCurrency != "EUR" {
		t.Errorf("BudgetCurrency = %q", got.BudgetCurrency)
	}
}

func TestMerge_InvalidEmailLeavesExisting(t *testing.T) {
	l := Lead{Email: "good@corp.com"}

	got := Merge(l, Fields{Email: "not-an-email"})

	if got.Email != "good@corp.com" {
		t.Errorf("Email = %q, want good@corp.com", got.Email)
	}
}

func TestMerge_InvalidPhoneRejected(t *testing.T) {
	got := Merge(Lead{}, Fields{Phone: "12345"})
	if got.Phone != "" {
		t.Errorf("Phone = %q, want empty", got.Phone)
	}
}

func TestMerge_VagueBudgetDropsStaleAmount(t *testing.T) {
	l := Lead{Budget: "50000 EUR", BudgetAmount: 50000, BudgetCurrency: "EUR"}

	got := Merge(l, Fields{Budget: "we have not decided yet"})

	if got.BudgetAmount != 0 {
		t.Errorf("BudgetAmount = %f, want 0 after vague restatement", got.BudgetAmount)
	}
	if got.Budget != "we have not decided yet" {
		t.Errorf("Budget = %q", got.Budget)
	}
}

func TestMerge_ExplicitFalsePreserved(t *testing.T) {
	got := Merge(Lead{}, Fields{IsDecisionMaker: boolPtr(false)})
	if got.IsDecisionMaker == nil {
		t.Fatal("IsDecisionMaker nil, want explicit false")
	}
	if *got.IsDecisionMaker {
		t.Error("IsDecisionMaker = true, want false")
	}
}

package lead

import "strings"

// Merge applies a turn's extraction onto an existing lead, field by field.
// A new value wins only when it is non-empty and passes its validity check;
// re-statements overwrite (last-write-wins), absent fields never regress an
// already-known value. Merge is pure and idempotent.
func Merge(l Lead, f Fields) Lead {
	setStr(&l.Name, f.Name)
	setStr(&l.Title, f.Title)
	setStr(&l.Company, f.Company)
	setStr(&l.Industry, f.Industry)
	if f.CompanySize > 0 {
		l.CompanySize = f.CompanySize
	}

	if v := strings.TrimSpace(f.Email); v != "" && ValidEmail(v) {
		l.Email = v
	}
	if v := strings.TrimSpace(f.Phone); v != "" && ValidPhone(v) {
		l.Phone = v
	}
	setStr(&l.PreferredChannel, f.PreferredChannel)

	setStr(&l.NeedDescription, f.NeedDescription)
	if ValidUrgency(f.Urgency) {
		l.Urgency = f.Urgency
	}
	setStr(&l.CurrentProblems, f.CurrentProblems)

	if v := strings.TrimSpace(f.Budget); v != "" {
		l.Budget = v
		if amount, currency, ok := ParseBudget(v); ok {
			l.BudgetAmount = amount
			if currency != "" {
				l.BudgetCurrency = currency
			}
		} else {
			// Vague statement: keep the text, drop any stale magnitude.
			l.BudgetAmount = 0
		}
	}
	setStr(&l.Timeline, f.Timeline)

	if f.HasAuthority != nil {
		v := *f.HasAuthority
		l.HasAuthority = &v
	}
	if f.IsDecisionMaker != nil {
		v := *f.IsDecisionMaker
		l.IsDecisionMaker = &v
	}

	return l
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Package scoring computes the deterministic 0-100 lead score and its
// categorical outputs. Same lead in, same score out; the pipeline re-scores
// after every turn and relies on that.
package scoring

import (
	"strings"
	"unicode"

	"github.com/aova-labs/aova/internal/lead"
)

// Fixed point allotments. They sum to exactly 100.
const (
	pointsDecisionMaker = 20
	pointsAuthority     = 15
	pointsBudget        = 20
	pointsBudgetVague   = 10
	pointsTimeline      = 15
	pointsTimelineVague = 8
	pointsEmail         = 8
	pointsPhone         = 5
	pointsChannel       = 2
	pointsNeed          = 10
	pointsProblems      = 5
)

// Category thresholds.
const (
	highThreshold   = 80
	mediumThreshold = 60
)

// Result bundles the derived lead-quality outputs.
type Result struct {
	Score    int
	Category string
	Grade    string
	Priority string
}

// Score computes the weighted lead score and its category, grade and
// priority. Partial credit: a budget or timeline that was stated but stays
// vague earns roughly half the full allotment.
func Score(l lead.Lead) Result {
	score := 0

	if l.IsDecisionMaker != nil && *l.IsDecisionMaker {
		score += pointsDecisionMaker
	}
	if l.HasAuthority != nil && *l.HasAuthority {
		score += pointsAuthority
	}

	switch {
	case l.BudgetAmount > 0:
		score += pointsBudget
	case l.Budget != "":
		score += pointsBudgetVague
	}

	switch {
	case l.Timeline != "" && preciseTimeline(l.Timeline):
		score += pointsTimeline
	case l.Timeline != "":
		score += pointsTimelineVague
	}

	if l.Email != "" {
		score += pointsEmail
	}
	if l.Phone != "" {
		score += pointsPhone
	}
	if l.PreferredChannel != "" {
		score += pointsChannel
	}

	if l.NeedDescription != "" {
		score += pointsNeed
	}
	if l.CurrentProblems != "" {
		score += pointsProblems
	}

	if score > 100 {
		score = 100
	}

	category := categorize(score)
	return Result{
		Score:    score,
		Category: category,
		Grade:    gradeFor(category),
		Priority: priorityFor(category, l.Urgency),
	}
}

func categorize(score int) string {
	switch {
	case score >= highThreshold:
		return "high"
	case score >= mediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

func gradeFor(category string) string {
	switch category {
	case "high":
		return "A"
	case "medium":
		return "B"
	default:
		return "C"
	}
}

// priorityFor derives priority from category; high urgency upgrades a
// medium lead's priority to high without touching the category itself.
func priorityFor(category, urgency string) string {
	if category == "medium" && urgency == "high" {
		return "high"
	}
	return category
}

var timelineMarkers = map[string]bool{
	"trimestre": true, "trimestres": true, "quarter": true, "quarters": true,
	"q1": true, "q2": true, "q3": true, "q4": true,
	"mes": true, "meses": true, "month": true, "months": true,
	"semana": true, "semanas": true, "week": true, "weeks": true,
	"día": true, "días": true, "dia": true, "dias": true, "day": true, "days": true,
	"enero": true, "febrero": true, "marzo": true, "abril": true,
	"mayo": true, "junio": true, "julio": true, "agosto": true,
	"septiembre": true, "octubre": true, "noviembre": true, "diciembre": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}

// preciseTimeline: a timeline earns full weight when it names a concrete
// point or span (a number, a quarter, a month) rather than "soon".
// Markers match whole words only, so "maybe" never reads as May.
func preciseTimeline(s string) bool {
	lower := strings.ToLower(s)
	for _, r := range lower {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		if timelineMarkers[w] {
			return true
		}
	}
	return false
}

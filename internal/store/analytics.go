package store

import (
	"context"
	"fmt"
	"time"
)

// DashboardData is the aggregate the review dashboard renders: totals,
// per-day activity, the score-distribution buckets and how conversations
// end. Everything here is recomputable from the base tables.
type DashboardData struct {
	PeriodDays         int            `json:"period_days"`
	TotalLeads         int            `json:"total_leads"`
	TotalConversations int            `json:"total_conversations"`
	LeadsByDay         map[string]int `json:"leads_by_day"`
	ConversationsByDay map[string]int `json:"conversations_by_day"`
	ScoreDistribution  map[string]int `json:"score_distribution"`
	PhaseDistribution  map[string]int `json:"phase_distribution"`
}

// Score buckets match the original reporting views: high >= 80,
// medium >= 60, low >= 40, unqualified below.
func scoreBucket(score int) string {
	switch {
	case score >= 80:
		return "high_quality"
	case score >= 60:
		return "medium_quality"
	case score >= 40:
		return "low_quality"
	default:
		return "unqualified"
	}
}

// Dashboard builds the analytics aggregate over the trailing window.
func (s *Postgres) Dashboard(ctx context.Context, days int) (*DashboardData, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	d := &DashboardData{
		PeriodDays:         days,
		LeadsByDay:         make(map[string]int),
		ConversationsByDay: make(map[string]int),
		ScoreDistribution:  make(map[string]int),
		PhaseDistribution:  make(map[string]int),
	}

	rows, err := s.pool.Query(ctx, `
		SELECT created_at::date::text, score FROM leads WHERE created_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	for rows.Next() {
		var day string
		var score int
		if err := rows.Scan(&day, &score); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		d.TotalLeads++
		d.LeadsByDay[day]++
		d.ScoreDistribution[scoreBucket(score)]++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT created_at::date::text, COALESCE(final_phase, '') FROM conversations WHERE created_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day, finalPhase string
		if err := rows.Scan(&day, &finalPhase); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		d.TotalConversations++
		d.ConversationsByDay[day]++
		if finalPhase == "" {
			finalPhase = "unknown"
		}
		d.PhaseDistribution[finalPhase]++
	}
	return d, rows.Err()
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aova-labs/aova/internal/lead"
)

// ErrNotFound is returned for lookups that match no row.
var ErrNotFound = errors.New("not found")

// UpsertLead writes the full lead record, inserting on first sight and
// overwriting on every later turn. The raw extraction payload travels in
// raw_data for dashboard drill-down.
func (s *Postgres) UpsertLead(ctx context.Context, l *lead.Lead) error {
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (
			id, name, title, company, industry, company_size,
			email, phone, preferred_channel,
			need_description, urgency, current_problems,
			budget, budget_amount, budget_currency, timeline,
			has_authority, is_decision_maker,
			score, category, grade, priority,
			status, assigned_to, raw_data, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			industry = EXCLUDED.industry,
			company_size = EXCLUDED.company_size,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			preferred_channel = EXCLUDED.preferred_channel,
			need_description = EXCLUDED.need_description,
			urgency = EXCLUDED.urgency,
			current_problems = EXCLUDED.current_problems,
			budget = EXCLUDED.budget,
			budget_amount = EXCLUDED.budget_amount,
			budget_currency = EXCLUDED.budget_currency,
			timeline = EXCLUDED.timeline,
			has_authority = EXCLUDED.has_authority,
			is_decision_maker = EXCLUDED.is_decision_maker,
			score = EXCLUDED.score,
			category = EXCLUDED.category,
			grade = EXCLUDED.grade,
			priority = EXCLUDED.priority,
			status = EXCLUDED.status,
			assigned_to = EXCLUDED.assigned_to,
			raw_data = EXCLUDED.raw_data,
			updated_at = EXCLUDED.updated_at`,
		l.ID, l.Name, l.Title, l.Company, l.Industry, l.CompanySize,
		l.Email, l.Phone, l.PreferredChannel,
		l.NeedDescription, l.Urgency, l.CurrentProblems,
		l.Budget, l.BudgetAmount, l.BudgetCurrency, l.Timeline,
		l.HasAuthority, l.IsDecisionMaker,
		l.Score, l.Category, l.Grade, l.Priority,
		string(l.Status), l.AssignedTo, l.Raw, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

// UpdateLeadStatus flips only the lifecycle status, used by the review loop.
func (s *Postgres) UpdateLeadStatus(ctx context.Context, id uuid.UUID, status lead.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE leads SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %s: %w", id, ErrNotFound)
	}
	return nil
}

const leadColumns = `
	id, name, title, company, industry, company_size,
	email, phone, preferred_channel,
	need_description, urgency, current_problems,
	budget, budget_amount, budget_currency, timeline,
	has_authority, is_decision_maker,
	score, category, grade, priority,
	status, assigned_to, raw_data, created_at, updated_at`

func scanLead(row pgx.Row) (lead.Lead, error) {
	var l lead.Lead
	var status string
	err := row.Scan(
		&l.ID, &l.Name, &l.Title, &l.Company, &l.Industry, &l.CompanySize,
		&l.Email, &l.Phone, &l.PreferredChannel,
		&l.NeedDescription, &l.Urgency, &l.CurrentProblems,
		&l.Budget, &l.BudgetAmount, &l.BudgetCurrency, &l.Timeline,
		&l.HasAuthority, &l.IsDecisionMaker,
		&l.Score, &l.Category, &l.Grade, &l.Priority,
		&status, &l.AssignedTo, &l.Raw, &l.CreatedAt, &l.UpdatedAt,
	)
	l.Status = lead.Status(status)
	return l, err
}

// GetLead fetches one lead by id.
func (s *Postgres) GetLead(ctx context.Context, id uuid.UUID) (lead.Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return lead.Lead{}, fmt.Errorf("lead %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return lead.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

// LeadFilter narrows ListLeads. Zero values mean "no constraint".
type LeadFilter struct {
	Status   lead.Status
	Category string
	MinScore int
	Limit    int
}

// ListLeads returns leads best-first for the review dashboard.
func (s *Postgres) ListLeads(ctx context.Context, f LeadFilter) ([]lead.Lead, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		  AND score >= $3
		ORDER BY score DESC, updated_at DESC
		LIMIT $4`,
		string(f.Status), f.Category, f.MinScore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []lead.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aova-labs/aova/internal/lead"
)

func setupTestStore(t *testing.T) *Postgres {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestLeadRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	l := lead.Lead{
		ID:        uuid.New(),
		Name:      "Integration Test Lead",
		Company:   "Testco",
		Email:     "integration@testco.example",
		Score:     72,
		Category:  "medium",
		Grade:     "B",
		Priority:  "medium",
		Status:    lead.StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.UpsertLead(ctx, &l); err != nil {
		t.Fatalf("UpsertLead: %v", err)
	}

	got, err := s.GetLead(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.Name != l.Name || got.Email != l.Email || got.Score != l.Score {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := s.UpdateLeadStatus(ctx, l.ID, lead.StatusContacted); err != nil {
		t.Fatalf("UpdateLeadStatus: %v", err)
	}
	got, err = s.GetLead(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetLead after status update: %v", err)
	}
	if got.Status != lead.StatusContacted {
		t.Errorf("Status = %q, want contacted", got.Status)
	}
}

func TestUpdateLeadStatus_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateLeadStatus(context.Background(), uuid.New(), lead.StatusContacted)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListLeads_Filter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	leads, err := s.ListLeads(ctx, LeadFilter{Category: "high", MinScore: 80, Limit: 10})
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	for _, l := range leads {
		if l.Category != "high" || l.Score < 80 {
			t.Errorf("filter leaked lead: %+v", l)
		}
	}
}

package dedup

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pair is two lead ids that share a contact identifier.
type Pair struct {
	A uuid.UUID
	B uuid.UUID
}

// Scanner finds leads that share a normalized email or phone number.
type Scanner struct {
	pool *pgxpool.Pool
}

func NewScanner(pool *pgxpool.Pool) *Scanner {
	return &Scanner{pool: pool}
}

// FindDuplicatePairs self-joins the leads table on lowercased email and on
// digits-only phone. Rows with empty contact fields never match.
func (s *Scanner) FindDuplicatePairs(ctx context.Context) ([]Pair, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, b.id
		FROM leads a
		JOIN leads b ON a.id < b.id
		 AND lower(a.email) = lower(b.email)
		WHERE a.email <> ''
		UNION
		SELECT a.id, b.id
		FROM leads a
		JOIN leads b ON a.id < b.id
		 AND regexp_replace(a.phone, '\D', '', 'g') = regexp_replace(b.phone, '\D', '', 'g')
		WHERE a.phone <> ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("query duplicate pairs: %w", err)
	}
	defer rows.Close()

	var pairs []Pair
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.A, &p.B); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

package memory

import (
	"context"
	"fmt"
	"strings"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// PostgresStore reads and appends the brand_memory table.
type PostgresStore struct {
	sql infra.SQLExecutor
}

func NewPostgresStore(sql infra.SQLExecutor) *PostgresStore {
	return &PostgresStore{sql: sql}
}

func (s *PostgresStore) Load(ctx context.Context, brandID string) (domain.MemorySnapshot, error) {
	if strings.TrimSpace(brandID) == "" {
		return domain.MemorySnapshot{BrandID: brandID}, nil
	}
	rows, err := s.sql.Query(ctx, sqlinline.QSelectBrandMemory, brandID, RecentEntries)
	if err != nil {
		return domain.MemorySnapshot{BrandID: brandID}, fmt.Errorf("load memory: %w", err)
	}
	defer rows.Close()

	var entries []domain.MemoryEntry
	for rows.Next() {
		var objective, framework, tone string
		if err := rows.Scan(&objective, &framework, &tone); err != nil {
			return domain.MemorySnapshot{BrandID: brandID}, fmt.Errorf("scan memory: %w", err)
		}
		entries = append(entries, domain.MemoryEntry{
			Objective:          domain.Objective(objective),
			MessagingFramework: framework,
			EmotionalTone:      tone,
		})
	}
	if err := rows.Err(); err != nil {
		return domain.MemorySnapshot{BrandID: brandID}, fmt.Errorf("iterate memory: %w", err)
	}

	var total int
	if err := s.sql.QueryRow(ctx, sqlinline.QCountBrandMemory, brandID).Scan(&total); err != nil {
		total = len(entries)
	}
	return snapshotFrom(brandID, entries, total), nil
}

func (s *PostgresStore) Record(ctx context.Context, brandID string, entry domain.MemoryEntry) error {
	if strings.TrimSpace(brandID) == "" {
		return nil
	}
	_, err := s.sql.Exec(ctx, sqlinline.QInsertBrandMemory,
		brandID, string(entry.Objective), strings.TrimSpace(entry.MessagingFramework), strings.TrimSpace(entry.EmotionalTone))
	if err != nil {
		return fmt.Errorf("record memory: %w", err)
	}
	return nil
}

var _ domain.MemoryStore = (*PostgresStore)(nil)

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnfin/refdata/internal/models"
)

// PeRepository handles database operations for PE records
type PeRepository struct {
	pool *pgxpool.Pool
}

// NewPeRepository creates a new PeRepository
func NewPeRepository(pool *pgxpool.Pool) *PeRepository {
	return &PeRepository{pool: pool}
}

// Upsert inserts or updates one PE record atomically by (symbol, report_date).
func (r *PeRepository) Upsert(ctx context.Context, rec *models.PeRecord) (bool, error) {
	query := `
		INSERT INTO pe_records (symbol, report_date, pe, industry_pe)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, report_date) DO UPDATE SET
			pe = COALESCE(EXCLUDED.pe, pe_records.pe),
			industry_pe = COALESCE(EXCLUDED.industry_pe, pe_records.industry_pe)
		RETURNING (xmax = 0)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query, rec.Symbol, rec.ReportDate, rec.Pe, rec.IndustryPe).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert PE for %s: %w", rec.Symbol, err)
	}
	return created, nil
}

// List retrieves PE records for a symbol ordered by report date.
func (r *PeRepository) List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.PeRecord, error) {
	query := `
		SELECT symbol, report_date, pe, industry_pe
		FROM pe_records
		WHERE symbol = $1
		  AND ($2::date IS NULL OR report_date >= $2)
		  AND ($3::date IS NULL OR report_date <= $3)
		ORDER BY report_date
	`
	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query PE records: %w", err)
	}
	defer rows.Close()

	var result []*models.PeRecord
	for rows.Next() {
		rec := &models.PeRecord{}
		if err := rows.Scan(&rec.Symbol, &rec.ReportDate, &rec.Pe, &rec.IndustryPe); err != nil {
			return nil, fmt.Errorf("failed to scan PE record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

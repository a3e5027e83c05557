package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnfin/refdata/internal/models"
)

// RoaRoeRepository handles database operations for ROA/ROE records
type RoaRoeRepository struct {
	pool *pgxpool.Pool
}

// NewRoaRoeRepository creates a new RoaRoeRepository
func NewRoaRoeRepository(pool *pgxpool.Pool) *RoaRoeRepository {
	return &RoaRoeRepository{pool: pool}
}

// Upsert inserts or updates one ROA/ROE record atomically by
// (symbol, report_date).
func (r *RoaRoeRepository) Upsert(ctx context.Context, rec *models.RoaRoeRecord) (bool, error) {
	query := `
		INSERT INTO roa_roe_records (symbol, report_date, roa, roe, roa_industry, roe_industry, roe_industry_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, report_date) DO UPDATE SET
			roa = COALESCE(EXCLUDED.roa, roa_roe_records.roa),
			roe = COALESCE(EXCLUDED.roe, roa_roe_records.roe),
			roa_industry = COALESCE(EXCLUDED.roa_industry, roa_roe_records.roa_industry),
			roe_industry = COALESCE(EXCLUDED.roe_industry, roa_roe_records.roe_industry),
			roe_industry_rate = COALESCE(EXCLUDED.roe_industry_rate, roa_roe_records.roe_industry_rate)
		RETURNING (xmax = 0)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query,
		rec.Symbol, rec.ReportDate, rec.Roa, rec.Roe, rec.RoaIndustry, rec.RoeIndustry, rec.RoeIndustryRate,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert ROA/ROE for %s: %w", rec.Symbol, err)
	}
	return created, nil
}

// List retrieves ROA/ROE records for a symbol ordered by report date.
func (r *RoaRoeRepository) List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.RoaRoeRecord, error) {
	query := `
		SELECT symbol, report_date, roa, roe, roa_industry, roe_industry, roe_industry_rate
		FROM roa_roe_records
		WHERE symbol = $1
		  AND ($2::date IS NULL OR report_date >= $2)
		  AND ($3::date IS NULL OR report_date <= $3)
		ORDER BY report_date
	`
	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query ROA/ROE records: %w", err)
	}
	defer rows.Close()

	var result []*models.RoaRoeRecord
	for rows.Next() {
		rec := &models.RoaRoeRecord{}
		if err := rows.Scan(&rec.Symbol, &rec.ReportDate, &rec.Roa, &rec.Roe,
			&rec.RoaIndustry, &rec.RoeIndustry, &rec.RoeIndustryRate); err != nil {
			return nil, fmt.Errorf("failed to scan ROA/ROE record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnfin/refdata/internal/models"
)

// FinancialRatioRepository handles database operations for financial ratio records
type FinancialRatioRepository struct {
	pool *pgxpool.Pool
}

// NewFinancialRatioRepository creates a new FinancialRatioRepository
func NewFinancialRatioRepository(pool *pgxpool.Pool) *FinancialRatioRepository {
	return &FinancialRatioRepository{pool: pool}
}

// Upsert inserts or updates one financial ratio record atomically by
// (symbol, report_date).
func (r *FinancialRatioRepository) Upsert(ctx context.Context, rec *models.FinancialRatioRecord) (bool, error) {
	query := `
		INSERT INTO financial_ratio_records (symbol, report_date, debt_to_equity, current_ratio, quick_ratio, gross_margin)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, report_date) DO UPDATE SET
			debt_to_equity = COALESCE(EXCLUDED.debt_to_equity, financial_ratio_records.debt_to_equity),
			current_ratio = COALESCE(EXCLUDED.current_ratio, financial_ratio_records.current_ratio),
			quick_ratio = COALESCE(EXCLUDED.quick_ratio, financial_ratio_records.quick_ratio),
			gross_margin = COALESCE(EXCLUDED.gross_margin, financial_ratio_records.gross_margin)
		RETURNING (xmax = 0)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query,
		rec.Symbol, rec.ReportDate, rec.DebtToEquity, rec.CurrentRatio, rec.QuickRatio, rec.GrossMargin,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert financial ratios for %s: %w", rec.Symbol, err)
	}
	return created, nil
}

// List retrieves financial ratio records for a symbol ordered by report date.
func (r *FinancialRatioRepository) List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.FinancialRatioRecord, error) {
	query := `
		SELECT symbol, report_date, debt_to_equity, current_ratio, quick_ratio, gross_margin
		FROM financial_ratio_records
		WHERE symbol = $1
		  AND ($2::date IS NULL OR report_date >= $2)
		  AND ($3::date IS NULL OR report_date <= $3)
		ORDER BY report_date
	`
	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial ratio records: %w", err)
	}
	defer rows.Close()

	var result []*models.FinancialRatioRecord
	for rows.Next() {
		rec := &models.FinancialRatioRecord{}
		if err := rows.Scan(&rec.Symbol, &rec.ReportDate, &rec.DebtToEquity,
			&rec.CurrentRatio, &rec.QuickRatio, &rec.GrossMargin); err != nil {
			return nil, fmt.Errorf("failed to scan financial ratio record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

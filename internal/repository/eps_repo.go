package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnfin/refdata/internal/models"
)

// EpsRepository handles database operations for EPS records
type EpsRepository struct {
	pool *pgxpool.Pool
}

// NewEpsRepository creates a new EpsRepository
func NewEpsRepository(pool *pgxpool.Pool) *EpsRepository {
	return &EpsRepository{pool: pool}
}

const epsUpsertQuery = `
	INSERT INTO eps_records (symbol, report_date, eps, industry_eps)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (symbol, report_date) DO UPDATE SET
		eps = COALESCE(EXCLUDED.eps, eps_records.eps),
		industry_eps = COALESCE(EXCLUDED.industry_eps, eps_records.industry_eps)
	RETURNING (xmax = 0)
`

// Upsert inserts or updates one EPS record atomically by (symbol, report_date).
// Null incoming metrics never overwrite stored values. Reports whether the row
// was created.
func (r *EpsRepository) Upsert(ctx context.Context, rec *models.EpsRecord) (bool, error) {
	var created bool
	err := r.pool.QueryRow(ctx, epsUpsertQuery,
		rec.Symbol, rec.ReportDate, rec.Eps, rec.IndustryEps,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert EPS for %s: %w", rec.Symbol, err)
	}
	return created, nil
}

// UpsertBatch upserts a batch of EPS records in a single round trip using
// pgx batching. Results align with the input slice; a failed record carries
// its error without affecting the others.
//
// pgx runs the whole batch in one implicit transaction, so a single failing
// statement rolls back every statement in the batch, including ones whose
// results were already read. When that happens the batch results cannot be
// trusted and each row is retried on its own connection round trip.
func (r *EpsRepository) UpsertBatch(ctx context.Context, recs []*models.EpsRecord) (created []bool, errs []error) {
	created = make([]bool, len(recs))
	errs = make([]error, len(recs))
	if len(recs) == 0 {
		return created, errs
	}

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(epsUpsertQuery, rec.Symbol, rec.ReportDate, rec.Eps, rec.IndustryEps)
	}

	br := r.pool.SendBatch(ctx, batch)
	aborted := false
	for i := range recs {
		if err := br.QueryRow().Scan(&created[i]); err != nil {
			aborted = true
		}
	}
	if err := br.Close(); err != nil {
		aborted = true
	}
	if !aborted {
		return created, errs
	}

	for i, rec := range recs {
		created[i], errs[i] = r.Upsert(ctx, rec)
	}
	return created, errs
}

// List retrieves EPS records for a symbol ordered by report date, optionally
// bounded by [from, to].
func (r *EpsRepository) List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.EpsRecord, error) {
	query := `
		SELECT symbol, report_date, eps, industry_eps
		FROM eps_records
		WHERE symbol = $1
		  AND ($2::date IS NULL OR report_date >= $2)
		  AND ($3::date IS NULL OR report_date <= $3)
		ORDER BY report_date
	`
	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query EPS records: %w", err)
	}
	defer rows.Close()

	var result []*models.EpsRecord
	for rows.Next() {
		rec := &models.EpsRecord{}
		if err := rows.Scan(&rec.Symbol, &rec.ReportDate, &rec.Eps, &rec.IndustryEps); err != nil {
			return nil, fmt.Errorf("failed to scan EPS record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

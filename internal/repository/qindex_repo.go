package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnfin/refdata/internal/models"
)

// ErrStockMissing is returned when a Q-index row references a stock id that
// does not exist. Q-index imports do not auto-create parents.
var ErrStockMissing = errors.New("referenced stock does not exist")

// foreignKeyViolation is the SQLSTATE for a foreign key constraint failure
const foreignKeyViolation = "23503"

// QIndexRepository handles database operations for stock Q-index records
type QIndexRepository struct {
	pool *pgxpool.Pool
}

// NewQIndexRepository creates a new QIndexRepository
func NewQIndexRepository(pool *pgxpool.Pool) *QIndexRepository {
	return &QIndexRepository{pool: pool}
}

// Upsert inserts or updates one Q-index record atomically by (stock_id, date).
// A foreign key failure on stock_id reports ErrStockMissing so callers can
// classify the row as parent-not-found rather than a generic storage error.
func (r *QIndexRepository) Upsert(ctx context.Context, rec *models.StockQIndex) (bool, error) {
	query := `
		INSERT INTO stock_q_indexes (stock_id, date, q_index, volume)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (stock_id, date) DO UPDATE SET
			q_index = COALESCE(EXCLUDED.q_index, stock_q_indexes.q_index),
			volume = COALESCE(EXCLUDED.volume, stock_q_indexes.volume)
		RETURNING (xmax = 0)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query, rec.StockID, rec.Date, rec.QIndex, rec.Volume).Scan(&created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return false, fmt.Errorf("%w: stock_id %d", ErrStockMissing, rec.StockID)
		}
		return false, fmt.Errorf("failed to upsert Q-index for stock %d: %w", rec.StockID, err)
	}
	return created, nil
}

// List retrieves Q-index records for a stock ordered by date.
func (r *QIndexRepository) List(ctx context.Context, stockID int64, from, to *time.Time) ([]*models.StockQIndex, error) {
	query := `
		SELECT stock_id, date, q_index, volume
		FROM stock_q_indexes
		WHERE stock_id = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date
	`
	rows, err := r.pool.Query(ctx, query, stockID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query Q-index records: %w", err)
	}
	defer rows.Close()

	var result []*models.StockQIndex
	for rows.Next() {
		rec := &models.StockQIndex{}
		if err := rows.Scan(&rec.StockID, &rec.Date, &rec.QIndex, &rec.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan Q-index record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

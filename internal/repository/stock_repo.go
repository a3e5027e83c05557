package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnfin/refdata/internal/models"
)

var ErrStockNotFound = errors.New("stock not found")

// StockRepository handles database operations for stocks
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository creates a new StockRepository
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// Create inserts a new stock. Fails if the symbol already exists.
func (r *StockRepository) Create(ctx context.Context, stock *models.Stock) error {
	query := `
		INSERT INTO stocks (symbol, name, exchange, industry)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query, stock.Symbol, stock.Name, stock.Exchange, stock.Industry).Scan(&stock.ID)
	if err != nil {
		return fmt.Errorf("failed to create stock %s: %w", stock.Symbol, err)
	}
	return nil
}

// GetBySymbol retrieves a stock by its symbol
func (r *StockRepository) GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	query := `
		SELECT id, symbol, name, exchange, industry
		FROM stocks
		WHERE symbol = $1
	`
	s := &models.Stock{}
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&s.ID, &s.Symbol, &s.Name, &s.Exchange, &s.Industry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return s, nil
}

// GetByID retrieves a stock by its surrogate id
func (r *StockRepository) GetByID(ctx context.Context, id int64) (*models.Stock, error) {
	query := `
		SELECT id, symbol, name, exchange, industry
		FROM stocks
		WHERE id = $1
	`
	s := &models.Stock{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Symbol, &s.Name, &s.Exchange, &s.Industry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return s, nil
}

// Exists reports whether a stock with the given id is present.
func (r *StockRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stocks WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to check stock existence: %w", err)
	}
	return found, nil
}

// List retrieves a page of stocks ordered by symbol, optionally filtered by a
// case-insensitive symbol/name search term. page is 1-based.
func (r *StockRepository) List(ctx context.Context, search string, page, pageSize int) ([]*models.Stock, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	pattern := "%" + search + "%"
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM stocks WHERE $1 = '' OR symbol ILIKE $2 OR name ILIKE $2`,
		search, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count stocks: %w", err)
	}

	query := `
		SELECT id, symbol, name, exchange, industry
		FROM stocks
		WHERE $1 = '' OR symbol ILIKE $2 OR name ILIKE $2
		ORDER BY symbol
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, search, pattern, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var result []*models.Stock
	for rows.Next() {
		s := &models.Stock{}
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Name, &s.Exchange, &s.Industry); err != nil {
			return nil, 0, fmt.Errorf("failed to scan stock: %w", err)
		}
		result = append(result, s)
	}
	return result, total, rows.Err()
}

// Update applies a partial update to a stock. Nil pointer fields are left
// unchanged; the Clear flags null out the corresponding nullable column.
func (r *StockRepository) Update(ctx context.Context, symbol string, req *models.UpdateStockRequest) (*models.Stock, error) {
	query := `
		UPDATE stocks SET
			name = COALESCE($2, name),
			exchange = CASE WHEN $4 THEN NULL ELSE COALESCE($3, exchange) END,
			industry = CASE WHEN $6 THEN NULL ELSE COALESCE($5, industry) END
		WHERE symbol = $1
		RETURNING id, symbol, name, exchange, industry
	`
	s := &models.Stock{}
	err := r.pool.QueryRow(ctx, query,
		symbol, req.Name, req.Exchange, req.ClearExchange, req.Industry, req.ClearIndustry,
	).Scan(&s.ID, &s.Symbol, &s.Name, &s.Exchange, &s.Industry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update stock %s: %w", symbol, err)
	}
	return s, nil
}

// Delete removes a stock by symbol
func (r *StockRepository) Delete(ctx context.Context, symbol string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM stocks WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete stock %s: %w", symbol, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrStockNotFound
	}
	return nil
}

// Upsert inserts or updates a stock by symbol atomically, preserving stored
// values for fields the incoming record leaves null. Reports whether the row
// was created.
func (r *StockRepository) Upsert(ctx context.Context, stock *models.Stock) (bool, error) {
	query := `
		INSERT INTO stocks (symbol, name, exchange, industry)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), stocks.name),
			exchange = COALESCE(EXCLUDED.exchange, stocks.exchange),
			industry = COALESCE(EXCLUDED.industry, stocks.industry)
		RETURNING id, (xmax = 0)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query, stock.Symbol, stock.Name, stock.Exchange, stock.Industry).
		Scan(&stock.ID, &created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert stock %s: %w", stock.Symbol, err)
	}
	return created, nil
}

// EnsureExists creates a minimal stock record (symbol as name) when none
// exists, atomically, and returns its id. Used by series imports whose parent
// policy is auto-create.
func (r *StockRepository) EnsureExists(ctx context.Context, symbol string) (int64, error) {
	query := `
		INSERT INTO stocks (symbol, name)
		VALUES ($1, $1)
		ON CONFLICT (symbol) DO UPDATE SET symbol = EXCLUDED.symbol
		RETURNING id
	`
	// The no-op DO UPDATE makes RETURNING yield the existing row's id on
	// conflict, keeping this a single round-trip.
	var id int64
	if err := r.pool.QueryRow(ctx, query, symbol).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to ensure stock %s: %w", symbol, err)
	}
	return id, nil
}

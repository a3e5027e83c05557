package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnfin/refdata/internal/models"
)

// CurrencyPriceRepository handles database operations for currency prices
type CurrencyPriceRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyPriceRepository creates a new CurrencyPriceRepository
func NewCurrencyPriceRepository(pool *pgxpool.Pool) *CurrencyPriceRepository {
	return &CurrencyPriceRepository{pool: pool}
}

// Upsert inserts or updates one currency price atomically by
// (currency_code, date).
func (r *CurrencyPriceRepository) Upsert(ctx context.Context, rec *models.CurrencyPrice) (bool, error) {
	query := `
		INSERT INTO currency_prices (currency_code, date, buy_price, sell_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (currency_code, date) DO UPDATE SET
			buy_price = COALESCE(EXCLUDED.buy_price, currency_prices.buy_price),
			sell_price = COALESCE(EXCLUDED.sell_price, currency_prices.sell_price)
		RETURNING (xmax = 0)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query, rec.CurrencyCode, rec.Date, rec.BuyPrice, rec.SellPrice).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert currency price for %s: %w", rec.CurrencyCode, err)
	}
	return created, nil
}

// List retrieves currency prices for a currency code ordered by date.
func (r *CurrencyPriceRepository) List(ctx context.Context, currencyCode string, from, to *time.Time) ([]*models.CurrencyPrice, error) {
	query := `
		SELECT currency_code, date, buy_price, sell_price
		FROM currency_prices
		WHERE currency_code = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date
	`
	rows, err := r.pool.Query(ctx, query, currencyCode, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency prices: %w", err)
	}
	defer rows.Close()

	var result []*models.CurrencyPrice
	for rows.Next() {
		rec := &models.CurrencyPrice{}
		if err := rows.Scan(&rec.CurrencyCode, &rec.Date, &rec.BuyPrice, &rec.SellPrice); err != nil {
			return nil, fmt.Errorf("failed to scan currency price: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

package services

import (
	"context"
	"time"

	"github.com/vnfin/refdata/internal/models"
)

// Series list surfaces consumed by SeriesService.

type EpsLister interface {
	List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.EpsRecord, error)
}

type PeLister interface {
	List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.PeRecord, error)
}

type RoaRoeLister interface {
	List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.RoaRoeRecord, error)
}

type FinancialRatioLister interface {
	List(ctx context.Context, symbol string, from, to *time.Time) ([]*models.FinancialRatioRecord, error)
}

type CurrencyPriceLister interface {
	List(ctx context.Context, currencyCode string, from, to *time.Time) ([]*models.CurrencyPrice, error)
}

type QIndexLister interface {
	List(ctx context.Context, stockID int64, from, to *time.Time) ([]*models.StockQIndex, error)
}

// SeriesService serves read access to the time-series record types.
type SeriesService struct {
	eps        EpsLister
	pe         PeLister
	roaRoe     RoaRoeLister
	ratios     FinancialRatioLister
	currencies CurrencyPriceLister
	qIndexes   QIndexLister
}

// NewSeriesService creates a new SeriesService
func NewSeriesService(
	eps EpsLister,
	pe PeLister,
	roaRoe RoaRoeLister,
	ratios FinancialRatioLister,
	currencies CurrencyPriceLister,
	qIndexes QIndexLister,
) *SeriesService {
	return &SeriesService{
		eps:        eps,
		pe:         pe,
		roaRoe:     roaRoe,
		ratios:     ratios,
		currencies: currencies,
		qIndexes:   qIndexes,
	}
}

// ListEps returns EPS records for a symbol within an optional date range.
func (s *SeriesService) ListEps(ctx context.Context, symbol string, from, to *time.Time) ([]*models.EpsRecord, error) {
	return s.eps.List(ctx, normalizeSymbol(symbol), from, to)
}

// ListPe returns PE records for a symbol within an optional date range.
func (s *SeriesService) ListPe(ctx context.Context, symbol string, from, to *time.Time) ([]*models.PeRecord, error) {
	return s.pe.List(ctx, normalizeSymbol(symbol), from, to)
}

// ListRoaRoe returns ROA/ROE records for a symbol within an optional date range.
func (s *SeriesService) ListRoaRoe(ctx context.Context, symbol string, from, to *time.Time) ([]*models.RoaRoeRecord, error) {
	return s.roaRoe.List(ctx, normalizeSymbol(symbol), from, to)
}

// ListFinancialRatios returns financial ratio records for a symbol within an
// optional date range.
func (s *SeriesService) ListFinancialRatios(ctx context.Context, symbol string, from, to *time.Time) ([]*models.FinancialRatioRecord, error) {
	return s.ratios.List(ctx, normalizeSymbol(symbol), from, to)
}

// ListCurrencyPrices returns quotes for a currency code within an optional
// date range.
func (s *SeriesService) ListCurrencyPrices(ctx context.Context, currencyCode string, from, to *time.Time) ([]*models.CurrencyPrice, error) {
	return s.currencies.List(ctx, normalizeSymbol(currencyCode), from, to)
}

// ListQIndexes returns Q-index records for a stock id within an optional
// date range.
func (s *SeriesService) ListQIndexes(ctx context.Context, stockID int64, from, to *time.Time) ([]*models.StockQIndex, error) {
	return s.qIndexes.List(ctx, stockID, from, to)
}

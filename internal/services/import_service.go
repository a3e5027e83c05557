package services

import (
	"context"
	"time"

	"github.com/vnfin/refdata/internal/cache"
	"github.com/vnfin/refdata/internal/importer"
	"github.com/vnfin/refdata/internal/models"
)

// Upload carries one uploaded file through the pipeline: the raw bytes plus
// the original filename and declared mimetype used for format detection.
type Upload struct {
	Data     []byte
	Filename string
	Mimetype string
}

// ImportService runs the tabular import pipeline for every record type. One
// engine, one binding per type.
type ImportService struct {
	engine *importer.Engine

	stocks         importer.Binding
	eps            importer.Binding
	pe             importer.Binding
	roaRoe         importer.Binding
	financialRatio importer.Binding
	currencyPrice  importer.Binding
	qIndex         importer.Binding
}

// NewImportService wires the engine and bindings. The presence cache is
// shared across bindings so an EPS import warms the parent cache for a
// following PE import.
func NewImportService(
	batchSize int,
	stocks StockStore,
	eps EpsStore,
	pe PeStore,
	roaRoe RoaRoeStore,
	ratios FinancialRatioStore,
	currencies CurrencyPriceStore,
	qIndexes QIndexStore,
) *ImportService {
	presence := cache.NewPresenceCache(5 * time.Minute)
	return &ImportService{
		engine: importer.NewEngine(batchSize),
		stocks: &stockBinding{schema: stockSchema(), stocks: stocks},
		eps: &epsBinding{
			schema: epsSchema(), stocks: stocks, eps: eps, presence: presence,
		},
		pe: &peBinding{
			schema: peSchema(), stocks: stocks, pe: pe, presence: presence,
		},
		roaRoe: &roaRoeBinding{
			schema: roaRoeSchema(), stocks: stocks, roaRoe: roaRoe, presence: presence,
		},
		financialRatio: &financialRatioBinding{
			schema: financialRatioSchema(), stocks: stocks, ratios: ratios, presence: presence,
		},
		currencyPrice: &currencyPriceBinding{
			schema: currencyPriceSchema(), currencies: currencies,
		},
		qIndex: &qIndexBinding{
			schema: qIndexSchema(), stocks: stocks, qIndexes: qIndexes, presence: presence,
		},
	}
}

// ImportStocks imports a stock reference file (CSV or Excel).
func (s *ImportService) ImportStocks(ctx context.Context, up Upload) (*models.ImportResult, error) {
	defer TrackTime("ImportStocks", time.Now())
	return s.engine.Run(ctx, up.Data, up.Filename, up.Mimetype, s.stocks)
}

// ImportEps imports an EPS time-series file.
func (s *ImportService) ImportEps(ctx context.Context, up Upload) (*models.ImportResult, error) {
	defer TrackTime("ImportEps", time.Now())
	return s.engine.Run(ctx, up.Data, up.Filename, up.Mimetype, s.eps)
}

// ImportPe imports a PE time-series file.
func (s *ImportService) ImportPe(ctx context.Context, up Upload) (*models.ImportResult, error) {
	defer TrackTime("ImportPe", time.Now())
	return s.engine.Run(ctx, up.Data, up.Filename, up.Mimetype, s.pe)
}

// ImportRoaRoe imports a ROA/ROE time-series file.
func (s *ImportService) ImportRoaRoe(ctx context.Context, up Upload) (*models.ImportResult, error) {
	defer TrackTime("ImportRoaRoe", time.Now())
	return s.engine.Run(ctx, up.Data, up.Filename, up.Mimetype, s.roaRoe)
}

// ImportFinancialRatios imports a financial ratio time-series file.
func (s *ImportService) ImportFinancialRatios(ctx context.Context, up Upload) (*models.ImportResult, error) {
	defer TrackTime("ImportFinancialRatios", time.Now())
	return s.engine.Run(ctx, up.Data, up.Filename, up.Mimetype, s.financialRatio)
}

// ImportCurrencyPrices imports a currency price file.
func (s *ImportService) ImportCurrencyPrices(ctx context.Context, up Upload) (*models.ImportResult, error) {
	defer TrackTime("ImportCurrencyPrices", time.Now())
	return s.engine.Run(ctx, up.Data, up.Filename, up.Mimetype, s.currencyPrice)
}

// ImportQIndexes imports a Q-index time-series file.
func (s *ImportService) ImportQIndexes(ctx context.Context, up Upload) (*models.ImportResult, error) {
	defer TrackTime("ImportQIndexes", time.Now())
	return s.engine.Run(ctx, up.Data, up.Filename, up.Mimetype, s.qIndex)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vnfin/refdata/internal/cache"
	"github.com/vnfin/refdata/internal/importer"
	"github.com/vnfin/refdata/internal/models"
	"github.com/vnfin/refdata/internal/tabular"
)

// Store interfaces consumed by the import bindings. The pgx repositories
// satisfy them; tests substitute in-memory fakes.

type StockStore interface {
	Upsert(ctx context.Context, stock *models.Stock) (bool, error)
	EnsureExists(ctx context.Context, symbol string) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type EpsStore interface {
	Upsert(ctx context.Context, rec *models.EpsRecord) (bool, error)
	UpsertBatch(ctx context.Context, recs []*models.EpsRecord) (created []bool, errs []error)
}

type PeStore interface {
	Upsert(ctx context.Context, rec *models.PeRecord) (bool, error)
}

type RoaRoeStore interface {
	Upsert(ctx context.Context, rec *models.RoaRoeRecord) (bool, error)
}

type FinancialRatioStore interface {
	Upsert(ctx context.Context, rec *models.FinancialRatioRecord) (bool, error)
}

type CurrencyPriceStore interface {
	Upsert(ctx context.Context, rec *models.CurrencyPrice) (bool, error)
}

type QIndexStore interface {
	Upsert(ctx context.Context, rec *models.StockQIndex) (bool, error)
}

// ensureParent creates the minimal parent stock for a series row unless the
// presence cache already saw the symbol. Auto-create is the declared policy
// for all symbol-keyed series; Q-index imports reject instead (see
// qIndexBinding).
func ensureParent(ctx context.Context, stocks StockStore, presence *cache.PresenceCache, symbol string) error {
	if presence.SeenSymbol(symbol) {
		return nil
	}
	if _, err := stocks.EnsureExists(ctx, symbol); err != nil {
		return err
	}
	presence.MarkSymbol(symbol)
	return nil
}

// decodeSymbolDate validates the (symbol, report_date) natural key shared by
// the symbol-keyed series. Rejection reasons name the field and carry the raw
// value.
func decodeSymbolDate(row tabular.Row) (string, time.Time, error) {
	symbol, err := tabular.ParseSymbol(row.Get("symbol"))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("symbol: %w", err)
	}
	date, err := tabular.ParseDate(row.Get("reportdate"))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("report_date: %w", err)
	}
	return symbol, date, nil
}

func seriesKey(symbol string, date time.Time) string {
	return symbol + "|" + date.Format("2006-01-02")
}

// ---- stocks ----

type stockRecord struct{ stock *models.Stock }

func (r stockRecord) Key() string { return r.stock.Symbol }

type stockBinding struct {
	schema *tabular.Schema
	stocks StockStore
}

func (b *stockBinding) Schema() *tabular.Schema { return b.schema }

func (b *stockBinding) Decode(row tabular.Row) (importer.Record, error) {
	symbol, err := tabular.ParseSymbol(row.Get("symbol"))
	if err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	stock := &models.Stock{Symbol: symbol, Name: row.Get("name")}
	if stock.Name == "" {
		stock.Name = symbol
	}
	if v := row.Get("exchange"); v != "" {
		stock.Exchange = &v
	}
	if v := row.Get("industry"); v != "" {
		stock.Industry = &v
	}
	return stockRecord{stock: stock}, nil
}

func (b *stockBinding) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	return b.stocks.Upsert(ctx, rec.(stockRecord).stock)
}

// ---- EPS ----

type epsRecord struct{ rec *models.EpsRecord }

func (r epsRecord) Key() string { return seriesKey(r.rec.Symbol, r.rec.ReportDate.Time) }

type epsBinding struct {
	schema   *tabular.Schema
	stocks   StockStore
	eps      EpsStore
	presence *cache.PresenceCache
}

func (b *epsBinding) Schema() *tabular.Schema { return b.schema }

func (b *epsBinding) Decode(row tabular.Row) (importer.Record, error) {
	symbol, date, err := decodeSymbolDate(row)
	if err != nil {
		return nil, err
	}
	return epsRecord{rec: &models.EpsRecord{
		Symbol:      symbol,
		ReportDate:  models.NewDate(date),
		Eps:         tabular.ParseDecimal(row.Get("eps")),
		IndustryEps: tabular.ParseDecimal(row.Get("industryeps")),
	}}, nil
}

func (b *epsBinding) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	r := rec.(epsRecord).rec
	if err := ensureParent(ctx, b.stocks, b.presence, r.Symbol); err != nil {
		return false, err
	}
	return b.eps.Upsert(ctx, r)
}

// UpsertBatch sends a whole batch of EPS rows to the store in one round trip.
// Parents are ensured once per distinct symbol first; rows whose parent could
// not be ensured fail individually and are excluded from the store batch.
func (b *epsBinding) UpsertBatch(ctx context.Context, recs []importer.Record) (created []bool, errs []error) {
	created = make([]bool, len(recs))
	errs = make([]error, len(recs))

	parentErr := make(map[string]error)
	for _, rec := range recs {
		symbol := rec.(epsRecord).rec.Symbol
		if _, done := parentErr[symbol]; done {
			continue
		}
		parentErr[symbol] = ensureParent(ctx, b.stocks, b.presence, symbol)
	}

	var eligible []*models.EpsRecord
	var eligibleIdx []int
	for i, rec := range recs {
		r := rec.(epsRecord).rec
		if err := parentErr[r.Symbol]; err != nil {
			errs[i] = fmt.Errorf("failed to ensure parent stock: %w", err)
			continue
		}
		eligible = append(eligible, r)
		eligibleIdx = append(eligibleIdx, i)
	}

	batchCreated, batchErrs := b.eps.UpsertBatch(ctx, eligible)
	for j, i := range eligibleIdx {
		created[i] = batchCreated[j]
		errs[i] = batchErrs[j]
	}
	return created, errs
}

// ---- PE ----

type peRecord struct{ rec *models.PeRecord }

func (r peRecord) Key() string { return seriesKey(r.rec.Symbol, r.rec.ReportDate.Time) }

type peBinding struct {
	schema   *tabular.Schema
	stocks   StockStore
	pe       PeStore
	presence *cache.PresenceCache
}

func (b *peBinding) Schema() *tabular.Schema { return b.schema }

func (b *peBinding) Decode(row tabular.Row) (importer.Record, error) {
	symbol, date, err := decodeSymbolDate(row)
	if err != nil {
		return nil, err
	}
	return peRecord{rec: &models.PeRecord{
		Symbol:     symbol,
		ReportDate: models.NewDate(date),
		Pe:         tabular.ParseDecimal(row.Get("pe")),
		IndustryPe: tabular.ParseDecimal(row.Get("industrype")),
	}}, nil
}

func (b *peBinding) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	r := rec.(peRecord).rec
	if err := ensureParent(ctx, b.stocks, b.presence, r.Symbol); err != nil {
		return false, err
	}
	return b.pe.Upsert(ctx, r)
}

// ---- ROA/ROE ----

type roaRoeRecord struct{ rec *models.RoaRoeRecord }

func (r roaRoeRecord) Key() string { return seriesKey(r.rec.Symbol, r.rec.ReportDate.Time) }

type roaRoeBinding struct {
	schema   *tabular.Schema
	stocks   StockStore
	roaRoe   RoaRoeStore
	presence *cache.PresenceCache
}

func (b *roaRoeBinding) Schema() *tabular.Schema { return b.schema }

func (b *roaRoeBinding) Decode(row tabular.Row) (importer.Record, error) {
	symbol, date, err := decodeSymbolDate(row)
	if err != nil {
		return nil, err
	}
	return roaRoeRecord{rec: &models.RoaRoeRecord{
		Symbol:          symbol,
		ReportDate:      models.NewDate(date),
		Roa:             tabular.ParseDecimal(row.Get("roa")),
		Roe:             tabular.ParseDecimal(row.Get("roe")),
		RoaIndustry:     tabular.ParseDecimal(row.Get("roaindustry")),
		RoeIndustry:     tabular.ParseDecimal(row.Get("roeindustry")),
		RoeIndustryRate: tabular.ParseDecimal(row.Get("roeindustryrate")),
	}}, nil
}

func (b *roaRoeBinding) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	r := rec.(roaRoeRecord).rec
	if err := ensureParent(ctx, b.stocks, b.presence, r.Symbol); err != nil {
		return false, err
	}
	return b.roaRoe.Upsert(ctx, r)
}

// ---- financial ratios ----

type financialRatioRecord struct{ rec *models.FinancialRatioRecord }

func (r financialRatioRecord) Key() string { return seriesKey(r.rec.Symbol, r.rec.ReportDate.Time) }

type financialRatioBinding struct {
	schema   *tabular.Schema
	stocks   StockStore
	ratios   FinancialRatioStore
	presence *cache.PresenceCache
}

func (b *financialRatioBinding) Schema() *tabular.Schema { return b.schema }

func (b *financialRatioBinding) Decode(row tabular.Row) (importer.Record, error) {
	symbol, date, err := decodeSymbolDate(row)
	if err != nil {
		return nil, err
	}
	return financialRatioRecord{rec: &models.FinancialRatioRecord{
		Symbol:       symbol,
		ReportDate:   models.NewDate(date),
		DebtToEquity: tabular.ParseDecimal(row.Get("debttoequity")),
		CurrentRatio: tabular.ParseDecimal(row.Get("currentratio")),
		QuickRatio:   tabular.ParseDecimal(row.Get("quickratio")),
		GrossMargin:  tabular.ParseDecimal(row.Get("grossmargin")),
	}}, nil
}

func (b *financialRatioBinding) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	r := rec.(financialRatioRecord).rec
	if err := ensureParent(ctx, b.stocks, b.presence, r.Symbol); err != nil {
		return false, err
	}
	return b.ratios.Upsert(ctx, r)
}

// ---- currency prices ----

type currencyPriceRecord struct{ rec *models.CurrencyPrice }

func (r currencyPriceRecord) Key() string {
	return r.rec.CurrencyCode + "|" + r.rec.Date.Format("2006-01-02")
}

type currencyPriceBinding struct {
	schema     *tabular.Schema
	currencies CurrencyPriceStore
}

func (b *currencyPriceBinding) Schema() *tabular.Schema { return b.schema }

func (b *currencyPriceBinding) Decode(row tabular.Row) (importer.Record, error) {
	code, err := tabular.ParseSymbol(row.Get("currencycode"))
	if err != nil {
		return nil, fmt.Errorf("currency_code: %w", err)
	}
	date, err := tabular.ParseDate(row.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	return currencyPriceRecord{rec: &models.CurrencyPrice{
		CurrencyCode: code,
		Date:         models.NewDate(date),
		BuyPrice:     tabular.ParseDecimal(row.Get("buyprice")),
		SellPrice:    tabular.ParseDecimal(row.Get("sellprice")),
	}}, nil
}

func (b *currencyPriceBinding) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	return b.currencies.Upsert(ctx, rec.(currencyPriceRecord).rec)
}

// ---- Q-indices ----

type qIndexRecord struct{ rec *models.StockQIndex }

func (r qIndexRecord) Key() string {
	return fmt.Sprintf("%d|%s", r.rec.StockID, r.rec.Date.Format("2006-01-02"))
}

// qIndexBinding rejects rows whose stock id is unknown instead of
// auto-creating: these rows carry a numeric reference, and inventing a stock
// for a mistyped id would hide the mistake.
type qIndexBinding struct {
	schema   *tabular.Schema
	stocks   StockStore
	qIndexes QIndexStore
	presence *cache.PresenceCache
}

func (b *qIndexBinding) Schema() *tabular.Schema { return b.schema }

func (b *qIndexBinding) Decode(row tabular.Row) (importer.Record, error) {
	id, present, err := tabular.ParseInt(row.Get("stockid"))
	if err != nil {
		return nil, fmt.Errorf("stock_id: %w", err)
	}
	if !present {
		return nil, fmt.Errorf("stock_id: %w", tabular.ErrMissingKey)
	}
	date, err := tabular.ParseDate(row.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	return qIndexRecord{rec: &models.StockQIndex{
		StockID: id,
		Date:    models.NewDate(date),
		QIndex:  tabular.ParseDecimal(row.Get("qindex")),
		Volume:  tabular.ParseDecimal(row.Get("volume")),
	}}, nil
}

func (b *qIndexBinding) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	r := rec.(qIndexRecord).rec
	if !b.presence.SeenID(r.StockID) {
		found, err := b.stocks.Exists(ctx, r.StockID)
		if err != nil {
			return false, err
		}
		if !found {
			return false, fmt.Errorf("%w: stock_id %d", importer.ErrParentNotFound, r.StockID)
		}
		b.presence.MarkID(r.StockID)
	}
	return b.qIndexes.Upsert(ctx, r)
}

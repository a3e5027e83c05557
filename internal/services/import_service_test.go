package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vnfin/refdata/internal/models"
)

// In-memory fakes for the store interfaces. Upserts mirror the repositories'
// merge behavior: a null incoming metric never clobbers a stored value.

func keepStored(incoming, existing decimal.NullDecimal) decimal.NullDecimal {
	if incoming.Valid {
		return incoming
	}
	return existing
}

type fakeStockStore struct {
	mu       sync.Mutex
	nextID   int64
	bySymbol map[string]*models.Stock
	byID     map[int64]*models.Stock
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{bySymbol: make(map[string]*models.Stock), byID: make(map[int64]*models.Stock)}
}

func (s *fakeStockStore) insertLocked(stock *models.Stock) *models.Stock {
	s.nextID++
	cp := *stock
	cp.ID = s.nextID
	s.bySymbol[cp.Symbol] = &cp
	s.byID[cp.ID] = &cp
	return &cp
}

func (s *fakeStockStore) Upsert(ctx context.Context, stock *models.Stock) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bySymbol[stock.Symbol]
	if !ok {
		s.insertLocked(stock)
		return true, nil
	}
	if stock.Name != "" {
		existing.Name = stock.Name
	}
	if stock.Exchange != nil {
		existing.Exchange = stock.Exchange
	}
	if stock.Industry != nil {
		existing.Industry = stock.Industry
	}
	return false, nil
}

func (s *fakeStockStore) EnsureExists(ctx context.Context, symbol string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.bySymbol[symbol]; ok {
		return existing.ID, nil
	}
	created := s.insertLocked(&models.Stock{Symbol: symbol, Name: symbol})
	return created.ID, nil
}

func (s *fakeStockStore) Exists(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	return ok, nil
}

type fakeEpsStore struct {
	mu   sync.Mutex
	recs map[string]*models.EpsRecord
	// symbols whose upserts fail, simulating per-row storage errors
	fail map[string]bool
}

func newFakeEpsStore() *fakeEpsStore {
	return &fakeEpsStore{recs: make(map[string]*models.EpsRecord), fail: make(map[string]bool)}
}

func (s *fakeEpsStore) Upsert(ctx context.Context, rec *models.EpsRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[rec.Symbol] {
		return false, errors.New("storage failure")
	}
	key := seriesKey(rec.Symbol, rec.ReportDate.Time)
	existing, ok := s.recs[key]
	if !ok {
		cp := *rec
		s.recs[key] = &cp
		return true, nil
	}
	existing.Eps = keepStored(rec.Eps, existing.Eps)
	existing.IndustryEps = keepStored(rec.IndustryEps, existing.IndustryEps)
	return false, nil
}

func (s *fakeEpsStore) UpsertBatch(ctx context.Context, recs []*models.EpsRecord) ([]bool, []error) {
	created := make([]bool, len(recs))
	errs := make([]error, len(recs))
	for i, rec := range recs {
		created[i], errs[i] = s.Upsert(context.Background(), rec)
	}
	return created, errs
}

type fakePeStore struct {
	mu   sync.Mutex
	recs map[string]*models.PeRecord
}

func (s *fakePeStore) Upsert(ctx context.Context, rec *models.PeRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seriesKey(rec.Symbol, rec.ReportDate.Time)
	existing, ok := s.recs[key]
	if !ok {
		cp := *rec
		s.recs[key] = &cp
		return true, nil
	}
	existing.Pe = keepStored(rec.Pe, existing.Pe)
	existing.IndustryPe = keepStored(rec.IndustryPe, existing.IndustryPe)
	return false, nil
}

type fakeRoaRoeStore struct {
	mu   sync.Mutex
	recs map[string]*models.RoaRoeRecord
}

func (s *fakeRoaRoeStore) Upsert(ctx context.Context, rec *models.RoaRoeRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seriesKey(rec.Symbol, rec.ReportDate.Time)
	if _, ok := s.recs[key]; !ok {
		cp := *rec
		s.recs[key] = &cp
		return true, nil
	}
	cp := *rec
	s.recs[key] = &cp
	return false, nil
}

type fakeFinancialRatioStore struct{}

func (s *fakeFinancialRatioStore) Upsert(ctx context.Context, rec *models.FinancialRatioRecord) (bool, error) {
	return true, nil
}

type fakeCurrencyPriceStore struct {
	mu   sync.Mutex
	recs map[string]*models.CurrencyPrice
}

func (s *fakeCurrencyPriceStore) Upsert(ctx context.Context, rec *models.CurrencyPrice) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recs == nil {
		s.recs = make(map[string]*models.CurrencyPrice)
	}
	key := rec.CurrencyCode + "|" + rec.Date.Format("2006-01-02")
	_, ok := s.recs[key]
	cp := *rec
	s.recs[key] = &cp
	return !ok, nil
}

type fakeQIndexStore struct {
	mu   sync.Mutex
	recs map[string]*models.StockQIndex
}

func (s *fakeQIndexStore) Upsert(ctx context.Context, rec *models.StockQIndex) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recs == nil {
		s.recs = make(map[string]*models.StockQIndex)
	}
	key := qIndexRecord{rec: rec}.Key()
	_, ok := s.recs[key]
	cp := *rec
	s.recs[key] = &cp
	return !ok, nil
}

type testStores struct {
	stocks     *fakeStockStore
	eps        *fakeEpsStore
	pe         *fakePeStore
	roaRoe     *fakeRoaRoeStore
	ratios     *fakeFinancialRatioStore
	currencies *fakeCurrencyPriceStore
	qIndexes   *fakeQIndexStore
}

func newTestService() (*ImportService, *testStores) {
	st := &testStores{
		stocks:     newFakeStockStore(),
		eps:        newFakeEpsStore(),
		pe:         &fakePeStore{recs: make(map[string]*models.PeRecord)},
		roaRoe:     &fakeRoaRoeStore{recs: make(map[string]*models.RoaRoeRecord)},
		ratios:     &fakeFinancialRatioStore{},
		currencies: &fakeCurrencyPriceStore{},
		qIndexes:   &fakeQIndexStore{},
	}
	svc := NewImportService(100, st.stocks, st.eps, st.pe, st.roaRoe, st.ratios, st.currencies, st.qIndexes)
	return svc, st
}

func csvFile(rows ...string) Upload {
	return Upload{Data: []byte(strings.Join(rows, "\n")), Filename: "data.csv", Mimetype: "text/csv"}
}

func mustDecimal(t *testing.T, d decimal.NullDecimal, want string) {
	t.Helper()
	if !d.Valid {
		t.Fatalf("expected %s, got null", want)
	}
	if !d.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected %s, got %s", want, d.Decimal)
	}
}

func TestImportEps_ThreeRowScenario(t *testing.T) {
	svc, st := newTestService()

	res, err := svc.ImportEps(context.Background(), csvFile(
		"Symbol,ReportDate,EPS",
		"AAPL,31/12/2023,3.45",
		"AAPL,31/12/2023,3.50",
		",01/01/2024,1.00",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 3 || res.Created != 1 || res.Updated != 1 || res.Failed != 1 {
		t.Errorf("got total=%d created=%d updated=%d failed=%d, want 3/1/1/1",
			res.Total, res.Created, res.Updated, res.Failed)
	}
	if len(res.Errors) != 1 || res.Errors[0].Line != 4 {
		t.Fatalf("expected one error at line 4, got %+v", res.Errors)
	}
	if !strings.Contains(res.Errors[0].Message, "symbol") {
		t.Errorf("error should name the symbol field: %q", res.Errors[0].Message)
	}

	// Same key twice in one file: the later row's value sticks.
	stored := st.eps.recs[seriesKey("AAPL", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))]
	if stored == nil {
		t.Fatal("AAPL/2023-12-31 not stored")
	}
	mustDecimal(t, stored.Eps, "3.50")

	// The parent stock was auto-created for the series row.
	if _, ok := st.stocks.bySymbol["AAPL"]; !ok {
		t.Error("parent stock AAPL was not auto-created")
	}
}

func TestImportEps_NullPreservation(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	if _, err := svc.ImportEps(ctx, csvFile(
		"Symbol,ReportDate,EPS,Industry EPS",
		"VNM,15/01/2024,3.45,",
	)); err != nil {
		t.Fatalf("first import: %v", err)
	}

	// Re-import the same key with EPS blank and a new industry value.
	res, err := svc.ImportEps(ctx, csvFile(
		"Symbol,ReportDate,EPS,Industry EPS",
		"VNM,15/01/2024,,7.2",
	))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if res.Updated != 1 || res.Failed != 0 {
		t.Errorf("got updated=%d failed=%d, want 1/0", res.Updated, res.Failed)
	}

	stored := st.eps.recs[seriesKey("VNM", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))]
	if stored == nil {
		t.Fatal("VNM/2024-01-15 not stored")
	}
	mustDecimal(t, stored.Eps, "3.45") // blank cell did not erase the stored value
	mustDecimal(t, stored.IndustryEps, "7.2")
}

func TestImportEps_MidBatchFailureIsolation(t *testing.T) {
	svc, st := newTestService()
	st.eps.fail["S3"] = true

	res, err := svc.ImportEps(context.Background(), csvFile(
		"Symbol,ReportDate,EPS",
		"S1,15/01/2024,1.0",
		"S2,15/01/2024,2.0",
		"S3,15/01/2024,3.0",
		"S4,15/01/2024,4.0",
		"S5,15/01/2024,5.0",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 4 || res.Failed != 1 {
		t.Errorf("created=%d failed=%d, want 4/1", res.Created, res.Failed)
	}
	if len(res.Errors) != 1 || res.Errors[0].Line != 4 {
		t.Fatalf("expected one error at line 4, got %+v", res.Errors)
	}

	// A failing row in the middle of a batch must not discard or misreport
	// its neighbors' writes.
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, sym := range []string{"S1", "S2", "S4", "S5"} {
		if _, ok := st.eps.recs[seriesKey(sym, date)]; !ok {
			t.Errorf("%s missing from store", sym)
		}
	}
	if _, ok := st.eps.recs[seriesKey("S3", date)]; ok {
		t.Error("failed row S3 must not be stored")
	}
}

func TestImportEps_ExcelSerialDates(t *testing.T) {
	svc, st := newTestService()

	res, err := svc.ImportEps(context.Background(), csvFile(
		"Symbol,ReportDate,EPS",
		"FPT,45306,1.25",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created=%d, want 1", res.Created)
	}
	if _, ok := st.eps.recs[seriesKey("FPT", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))]; !ok {
		t.Error("serial 45306 should resolve to 2024-01-15")
	}
}

func TestImportRoaRoe_DuplicateIndustryColumn(t *testing.T) {
	svc, st := newTestService()

	res, err := svc.ImportRoaRoe(context.Background(), csvFile(
		"Symbol,ReportDate,ROE,ROE Industry,ROE Industry",
		"VNM,15/01/2024,10,20,30",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 1 || res.Failed != 0 {
		t.Fatalf("created=%d failed=%d, want 1/0", res.Created, res.Failed)
	}

	stored := st.roaRoe.recs[seriesKey("VNM", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))]
	if stored == nil {
		t.Fatal("record not stored")
	}
	mustDecimal(t, stored.Roe, "10")
	mustDecimal(t, stored.RoeIndustry, "20")     // first occurrence
	mustDecimal(t, stored.RoeIndustryRate, "30") // duplicate flows to the rate
}

func TestImportQIndexes_RejectsUnknownStock(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	id, err := st.stocks.EnsureExists(ctx, "VNM")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if id != 1 {
		t.Fatalf("seed stock got id %d, want 1", id)
	}

	res, err := svc.ImportQIndexes(ctx, csvFile(
		"Stock ID,Date,Q Index",
		"1,15/01/2024,1.5",
		"999,15/01/2024,2.0",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 1 || res.Failed != 1 {
		t.Errorf("created=%d failed=%d, want 1/1", res.Created, res.Failed)
	}
	if len(res.Errors) != 1 || res.Errors[0].Line != 3 {
		t.Fatalf("expected one error at line 3, got %+v", res.Errors)
	}
	if !strings.Contains(res.Errors[0].Message, "not found") {
		t.Errorf("error should report the missing parent: %q", res.Errors[0].Message)
	}
}

func TestImportStocks_VietnameseHeaders(t *testing.T) {
	svc, st := newTestService()

	res, err := svc.ImportStocks(context.Background(), csvFile(
		"Ma,Ten,San,Nganh",
		"vnm,Vinamilk,HOSE,Food",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created=%d, want 1", res.Created)
	}

	stored := st.stocks.bySymbol["VNM"]
	if stored == nil {
		t.Fatal("VNM not stored")
	}
	if stored.Name != "Vinamilk" {
		t.Errorf("name = %q", stored.Name)
	}
	if stored.Exchange == nil || *stored.Exchange != "HOSE" {
		t.Errorf("exchange = %v", stored.Exchange)
	}
	if stored.Industry == nil || *stored.Industry != "Food" {
		t.Errorf("industry = %v", stored.Industry)
	}
}

func TestImportCurrencyPrices_EuropeanDecimals(t *testing.T) {
	svc, st := newTestService()

	res, err := svc.ImportCurrencyPrices(context.Background(), csvFile(
		"Currency,Date,Buy,Sell",
		"usd,15/01/2024,\"24.350,50\",\"24.710,00\"",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created=%d, want 1", res.Created)
	}

	stored := st.currencies.recs["USD|2024-01-15"]
	if stored == nil {
		t.Fatal("USD/2024-01-15 not stored")
	}
	mustDecimal(t, stored.BuyPrice, "24350.50")
	mustDecimal(t, stored.SellPrice, "24710")
}

package services

import (
	"context"
	"testing"

	"github.com/vnfin/refdata/internal/models"
	"github.com/vnfin/refdata/internal/repository"
)

type fakeStockCRUD struct {
	stocks map[string]*models.Stock
	// captured arguments from the last List call
	lastPage, lastPageSize int
}

func newFakeStockCRUD() *fakeStockCRUD {
	return &fakeStockCRUD{stocks: make(map[string]*models.Stock)}
}

func (s *fakeStockCRUD) Create(ctx context.Context, stock *models.Stock) error {
	stock.ID = int64(len(s.stocks) + 1)
	s.stocks[stock.Symbol] = stock
	return nil
}

func (s *fakeStockCRUD) GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	stock, ok := s.stocks[symbol]
	if !ok {
		return nil, repository.ErrStockNotFound
	}
	return stock, nil
}

func (s *fakeStockCRUD) List(ctx context.Context, search string, page, pageSize int) ([]*models.Stock, int, error) {
	s.lastPage, s.lastPageSize = page, pageSize
	return nil, 0, nil
}

func (s *fakeStockCRUD) Update(ctx context.Context, symbol string, req *models.UpdateStockRequest) (*models.Stock, error) {
	stock, ok := s.stocks[symbol]
	if !ok {
		return nil, repository.ErrStockNotFound
	}
	if req.Name != nil {
		stock.Name = *req.Name
	}
	return stock, nil
}

func (s *fakeStockCRUD) Delete(ctx context.Context, symbol string) error {
	if _, ok := s.stocks[symbol]; !ok {
		return repository.ErrStockNotFound
	}
	delete(s.stocks, symbol)
	return nil
}

func TestStockService_SymbolNormalization(t *testing.T) {
	store := newFakeStockCRUD()
	svc := NewStockService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.CreateStockRequest{Symbol: " vnm ", Name: "Vinamilk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Symbol != "VNM" {
		t.Errorf("symbol = %q, want VNM", created.Symbol)
	}

	// Lookups normalize the same way, so casing never matters to callers.
	got, err := svc.Get(ctx, "vnm")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Symbol != "VNM" {
		t.Errorf("got %q", got.Symbol)
	}

	if err := svc.Delete(ctx, "Vnm"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "VNM"); err != repository.ErrStockNotFound {
		t.Errorf("expected ErrStockNotFound after delete, got %v", err)
	}
}

func TestStockService_ListClampsPaging(t *testing.T) {
	store := newFakeStockCRUD()
	svc := NewStockService(store)
	ctx := context.Background()

	res, err := svc.List(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastPage != 1 || store.lastPageSize != 50 {
		t.Errorf("store saw page=%d pageSize=%d, want 1/50", store.lastPage, store.lastPageSize)
	}
	if res.Stocks == nil {
		t.Error("Stocks should never be nil in the response")
	}

	if _, err := svc.List(ctx, "", 2, 5000); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastPage != 2 || store.lastPageSize != 50 {
		t.Errorf("oversized pageSize should clamp to 50, store saw %d", store.lastPageSize)
	}
}

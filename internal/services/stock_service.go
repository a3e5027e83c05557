package services

import (
	"context"
	"strings"

	"github.com/vnfin/refdata/internal/models"
)

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// StockCRUDStore is the repository surface consumed by StockService.
type StockCRUDStore interface {
	Create(ctx context.Context, stock *models.Stock) error
	GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error)
	List(ctx context.Context, search string, page, pageSize int) ([]*models.Stock, int, error)
	Update(ctx context.Context, symbol string, req *models.UpdateStockRequest) (*models.Stock, error)
	Delete(ctx context.Context, symbol string) error
}

// StockService handles stock reference data CRUD
type StockService struct {
	stocks StockCRUDStore
}

// NewStockService creates a new StockService
func NewStockService(stocks StockCRUDStore) *StockService {
	return &StockService{stocks: stocks}
}

// Create inserts a new stock
func (s *StockService) Create(ctx context.Context, req *models.CreateStockRequest) (*models.Stock, error) {
	stock := &models.Stock{
		Symbol:   normalizeSymbol(req.Symbol),
		Name:     req.Name,
		Exchange: req.Exchange,
		Industry: req.Industry,
	}
	if err := s.stocks.Create(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// Get retrieves a stock by symbol
func (s *StockService) Get(ctx context.Context, symbol string) (*models.Stock, error) {
	return s.stocks.GetBySymbol(ctx, normalizeSymbol(symbol))
}

// List retrieves a page of stocks with an optional search term
func (s *StockService) List(ctx context.Context, search string, page, pageSize int) (*models.StockListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	stocks, total, err := s.stocks.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	if stocks == nil {
		stocks = []*models.Stock{}
	}
	return &models.StockListResponse{
		Stocks:   stocks,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update applies a partial update to a stock
func (s *StockService) Update(ctx context.Context, symbol string, req *models.UpdateStockRequest) (*models.Stock, error) {
	return s.stocks.Update(ctx, normalizeSymbol(symbol), req)
}

// Delete removes a stock by symbol
func (s *StockService) Delete(ctx context.Context, symbol string) error {
	return s.stocks.Delete(ctx, normalizeSymbol(symbol))
}

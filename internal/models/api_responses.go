package models

// ErrorResponse is the standard error body for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RowError identifies a single failed row in an import
type RowError struct {
	Line    int    `json:"line"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

// ImportResult is the response body of every import endpoint. Failed always
// carries the true count even when Errors is capped.
type ImportResult struct {
	BatchID        string     `json:"batch_id"`
	Total          int        `json:"total"`
	Created        int        `json:"created"`
	Updated        int        `json:"updated"`
	Failed         int        `json:"failed"`
	Errors         []RowError `json:"errors"`
	IgnoredColumns []string   `json:"ignored_columns,omitempty"`
}

// CreateStockRequest represents the request body for creating a stock
type CreateStockRequest struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Exchange *string `json:"exchange"`
	Industry *string `json:"industry"`
}

// UpdateStockRequest represents the request body for a partial stock update.
// Absent fields leave the stored value unchanged; present-but-null clears it
// for the nullable fields.
type UpdateStockRequest struct {
	Name     *string `json:"name"`
	Exchange *string `json:"exchange"`
	Industry *string `json:"industry"`

	// ClearExchange / ClearIndustry distinguish "set to null" from "leave
	// unchanged", since both arrive as JSON null on the pointer fields.
	ClearExchange bool `json:"clear_exchange"`
	ClearIndustry bool `json:"clear_industry"`
}

// StockListResponse is the paginated envelope for GET /stocks
type StockListResponse struct {
	Stocks   []*Stock `json:"stocks"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

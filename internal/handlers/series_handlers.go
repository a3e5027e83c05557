package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnfin/refdata/internal/models"
	"github.com/vnfin/refdata/internal/services"
	"github.com/vnfin/refdata/internal/tabular"
)

// SeriesHandler handles read endpoints for the time-series record types
type SeriesHandler struct {
	seriesSvc *services.SeriesService
}

// NewSeriesHandler creates a new SeriesHandler
func NewSeriesHandler(seriesSvc *services.SeriesService) *SeriesHandler {
	return &SeriesHandler{seriesSvc: seriesSvc}
}

// parseDateRange reads optional from/to query parameters. Dates accept the
// same formats as import files (ISO and day/month/year). Returns false after
// writing a 400 when a bound is present but unparseable.
func parseDateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	for _, q := range []struct {
		name   string
		target **time.Time
	}{
		{"from", &from},
		{"to", &to},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := tabular.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: q.name + " must be a date (YYYY-MM-DD or DD/MM/YYYY)",
			})
			return nil, nil, false
		}
		*q.target = &t
	}
	return from, to, true
}

// requireSymbol reads the mandatory symbol query parameter, writing a 400
// when absent.
func requireSymbol(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "missing required query parameter: " + name,
		})
		return "", false
	}
	return v, true
}

// ListEps handles GET /eps
// @Summary List EPS records for a symbol
// @Tags series
// @Produce json
// @Param symbol query string true "Stock symbol"
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive)"
// @Success 200 {array} models.EpsRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /eps [get]
func (h *SeriesHandler) ListEps(c *gin.Context) {
	symbol, ok := requireSymbol(c, "symbol")
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.seriesSvc.ListEps(c.Request.Context(), symbol, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListPe handles GET /pe
// @Summary List PE records for a symbol
// @Tags series
// @Produce json
// @Param symbol query string true "Stock symbol"
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive)"
// @Success 200 {array} models.PeRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /pe [get]
func (h *SeriesHandler) ListPe(c *gin.Context) {
	symbol, ok := requireSymbol(c, "symbol")
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.seriesSvc.ListPe(c.Request.Context(), symbol, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListRoaRoe handles GET /roa-roe
// @Summary List ROA/ROE records for a symbol
// @Tags series
// @Produce json
// @Param symbol query string true "Stock symbol"
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive)"
// @Success 200 {array} models.RoaRoeRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /roa-roe [get]
func (h *SeriesHandler) ListRoaRoe(c *gin.Context) {
	symbol, ok := requireSymbol(c, "symbol")
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.seriesSvc.ListRoaRoe(c.Request.Context(), symbol, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListFinancialRatios handles GET /financial-ratios
// @Summary List financial ratio records for a symbol
// @Tags series
// @Produce json
// @Param symbol query string true "Stock symbol"
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive)"
// @Success 200 {array} models.FinancialRatioRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /financial-ratios [get]
func (h *SeriesHandler) ListFinancialRatios(c *gin.Context) {
	symbol, ok := requireSymbol(c, "symbol")
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.seriesSvc.ListFinancialRatios(c.Request.Context(), symbol, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListCurrencyPrices handles GET /currency-prices
// @Summary List prices for a currency code
// @Tags series
// @Produce json
// @Param currency query string true "Currency code (e.g. USD)"
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive)"
// @Success 200 {array} models.CurrencyPrice
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /currency-prices [get]
func (h *SeriesHandler) ListCurrencyPrices(c *gin.Context) {
	currency, ok := requireSymbol(c, "currency")
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.seriesSvc.ListCurrencyPrices(c.Request.Context(), currency, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListQIndexes handles GET /q-indices
// @Summary List Q-index records for a stock id
// @Tags series
// @Produce json
// @Param stock_id query int true "Stock id"
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive)"
// @Success 200 {array} models.StockQIndex
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /q-indices [get]
func (h *SeriesHandler) ListQIndexes(c *gin.Context) {
	stockID, err := strconv.ParseInt(c.Query("stock_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "stock_id must be an integer",
		})
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.seriesSvc.ListQIndexes(c.Request.Context(), stockID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, records)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnfin/refdata/internal/models"
	"github.com/vnfin/refdata/internal/repository"
	"github.com/vnfin/refdata/internal/services"
)

// StockHandler handles stock CRUD endpoints
type StockHandler struct {
	stockSvc *services.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockSvc *services.StockService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc}
}

// Create handles POST /stocks
// @Summary Create a stock
// @Tags stocks
// @Accept json
// @Produce json
// @Param stock body models.CreateStockRequest true "Stock to create"
// @Success 201 {object} models.Stock
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /stocks [post]
func (h *StockHandler) Create(c *gin.Context) {
	var req models.CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	stock, err := h.stockSvc.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, stock)
}

// Get handles GET /stocks/:symbol
// @Summary Get a stock by symbol
// @Tags stocks
// @Produce json
// @Param symbol path string true "Stock symbol"
// @Success 200 {object} models.Stock
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /stocks/{symbol} [get]
func (h *StockHandler) Get(c *gin.Context) {
	stock, err := h.stockSvc.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, repository.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "stock not found: " + c.Param("symbol"),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stock)
}

// List handles GET /stocks
// @Summary List stocks
// @Description Paginated stock listing with optional symbol/name search
// @Tags stocks
// @Produce json
// @Param search query string false "Search term matched against symbol and name"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (default 50, max 500)"
// @Success 200 {object} models.StockListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /stocks [get]
func (h *StockHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	resp, err := h.stockSvc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Update handles PUT /stocks/:symbol
// @Summary Update a stock
// @Description Partial update; absent fields are left unchanged
// @Tags stocks
// @Accept json
// @Produce json
// @Param symbol path string true "Stock symbol"
// @Param stock body models.UpdateStockRequest true "Fields to update"
// @Success 200 {object} models.Stock
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /stocks/{symbol} [put]
func (h *StockHandler) Update(c *gin.Context) {
	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	stock, err := h.stockSvc.Update(c.Request.Context(), c.Param("symbol"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "stock not found: " + c.Param("symbol"),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stock)
}

// Delete handles DELETE /stocks/:symbol
// @Summary Delete a stock
// @Tags stocks
// @Produce json
// @Param symbol path string true "Stock symbol"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /stocks/{symbol} [delete]
func (h *StockHandler) Delete(c *gin.Context) {
	err := h.stockSvc.Delete(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, repository.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "stock not found: " + c.Param("symbol"),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

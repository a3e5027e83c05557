package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vnfin/refdata/internal/models"
	"github.com/vnfin/refdata/internal/services"
	"github.com/vnfin/refdata/internal/tabular"
)

// ImportHandler handles the bulk file import endpoints
type ImportHandler struct {
	importSvc *services.ImportService
	maxBytes  int64
	timeout   time.Duration
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importSvc *services.ImportService, maxBytes int64, timeout time.Duration) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, maxBytes: maxBytes, timeout: timeout}
}

type importFunc func(ctx context.Context, up services.Upload) (*models.ImportResult, error)

// handleImport is the shared multipart boundary: extract the "file" field,
// enforce the size limit, run the pipeline, and map pipeline errors to
// statuses. Format-level failures are 400; anything else is 500.
func (h *ImportHandler) handleImport(c *gin.Context, run importFunc) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "missing file field in multipart form",
		})
		return
	}
	if fileHeader.Size > h.maxBytes {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: fmt.Sprintf("file exceeds size limit of %d bytes", h.maxBytes),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	if int64(len(data)) > h.maxBytes {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: fmt.Sprintf("file exceeds size limit of %d bytes", h.maxBytes),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := run(ctx, services.Upload{
		Data:     data,
		Filename: fileHeader.Filename,
		Mimetype: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) ||
			errors.Is(err, tabular.ErrEmptyFile) ||
			errors.Is(err, tabular.ErrMalformedFile) ||
			errors.Is(err, tabular.ErrNoValidRows) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
		log.Errorf("import of %s failed: %s", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportStocks handles POST /import/stocks
// @Summary Import stocks from CSV or Excel
// @Description Bulk upsert stock reference data by symbol
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /import/stocks [post]
func (h *ImportHandler) ImportStocks(c *gin.Context) {
	h.handleImport(c, h.importSvc.ImportStocks)
}

// ImportEps handles POST /import/eps
// @Summary Import EPS records from CSV or Excel
// @Description Bulk upsert EPS time series by (symbol, report_date)
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /import/eps [post]
func (h *ImportHandler) ImportEps(c *gin.Context) {
	h.handleImport(c, h.importSvc.ImportEps)
}

// ImportPe handles POST /import/pe
// @Summary Import PE records from CSV or Excel
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /import/pe [post]
func (h *ImportHandler) ImportPe(c *gin.Context) {
	h.handleImport(c, h.importSvc.ImportPe)
}

// ImportRoaRoe handles POST /import/roa-roe
// @Summary Import ROA/ROE records from CSV or Excel
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /import/roa-roe [post]
func (h *ImportHandler) ImportRoaRoe(c *gin.Context) {
	h.handleImport(c, h.importSvc.ImportRoaRoe)
}

// ImportFinancialRatios handles POST /import/financial-ratios
// @Summary Import financial ratio records from CSV or Excel
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /import/financial-ratios [post]
func (h *ImportHandler) ImportFinancialRatios(c *gin.Context) {
	h.handleImport(c, h.importSvc.ImportFinancialRatios)
}

// ImportCurrencyPrices handles POST /import/currency-prices
// @Summary Import currency prices from CSV or Excel
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /import/currency-prices [post]
func (h *ImportHandler) ImportCurrencyPrices(c *gin.Context) {
	h.handleImport(c, h.importSvc.ImportCurrencyPrices)
}

// ImportQIndexes handles POST /import/q-indices
// @Summary Import Q-index records from CSV or Excel
// @Description Bulk upsert Q-index time series by (stock_id, date). Rows whose stock id is unknown are rejected.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /import/q-indices [post]
func (h *ImportHandler) ImportQIndexes(c *gin.Context) {
	h.handleImport(c, h.importSvc.ImportQIndexes)
}

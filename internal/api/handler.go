package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pricereturns/internal/domain/dto"
	"github.com/guttosm/pricereturns/internal/domain/models"
	"github.com/guttosm/pricereturns/internal/middleware"
	"github.com/guttosm/pricereturns/internal/service"
)

// Handler provides HTTP handlers for the return and price table endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Delegate computation to the service layer
//   - Translate computed tables into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc     service.ReturnsService
	tickers service.TickersService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.ReturnsService): computes the four tables.
//   - tickers (service.TickersService): lists stored tickers; nil when the
//     configured price source has no catalog, in which case GET /api/v1/tickers
//     answers 501.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc service.ReturnsService, tickers service.TickersService) *Handler {
	return &Handler{svc: svc, tickers: tickers}
}

type tableFunc func(ctx context.Context, tickers []string, startYear int) (*models.Table, error)

// GetYearlyReturn godoc
// @Summary      Yearly return per ticker
// @Description  (last - first) / first adjusted close of every calendar year since start_year
// @Tags         returns
// @Produce      json
// @Param        tickers     query     string  true  "Comma separated tickers" example(AAPL,MSFT)
// @Param        start_year  query     int     true  "First calendar year kept" example(2020)
// @Success      200         {object}  dto.TableResponse  "Success"
// @Failure      400         {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500         {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/returns/yearly [get]
func (h *Handler) GetYearlyReturn(c *gin.Context) {
	h.serveTable(c, h.svc.YearlyReturn)
}

// GetMonthlyReturn godoc
// @Summary      Monthly return per ticker
// @Description  (last - first) / first adjusted close of every calendar month since start_year
// @Tags         returns
// @Produce      json
// @Param        tickers     query     string  true  "Comma separated tickers" example(AAPL,MSFT)
// @Param        start_year  query     int     true  "First calendar year kept" example(2020)
// @Success      200         {object}  dto.TableResponse  "Success"
// @Failure      400         {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500         {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/returns/monthly [get]
func (h *Handler) GetMonthlyReturn(c *gin.Context) {
	h.serveTable(c, h.svc.MonthlyReturn)
}

// GetMonthlyRebasedPrice godoc
// @Summary      Monthly price rebased to the first month
// @Description  Month-end adjusted close divided by the first month's end price (first month = 1.0)
// @Tags         prices
// @Produce      json
// @Param        tickers     query     string  true  "Comma separated tickers" example(AAPL,MSFT)
// @Param        start_year  query     int     true  "First calendar year kept" example(2020)
// @Success      200         {object}  dto.TableResponse  "Success"
// @Failure      400         {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500         {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/prices/rebased/monthly [get]
func (h *Handler) GetMonthlyRebasedPrice(c *gin.Context) {
	h.serveTable(c, h.svc.MonthlyRebasedPrice)
}

// GetYearlyNormalizedPrice godoc
// @Summary      Yearly price normalized by the historical range
// @Description  Year-end adjusted close divided by (max - min) adjusted close since start_year
// @Tags         prices
// @Produce      json
// @Param        tickers     query     string  true  "Comma separated tickers" example(AAPL,MSFT)
// @Param        start_year  query     int     true  "First calendar year kept" example(2020)
// @Success      200         {object}  dto.TableResponse  "Success"
// @Failure      400         {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500         {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/prices/normalized/yearly [get]
func (h *Handler) GetYearlyNormalizedPrice(c *gin.Context) {
	h.serveTable(c, h.svc.YearlyNormalizedPrice)
}

// ListTickers godoc
// @Summary      Stored tickers
// @Description  Tickers present in the price database with their row counts
// @Tags         tickers
// @Produce      json
// @Success      200  {array}   dto.TickerResponse  "Success"
// @Failure      500  {object}  dto.ErrorResponse   "Internal Error"
// @Failure      501  {object}  dto.ErrorResponse   "Not Implemented"
// @Router       /api/v1/tickers [get]
func (h *Handler) ListTickers(c *gin.Context) {
	if h.tickers == nil {
		middleware.AbortWithError(c, http.StatusNotImplemented, "ticker listing requires PRICE_SOURCE=postgres", nil)
		return
	}

	summaries, err := h.tickers.ListTickers(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to list tickers", err)
		return
	}

	resp := make([]dto.TickerResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, dto.TickerResponse{Ticker: s.Ticker, Rows: s.Rows})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) serveTable(c *gin.Context, fn tableFunc) {
	// ─── Validate "tickers" param ─────────────────────────────
	tickers := splitTickers(c.Query("tickers"))
	if len(tickers) == 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "tickers is required", nil)
		return
	}

	// ─── Validate "start_year" param ──────────────────────────
	raw := strings.TrimSpace(c.Query("start_year"))
	if raw == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, "start_year is required", nil)
		return
	}
	startYear, err := strconv.Atoi(raw)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid start_year, expected a year such as 2020", err)
		return
	}

	// ─── Compute (with request context) ───────────────────────
	table, err := fn(c.Request.Context(), tickers, startYear)
	if err != nil {
		if errors.Is(err, service.ErrNoTickers) || errors.Is(err, service.ErrInvalidStartYear) {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid request", err)
			return
		}
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to compute table", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTableResponse(table))
}

// splitTickers parses a comma separated list, dropping blanks.
func splitTickers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

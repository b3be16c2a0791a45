package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nannyslm/platform-api/internal/api/metrics"
	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/ports"
)

// BankDataHandler handles HTTP requests for nanny payout records.
type BankDataHandler struct {
	service ports.BankAccountService
}

func NewBankDataHandler(service ports.BankAccountService) *BankDataHandler {
	return &BankDataHandler{service: service}
}

// Create registers a payout account for a nanny.
//
// @Summary      Create bank data for a nanny
// @Tags         bank-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBankAccountRequest  true  "Bank account details"
// @Success      201   {object}  bankAccountResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /bank-data/ [post]
func (h *BankDataHandler) Create(c echo.Context) error {
	var req createBankAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	kind := domain.AccountKind(req.Kind)
	if kind == "" {
		kind = domain.KindSavings
	}

	view, err := h.service.Create(c.Request().Context(), ports.CreateBankAccountInput{
		NannyID:       req.NannyID,
		HolderName:    req.HolderName,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		ClearingCode:  req.ClearingCode,
		Kind:          kind,
	})
	if err != nil {
		metrics.BankAccountOpsTotal.WithLabelValues("create", "failure").Inc()
		return err
	}

	metrics.BankAccountOpsTotal.WithLabelValues("create", "success").Inc()
	return c.JSON(http.StatusCreated, toBankAccountResponse(view))
}

// List returns masked records for the admin dashboard, newest first. A bank
// filter routes the call through the search path and ignores skip/limit.
//
// @Summary      List bank data
// @Tags         bank-data
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int     false  "Records to skip"
// @Param        limit  query     int     false  "Max records to return (1-1000)"
// @Param        bank   query     string  false  "Filter by bank name substring"
// @Success      200    {object}  listBankAccountsResponse
// @Router       /bank-data/ [get]
func (h *BankDataHandler) List(c echo.Context) error {
	// Normalized up front so the response envelope reports the skip/limit
	// actually applied, not the raw query values.
	input := ports.ListBankAccountsInput{
		Skip:  parseQueryInt(c, "skip", 0),
		Limit: parseQueryInt(c, "limit", ports.DefaultListLimit),
		Bank:  c.QueryParam("bank"),
	}.Normalize()

	views, err := h.service.List(c.Request().Context(), input)
	if err != nil {
		return err
	}

	data := toMaskedResponses(views)
	return c.JSON(http.StatusOK, listBankAccountsResponse{
		Data:  data,
		Total: len(data),
		Skip:  input.Skip,
		Limit: input.Limit,
	})
}

// Statistics returns the aggregate counts for the admin dashboard.
//
// @Summary      Bank data statistics
// @Tags         bank-data
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.BankStats
// @Router       /bank-data/statistics [get]
func (h *BankDataHandler) Statistics(c echo.Context) error {
	start := time.Now()
	stats, err := h.service.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	metrics.StatsComputeDuration.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, stats)
}

// GetByNanny returns the single active record for a nanny.
//
// @Summary      Get a nanny's active bank data
// @Tags         bank-data
// @Produce      json
// @Security     BearerAuth
// @Param        nannyId  path      int  true  "Nanny id"
// @Success      200      {object}  bankAccountResponse
// @Failure      404      {object}  errorResponse
// @Router       /bank-data/nanny/{nannyId} [get]
func (h *BankDataHandler) GetByNanny(c echo.Context) error {
	nannyID, err := pathID(c, "nannyId")
	if err != nil {
		return err
	}

	view, err := h.service.GetActiveForNanny(c.Request().Context(), nannyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBankAccountResponse(view))
}

// GetByID returns a record by id, active or not.
//
// @Summary      Get bank data by id
// @Tags         bank-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Record id"
// @Success      200  {object}  bankAccountResponse
// @Failure      404  {object}  errorResponse
// @Router       /bank-data/{id} [get]
func (h *BankDataHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBankAccountResponse(view))
}

// Update applies a partial update to a record.
//
// @Summary      Update bank data
// @Tags         bank-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                       true  "Record id"
// @Param        body  body      updateBankAccountRequest  true  "Fields to change"
// @Success      200   {object}  bankAccountResponse
// @Failure      404   {object}  errorResponse
// @Router       /bank-data/{id} [put]
func (h *BankDataHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateBankAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	upd := ports.BankAccountUpdate{
		HolderName:    req.HolderName,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		ClearingCode:  req.ClearingCode,
	}
	if req.Kind != nil {
		kind := domain.AccountKind(*req.Kind)
		upd.Kind = &kind
	}

	view, err := h.service.Update(c.Request().Context(), id, upd)
	if err != nil {
		metrics.BankAccountOpsTotal.WithLabelValues("update", "failure").Inc()
		return err
	}

	metrics.BankAccountOpsTotal.WithLabelValues("update", "success").Inc()
	return c.JSON(http.StatusOK, toBankAccountResponse(view))
}

// Delete flags a record inactive (soft delete).
//
// @Summary      Delete bank data
// @Tags         bank-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Record id"
// @Success      200  {object}  deleteBankAccountResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /bank-data/{id} [delete]
func (h *BankDataHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.SoftDelete(c.Request().Context(), id); err != nil {
		metrics.BankAccountOpsTotal.WithLabelValues("delete", "failure").Inc()
		return err
	}

	metrics.BankAccountOpsTotal.WithLabelValues("delete", "success").Inc()
	return c.JSON(http.StatusOK, deleteBankAccountResponse{
		Message: "bank data deleted",
		ID:      id,
	})
}

// SearchByBank returns records whose bank name contains the given substring.
//
// @Summary      Search bank data by bank name
// @Tags         bank-data
// @Produce      json
// @Security     BearerAuth
// @Param        bank  query     string  true  "Bank name substring"
// @Success      200   {object}  searchBankAccountsResponse
// @Router       /bank-data/search/bank [get]
func (h *BankDataHandler) SearchByBank(c echo.Context) error {
	bank := c.QueryParam("bank")
	if bank == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "bank query parameter is required")
	}

	views, err := h.service.SearchByBank(c.Request().Context(), bank)
	if err != nil {
		return err
	}

	data := toMaskedResponses(views)
	return c.JSON(http.StatusOK, searchBankAccountsResponse{Data: data, Total: len(data)})
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func parseQueryInt(c echo.Context, name string, fallback int64) int64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/ports"
)

type stubBankService struct {
	createFn    func(ctx context.Context, input ports.CreateBankAccountInput) (*ports.BankAccountView, error)
	getByIDFn   func(ctx context.Context, id int64) (*ports.BankAccountView, error)
	getActiveFn func(ctx context.Context, nannyID int64) (*ports.BankAccountView, error)
	updateFn    func(ctx context.Context, id int64, upd ports.BankAccountUpdate) (*ports.BankAccountView, error)
	deleteFn    func(ctx context.Context, id int64) error
	listFn      func(ctx context.Context, input ports.ListBankAccountsInput) ([]ports.MaskedBankAccountView, error)
	searchFn    func(ctx context.Context, bank string) ([]ports.MaskedBankAccountView, error)
	statsFn     func(ctx context.Context) (*ports.BankStats, error)
}

func (s *stubBankService) Create(ctx context.Context, input ports.CreateBankAccountInput) (*ports.BankAccountView, error) {
	return s.createFn(ctx, input)
}

func (s *stubBankService) GetByID(ctx context.Context, id int64) (*ports.BankAccountView, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubBankService) GetActiveForNanny(ctx context.Context, nannyID int64) (*ports.BankAccountView, error) {
	return s.getActiveFn(ctx, nannyID)
}

func (s *stubBankService) Update(ctx context.Context, id int64, upd ports.BankAccountUpdate) (*ports.BankAccountView, error) {
	return s.updateFn(ctx, id, upd)
}

func (s *stubBankService) SoftDelete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubBankService) List(ctx context.Context, input ports.ListBankAccountsInput) ([]ports.MaskedBankAccountView, error) {
	return s.listFn(ctx, input)
}

func (s *stubBankService) SearchByBank(ctx context.Context, bank string) ([]ports.MaskedBankAccountView, error) {
	return s.searchFn(ctx, bank)
}

func (s *stubBankService) Statistics(ctx context.Context) (*ports.BankStats, error) {
	return s.statsFn(ctx)
}

func TestBankDataHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		createFn: func(ctx context.Context, input ports.CreateBankAccountInput) (*ports.BankAccountView, error) {
			if input.NannyID != 7 || input.Kind != domain.KindSavings {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.BankAccountView{ID: 1, NannyID: 7, BankName: input.BankName, Kind: input.Kind, Active: true}, nil
		},
	}
	handler := NewBankDataHandler(stub)

	// Kind omitted: savings is the default.
	body := `{"nanny_id":7,"holder_name":"Ana López","account_number":"1234567890123456","bank_name":"Santander"}`
	c, rec := jsonContext(e, http.MethodPost, "/bank-data/", body)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestBankDataHandler_Create_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		createFn: func(ctx context.Context, input ports.CreateBankAccountInput) (*ports.BankAccountView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewBankDataHandler(stub)

	// Account number shorter than the 8-character minimum.
	body := `{"nanny_id":7,"holder_name":"Ana","account_number":"123","bank_name":"Santander"}`
	c, _ := jsonContext(e, http.MethodPost, "/bank-data/", body)

	err := handler.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestBankDataHandler_Create_DuplicatePassesThrough(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		createFn: func(ctx context.Context, input ports.CreateBankAccountInput) (*ports.BankAccountView, error) {
			return nil, domain.ErrDuplicateActiveAccount
		},
	}
	handler := NewBankDataHandler(stub)

	body := `{"nanny_id":7,"holder_name":"Ana López","account_number":"1234567890123456","bank_name":"Santander"}`
	c, _ := jsonContext(e, http.MethodPost, "/bank-data/", body)

	if err := handler.Create(c); !errors.Is(err, domain.ErrDuplicateActiveAccount) {
		t.Fatalf("expected ErrDuplicateActiveAccount, got %v", err)
	}
}

func TestBankDataHandler_List_QueryParams(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		listFn: func(ctx context.Context, input ports.ListBankAccountsInput) ([]ports.MaskedBankAccountView, error) {
			if input.Skip != 20 || input.Limit != 10 || input.Bank != "santander" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return []ports.MaskedBankAccountView{{ID: 1, MaskedAccountNumber: "****3456"}}, nil
		},
	}
	handler := NewBankDataHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/bank-data/?skip=20&limit=10&bank=santander", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != float64(1) || resp["skip"] != float64(20) || resp["limit"] != float64(10) {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestBankDataHandler_List_EchoesClampedPagination(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		listFn: func(ctx context.Context, input ports.ListBankAccountsInput) ([]ports.MaskedBankAccountView, error) {
			if input.Skip != 0 || input.Limit != 1000 {
				t.Fatalf("expected clamped input, got %+v", input)
			}
			return nil, nil
		},
	}
	handler := NewBankDataHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/bank-data/?skip=-5&limit=5000", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// The envelope must report what was applied, not what was requested.
	if resp["skip"] != float64(0) || resp["limit"] != float64(1000) {
		t.Fatalf("unexpected pagination metadata: %+v", resp)
	}
}

func TestBankDataHandler_GetByID_InvalidID(t *testing.T) {
	e := newTestEcho()
	handler := NewBankDataHandler(&stubBankService{})

	for _, raw := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/bank-data/"+raw, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(raw)

		err := handler.GetByID(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Errorf("id %q: expected 400 HTTPError, got %v", raw, err)
		}
	}
}

func TestBankDataHandler_GetByNanny_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		getActiveFn: func(ctx context.Context, nannyID int64) (*ports.BankAccountView, error) {
			return nil, domain.ErrBankAccountNotFound
		},
	}
	handler := NewBankDataHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/bank-data/nanny/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("nannyId")
	c.SetParamValues("7")

	if err := handler.GetByNanny(c); !errors.Is(err, domain.ErrBankAccountNotFound) {
		t.Fatalf("expected ErrBankAccountNotFound, got %v", err)
	}
}

func TestBankDataHandler_Update_PartialPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		updateFn: func(ctx context.Context, id int64, upd ports.BankAccountUpdate) (*ports.BankAccountView, error) {
			if id != 5 {
				t.Fatalf("unexpected id: %d", id)
			}
			if upd.BankName == nil || *upd.BankName != "BBVA" {
				t.Fatalf("expected bank_name update, got %+v", upd)
			}
			if upd.HolderName != nil || upd.AccountNumber != nil || upd.Kind != nil {
				t.Fatalf("absent fields must stay nil: %+v", upd)
			}
			return &ports.BankAccountView{ID: id, BankName: *upd.BankName}, nil
		},
	}
	handler := NewBankDataHandler(stub)

	c, rec := jsonContext(e, http.MethodPut, "/bank-data/5", `{"bank_name":"BBVA"}`)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBankDataHandler_Delete(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		deleteFn: func(ctx context.Context, id int64) error {
			if id != 5 {
				t.Fatalf("unexpected id: %d", id)
			}
			return nil
		},
	}
	handler := NewBankDataHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/bank-data/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "bank data deleted" || resp["id"] != float64(5) {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestBankDataHandler_SearchByBank_RequiresQuery(t *testing.T) {
	e := newTestEcho()
	handler := NewBankDataHandler(&stubBankService{})

	req := httptest.NewRequest(http.MethodGet, "/bank-data/search/bank", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.SearchByBank(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestBankDataHandler_Statistics(t *testing.T) {
	e := newTestEcho()
	stub := &stubBankService{
		statsFn: func(ctx context.Context) (*ports.BankStats, error) {
			return &ports.BankStats{
				NanniesWithAccount:    2,
				NanniesWithoutAccount: 1,
				ActiveAccounts:        2,
				TopBanks:              []ports.BankUsage{{Bank: "Santander", Count: 2}},
			}, nil
		},
	}
	handler := NewBankDataHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/bank-data/statistics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Statistics(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["nannies_with_account"] != float64(2) || resp["nannies_without_account"] != float64(1) {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

package handler

import (
	"time"

	"github.com/nannyslm/platform-api/internal/core/ports"
)

// --- Request / Response types ---

type createBankAccountRequest struct {
	NannyID       int64  `json:"nanny_id"       validate:"required,gt=0"`
	HolderName    string `json:"holder_name"    validate:"required,min=2,max=150"`
	AccountNumber string `json:"account_number" validate:"required,min=8,max=50"`
	BankName      string `json:"bank_name"      validate:"required,min=2,max=100"`
	ClearingCode  string `json:"clearing_code"  validate:"omitempty,max=18"`
	Kind          string `json:"kind"           validate:"omitempty,oneof=savings checking"`
}

// updateBankAccountRequest carries a partial update; absent fields are left
// untouched. The active flag is not updatable, soft deletion is the only
// exposed transition.
type updateBankAccountRequest struct {
	HolderName    *string `json:"holder_name"    validate:"omitempty,min=2,max=150"`
	AccountNumber *string `json:"account_number" validate:"omitempty,min=8,max=50"`
	BankName      *string `json:"bank_name"      validate:"omitempty,min=2,max=100"`
	ClearingCode  *string `json:"clearing_code"  validate:"omitempty,max=18"`
	Kind          *string `json:"kind"           validate:"omitempty,oneof=savings checking"`
}

// bankAccountResponse is the full admin view of a single record.
type bankAccountResponse struct {
	ID            int64     `json:"id"`
	NannyID       int64     `json:"nanny_id"`
	HolderName    string    `json:"holder_name"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name"`
	ClearingCode  string    `json:"clearing_code,omitempty"`
	Kind          string    `json:"kind"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	NannyName     string    `json:"nanny_name,omitempty"`
	NannyEmail    string    `json:"nanny_email,omitempty"`
}

// maskedBankAccountResponse is the listing item: account number truncated,
// owning nanny's public data joined in.
type maskedBankAccountResponse struct {
	ID                  int64     `json:"id"`
	NannyID             int64     `json:"nanny_id"`
	HolderName          string    `json:"holder_name"`
	BankName            string    `json:"bank_name"`
	MaskedAccountNumber string    `json:"masked_account_number"`
	Kind                string    `json:"kind"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	NannyName           string    `json:"nanny_name"`
	NannyEmail          string    `json:"nanny_email"`
	NannyVerified       bool      `json:"nanny_verified"`
}

type listBankAccountsResponse struct {
	Data  []maskedBankAccountResponse `json:"data"`
	Total int                         `json:"total"`
	Skip  int64                       `json:"skip"`
	Limit int64                       `json:"limit"`
}

type searchBankAccountsResponse struct {
	Data  []maskedBankAccountResponse `json:"data"`
	Total int                         `json:"total"`
}

type deleteBankAccountResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func toBankAccountResponse(v *ports.BankAccountView) bankAccountResponse {
	return bankAccountResponse{
		ID:            v.ID,
		NannyID:       v.NannyID,
		HolderName:    v.HolderName,
		AccountNumber: v.AccountNumber,
		BankName:      v.BankName,
		ClearingCode:  v.ClearingCode,
		Kind:          string(v.Kind),
		Active:        v.Active,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
		NannyName:     v.NannyName,
		NannyEmail:    v.NannyEmail,
	}
}

func toMaskedResponses(views []ports.MaskedBankAccountView) []maskedBankAccountResponse {
	out := make([]maskedBankAccountResponse, 0, len(views))
	for _, v := range views {
		out = append(out, maskedBankAccountResponse{
			ID:                  v.ID,
			NannyID:             v.NannyID,
			HolderName:          v.HolderName,
			BankName:            v.BankName,
			MaskedAccountNumber: v.MaskedAccountNumber,
			Kind:                string(v.Kind),
			Active:              v.Active,
			CreatedAt:           v.CreatedAt,
			NannyName:           v.NannyName,
			NannyEmail:          v.NannyEmail,
			NannyVerified:       v.NannyVerified,
		})
	}
	return out
}

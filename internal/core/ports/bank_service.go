package ports

import (
	"context"
	"time"

	"github.com/nannyslm/platform-api/internal/core/domain"
)

// CreateBankAccountInput carries the data needed to register a payout account.
type CreateBankAccountInput struct {
	NannyID       int64
	HolderName    string
	AccountNumber string
	BankName      string
	ClearingCode  string
	Kind          domain.AccountKind
}

// BankAccountView is the full single-record projection returned to admins on
// create/get/update. The account number is carried in the clear here; masked
// projections use MaskedBankAccountView.
type BankAccountView struct {
	ID            int64              `json:"id"`
	NannyID       int64              `json:"nanny_id"`
	HolderName    string             `json:"holder_name"`
	AccountNumber string             `json:"account_number"`
	BankName      string             `json:"bank_name"`
	ClearingCode  string             `json:"clearing_code,omitempty"`
	Kind          domain.AccountKind `json:"kind"`
	Active        bool               `json:"active"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	NannyName     string             `json:"nanny_name,omitempty"`
	NannyEmail    string             `json:"nanny_email,omitempty"`
}

// MaskedBankAccountView is the listing projection: the account number is
// truncated and the owning nanny's public data is joined in.
type MaskedBankAccountView struct {
	ID                  int64              `json:"id"`
	NannyID             int64              `json:"nanny_id"`
	HolderName          string             `json:"holder_name"`
	BankName            string             `json:"bank_name"`
	MaskedAccountNumber string             `json:"masked_account_number"`
	Kind                domain.AccountKind `json:"kind"`
	Active              bool               `json:"active"`
	CreatedAt           time.Time          `json:"created_at"`
	NannyName           string             `json:"nanny_name"`
	NannyEmail          string             `json:"nanny_email"`
	NannyVerified       bool               `json:"nanny_verified"`
}

// Bounds for the admin listing page size.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListBankAccountsInput carries the admin listing parameters. A non-empty
// Bank filter routes the call through the search path, which ignores
// Skip/Limit (the historic behavior of this endpoint, kept intentionally).
type ListBankAccountsInput struct {
	Skip  int64
	Limit int64
	Bank  string
}

// Normalize clamps Skip and Limit to their allowed ranges so callers and the
// service agree on the values actually applied.
func (in ListBankAccountsInput) Normalize() ListBankAccountsInput {
	if in.Limit < 1 {
		in.Limit = DefaultListLimit
	}
	if in.Limit > MaxListLimit {
		in.Limit = MaxListLimit
	}
	if in.Skip < 0 {
		in.Skip = 0
	}
	return in
}

// BankAccountService defines the payout-record use cases.
type BankAccountService interface {
	Create(ctx context.Context, input CreateBankAccountInput) (*BankAccountView, error)
	GetByID(ctx context.Context, id int64) (*BankAccountView, error)
	GetActiveForNanny(ctx context.Context, nannyID int64) (*BankAccountView, error)
	Update(ctx context.Context, id int64, upd BankAccountUpdate) (*BankAccountView, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, input ListBankAccountsInput) ([]MaskedBankAccountView, error)
	SearchByBank(ctx context.Context, bank string) ([]MaskedBankAccountView, error)
	Statistics(ctx context.Context) (*BankStats, error)
}

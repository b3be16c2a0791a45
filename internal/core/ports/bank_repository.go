package ports

import (
	"context"

	"github.com/nannyslm/platform-api/internal/core/domain"
)

// BankAccountOwner is the slice of user data joined onto admin listings.
type BankAccountOwner struct {
	Name     string
	Email    string
	Verified bool
}

// OwnedBankAccount pairs a bank account with its owning nanny's public data.
type OwnedBankAccount struct {
	Account domain.BankAccount
	Owner   BankAccountOwner
}

// BankAccountUpdate carries a partial update; nil fields are left untouched.
// Active is deliberately absent: soft deletion is the only exposed transition.
type BankAccountUpdate struct {
	HolderName    *string
	AccountNumber *string
	BankName      *string
	ClearingCode  *string
	Kind          *domain.AccountKind
}

// BankStats is the aggregate view served on the admin dashboard.
type BankStats struct {
	NanniesWithAccount    int64       `json:"nannies_with_account"`
	NanniesWithoutAccount int64       `json:"nannies_without_account"`
	ActiveAccounts        int64       `json:"active_accounts"`
	InactiveAccounts      int64       `json:"inactive_accounts"`
	TopBanks              []BankUsage `json:"top_banks"`
}

// BankUsage counts active accounts held at one bank.
type BankUsage struct {
	Bank  string `json:"bank"`
	Count int64  `json:"count"`
}

// BankAccountRepository defines persistence operations for payout records.
type BankAccountRepository interface {
	// Insert persists a new record. A storage-level violation of the
	// one-active-account-per-nanny constraint is surfaced as
	// domain.ErrDuplicateActiveAccount.
	Insert(ctx context.Context, account *domain.BankAccount) (*domain.BankAccount, error)
	FindByID(ctx context.Context, id int64) (*domain.BankAccount, error)
	// FindActiveByNannyID returns the single active record for a nanny, or
	// domain.ErrBankAccountNotFound when none exists.
	FindActiveByNannyID(ctx context.Context, nannyID int64) (*domain.BankAccount, error)
	// Update applies the non-nil fields of upd and bumps the update timestamp.
	Update(ctx context.Context, id int64, upd BankAccountUpdate) (*domain.BankAccount, error)
	// SoftDelete flags the record inactive. Deleting an already-inactive
	// record succeeds and re-sets the flag.
	SoftDelete(ctx context.Context, id int64) error
	// ListWithOwner returns nanny-owned records joined with owner data,
	// newest first, paginated by skip/limit.
	ListWithOwner(ctx context.Context, skip, limit int64) ([]OwnedBankAccount, error)
	// SearchByBank returns nanny-owned records whose bank name contains the
	// given substring (case-insensitive), ordered by holder name ascending.
	SearchByBank(ctx context.Context, bank string) ([]OwnedBankAccount, error)
	// Stats computes account counts and the top banks by active accounts.
	// The nannies-without-account figure is derived by the service.
	Stats(ctx context.Context, topBanks int64) (*BankStats, error)
}

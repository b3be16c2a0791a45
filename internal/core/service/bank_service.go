package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/ports"
)

const topBanksLimit = 5

// StatsCache abstracts the short-lived cache in front of the statistics
// aggregation (Redis). A miss is reported as (nil, nil).
type StatsCache interface {
	Get(ctx context.Context) (*ports.BankStats, error)
	Set(ctx context.Context, stats *ports.BankStats) error
}

// BankAccountService implements the payout-record use cases.
type BankAccountService struct {
	accounts ports.BankAccountRepository
	users    ports.UserRepository
	stats    StatsCache
	log      zerolog.Logger
}

func NewBankAccountService(accounts ports.BankAccountRepository, users ports.UserRepository, stats StatsCache, log zerolog.Logger) *BankAccountService {
	return &BankAccountService{accounts: accounts, users: users, stats: stats, log: log}
}

// Create registers a payout account for a nanny. The nanny must exist with
// the nanny role and must not already hold an active account.
func (s *BankAccountService) Create(ctx context.Context, input ports.CreateBankAccountInput) (*ports.BankAccountView, error) {
	nanny, err := s.users.FindNannyByID(ctx, input.NannyID)
	if err != nil {
		return nil, err
	}

	// Pre-check for a friendlier error; the partial unique index on
	// (nanny_id, active=true) is the authoritative guard under concurrency.
	if _, err := s.accounts.FindActiveByNannyID(ctx, input.NannyID); err == nil {
		return nil, domain.ErrDuplicateActiveAccount
	} else if !errors.Is(err, domain.ErrBankAccountNotFound) {
		return nil, fmt.Errorf("create bank account: check active: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.BankAccount{
		NannyID:       input.NannyID,
		HolderName:    input.HolderName,
		AccountNumber: input.AccountNumber,
		BankName:      input.BankName,
		ClearingCode:  input.ClearingCode,
		Kind:          input.Kind,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.accounts.Insert(ctx, account)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", created.ID).Int64("nanny_id", created.NannyID).Str("bank", created.BankName).Msg("bank account created")
	return s.toView(created, nanny), nil
}

// GetByID retrieves a record by id, active or not.
func (s *BankAccountService) GetByID(ctx context.Context, id int64) (*ports.BankAccountView, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, account), nil
}

// GetActiveForNanny retrieves the single active record for a nanny.
func (s *BankAccountService) GetActiveForNanny(ctx context.Context, nannyID int64) (*ports.BankAccountView, error) {
	account, err := s.accounts.FindActiveByNannyID(ctx, nannyID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, account), nil
}

// Update applies the non-nil fields of upd. The active flag is not part of
// the update contract: soft deletion is the only exposed state transition.
func (s *BankAccountService) Update(ctx context.Context, id int64, upd ports.BankAccountUpdate) (*ports.BankAccountView, error) {
	account, err := s.accounts.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", id).Msg("bank account updated")
	return s.enrich(ctx, account), nil
}

// SoftDelete flags a record inactive. Re-deleting an inactive record succeeds.
func (s *BankAccountService) SoftDelete(ctx context.Context, id int64) error {
	if err := s.accounts.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("account_id", id).Msg("bank account soft-deleted")
	return nil
}

// List returns masked admin views, newest first. When a bank filter is given
// the call is delegated to SearchByBank and skip/limit are ignored — the
// long-standing behavior of this endpoint, kept for client compatibility.
func (s *BankAccountService) List(ctx context.Context, input ports.ListBankAccountsInput) ([]ports.MaskedBankAccountView, error) {
	if input.Bank != "" {
		return s.SearchByBank(ctx, input.Bank)
	}

	input = input.Normalize()

	rows, err := s.accounts.ListWithOwner(ctx, input.Skip, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	return maskRows(rows), nil
}

// SearchByBank finds nanny-owned records by a case-insensitive bank-name
// substring, ordered by holder name.
func (s *BankAccountService) SearchByBank(ctx context.Context, bank string) ([]ports.MaskedBankAccountView, error) {
	rows, err := s.accounts.SearchByBank(ctx, bank)
	if err != nil {
		return nil, fmt.Errorf("search bank accounts: %w", err)
	}
	return maskRows(rows), nil
}

// Statistics aggregates account counts for the admin dashboard. Results are
// served from the cache when warm; cache failures are logged and the
// aggregation falls through to the store.
func (s *BankAccountService) Statistics(ctx context.Context) (*ports.BankStats, error) {
	if s.stats != nil {
		cached, err := s.stats.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed, recomputing")
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.accounts.Stats(ctx, topBanksLimit)
	if err != nil {
		return nil, fmt.Errorf("bank statistics: %w", err)
	}

	totalNannies, err := s.users.CountNannies(ctx)
	if err != nil {
		return nil, fmt.Errorf("bank statistics: count nannies: %w", err)
	}
	stats.NanniesWithoutAccount = totalNannies - stats.NanniesWithAccount
	if stats.NanniesWithoutAccount < 0 {
		stats.NanniesWithoutAccount = 0
	}

	if s.stats != nil {
		if err := s.stats.Set(ctx, stats); err != nil {
			s.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}

// enrich attaches the owning nanny's public data when it can be resolved;
// the record itself is returned either way.
func (s *BankAccountService) enrich(ctx context.Context, account *domain.BankAccount) *ports.BankAccountView {
	nanny, err := s.users.FindNannyByID(ctx, account.NannyID)
	if err != nil {
		s.log.Warn().Err(err).Int64("nanny_id", account.NannyID).Msg("owner lookup failed for bank account view")
		return s.toView(account, nil)
	}
	return s.toView(account, nanny)
}

func (s *BankAccountService) toView(account *domain.BankAccount, nanny *domain.User) *ports.BankAccountView {
	view := &ports.BankAccountView{
		ID:            account.ID,
		NannyID:       account.NannyID,
		HolderName:    account.HolderName,
		AccountNumber: account.AccountNumber,
		BankName:      account.BankName,
		ClearingCode:  account.ClearingCode,
		Kind:          account.Kind,
		Active:        account.Active,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
	if nanny != nil {
		view.NannyName = nanny.DisplayName()
		view.NannyEmail = nanny.Email
	}
	return view
}

func maskRows(rows []ports.OwnedBankAccount) []ports.MaskedBankAccountView {
	views := make([]ports.MaskedBankAccountView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ports.MaskedBankAccountView{
			ID:                  row.Account.ID,
			NannyID:             row.Account.NannyID,
			HolderName:          row.Account.HolderName,
			BankName:            row.Account.BankName,
			MaskedAccountNumber: domain.MaskAccountNumber(row.Account.AccountNumber),
			Kind:                row.Account.Kind,
			Active:              row.Account.Active,
			CreatedAt:           row.Account.CreatedAt,
			NannyName:           row.Owner.Name,
			NannyEmail:          row.Owner.Email,
			NannyVerified:       row.Owner.Verified,
		})
	}
	return views
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"folioscope/internal/addr"
	"folioscope/internal/crypto"
	"folioscope/internal/domain"
)

// AccountService manages user-configured accounts: validation, ID
// assignment, and encryption of exchange secrets before they reach the
// store.
type AccountService struct {
	store      domain.AccountStore
	manual     domain.ManualPositionStore
	passphrase string
	logger     *slog.Logger
}

// NewAccountService creates the account management service. passphrase
// may be empty, in which case exchange secrets are stored as given.
func NewAccountService(store domain.AccountStore, manual domain.ManualPositionStore, passphrase string, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:      store,
		manual:     manual,
		passphrase: passphrase,
		logger:     logger.With("service", "accounts"),
	}
}

// Create validates and persists a new account.
func (s *AccountService) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	if err := validateAccount(a); err != nil {
		return domain.Account{}, err
	}

	a.ID = uuid.NewString()
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.sealSecret(&a); err != nil {
		return domain.Account{}, err
	}
	if err := s.store.Create(ctx, a); err != nil {
		return domain.Account{}, fmt.Errorf("accounts: create: %w", err)
	}

	s.logger.Info("account created", "id", a.ID, "kind", a.Kind, "name", a.Name)
	return a, nil
}

// Update validates and persists changes to an existing account. An empty
// APISecret keeps the stored one; a new secret replaces it.
func (s *AccountService) Update(ctx context.Context, a domain.Account) (domain.Account, error) {
	if err := validateAccount(a); err != nil {
		return domain.Account{}, err
	}

	existing, err := s.store.Get(ctx, a.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("accounts: load for update: %w", err)
	}

	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()

	if a.APISecret == "" {
		a.APISecret = existing.APISecret
	} else if err := s.sealSecret(&a); err != nil {
		return domain.Account{}, err
	}

	if err := s.store.Update(ctx, a); err != nil {
		return domain.Account{}, fmt.Errorf("accounts: update: %w", err)
	}
	return a, nil
}

// Delete removes an account and every manual position it owns.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if err := s.manual.DeleteByAccount(ctx, id); err != nil {
		return fmt.Errorf("accounts: delete owned positions: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("accounts: delete: %w", err)
	}
	s.logger.Info("account deleted", "id", id)
	return nil
}

// Get returns one account by id.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	return s.store.Get(ctx, id)
}

// List returns every configured account.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.store.List(ctx)
}

// sealSecret encrypts the API secret in place when a passphrase is
// configured and the value is not already a sealed blob.
func (s *AccountService) sealSecret(a *domain.Account) error {
	if s.passphrase == "" || a.APISecret == "" || crypto.IsEncryptedSecret(a.APISecret) {
		return nil
	}
	sealed, err := crypto.EncryptSecret(a.APISecret, s.passphrase)
	if err != nil {
		return fmt.Errorf("accounts: seal secret: %w", err)
	}
	a.APISecret = sealed
	return nil
}

func validateAccount(a domain.Account) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("accounts: name must not be empty: %w", domain.ErrInvalid)
	}

	switch a.Kind {
	case domain.AccountKindWallet:
		if addr.Classify(a.Address) == addr.FamilyUnsupported {
			return fmt.Errorf("accounts: address %q: %w", a.Address, domain.ErrUnsupported)
		}
	case domain.AccountKindCex:
		if a.Exchange != domain.CexBinance && a.Exchange != domain.CexCoinbase {
			return fmt.Errorf("accounts: exchange %q: %w", a.Exchange, domain.ErrUnsupported)
		}
		if a.APIKey == "" {
			return fmt.Errorf("accounts: exchange accounts need an API key: %w", domain.ErrInvalid)
		}
	case domain.AccountKindBrokerage, domain.AccountKindManual:
		// No source credentials; positions are entered manually.
	default:
		return fmt.Errorf("accounts: kind %q: %w", a.Kind, domain.ErrUnsupported)
	}

	for _, ex := range a.PerpExchanges {
		switch ex {
		case domain.PerpLighter, domain.PerpEthereal, domain.PerpHyperliquid:
		default:
			return fmt.Errorf("accounts: perp exchange %q: %w", ex, domain.ErrUnsupported)
		}
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"folioscope/internal/domain"
)

// AccountStore implements domain.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates an AccountStore backed by the given pool.
func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

const accountSelectCols = `id, name, kind, address, chains, perp_exchanges,
	exchange, api_key, api_secret, active, use_demo_data, created_at, updated_at`

func scanAccountRow(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	var kind, exchange string
	var perps []string

	err := row.Scan(
		&a.ID, &a.Name, &kind, &a.Address, &a.Chains, &perps,
		&exchange, &a.APIKey, &a.APISecret,
		&a.Active, &a.UseDemoData, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Kind = domain.AccountKind(kind)
	a.Exchange = domain.CexExchange(exchange)
	for _, p := range perps {
		a.PerpExchanges = append(a.PerpExchanges, domain.PerpExchange(p))
	}
	return a, nil
}

// Create inserts a new account.
func (s *AccountStore) Create(ctx context.Context, a domain.Account) error {
	const query = `
		INSERT INTO accounts (
			id, name, kind, address, chains, perp_exchanges,
			exchange, api_key, api_secret, active, use_demo_data,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Name, string(a.Kind), a.Address, a.Chains, perpStrings(a.PerpExchanges),
		string(a.Exchange), a.APIKey, a.APISecret, a.Active, a.UseDemoData,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("postgres: create account %s: %w", a.ID, err)
	}
	return nil
}

// Update replaces all mutable fields of an account.
func (s *AccountStore) Update(ctx context.Context, a domain.Account) error {
	const query = `
		UPDATE accounts SET
			name           = $2,
			kind           = $3,
			address        = $4,
			chains         = $5,
			perp_exchanges = $6,
			exchange       = $7,
			api_key        = $8,
			api_secret     = $9,
			active         = $10,
			use_demo_data  = $11,
			updated_at     = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		a.ID, a.Name, string(a.Kind), a.Address, a.Chains, perpStrings(a.PerpExchanges),
		string(a.Exchange), a.APIKey, a.APISecret, a.Active, a.UseDemoData,
	)
	if err != nil {
		return fmt.Errorf("postgres: update account %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an account by id.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete account %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves a single account by id.
func (s *AccountStore) Get(ctx context.Context, id string) (domain.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountSelectCols+` FROM accounts WHERE id = $1`, id)

	a, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("postgres: get account %s: %w", id, err)
	}
	return a, nil
}

// List returns every account, oldest first.
func (s *AccountStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+accountSelectCols+` FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func perpStrings(exchanges []domain.PerpExchange) []string {
	out := make([]string, len(exchanges))
	for i, ex := range exchanges {
		out[i] = string(ex)
	}
	return out
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"folioscope/internal/domain"
)

// ManualPositionStore implements domain.ManualPositionStore using
// PostgreSQL.
type ManualPositionStore struct {
	pool *pgxpool.Pool
}

// NewManualPositionStore creates a ManualPositionStore backed by the
// given pool.
func NewManualPositionStore(pool *pgxpool.Pool) *ManualPositionStore {
	return &ManualPositionStore{pool: pool}
}

const manualSelectCols = `id, type, symbol, name, amount, account_id,
	price_key, is_debt, cost_basis, purchase_date`

func scanManualRow(row pgx.Row) (domain.Position, error) {
	var p domain.Position
	var typ string

	err := row.Scan(
		&p.ID, &typ, &p.Symbol, &p.Name, &p.Amount, &p.AccountID,
		&p.PriceKey, &p.IsDebt, &p.CostBasis, &p.PurchaseDate,
	)
	if err != nil {
		return domain.Position{}, err
	}
	p.Type = domain.PositionType(typ)
	return p, nil
}

// Create inserts a new manual position.
func (s *ManualPositionStore) Create(ctx context.Context, p domain.Position) error {
	const query = `
		INSERT INTO manual_positions (
			id, type, symbol, name, amount, account_id,
			price_key, is_debt, cost_basis, purchase_date,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			NOW(), NOW()
		)`

	_, err := s.pool.Exec(ctx, query,
		p.ID, string(p.Type), p.Symbol, p.Name, p.Amount, p.AccountID,
		p.PriceKey, p.IsDebt, p.CostBasis, p.PurchaseDate,
	)
	if err != nil {
		return fmt.Errorf("postgres: create manual position %s: %w", p.ID, err)
	}
	return nil
}

// Update replaces all mutable fields of a manual position.
func (s *ManualPositionStore) Update(ctx context.Context, p domain.Position) error {
	const query = `
		UPDATE manual_positions SET
			type          = $2,
			symbol        = $3,
			name          = $4,
			amount        = $5,
			account_id    = $6,
			price_key     = $7,
			is_debt       = $8,
			cost_basis    = $9,
			purchase_date = $10,
			updated_at    = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		p.ID, string(p.Type), p.Symbol, p.Name, p.Amount, p.AccountID,
		p.PriceKey, p.IsDebt, p.CostBasis, p.PurchaseDate,
	)
	if err != nil {
		return fmt.Errorf("postgres: update manual position %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a manual position by id.
func (s *ManualPositionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM manual_positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete manual position %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns every manual position, oldest first.
func (s *ManualPositionStore) List(ctx context.Context) ([]domain.Position, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+manualSelectCols+` FROM manual_positions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list manual positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		p, err := scanManualRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan manual position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// DeleteByAccount removes all manual positions owned by an account.
func (s *ManualPositionStore) DeleteByAccount(ctx context.Context, accountID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM manual_positions WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("postgres: delete manual positions for account %s: %w", accountID, err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// batchLimit caps how many ids the due/expired sweeps return per call.
const batchLimit = 500

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func moneyFromRow(cents int64, currency string) (amount.Money, error) {
	m, err := amount.NewMoney(cents, amount.Currency(currency))
	if err != nil {
		return amount.Money{}, fmt.Errorf("decode money %d %s: %w", cents, currency, err)
	}
	return m, nil
}

func gemsFromRow(tenths int64) (amount.Gems, error) {
	g, err := amount.NewGems(tenths)
	if err != nil {
		return amount.Gems{}, fmt.Errorf("decode gems %d: %w", tenths, err)
	}
	return g, nil
}

// collectIDs drains rows holding a single id column.
// On success, returns an empty slice (not nil) when there are no rows.
func collectIDs(rows pgx.Rows, what string) ([]string, error) {
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", what, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", what, err)
	}
	return ids, nil
}

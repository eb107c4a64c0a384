package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("account not found")

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

const accountCols = `user_id, username, currency_preference, dark_mode, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.UserID, &a.Username, &a.CurrencyPreference, &a.DarkMode, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *Repo) Get(ctx context.Context, userID string) (Account, error) {
	return scanAccount(r.Pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE user_id = $1`, userID))
}

// Upsert creates the account row on first login and refreshes the username on
// later ones. Preferences survive the refresh.
func (r *Repo) Upsert(ctx context.Context, userID, username string) (Account, error) {
	return scanAccount(r.Pool.QueryRow(ctx, `
		INSERT INTO accounts (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, updated_at = NOW()
		RETURNING `+accountCols,
		userID, username))
}

// UpdatePrefs applies a partial update. Nil fields keep their current value.
func (r *Repo) UpdatePrefs(ctx context.Context, userID string, username, currency *string, darkMode *bool) (Account, error) {
	return scanAccount(r.Pool.QueryRow(ctx, `
		UPDATE accounts
		SET username            = COALESCE($2, username),
		    currency_preference = COALESCE($3, currency_preference),
		    dark_mode           = COALESCE($4, dark_mode),
		    updated_at          = NOW()
		WHERE user_id = $1
		RETURNING `+accountCols,
		userID, username, currency, darkMode))
}

// DeleteAllData removes everything the user owns in one transaction:
// transactions first, then budget periods, then the account row itself.
func (r *Repo) DeleteAllData(ctx context.Context, userID string) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_settings WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

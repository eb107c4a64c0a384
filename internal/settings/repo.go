package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("settings not found")
	ErrForbidden = errors.New("settings owned by another user")
)

const settingsCols = `id, user_id, total_amount, period_days, settings_tag,
	is_active, title, currency, start_date, created_at, updated_at`

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func scanSettings(row pgx.Row) (Settings, error) {
	var s Settings
	err := row.Scan(
		&s.ID, &s.UserID, &s.TotalAmount, &s.PeriodDays, &s.SettingsTag,
		&s.IsActive, &s.Title, &s.Currency, &s.StartDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	return s, err
}

// Create deactivates every active period the user has and inserts the new one
// as active, in a single transaction so concurrent creates cannot leave zero
// or two active rows. The tag is a random UUID; the UNIQUE constraint on
// settings_tag backs up the generator.
func (r *Repo) Create(ctx context.Context, userID string, p CreateParams) (Settings, error) {
	tag := uuid.NewString()

	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Settings{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE user_settings
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = true`,
		userID,
	); err != nil {
		return Settings{}, err
	}

	s, err := scanSettings(tx.QueryRow(ctx, `
		INSERT INTO user_settings (user_id, total_amount, period_days, settings_tag, is_active, title, currency)
		VALUES ($1, $2, $3, $4, true, COALESCE(NULLIF($5, ''), 'Budget Period'), NULLIF($6, ''))
		RETURNING `+settingsCols,
		userID, p.TotalAmount, p.PeriodDays, tag, p.Title, p.Currency,
	))
	if err != nil {
		return Settings{}, err
	}

	return s, tx.Commit(ctx)
}

// Active returns the user's active period, newest first in case more than one
// is somehow active.
func (r *Repo) Active(ctx context.Context, userID string) (Settings, error) {
	return scanSettings(r.Pool.QueryRow(ctx, `
		SELECT `+settingsCols+`
		FROM user_settings
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`,
		userID,
	))
}

func (r *Repo) History(ctx context.Context, userID string) ([]Settings, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+settingsCols+`
		FROM user_settings
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Settings, 0)
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) ByTag(ctx context.Context, tag string) (Settings, error) {
	return scanSettings(r.Pool.QueryRow(ctx, `
		SELECT `+settingsCols+`
		FROM user_settings
		WHERE settings_tag = $1`,
		tag,
	))
}

// Activate switches the user's active period to the one named by tag. The
// ownership check, the deactivation of current actives, and the activation run
// in one transaction; row locks on the user's period rows serialize concurrent
// activations, so the last commit wins and exactly one row stays active.
func (r *Repo) Activate(ctx context.Context, userID, tag string) (Settings, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Settings{}, err
	}
	defer tx.Rollback(ctx)

	var owner string
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM user_settings WHERE settings_tag = $1 FOR UPDATE`,
		tag,
	).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, err
	}
	if owner != userID {
		return Settings{}, ErrForbidden
	}

	if _, err := tx.Exec(ctx, `
		UPDATE user_settings
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = true`,
		userID,
	); err != nil {
		return Settings{}, err
	}

	s, err := scanSettings(tx.QueryRow(ctx, `
		UPDATE user_settings
		SET is_active = true, updated_at = CURRENT_TIMESTAMP
		WHERE settings_tag = $1
		RETURNING `+settingsCols,
		tag,
	))
	if err != nil {
		return Settings{}, err
	}

	return s, tx.Commit(ctx)
}

// UpdateActive applies a partial update to the active period only. Nil fields
// keep their current value.
func (r *Repo) UpdateActive(ctx context.Context, userID string, totalAmount *float64, periodDays *int) (Settings, error) {
	return scanSettings(r.Pool.QueryRow(ctx, `
		UPDATE user_settings
		SET total_amount = COALESCE($2, total_amount),
		    period_days = COALESCE($3, period_days),
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = true
		RETURNING `+settingsCols,
		userID, totalAmount, periodDays,
	))
}

func (r *Repo) RenameActive(ctx context.Context, userID, title string) (Settings, error) {
	return scanSettings(r.Pool.QueryRow(ctx, `
		UPDATE user_settings
		SET title = $2, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = true
		RETURNING `+settingsCols,
		userID, title,
	))
}

func (r *Repo) SetActiveCurrency(ctx context.Context, userID, code string) (Settings, error) {
	return scanSettings(r.Pool.QueryRow(ctx, `
		UPDATE user_settings
		SET currency = $2, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = true
		RETURNING `+settingsCols,
		userID, code,
	))
}

// Deactivate clears the active flag without creating a replacement.
func (r *Repo) Deactivate(ctx context.Context, userID string) error {
	ct, err := r.Pool.Exec(ctx, `
		UPDATE user_settings
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = true`,
		userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByTag removes the period and every transaction referencing it as one
// atomic unit. The transactions must go first to satisfy the foreign key; the
// surrounding transaction guarantees they are not lost if the period delete
// fails.
func (r *Repo) DeleteByTag(ctx context.Context, userID, tag string) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var owner string
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM user_settings WHERE settings_tag = $1 FOR UPDATE`,
		tag,
	).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE settings_tag = $1`, tag); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_settings WHERE settings_tag = $1`, tag); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

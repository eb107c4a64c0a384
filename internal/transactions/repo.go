package transactions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrNoActiveSettings = errors.New("no active settings for user")
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// activeTag resolves the caller's currently active period tag. q is either the
// pool or an open transaction.
func (r *Repo) activeTag(ctx context.Context, q querier, userID string) (string, error) {
	var tag string
	err := q.QueryRow(ctx, `
		SELECT settings_tag FROM user_settings
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`,
		userID,
	).Scan(&tag)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoActiveSettings
	}
	return tag, err
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TagOwner returns the user id owning the period named by tag.
func (r *Repo) TagOwner(ctx context.Context, tag string) (string, error) {
	var owner string
	err := r.Pool.QueryRow(ctx,
		`SELECT user_id FROM user_settings WHERE settings_tag = $1`, tag,
	).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return owner, err
}

// Create inserts a transaction bound to the user's active period. The signed
// amount must already carry the income/expense convention. Resolve and insert
// share one transaction so the period cannot be deleted in between.
func (r *Repo) Create(ctx context.Context, userID, title string, amount float64, category string) (Transaction, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx)

	tag, err := r.activeTag(ctx, tx, userID)
	if err != nil {
		return Transaction{}, err
	}

	var t Transaction
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (user_id, title, amount, category, settings_tag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, amount::float8, category, settings_tag, created_at`,
		userID, title, amount, category, tag,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Amount, &t.Category, &t.SettingsTag, &t.CreatedAt)
	if err != nil {
		return Transaction{}, err
	}
	return t, tx.Commit(ctx)
}

const periodJoin = `
	SELECT t.id, t.user_id, t.title, t.amount::float8, t.category, t.settings_tag, t.created_at,
	       us.total_amount::float8, us.period_days, us.start_date
	FROM transactions t
	JOIN user_settings us ON t.settings_tag = us.settings_tag
	WHERE t.settings_tag = $1
	ORDER BY t.created_at DESC`

func (r *Repo) listByTag(ctx context.Context, tag string) ([]PeriodTransaction, error) {
	rows, err := r.Pool.Query(ctx, periodJoin, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PeriodTransaction, 0)
	for rows.Next() {
		var t PeriodTransaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Amount, &t.Category, &t.SettingsTag, &t.CreatedAt,
			&t.TotalAmount, &t.PeriodDays, &t.StartDate,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ForUser lists the transactions of the user's active period only.
func (r *Repo) ForUser(ctx context.Context, userID string) ([]PeriodTransaction, error) {
	tag, err := r.activeTag(ctx, r.Pool, userID)
	if err != nil {
		return nil, err
	}
	return r.listByTag(ctx, tag)
}

// ForTag lists a period's transactions regardless of its active flag.
func (r *Repo) ForTag(ctx context.Context, tag string) ([]PeriodTransaction, error) {
	return r.listByTag(ctx, tag)
}

// Update replaces the three mutable fields. Owner and settings_tag are
// immutable; rows belonging to other users are invisible here.
func (r *Repo) Update(ctx context.Context, userID string, id int64, title string, amount float64, category string) (Transaction, error) {
	var t Transaction
	err := r.Pool.QueryRow(ctx, `
		UPDATE transactions
		SET title = $3, amount = $4, category = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, amount::float8, category, settings_tag, created_at`,
		id, userID, title, amount, category,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Amount, &t.Category, &t.SettingsTag, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (r *Repo) Delete(ctx context.Context, userID string, id int64) error {
	ct, err := r.Pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForUser removes the user's transactions, scoped to one period when
// tag is non-empty.
func (r *Repo) DeleteAllForUser(ctx context.Context, userID, tag string) (int64, error) {
	if tag != "" {
		ct, err := r.Pool.Exec(ctx,
			`DELETE FROM transactions WHERE user_id = $1 AND settings_tag = $2`, userID, tag)
		if err != nil {
			return 0, err
		}
		return ct.RowsAffected(), nil
	}
	ct, err := r.Pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repo) summaryByTag(ctx context.Context, tag string) (Summary, error) {
	s := Summary{SettingsTag: tag}
	err := r.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::float8,
		       COALESCE(SUM(CASE WHEN amount > 0 THEN amount END), 0)::float8,
		       COALESCE(SUM(CASE WHEN amount < 0 THEN amount END), 0)::float8
		FROM transactions
		WHERE settings_tag = $1`,
		tag,
	).Scan(&s.Balance, &s.Income, &s.Expenses)
	if err != nil {
		return Summary{}, err
	}
	return s, nil
}

// SummaryForUser aggregates the user's active period.
func (r *Repo) SummaryForUser(ctx context.Context, userID string) (Summary, error) {
	tag, err := r.activeTag(ctx, r.Pool, userID)
	if err != nil {
		return Summary{}, err
	}
	return r.summaryByTag(ctx, tag)
}

// SummaryForTag aggregates any period by tag.
func (r *Repo) SummaryForTag(ctx context.Context, tag string) (Summary, error) {
	return r.summaryByTag(ctx, tag)
}

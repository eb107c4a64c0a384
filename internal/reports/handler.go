package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manuelgonzga/wallet-api/internal/auth"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type periodHeader struct {
	UserID      string
	Title       string
	TotalAmount float64
	PeriodDays  int
	Currency    string
	StartDate   time.Time
	IsActive    bool
}

type statementRow struct {
	Title     string
	Amount    float64
	Category  string
	CreatedAt time.Time
}

type statement struct {
	Tag      string
	Header   periodHeader
	Rows     []statementRow
	Income   float64
	Expenses float64
	Balance  float64
}

func (h *Handler) loadStatement(ctx context.Context, tag string) (statement, error) {
	st := statement{Tag: tag}

	var currency *string
	err := h.Pool.QueryRow(ctx, `
		SELECT user_id, title, total_amount::float8, period_days, currency, start_date, is_active
		FROM user_settings
		WHERE settings_tag = $1`,
		tag,
	).Scan(&st.Header.UserID, &st.Header.Title, &st.Header.TotalAmount,
		&st.Header.PeriodDays, &currency, &st.Header.StartDate, &st.Header.IsActive)
	if err != nil {
		return statement{}, err
	}
	if currency != nil {
		st.Header.Currency = *currency
	}

	rows, err := h.Pool.Query(ctx, `
		SELECT title, amount::float8, category, created_at
		FROM transactions
		WHERE settings_tag = $1
		ORDER BY created_at DESC
		LIMIT 2000`,
		tag,
	)
	if err != nil {
		return statement{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var r statementRow
		if err := rows.Scan(&r.Title, &r.Amount, &r.Category, &r.CreatedAt); err != nil {
			return statement{}, err
		}
		st.Rows = append(st.Rows, r)
		st.Balance += r.Amount
		if r.Amount > 0 {
			st.Income += r.Amount
		} else {
			st.Expenses += r.Amount
		}
	}
	return st, rows.Err()
}

// StatementPDF handles GET /api/settings/tag/:settingsTag/export and streams a
// PDF statement of one budget period.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tag := strings.TrimSpace(c.Params("settingsTag"))
	if tag == "" {
		return fiber.NewError(fiber.StatusBadRequest, "settings tag is required")
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := h.loadStatement(ctx, tag)
	if errors.Is(err, pgx.ErrNoRows) {
		return fiber.NewError(fiber.StatusNotFound, "settings not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
	if st.Header.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "you can only access your own data")
	}

	buf, err := renderStatementPDF(st)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}

	filename := "budget-statement-" + shortTag(tag) + ".pdf"
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf)
}

func shortTag(tag string) string {
	if len(tag) <= 8 {
		return tag
	}
	return tag[:8]
}

package transactions

import "time"

// Transaction is one signed ledger entry. Amount is positive for income and
// negative for expenses. SettingsTag is fixed at creation time to the period
// that was active then and never reassigned.
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	SettingsTag string    `json:"settings_tag"`
	CreatedAt   time.Time `json:"created_at"`
}

// PeriodTransaction is a transaction joined with its period's headline fields
// for list views.
type PeriodTransaction struct {
	Transaction
	TotalAmount float64   `json:"total_amount"`
	PeriodDays  int       `json:"period_days"`
	StartDate   time.Time `json:"start_date"`
}

// Summary aggregates one period's ledger. All fields are zero, never null,
// when the period has no transactions.
type Summary struct {
	Balance     float64 `json:"balance"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	SettingsTag string  `json:"settings_tag"`
}

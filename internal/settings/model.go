package settings

import "time"

// Settings is one budget period configuration. A user has at most one row with
// IsActive=true at any time; transactions reference the period through its
// unique SettingsTag, which never changes after creation.
type Settings struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	PeriodDays  int       `json:"period_days"`
	SettingsTag string    `json:"settings_tag"`
	IsActive    bool      `json:"is_active"`
	Title       string    `json:"title"`
	Currency    *string   `json:"currency"`
	StartDate   time.Time `json:"start_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateParams carries the validated fields for a new period.
type CreateParams struct {
	TotalAmount float64
	PeriodDays  int
	Title       string // empty means the column default
	Currency    string // empty means no override
}

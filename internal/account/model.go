package account

import "time"

// Account holds per-user profile preferences. UserID is the external identity
// subject and the primary key.
type Account struct {
	UserID             string    `json:"user_id"`
	Username           string    `json:"username"`
	CurrencyPreference string    `json:"currency_preference"`
	DarkMode           bool      `json:"dark_mode"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

package account

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/manuelgonzga/wallet-api/internal/auth"
	"github.com/manuelgonzga/wallet-api/internal/currency"
	"github.com/manuelgonzga/wallet-api/internal/validate"
)

// Store is what the HTTP layer needs from the accounts repository.
type Store interface {
	Get(ctx context.Context, userID string) (Account, error)
	Upsert(ctx context.Context, userID, username string) (Account, error)
	UpdatePrefs(ctx context.Context, userID string, username, currencyCode *string, darkMode *bool) (Account, error)
	DeleteAllData(ctx context.Context, userID string) error
}

type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// Get handles GET /api/account/:userId.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	a, err := h.Store.Get(userContext(c), userID)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}
	if err != nil {
		return storeErr(c, "get account", err)
	}
	return c.JSON(a)
}

type upsertRequest struct {
	Username string `json:"username"`
}

// Upsert handles POST /api/account. Called on login to make sure the account
// row exists and carries the current username.
func (h *Handler) Upsert(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req upsertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	username, err := validate.Username(req.Username)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	a, err := h.Store.Upsert(userContext(c), userID, username)
	if err != nil {
		return storeErr(c, "upsert account", err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

type updateRequest struct {
	Username           *string `json:"username"`
	CurrencyPreference *string `json:"currency_preference"`
	DarkMode           *bool   `json:"dark_mode"`
}

// Update handles PUT /api/account/:userId with a partial body.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.Username == nil && req.CurrencyPreference == nil && req.DarkMode == nil {
		return fiber.NewError(fiber.StatusBadRequest, "at least one field is required")
	}
	if req.Username != nil {
		username, err := validate.Username(*req.Username)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.Username = &username
	}
	if req.CurrencyPreference != nil {
		code, err := validate.CurrencyCode(strings.ToUpper(*req.CurrencyPreference))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.CurrencyPreference = &code
	}

	a, err := h.Store.UpdatePrefs(userContext(c), userID, req.Username, req.CurrencyPreference, req.DarkMode)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}
	if err != nil {
		return storeErr(c, "update account", err)
	}
	return c.JSON(a)
}

// SetUsername handles PUT /api/account/:userId/username.
func (h *Handler) SetUsername(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req upsertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	username, err := validate.Username(req.Username)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	a, err := h.Store.UpdatePrefs(userContext(c), userID, &username, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}
	if err != nil {
		return storeErr(c, "set username", err)
	}
	return c.JSON(a)
}

// SetCurrency handles PUT /api/account/:userId/currency.
func (h *Handler) SetCurrency(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		CurrencyPreference string `json:"currency_preference"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	code, err := validate.CurrencyCode(strings.ToUpper(strings.TrimSpace(req.CurrencyPreference)))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	a, err := h.Store.UpdatePrefs(userContext(c), userID, nil, &code, nil)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}
	if err != nil {
		return storeErr(c, "set currency", err)
	}
	return c.JSON(a)
}

// SetDarkMode handles PUT /api/account/:userId/dark-mode.
func (h *Handler) SetDarkMode(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		DarkMode *bool `json:"dark_mode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.DarkMode == nil {
		return fiber.NewError(fiber.StatusBadRequest, "dark_mode is required")
	}

	a, err := h.Store.UpdatePrefs(userContext(c), userID, nil, nil, req.DarkMode)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}
	if err != nil {
		return storeErr(c, "set dark mode", err)
	}
	return c.JSON(a)
}

// Currencies handles GET /api/account/currencies. Public, no auth required.
func (h *Handler) Currencies(c *fiber.Ctx) error {
	return c.JSON(currency.All())
}

// DeleteAllData handles POST /api/account/delete-account. It wipes the user's
// transactions, budget periods and account row atomically.
func (h *Handler) DeleteAllData(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Store.DeleteAllData(userContext(c), userID); err != nil {
		return storeErr(c, "delete account data", err)
	}
	return c.JSON(fiber.Map{"message": "Account data deleted successfully"})
}

func storeErr(c *fiber.Ctx, op string, err error) error {
	log.Printf("%s %s: %s: %v", c.Method(), c.Path(), op, err)
	return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

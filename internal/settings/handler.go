package settings

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/manuelgonzga/wallet-api/internal/auth"
	"github.com/manuelgonzga/wallet-api/internal/currency"
	"github.com/manuelgonzga/wallet-api/internal/validate"
)

// Store is what the HTTP layer needs from the settings repository.
type Store interface {
	Create(ctx context.Context, userID string, p CreateParams) (Settings, error)
	Active(ctx context.Context, userID string) (Settings, error)
	History(ctx context.Context, userID string) ([]Settings, error)
	ByTag(ctx context.Context, tag string) (Settings, error)
	Activate(ctx context.Context, userID, tag string) (Settings, error)
	UpdateActive(ctx context.Context, userID string, totalAmount *float64, periodDays *int) (Settings, error)
	RenameActive(ctx context.Context, userID, title string) (Settings, error)
	SetActiveCurrency(ctx context.Context, userID, code string) (Settings, error)
	Deactivate(ctx context.Context, userID string) error
	DeleteByTag(ctx context.Context, userID, tag string) error
}

type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// GetActive handles GET /api/settings/:userId.
func (h *Handler) GetActive(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	s, err := h.Store.Active(userContext(c), userID)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "user settings not found")
	}
	if err != nil {
		return storeErr(c, "get active settings", err)
	}
	return c.JSON(s)
}

// GetHistory handles GET /api/settings/:userId/history.
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Store.History(userContext(c), userID)
	if err != nil {
		return storeErr(c, "get settings history", err)
	}
	return c.JSON(items)
}

// GetByTag handles GET /api/settings/tag/:settingsTag. Ownership is resolved
// through the period row itself.
func (h *Handler) GetByTag(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	s, err := h.Store.ByTag(userContext(c), c.Params("settingsTag"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "settings not found")
	}
	if err != nil {
		return storeErr(c, "get settings by tag", err)
	}
	if s.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "you can only access your own data")
	}
	return c.JSON(s)
}

type createRequest struct {
	TotalAmount *float64 `json:"total_amount"`
	PeriodDays  *int     `json:"period_days"`
	Title       string   `json:"title"`
	Currency    string   `json:"currency"`
}

// Create handles POST /api/settings. The new period starts active; any
// previously active period for the caller is deactivated in the same database
// transaction.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.TotalAmount == nil || req.PeriodDays == nil {
		return fiber.NewError(fiber.StatusBadRequest, "total_amount and period_days are required")
	}

	amount, err := validate.PositiveAmount(*req.TotalAmount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if *req.PeriodDays <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "period_days must be a positive integer")
	}

	p := CreateParams{TotalAmount: amount, PeriodDays: *req.PeriodDays}
	if req.Title != "" {
		if p.Title, err = periodTitle(req.Title); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if req.Currency != "" {
		if p.Currency, err = validate.CurrencyCodeSyntax(req.Currency); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !currency.IsValid(p.Currency) {
			log.Printf("settings create: currency %s not in catalog, accepting", p.Currency)
		}
	}

	s, err := h.Store.Create(userContext(c), userID, p)
	if err != nil {
		return storeErr(c, "create settings", err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

type updateActiveRequest struct {
	TotalAmount *float64 `json:"total_amount"`
	PeriodDays  *int     `json:"period_days"`
}

// UpdateActive handles PATCH /api/settings/active.
func (h *Handler) UpdateActive(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.TotalAmount == nil && req.PeriodDays == nil {
		return fiber.NewError(fiber.StatusBadRequest, "at least one of total_amount or period_days is required")
	}
	if req.TotalAmount != nil {
		amount, err := validate.PositiveAmount(*req.TotalAmount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.TotalAmount = &amount
	}
	if req.PeriodDays != nil && *req.PeriodDays <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "period_days must be a positive integer")
	}

	s, err := h.Store.UpdateActive(userContext(c), userID, req.TotalAmount, req.PeriodDays)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "active user settings not found")
	}
	if err != nil {
		return storeErr(c, "update active settings", err)
	}
	return c.JSON(s)
}

// RenameTitle handles PATCH /api/settings/:userId/title.
func (h *Handler) RenameTitle(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	title, err := periodTitle(req.Title)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s, err := h.Store.RenameActive(userContext(c), userID, title)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "active user settings not found")
	}
	if err != nil {
		return storeErr(c, "rename settings title", err)
	}
	return c.JSON(s)
}

// SetCurrency handles PATCH /api/settings/:userId/currency.
func (h *Handler) SetCurrency(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	code, err := validate.CurrencyCodeSyntax(req.Currency)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s, err := h.Store.SetActiveCurrency(userContext(c), userID, code)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "active user settings not found")
	}
	if err != nil {
		return storeErr(c, "set settings currency", err)
	}
	return c.JSON(s)
}

// Activate handles PATCH /api/settings/:settingsTag/activate.
func (h *Handler) Activate(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	s, err := h.Store.Activate(userContext(c), userID, c.Params("settingsTag"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "settings not found")
	}
	if errors.Is(err, ErrForbidden) {
		return fiber.NewError(fiber.StatusForbidden, "you can only access your own data")
	}
	if err != nil {
		return storeErr(c, "activate settings", err)
	}
	return c.JSON(s)
}

// Delete handles DELETE /api/settings/:settingsTag/delete. It removes the
// period and all of its transactions atomically.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	err := h.Store.DeleteByTag(userContext(c), userID, c.Params("settingsTag"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "settings not found")
	}
	if errors.Is(err, ErrForbidden) {
		return fiber.NewError(fiber.StatusForbidden, "you can only access your own data")
	}
	if err != nil {
		return storeErr(c, "delete settings", err)
	}
	return c.JSON(fiber.Map{"message": "Settings and related transactions deleted successfully"})
}

// Deactivate handles DELETE /api/settings/:userId.
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	err := h.Store.Deactivate(userContext(c), userID)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "active user settings not found")
	}
	if err != nil {
		return storeErr(c, "deactivate settings", err)
	}
	return c.JSON(fiber.Map{"message": "User settings deactivated successfully"})
}

// periodTitle is validate.Title tightened to the VARCHAR(100) column.
func periodTitle(title string) (string, error) {
	title, err := validate.Title(title)
	if err != nil {
		return "", err
	}
	if len(title) > 100 {
		return "", validate.ErrTitle
	}
	return title, nil
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

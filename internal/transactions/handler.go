package transactions

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/manuelgonzga/wallet-api/internal/auth"
	"github.com/manuelgonzga/wallet-api/internal/validate"
)

// Store is what the HTTP layer needs from the transactions repository.
type Store interface {
	Create(ctx context.Context, userID, title string, amount float64, category string) (Transaction, error)
	ForUser(ctx context.Context, userID string) ([]PeriodTransaction, error)
	ForTag(ctx context.Context, tag string) ([]PeriodTransaction, error)
	Update(ctx context.Context, userID string, id int64, title string, amount float64, category string) (Transaction, error)
	Delete(ctx context.Context, userID string, id int64) error
	DeleteAllForUser(ctx context.Context, userID, tag string) (int64, error)
	SummaryForUser(ctx context.Context, userID string) (Summary, error)
	SummaryForTag(ctx context.Context, tag string) (Summary, error)
	TagOwner(ctx context.Context, tag string) (string, error)
}

type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

type createRequest struct {
	Title    string   `json:"title"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Type     string   `json:"type"` // "income" | "expense"
}

// Create handles POST /api/transactions. Amounts arrive unsigned; the type
// field decides the stored sign, with expenses stored negative.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	title, err := validate.Title(req.Title)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	category, err := validate.Category(req.Category)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Amount == nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount is required")
	}
	amount, err := validate.PositiveAmount(*req.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	typ := strings.TrimSpace(strings.ToLower(req.Type))
	switch typ {
	case "income":
	case "expense":
		amount = -amount
	default:
		return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
	}

	t, err := h.Store.Create(userContext(c), userID, title, amount, category)
	if errors.Is(err, ErrNoActiveSettings) {
		return fiber.NewError(fiber.StatusNotFound, "no active settings found for user, please set up your budget first")
	}
	if err != nil {
		return storeErr(c, "create transaction", err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// ListForUser handles GET /api/transactions/:userId, the active period only.
func (h *Handler) ListForUser(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Store.ForUser(userContext(c), userID)
	if errors.Is(err, ErrNoActiveSettings) {
		return fiber.NewError(fiber.StatusNotFound, "no active settings found for user")
	}
	if err != nil {
		return storeErr(c, "list transactions", err)
	}
	return c.JSON(items)
}

// ListForTag handles GET /api/transactions/tag/:settingsTag, the history view
// over any period. An unknown tag yields an empty list; a tag owned by someone
// else is forbidden.
func (h *Handler) ListForTag(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	tag := c.Params("settingsTag")

	owner, err := h.Store.TagOwner(userContext(c), tag)
	if errors.Is(err, ErrNotFound) {
		return c.JSON([]PeriodTransaction{})
	}
	if err != nil {
		return storeErr(c, "resolve tag owner", err)
	}
	if owner != userID {
		return fiber.NewError(fiber.StatusForbidden, "you can only access your own data")
	}

	items, err := h.Store.ForTag(userContext(c), tag)
	if err != nil {
		return storeErr(c, "list transactions by tag", err)
	}
	return c.JSON(items)
}

type updateRequest struct {
	Title    string   `json:"title"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
}

// Update handles PUT /api/transactions/:id. All three mutable fields are
// required; tag and owner never change.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	title, err := validate.Title(req.Title)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	category, err := validate.Category(req.Category)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Amount == nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount is required")
	}
	amount, err := validate.Amount(*req.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	t, err := h.Store.Update(userContext(c), userID, id, title, amount, category)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "transaction not found")
	}
	if err != nil {
		return storeErr(c, "update transaction", err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated successfully", "transaction": t})
}

// Delete handles DELETE /api/transactions/:id. Rows owned by other users look
// absent, so a foreign id yields a 404 rather than leaking its existence.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	err = h.Store.Delete(userContext(c), userID, id)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "transaction not found")
	}
	if err != nil {
		return storeErr(c, "delete transaction", err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}

// DeleteAllForUser handles DELETE /api/transactions/user/:userId with an
// optional settingsTag query scoping the wipe to one period.
func (h *Handler) DeleteAllForUser(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tag := strings.TrimSpace(c.Query("settingsTag"))
	if _, err := h.Store.DeleteAllForUser(userContext(c), userID, tag); err != nil {
		return storeErr(c, "delete all transactions", err)
	}
	return c.JSON(fiber.Map{"message": "Transactions deleted successfully"})
}

// SummaryForUser handles GET /api/transactions/summary/:userId.
func (h *Handler) SummaryForUser(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	s, err := h.Store.SummaryForUser(userContext(c), userID)
	if errors.Is(err, ErrNoActiveSettings) {
		return fiber.NewError(fiber.StatusNotFound, "no active settings found for user")
	}
	if err != nil {
		return storeErr(c, "summary", err)
	}
	return c.JSON(s)
}

// SummaryForTag handles GET /api/transactions/summary/tag/:settingsTag.
func (h *Handler) SummaryForTag(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	tag := c.Params("settingsTag")

	owner, err := h.Store.TagOwner(userContext(c), tag)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(Summary{SettingsTag: tag})
	}
	if err != nil {
		return storeErr(c, "resolve tag owner", err)
	}
	if owner != userID {
		return fiber.NewError(fiber.StatusForbidden, "you can only access your own data")
	}

	s, err := h.Store.SummaryForTag(userContext(c), tag)
	if err != nil {
		return storeErr(c, "summary by tag", err)
	}
	return c.JSON(s)
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

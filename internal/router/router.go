package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manuelgonzga/wallet-api/internal/account"
	"github.com/manuelgonzga/wallet-api/internal/auth"
	"github.com/manuelgonzga/wallet-api/internal/reports"
	"github.com/manuelgonzga/wallet-api/internal/settings"
	"github.com/manuelgonzga/wallet-api/internal/transactions"
)

type Router struct {
	SettingsHandler     *settings.Handler
	TransactionsHandler *transactions.Handler
	AccountHandler      *account.Handler
	ReportsHandler      *reports.Handler
	AuthMW              fiber.Handler
}

// RegisterRoutes wires the HTTP surface. Tag-addressed routes are registered
// before :userId ones so the static segments win; tag ownership is resolved in
// the handlers, userId paths are guarded by RequireOwner.
func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	owner := auth.RequireOwner()

	if r.AccountHandler != nil {
		app.Get("/api/account/currencies", r.AccountHandler.Currencies)
		app.Post("/api/account", r.AuthMW, r.AccountHandler.Upsert)
		app.Post("/api/account/delete-account", r.AuthMW, r.AccountHandler.DeleteAllData)
		app.Get("/api/account/:userId", r.AuthMW, owner, r.AccountHandler.Get)
		app.Put("/api/account/:userId", r.AuthMW, owner, r.AccountHandler.Update)
		app.Put("/api/account/:userId/username", r.AuthMW, owner, r.AccountHandler.SetUsername)
		app.Put("/api/account/:userId/currency", r.AuthMW, owner, r.AccountHandler.SetCurrency)
		app.Put("/api/account/:userId/dark-mode", r.AuthMW, owner, r.AccountHandler.SetDarkMode)
	}

	if r.SettingsHandler != nil {
		if r.ReportsHandler != nil {
			app.Get("/api/settings/tag/:settingsTag/export", r.AuthMW, r.ReportsHandler.StatementPDF)
		}
		app.Get("/api/settings/tag/:settingsTag", r.AuthMW, r.SettingsHandler.GetByTag)
		app.Post("/api/settings", r.AuthMW, RateLimitWrite(), r.SettingsHandler.Create)
		app.Patch("/api/settings/active", r.AuthMW, r.SettingsHandler.UpdateActive)
		app.Patch("/api/settings/:settingsTag/activate", r.AuthMW, r.SettingsHandler.Activate)
		app.Delete("/api/settings/:settingsTag/delete", r.AuthMW, r.SettingsHandler.Delete)
		app.Get("/api/settings/:userId/history", r.AuthMW, owner, r.SettingsHandler.GetHistory)
		app.Patch("/api/settings/:userId/title", r.AuthMW, owner, r.SettingsHandler.RenameTitle)
		app.Patch("/api/settings/:userId/currency", r.AuthMW, owner, r.SettingsHandler.SetCurrency)
		app.Get("/api/settings/:userId", r.AuthMW, owner, r.SettingsHandler.GetActive)
		app.Delete("/api/settings/:userId", r.AuthMW, owner, r.SettingsHandler.Deactivate)
	}

	if r.TransactionsHandler != nil {
		app.Post("/api/transactions", r.AuthMW, RateLimitWrite(), r.TransactionsHandler.Create)
		app.Get("/api/transactions/summary/tag/:settingsTag", r.AuthMW, r.TransactionsHandler.SummaryForTag)
		app.Get("/api/transactions/summary/:userId", r.AuthMW, owner, r.TransactionsHandler.SummaryForUser)
		app.Get("/api/transactions/tag/:settingsTag", r.AuthMW, r.TransactionsHandler.ListForTag)
		app.Delete("/api/transactions/user/:userId", r.AuthMW, owner, r.TransactionsHandler.DeleteAllForUser)
		app.Put("/api/transactions/:id", r.AuthMW, r.TransactionsHandler.Update)
		app.Delete("/api/transactions/:id", r.AuthMW, r.TransactionsHandler.Delete)
		app.Get("/api/transactions/:userId", r.AuthMW, owner, r.TransactionsHandler.ListForUser)
	}
}

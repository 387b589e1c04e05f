// Package router wires the HTTP surface: route registration, CORS and
// request-id middleware.
package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/expense"
	apphttp "github.com/marciogabrielsf/Voucher-Crud-Backend/internal/http"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/voucher"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/voucherv2"
)

type Router struct {
	AuthHandler      *apphttp.AuthHandler
	ExpenseHandler   *expense.Handler
	VoucherHandler   *voucher.Handler
	VoucherV2Handler *voucherv2.Handler

	ExpenseWebhook   fiber.Handler
	VoucherV2Webhook fiber.Handler

	AuthMW      fiber.Handler
	AuthLimiter fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON("Olá Mundo!")
	})

	app.Post("/auth/register", r.AuthLimiter, r.AuthHandler.Register)
	app.Post("/auth/login", r.AuthLimiter, r.AuthHandler.Login)
	app.Get("/auth/verify", r.AuthMW, r.AuthHandler.Verify)

	// Fixed-path expense routes must come before the /expense/:id wildcard.
	app.Post("/expense/create", r.AuthMW, r.ExpenseHandler.Create)
	app.Get("/expense/getlist", r.AuthMW, r.ExpenseHandler.List)
	app.Get("/expense/summary/categories", r.AuthMW, r.ExpenseHandler.Summary)
	app.Get("/expense/:id", r.AuthMW, r.ExpenseHandler.GetByID)
	app.Put("/expense/update/:id", r.AuthMW, r.ExpenseHandler.Update)
	app.Delete("/expense/delete/:id", r.AuthMW, r.ExpenseHandler.Delete)

	app.Post("/voucher/create", r.AuthMW, r.VoucherHandler.Create)
	app.Get("/voucher/getlist", r.AuthMW, r.VoucherHandler.List)
	app.Get("/voucher/:id", r.AuthMW, r.VoucherHandler.GetByID)
	app.Put("/voucher/update/:id", r.AuthMW, r.VoucherHandler.Update)
	app.Delete("/voucher/delete/:id", r.AuthMW, r.VoucherHandler.Delete)

	app.Post("/v2/voucher/create", r.AuthMW, r.VoucherV2Handler.Create)
	app.Get("/v2/voucher/getlist", r.AuthMW, r.VoucherV2Handler.List)
	app.Get("/v2/voucher/statistics/earnings", r.AuthMW, r.VoucherV2Handler.Earnings)
	app.Get("/v2/voucher/home-summary", r.AuthMW, r.VoucherV2Handler.HomeSummary)
	app.Get("/v2/voucher/:id", r.AuthMW, r.VoucherV2Handler.GetByID)
	app.Put("/v2/voucher/update/:id", r.AuthMW, r.VoucherV2Handler.Update)
	app.Delete("/v2/voucher/delete/:id", r.AuthMW, r.VoucherV2Handler.Delete)

	// Webhooks authenticate with the shared API key instead of a bearer
	// token.
	app.Post("/webhook/expense/create", r.ExpenseWebhook)
	app.Post("/v2/webhook/voucher/create", r.VoucherV2Webhook)
}

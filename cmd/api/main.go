package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/audit"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/auth"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/config"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/expense"
	apphttp "github.com/marciogabrielsf/Voucher-Crud-Backend/internal/http"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/router"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/storage"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/voucher"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/voucherv2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	if cfg.Secret == "default_secret_for_dev" {
		log.Println("WARNING: SECRET is not set, using the insecure development default")
	}

	ctx := context.Background()
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	defer pool.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"message": message})
		},
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(router.RequestID())
	app.Use(requestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	tokens := auth.NewTokenService(cfg.Secret, cfg.TokenTTL)
	auditLog := &audit.Logger{DB: pool}

	expenseRepo := expense.NewRepository(pool)
	voucherRepo := voucher.NewRepository(pool)
	voucherV2Repo := voucherv2.NewRepository(pool)

	// Dev token endpoint
	if cfg.IsDev() {
		app.Get("/dev/token", func(c *fiber.Ctx) error {
			signed, err := tokens.Issue("111111111111111111111111")
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
			}
			return c.JSON(fiber.Map{"token": signed})
		})
	}

	r := &router.Router{
		AuthHandler: &apphttp.AuthHandler{
			Users:  apphttp.NewUserRepository(pool),
			Tokens: tokens,
		},
		ExpenseHandler:   expense.NewHandler(expenseRepo, auditLog),
		VoucherHandler:   voucher.NewHandler(voucherRepo, auditLog),
		VoucherV2Handler: voucherv2.NewHandler(voucherV2Repo, auditLog),
		ExpenseWebhook:   expense.WebhookHandler(expenseRepo, cfg.WebhookAPIKey, auditLog),
		VoucherV2Webhook: voucherv2.WebhookHandler(voucherV2Repo, cfg.WebhookAPIKey, auditLog),
		AuthMW:           auth.Middleware(tokens),
		AuthLimiter: limiter.New(limiter.Config{
			Max:        cfg.RateLimitAuthMax,
			Expiration: cfg.RateLimitAuthWindow,
		}),
	}
	r.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Println("Listening on port", cfg.Port)
	log.Fatal(app.Listen(addr))
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		log.Printf("%v %s %s %d %s", c.Locals("request_id"), c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}

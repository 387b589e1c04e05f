package voucherv2

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/audit"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/dates"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
)

type webhookRequest struct {
	APIKey      string       `json:"apiKey"`
	UserID      string       `json:"userId"`
	TaxNumber   string       `json:"taxNumber"`
	RequestCode string       `json:"requestCode"`
	Date        string       `json:"date"`
	Value       money.Amount `json:"value"`
	Start       string       `json:"start"`
	Destination string       `json:"destination"`
}

// WebhookHandler creates v2 vouchers for the chat-bot integration. The bot
// authenticates with a shared API key, names the owning user in the body and
// sends dates as DD/MM/YYYY.
func WebhookHandler(store Store, apiKey string, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webhookRequest
		if err := c.BodyParser(&req); err != nil {
			return bodyError(c, err)
		}

		if !validAPIKey(req.APIKey, apiKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: Invalid API key"})
		}

		if req.UserID == "" || req.TaxNumber == "" || req.RequestCode == "" || req.Date == "" || !req.Value.Set || req.Start == "" || req.Destination == "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Missing parameters"})
		}

		date, err := dates.ParseAny(req.Date)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
		}

		v := &Voucher{
			UserID:          req.UserID,
			TaxNumber:       req.TaxNumber,
			RequestCode:     req.RequestCode,
			RequestCategory: requestCategory(req.RequestCode),
			Date:            date,
			Value:           req.Value.Value,
			Start:           req.Start,
			Destination:     req.Destination,
		}
		id, err := store.Insert(userContext(c), v)
		if err != nil {
			return storeError(c, "Erro ao Criar o Voucher, tente novamente mais tarde", err)
		}

		auditLog.Record(audit.Entry{
			UserID: req.UserID, Action: "voucher_v2.webhook-create", EntityType: "voucher_v2",
			EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"code":    "voucher.created-success",
			"message": "Voucher Criado com sucesso via webhook!",
		})
	}
}

func validAPIKey(got, want string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

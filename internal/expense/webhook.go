package expense

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/audit"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/dates"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
)

type webhookRequest struct {
	APIKey        string       `json:"apiKey"`
	UserID        string       `json:"userId"`
	Value         money.Amount `json:"value"`
	Category      string       `json:"category"`
	Date          string       `json:"date"`
	Description   *string      `json:"description"`
	PaymentMethod *string      `json:"paymentMethod"`
}

// WebhookHandler creates expenses on behalf of the chat-bot integration.
// The caller authenticates with a shared API key instead of a bearer token
// and supplies the owning userId in the body.
func WebhookHandler(store Store, apiKey string, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webhookRequest
		if err := c.BodyParser(&req); err != nil {
			return bodyError(c, err)
		}

		if !validAPIKey(req.APIKey, apiKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: Invalid API key"})
		}

		if req.UserID == "" || !req.Value.Set || req.Category == "" || req.Date == "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Missing required parameters: userId, value, category, date",
			})
		}
		if !ValidCategory(req.Category) {
			return invalidCategory(c)
		}

		// The bot sends ISO or DD/MM/YYYY dates.
		date, err := dates.ParseAny(req.Date)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
		}

		e := &Expense{
			UserID:        req.UserID,
			Value:         req.Value.Value,
			Category:      req.Category,
			Date:          date,
			Description:   req.Description,
			PaymentMethod: req.PaymentMethod,
		}
		id, err := store.Insert(userContext(c), e)
		if err != nil {
			return storeError(c, "Erro ao registrar a despesa, tente novamente mais tarde", err)
		}

		auditLog.Record(audit.Entry{
			UserID: req.UserID, Action: "expense.webhook-create", EntityType: "expense",
			EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"code":    "expense.created-success",
			"message": "Despesa registrada com sucesso via webhook!",
		})
	}
}

func validAPIKey(got, want string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

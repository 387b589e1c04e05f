package voucherv2

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/auth"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
)

const recentCount = 5

type periodTotal struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Total float64 `json:"total"`
}

// HomeSummary reports the totals of the current custom billing period and
// the two preceding ones, plus the most recent records. A billing period
// starts on the configured day of month; boundaries are computed in UTC so
// month edges never drift across timezones.
func (h *Handler) HomeSummary(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	startDay := 1
	if raw := c.Query("monthStartDay"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 31 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "monthStartDay must be between 1 and 31",
			})
		}
		startDay = n
	}

	ctx := userContext(c)
	starts := periodStarts(h.now().UTC(), startDay)

	periods := make([]periodTotal, 0, len(starts))
	for _, start := range starts {
		end := start.AddDate(0, 1, 0)
		total, err := h.Store.SumBetween(ctx, userID, start, end)
		if err != nil {
			return storeError(c, "Erro ao buscar o resumo, tente novamente mais tarde", err)
		}
		periods = append(periods, periodTotal{
			From:  start.Format("2006-01-02"),
			To:    end.AddDate(0, 0, -1).Format("2006-01-02"),
			Total: money.Round2(total),
		})
	}

	recent, err := h.Store.Recent(ctx, userID, recentCount)
	if err != nil {
		return storeError(c, "Erro ao buscar o resumo, tente novamente mais tarde", err)
	}

	return c.JSON(fiber.Map{
		"periods": periods,
		"recent":  recent,
	})
}

// periodStarts returns the start of the current billing period and the two
// preceding ones, newest first. When today's day-of-month precedes the start
// day the current period began last month.
func periodStarts(today time.Time, startDay int) []time.Time {
	current := time.Date(today.Year(), today.Month(), startDay, 0, 0, 0, 0, time.UTC)
	if today.Day() < startDay {
		current = current.AddDate(0, -1, 0)
	}

	return []time.Time{
		current,
		current.AddDate(0, -1, 0),
		current.AddDate(0, -2, 0),
	}
}

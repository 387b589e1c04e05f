package voucherv2

import (
	"math"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/auth"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/dates"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
)

// maxBuckets caps the earnings series so charts never receive more than 150
// points regardless of the requested range.
const maxBuckets = 150

type earningsBucket struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Count int64   `json:"count"`
}

// Earnings serves the time-bucketed earnings statistics. Defaults to the
// current calendar year when no range is given.
func (h *Handler) Earnings(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	now := h.now().UTC()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, time.UTC)

	if raw := c.Query("from"); raw != "" {
		from, err = dates.ParseISO(raw)
		if err != nil {
			return invalidStatsDate(c)
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = dates.ParseISO(raw)
		if err != nil {
			return invalidStatsDate(c)
		}
	}
	if !from.Before(to) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "From date must be earlier than to date.",
		})
	}

	rows, err := h.Store.ListRange(userContext(c), userID, from, to)
	if err != nil {
		return storeError(c, "Erro ao buscar estatísticas de vouchers", err)
	}

	period := fiber.Map{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}

	if len(rows) == 0 {
		return c.JSON(fiber.Map{
			"data": []earningsBucket{},
			"summary": fiber.Map{
				"totalEarnings": 0,
				"voucherCount":  0,
				"period":        period,
			},
		})
	}

	data, intervalDays := bucketEarnings(rows, from, to)

	var total float64
	for _, r := range rows {
		total += r.Value
	}

	return c.JSON(fiber.Map{
		"data": data,
		"summary": fiber.Map{
			"totalEarnings": money.Round2(total),
			"voucherCount":  len(rows),
			"period":        period,
			"intervalDays":  intervalDays,
		},
	})
}

// bucketEarnings groups rows into equal day-length intervals. Ranges longer
// than maxBuckets days are widened so the series stays at or under
// maxBuckets points; each bucket is keyed by its interval start date.
func bucketEarnings(rows []EarningRow, from, to time.Time) ([]earningsBucket, int) {
	totalDays := int(math.Ceil(to.Sub(from).Hours() / 24))
	intervalDays := 1
	if totalDays > maxBuckets {
		intervalDays = int(math.Ceil(float64(totalDays) / maxBuckets))
	}

	grouped := make(map[string]*earningsBucket)
	for _, r := range rows {
		daysSinceStart := int(math.Floor(r.Date.Sub(from).Hours() / 24))
		intervalIndex := daysSinceStart / intervalDays

		start := from.Add(time.Duration(intervalIndex*intervalDays) * 24 * time.Hour)
		key := start.Format("2006-01-02")

		b, ok := grouped[key]
		if !ok {
			b = &earningsBucket{Date: key}
			grouped[key] = b
		}
		b.Value += r.Value
		b.Count++
	}

	out := make([]earningsBucket, 0, len(grouped))
	for _, b := range grouped {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, intervalDays
}

func invalidStatsDate(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Invalid date format. Use YYYY-MM-DD format.",
	})
}

package expense

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/audit"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/auth"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/dates"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/storage"
)

// Store is the persistence surface the handlers need; Repository implements
// it.
type Store interface {
	Insert(ctx context.Context, e *Expense) (string, error)
	List(ctx context.Context, f ListFilter) ([]Expense, int64, error)
	GetByID(ctx context.Context, id string) (*Expense, error)
	Update(ctx context.Context, id string, f UpdateFields) error
	Delete(ctx context.Context, id string) error
	SumByCategory(ctx context.Context, f ListFilter) (map[string]float64, error)
}

type Handler struct {
	Store Store
	Audit *audit.Logger
}

func NewHandler(store Store, auditLog *audit.Logger) *Handler {
	return &Handler{Store: store, Audit: auditLog}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	if !req.Value.Set || req.Category == "" || req.Date == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Missing required parameters: value, category, date",
		})
	}
	if !ValidCategory(req.Category) {
		return invalidCategory(c)
	}

	date, err := dates.ParseISO(req.Date)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
	}

	e := &Expense{
		UserID:        userID,
		Value:         req.Value.Value,
		Category:      req.Category,
		Date:          date,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
	}
	id, err := h.Store.Insert(userContext(c), e)
	if err != nil {
		return storeError(c, "Erro ao registrar a despesa, tente novamente mais tarde", err)
	}

	h.Audit.Record(audit.Entry{
		UserID: userID, Action: "expense.create", EntityType: "expense",
		EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code":    "expense.created-success",
		"message": "Despesa registrada com sucesso!",
	})
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	page, err := storage.ParsePage(c.Query("offset"), c.Query("limit"))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	}

	from, to, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
	}

	f := ListFilter{
		UserID: userID,
		From:   from,
		To:     to,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	// An unknown category is ignored rather than rejected on list.
	if cat := c.Query("category"); cat != "" && ValidCategory(cat) {
		f.Category = cat
	}

	items, total, err := h.Store.List(userContext(c), f)
	if err != nil {
		return storeError(c, "Erro ao buscar as despesas, tente novamente mais tarde", err)
	}

	return c.JSON(fiber.Map{
		"expenses":   items,
		"pagination": page.Meta(total),
	})
}

func (h *Handler) GetByID(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	id := c.Params("id")
	if !storage.ValidID(id) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid ID"})
	}

	e, err := h.Store.GetByID(userContext(c), id)
	if err == storage.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Despesa não encontrada"})
	}
	if err != nil {
		return storeError(c, "Erro ao buscar a despesa, tente novamente mais tarde", err)
	}
	if storage.CheckOwner(e, userID) != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Você não tem permissão para ver esta despesa"})
	}

	return c.JSON(fiber.Map{"expense": e})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	fields := UpdateFields{
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
	}
	if req.Value.Set {
		fields.Value = &req.Value.Value
	}
	if req.Category != "" {
		if !ValidCategory(req.Category) {
			return invalidCategory(c)
		}
		fields.Category = &req.Category
	}
	if req.Date != "" {
		date, err := dates.ParseISO(req.Date)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
		}
		fields.Date = &date
	}
	if fields.Empty() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "No update parameters provided"})
	}

	id := c.Params("id")
	if !storage.ValidID(id) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid ID"})
	}

	e, err := h.Store.GetByID(userContext(c), id)
	if err == storage.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Despesa não encontrada"})
	}
	if err != nil {
		return storeError(c, "Erro ao atualizar a despesa, tente novamente mais tarde", err)
	}
	if storage.CheckOwner(e, userID) != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Você não tem permissão para editar esta despesa"})
	}

	if err := h.Store.Update(userContext(c), id, fields); err != nil {
		return storeError(c, "Erro ao atualizar a despesa, tente novamente mais tarde", err)
	}

	h.Audit.Record(audit.Entry{
		UserID: userID, Action: "expense.update", EntityType: "expense",
		EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
	})

	return c.JSON(fiber.Map{"message": "Despesa atualizada com sucesso!"})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	id := c.Params("id")
	if !storage.ValidID(id) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid ID"})
	}

	e, err := h.Store.GetByID(userContext(c), id)
	if err == storage.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Despesa não encontrada"})
	}
	if err != nil {
		return storeError(c, "Erro ao excluir a despesa", err)
	}
	if storage.CheckOwner(e, userID) != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Você não tem permissão para excluir esta despesa"})
	}

	if err := h.Store.Delete(userContext(c), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Erro ao excluir a despesa"})
	}

	h.Audit.Record(audit.Entry{
		UserID: userID, Action: "expense.delete", EntityType: "expense",
		EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
	})

	return c.JSON(fiber.Map{"message": "Despesa excluída com sucesso!"})
}

// Summary sums values grouped by category over an optional date range.
func (h *Handler) Summary(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
	}

	from, to, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
	}

	summary, err := h.Store.SumByCategory(userContext(c), ListFilter{UserID: userID, From: from, To: to})
	if err != nil {
		return storeError(c, "Erro ao buscar o resumo, tente novamente mais tarde", err)
	}

	var total float64
	for _, v := range summary {
		total += v
	}

	return c.JSON(fiber.Map{
		"summary": summary,
		"total":   total,
		"period": fiber.Map{
			"startDate": formatDate(from),
			"endDate":   formatDate(to),
		},
	})
}

func invalidCategory(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Invalid category. Valid values are: " + CategoryList(),
	})
}

// parseRange reads startDate/endDate or from/to query bounds; from/to win
// when both pairs are present.
func parseRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	rawFrom := c.Query("from")
	if rawFrom == "" {
		rawFrom = c.Query("startDate")
	}
	rawTo := c.Query("to")
	if rawTo == "" {
		rawTo = c.Query("endDate")
	}

	var from, to *time.Time
	if rawFrom != "" {
		t, err := dates.ParseISO(rawFrom)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if rawTo != "" {
		t, err := dates.ParseISO(rawTo)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// bodyError maps body-decoding failures to responses. A malformed money
// value is a validation failure (422), not a malformed request body.
func bodyError(c *fiber.Ctx, err error) error {
	if errors.Is(err, money.ErrInvalidAmount) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid value format"})
	}
	return fiber.NewError(fiber.StatusBadRequest, "invalid body")
}

func storeError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

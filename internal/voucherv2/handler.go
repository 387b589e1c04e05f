package voucherv2

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

type Store interface {
	Insert(ctx context.Context, v *Voucher) (string, error)
	List(ctx context.Context, f ListFilter) ([]Voucher, int64, error)
	GetByID(ctx context.Context, id string) (*Voucher, error)
	Update(ctx context.Context, id string, f UpdateFields) error
	Delete(ctx context.Context, id string) error
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]EarningRow, error)
	SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error)
	Recent(ctx context.Context, userID string, n int) ([]Voucher, error)
}

type Handler struct {
	Store Store
	Audit *audit.Logger

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

func NewHandler(store Store, auditLog *audit.Logger) *Handler {
	return &Handler{Store: store, Audit: auditLog, now: time.Now}
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

	if req.TaxNumber == "" || req.RequestCode == "" || req.Date == "" || !req.Value.Set || req.Start == "" || req.Destination == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Missing parameters"})
	}

	date, err := dates.ParseISO(req.Date)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
	}

	v := &Voucher{
		UserID:          userID,
		TaxNumber:       req.TaxNumber,
		RequestCode:     req.RequestCode,
		RequestCategory: requestCategory(req.RequestCode),
		Date:            date,
		Value:           req.Value.Value,
		Start:           req.Start,
		Destination:     req.Destination,
	}
	id, err := h.Store.Insert(userContext(c), v)
	if err != nil {
		return storeError(c, "Erro ao Criar o Voucher, tente novamente mais tarde", err)
	}

	h.Audit.Record(audit.Entry{
		UserID: userID, Action: "voucher_v2.create", EntityType: "voucher_v2",
		EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code":    "voucher.created-success",
		"message": "Voucher Criado com sucesso!",
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

	items, total, err := h.Store.List(userContext(c), ListFilter{
		UserID: userID,
		From:   from,
		To:     to,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
	if err != nil {
		return storeError(c, "Erro ao buscar os Vouchers, tente novamente mais tarde", err)
	}

	return c.JSON(fiber.Map{
		"vouchers":   items,
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

	v, err := h.Store.GetByID(userContext(c), id)
	if err == storage.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Voucher não encontrado"})
	}
	if err != nil {
		return storeError(c, "Erro ao buscar o Voucher, tente novamente mais tarde", err)
	}
	if storage.CheckOwner(v, userID) != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Você não tem permissão para ver este voucher"})
	}

	return c.JSON(fiber.Map{"voucher": v})
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

	fields := UpdateFields{}
	if req.TaxNumber != "" {
		fields.TaxNumber = &req.TaxNumber
	}
	if req.RequestCode != "" {
		fields.RequestCode = &req.RequestCode
	}
	if req.Date != "" {
		date, err := dates.ParseISO(req.Date)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid date format"})
		}
		fields.Date = &date
	}
	if req.Value.Set {
		fields.Value = &req.Value.Value
	}
	if req.Start != "" {
		fields.Start = &req.Start
	}
	if req.Destination != "" {
		fields.Destination = &req.Destination
	}
	if fields.Empty() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "No update parameters provided"})
	}

	id := c.Params("id")
	if !storage.ValidID(id) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Invalid ID"})
	}

	v, err := h.Store.GetByID(userContext(c), id)
	if err == storage.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Voucher não encontrado"})
	}
	if err != nil {
		return storeError(c, "Erro ao Atualizar o Voucher, tente novamente mais tarde", err)
	}
	if storage.CheckOwner(v, userID) != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Você não tem permissão para editar este voucher"})
	}

	if err := h.Store.Update(userContext(c), id, fields); err != nil {
		return storeError(c, "Erro ao Atualizar o Voucher, tente novamente mais tarde", err)
	}

	h.Audit.Record(audit.Entry{
		UserID: userID, Action: "voucher_v2.update", EntityType: "voucher_v2",
		EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
	})

	return c.JSON(fiber.Map{"message": "Voucher foi atualizado com sucesso!"})
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

	v, err := h.Store.GetByID(userContext(c), id)
	if err == storage.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Voucher não encontrado"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Erro ao deletar o Voucher"})
	}
	if storage.CheckOwner(v, userID) != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Você não tem permissão para excluir este voucher"})
	}

	if err := h.Store.Delete(userContext(c), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Erro ao deletar o Voucher"})
	}

	h.Audit.Record(audit.Entry{
		UserID: userID, Action: "voucher_v2.delete", EntityType: "voucher_v2",
		EntityID: id, IP: c.IP(), UserAgent: string(c.Request().Header.UserAgent()),
	})

	return c.JSON(fiber.Map{"message": "O Voucher foi Deletado com sucesso!"})
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

package expense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/auth"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/storage"
)

const (
	userA = "aaaaaaaaaaaaaaaaaaaaaaaa"
	userB = "bbbbbbbbbbbbbbbbbbbbbbbb"
)

type fakeStore struct {
	expenses []*Expense
	failNext error
}

func (f *fakeStore) Insert(_ context.Context, e *Expense) (string, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return "", err
	}
	e.ID = storage.NewID()
	e.CreatedAt = time.Now()
	f.expenses = append(f.expenses, e)
	return e.ID, nil
}

func (f *fakeStore) List(_ context.Context, flt ListFilter) ([]Expense, int64, error) {
	matched := make([]Expense, 0)
	for _, e := range f.expenses {
		if !f.matches(e, flt) {
			continue
		}
		matched = append(matched, *e)
	}

	total := int64(len(matched))
	if flt.Offset >= len(matched) {
		return []Expense{}, total, nil
	}
	end := flt.Offset + flt.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[flt.Offset:end], total, nil
}

func (f *fakeStore) matches(e *Expense, flt ListFilter) bool {
	if e.UserID != flt.UserID {
		return false
	}
	if flt.Category != "" && e.Category != flt.Category {
		return false
	}
	if flt.From != nil && e.Date.Before(*flt.From) {
		return false
	}
	if flt.To != nil && e.Date.After(*flt.To) {
		return false
	}
	return true
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Expense, error) {
	for _, e := range f.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) Update(_ context.Context, id string, flds UpdateFields) error {
	e, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	if flds.Value != nil {
		e.Value = *flds.Value
	}
	if flds.Category != nil {
		e.Category = *flds.Category
	}
	if flds.Date != nil {
		e.Date = *flds.Date
	}
	if flds.Description.Set {
		e.Description = flds.Description.Value
	}
	if flds.PaymentMethod.Set {
		e.PaymentMethod = flds.PaymentMethod.Value
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	for i, e := range f.expenses {
		if e.ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) SumByCategory(_ context.Context, flt ListFilter) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, e := range f.expenses {
		if f.matches(e, flt) {
			out[e.Category] += e.Value
		}
	}
	return out, nil
}

// testUser injects the authenticated user id the way auth.Middleware does,
// reading it from a test header.
func testUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if uid := c.Get("X-Test-User"); uid != "" {
			c.Locals(auth.LocalsUserKey, uid)
		}
		return c.Next()
	}
}

func newTestApp(store *fakeStore) *fiber.App {
	app := fiber.New()
	h := NewHandler(store, nil)

	app.Use(testUser())
	app.Post("/expense/create", h.Create)
	app.Get("/expense/getlist", h.List)
	app.Get("/expense/summary/categories", h.Summary)
	app.Get("/expense/:id", h.GetByID)
	app.Put("/expense/update/:id", h.Update)
	app.Delete("/expense/delete/:id", h.Delete)
	app.Post("/webhook/expense/create", WebhookHandler(store, "webhook-secret", nil))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, user string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func seed(store *fakeStore, userID, category string, value float64, date time.Time) *Expense {
	e := &Expense{
		ID:       storage.NewID(),
		UserID:   userID,
		Value:    value,
		Category: category,
		Date:     date,
	}
	store.expenses = append(store.expenses, e)
	return e
}

func TestCreateExpense(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	status, body := do(t, app, "POST", "/expense/create", userA, map[string]any{
		"value":    "252,98",
		"category": "ALIMENTACAO",
		"date":     "2024-03-15",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "expense.created-success", body["code"])

	require.Len(t, store.expenses, 1)
	assert.Equal(t, userA, store.expenses[0].UserID)
	assert.InDelta(t, 252.98, store.expenses[0].Value, 1e-9)
}

func TestCreateExpenseValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		wantMsg string
	}{
		{
			name:    "missing value",
			payload: map[string]any{"category": "ALIMENTACAO", "date": "2024-03-15"},
			wantMsg: "Missing required parameters: value, category, date",
		},
		{
			name:    "missing category",
			payload: map[string]any{"value": 10, "date": "2024-03-15"},
			wantMsg: "Missing required parameters: value, category, date",
		},
		{
			name:    "missing date",
			payload: map[string]any{"value": 10, "category": "ALIMENTACAO"},
			wantMsg: "Missing required parameters: value, category, date",
		},
		{
			name:    "bad category",
			payload: map[string]any{"value": 10, "category": "PETS", "date": "2024-03-15"},
			wantMsg: "Invalid category. Valid values are: " + CategoryList(),
		},
		{
			name:    "bad date",
			payload: map[string]any{"value": 10, "category": "LAZER", "date": "not-a-date"},
			wantMsg: "Invalid date format",
		},
		{
			name:    "unparseable value string",
			payload: map[string]any{"value": "abc", "category": "LAZER", "date": "2024-03-15"},
			wantMsg: "Invalid value format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			app := newTestApp(store)

			status, body := do(t, app, "POST", "/expense/create", userA, tt.payload)
			assert.Equal(t, fiber.StatusUnprocessableEntity, status)
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Empty(t, store.expenses)
		})
	}
}

func TestListPagination(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seed(store, userA, "ALIMENTACAO", 10, base.AddDate(0, 0, i))
	}

	status, body := do(t, app, "GET", "/expense/getlist?offset=0&limit=2", userA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["expenses"], 2)

	meta := body["pagination"].(map[string]any)
	assert.EqualValues(t, 5, meta["totalCount"])
	assert.EqualValues(t, 3, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, false, meta["hasPreviousPage"])

	status, body = do(t, app, "GET", "/expense/getlist?offset=4&limit=2", userA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["expenses"], 1)
	meta = body["pagination"].(map[string]any)
	assert.Equal(t, false, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPreviousPage"])
}

func TestListPaginationBounds(t *testing.T) {
	app := newTestApp(&fakeStore{})

	status, _ := do(t, app, "GET", "/expense/getlist?offset=-1", userA, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = do(t, app, "GET", "/expense/getlist?limit=501", userA, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestListEmptyReturnsOK(t *testing.T) {
	app := newTestApp(&fakeStore{})

	status, body := do(t, app, "GET", "/expense/getlist", userA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["expenses"], 0)

	meta := body["pagination"].(map[string]any)
	assert.EqualValues(t, 0, meta["totalCount"])
}

func TestListScopedToOwner(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	seed(store, userA, "ALIMENTACAO", 10, time.Now())
	seed(store, userB, "LAZER", 99, time.Now())

	status, body := do(t, app, "GET", "/expense/getlist", userA, nil)
	require.Equal(t, fiber.StatusOK, status)

	items := body["expenses"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, userA, items[0].(map[string]any)["userId"])
}

func TestGetByID(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)
	e := seed(store, userA, "SAUDE", 50, time.Now())

	status, _ := do(t, app, "GET", "/expense/not-hex", userA, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = do(t, app, "GET", "/expense/"+storage.NewID(), userA, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = do(t, app, "GET", "/expense/"+e.ID, userB, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := do(t, app, "GET", "/expense/"+e.ID, userA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, e.ID, body["expense"].(map[string]any)["id"])
}

func TestUpdatePartial(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)
	e := seed(store, userA, "SAUDE", 50, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	status, body := do(t, app, "PUT", "/expense/update/"+e.ID, userA, map[string]any{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "No update parameters provided", body["message"])

	status, _ = do(t, app, "PUT", "/expense/update/"+e.ID, userA, map[string]any{"value": "99,90"})
	require.Equal(t, fiber.StatusOK, status)

	// Only the provided field changed.
	assert.InDelta(t, 99.90, e.Value, 1e-9)
	assert.Equal(t, "SAUDE", e.Category)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), e.Date)

	status, body = do(t, app, "PUT", "/expense/update/"+e.ID, userA, map[string]any{"category": "PETS"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["message"], "Invalid category")

	status, _ = do(t, app, "PUT", "/expense/update/"+e.ID, userB, map[string]any{"value": 1})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.InDelta(t, 99.90, e.Value, 1e-9)
}

func TestUpdateOptionalFieldClearing(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	desc := "jantar"
	e := seed(store, userA, "ALIMENTACAO", 30, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	e.Description = &desc

	// An absent field stays put.
	status, _ := do(t, app, "PUT", "/expense/update/"+e.ID, userA, map[string]any{"value": 40})
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, e.Description)

	// An explicit null clears it.
	status, _ = do(t, app, "PUT", "/expense/update/"+e.ID, userA, map[string]any{"description": nil})
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, e.Description)
	assert.InDelta(t, 40.0, e.Value, 1e-9)
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)
	e := seed(store, userA, "SAUDE", 50, time.Now())

	status, _ := do(t, app, "DELETE", "/expense/delete/"+e.ID, userB, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Len(t, store.expenses, 1)

	status, body := do(t, app, "DELETE", "/expense/delete/"+e.ID, userA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Despesa excluída com sucesso!", body["message"])
	assert.Empty(t, store.expenses)
}

func TestCategorySummary(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	seed(store, userA, "ALIMENTACAO", 100.50, day)
	seed(store, userA, "ALIMENTACAO", 49.50, day.AddDate(0, 0, 1))
	seed(store, userA, "TRANSPORTE", 30, day)
	seed(store, userB, "ALIMENTACAO", 999, day) // another tenant, excluded

	status, body := do(t, app, "GET", "/expense/summary/categories", userA, nil)
	require.Equal(t, fiber.StatusOK, status)

	summary := body["summary"].(map[string]any)
	assert.InDelta(t, 150.0, summary["ALIMENTACAO"].(float64), 1e-9)
	assert.InDelta(t, 30.0, summary["TRANSPORTE"].(float64), 1e-9)
	assert.InDelta(t, 180.0, body["total"].(float64), 1e-9)
}

func TestCategorySummaryDateRange(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	seed(store, userA, "LAZER", 10, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	seed(store, userA, "LAZER", 20, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))

	path := fmt.Sprintf("/expense/summary/categories?startDate=%s&endDate=%s", "2024-02-01", "2024-02-28")
	status, body := do(t, app, "GET", path, userA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 20.0, body["total"].(float64), 1e-9)
}

func TestWebhookCreate(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	// Wrong key: rejected, nothing persisted.
	status, body := do(t, app, "POST", "/webhook/expense/create", "", map[string]any{
		"apiKey":   "wrong",
		"userId":   userA,
		"value":    "15,00",
		"category": "TRANSPORTE",
		"date":     "15/03/2024",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized: Invalid API key", body["message"])
	assert.Empty(t, store.expenses)

	// Correct key with a DD/MM/YYYY date.
	status, body = do(t, app, "POST", "/webhook/expense/create", "", map[string]any{
		"apiKey":   "webhook-secret",
		"userId":   userA,
		"value":    "15,00",
		"category": "TRANSPORTE",
		"date":     "15/03/2024",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Despesa registrada com sucesso via webhook!", body["message"])

	require.Len(t, store.expenses, 1)
	assert.Equal(t, userA, store.expenses[0].UserID)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), store.expenses[0].Date)
}

func TestWebhookMissingUserID(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store)

	status, _ := do(t, app, "POST", "/webhook/expense/create", "", map[string]any{
		"apiKey":   "webhook-secret",
		"value":    10,
		"category": "TRANSPORTE",
		"date":     "2024-03-15",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Empty(t, store.expenses)
}

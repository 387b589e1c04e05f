package expense

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
)

// Expense is a persisted expense record owned by exactly one user.
type Expense struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"userId"`
	Value         float64   `db:"value" json:"value"`
	Category      string    `db:"category" json:"category"`
	Date          time.Time `db:"date" json:"date"`
	Description   *string   `db:"description" json:"description,omitempty"`
	PaymentMethod *string   `db:"payment_method" json:"paymentMethod,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Owner implements storage.Owned.
func (e *Expense) Owner() string { return e.UserID }

// Categories is the closed set of expense labels.
var Categories = []string{
	"ALIMENTACAO",
	"TRANSPORTE",
	"MORADIA",
	"SAUDE",
	"EDUCACAO",
	"LAZER",
	"VESTUARIO",
	"OUTROS",
}

// ValidCategory reports whether c belongs to the closed enumeration.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// CategoryList renders the valid set for 422 messages.
func CategoryList() string {
	return strings.Join(Categories, ", ")
}

type createRequest struct {
	Value         money.Amount `json:"value"`
	Category      string       `json:"category"`
	Date          string       `json:"date"`
	Description   *string      `json:"description"`
	PaymentMethod *string      `json:"paymentMethod"`
}

type updateRequest struct {
	Value         money.Amount `json:"value"`
	Category      string       `json:"category"`
	Date          string       `json:"date"`
	Description   optString    `json:"description"`
	PaymentMethod optString    `json:"paymentMethod"`
}

// optString distinguishes an absent JSON field from an explicit null so a
// partial update can clear an optional column.
type optString struct {
	Set   bool
	Value *string
}

func (o *optString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// UpdateFields carries the provided-only fields of a partial update. Nil
// pointers and unset optionals leave the stored column untouched; an optional
// provided as null clears it.
type UpdateFields struct {
	Value         *float64
	Category      *string
	Date          *time.Time
	Description   optString
	PaymentMethod optString
}

// Empty reports whether no updatable field was provided.
func (f UpdateFields) Empty() bool {
	return f.Value == nil && f.Category == nil && f.Date == nil &&
		!f.Description.Set && !f.PaymentMethod.Set
}

// ListFilter scopes a list query to one user with optional category and
// date-range filters.
type ListFilter struct {
	UserID   string
	Category string
	From     *time.Time
	To       *time.Time
	Offset   int
	Limit    int
}

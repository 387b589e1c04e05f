package voucher

import (
	"time"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
)

// Voucher is the first-generation voucher record. It coexists with the v2
// schema.
type Voucher struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"userId"`
	Value         float64   `db:"value" json:"value"`
	VoucherNumber string    `db:"voucher_number" json:"voucherNumber"`
	OrderNumber   string    `db:"order_number" json:"orderNumber"`
	Company       string    `db:"company" json:"company"`
	VoucherDate   time.Time `db:"voucher_date" json:"voucherDate"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Owner implements storage.Owned.
func (v *Voucher) Owner() string { return v.UserID }

type createRequest struct {
	Value         money.Amount `json:"value"`
	VoucherNumber string       `json:"voucherNumber"`
	OrderNumber   string       `json:"orderNumber"`
	Company       string       `json:"company"`
	VoucherDate   string       `json:"voucherDate"`
}

type updateRequest struct {
	Value         money.Amount `json:"value"`
	VoucherNumber string       `json:"voucherNumber"`
	OrderNumber   string       `json:"orderNumber"`
	Company       string       `json:"company"`
	VoucherDate   string       `json:"voucherDate"`
}

// UpdateFields carries provided-only fields for partial updates.
type UpdateFields struct {
	Value         *float64
	VoucherNumber *string
	OrderNumber   *string
	Company       *string
	VoucherDate   *time.Time
}

func (f UpdateFields) Empty() bool {
	return f.Value == nil && f.VoucherNumber == nil && f.OrderNumber == nil &&
		f.Company == nil && f.VoucherDate == nil
}

// ListFilter scopes a list query to one user with an optional voucher-date
// range.
type ListFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

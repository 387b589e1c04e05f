package voucherv2

import (
	"time"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/money"
)

// Voucher is the second-generation voucher record. RequestCategory is
// derived from the first three characters of RequestCode and never accepted
// from clients directly.
type Voucher struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	TaxNumber       string    `db:"tax_number" json:"taxNumber"`
	RequestCode     string    `db:"request_code" json:"requestCode"`
	RequestCategory string    `db:"request_category" json:"requestCategory"`
	Date            time.Time `db:"date" json:"date"`
	Value           float64   `db:"value" json:"value"`
	Start           string    `db:"start_location" json:"start"`
	Destination     string    `db:"destination" json:"destination"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Owner implements storage.Owned.
func (v *Voucher) Owner() string { return v.UserID }

// requestCategory extracts the three-letter category prefix of a request
// code.
func requestCategory(code string) string {
	if len(code) < 3 {
		return code
	}
	return code[:3]
}

type createRequest struct {
	TaxNumber   string       `json:"taxNumber"`
	RequestCode string       `json:"requestCode"`
	Date        string       `json:"date"`
	Value       money.Amount `json:"value"`
	Start       string       `json:"start"`
	Destination string       `json:"destination"`
}

type updateRequest struct {
	TaxNumber   string       `json:"taxNumber"`
	RequestCode string       `json:"requestCode"`
	Date        string       `json:"date"`
	Value       money.Amount `json:"value"`
	Start       string       `json:"start"`
	Destination string       `json:"destination"`
}

// UpdateFields carries provided-only fields for partial updates. Changing
// RequestCode re-derives RequestCategory.
type UpdateFields struct {
	TaxNumber   *string
	RequestCode *string
	Date        *time.Time
	Value       *float64
	Start       *string
	Destination *string
}

func (f UpdateFields) Empty() bool {
	return f.TaxNumber == nil && f.RequestCode == nil && f.Date == nil &&
		f.Value == nil && f.Start == nil && f.Destination == nil
}

// ListFilter scopes a list query to one user with an optional date range.
type ListFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

// EarningRow is the projection the earnings statistics work over.
type EarningRow struct {
	Date  time.Time
	Value float64
}

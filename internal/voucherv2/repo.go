package voucherv2

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/storage"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const voucherColumns = `id, user_id, tax_number, request_code, request_category, date, value, start_location, destination, created_at`

func scanVoucher(row pgx.Row) (*Voucher, error) {
	var v Voucher
	err := row.Scan(
		&v.ID, &v.UserID, &v.TaxNumber, &v.RequestCode, &v.RequestCategory,
		&v.Date, &v.Value, &v.Start, &v.Destination, &v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) Insert(ctx context.Context, v *Voucher) (string, error) {
	v.ID = storage.NewID()
	_, err := r.Pool.Exec(
		ctx,
		`INSERT INTO vouchers_v2 (id, user_id, tax_number, request_code, request_category, date, value, start_location, destination)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.UserID, v.TaxNumber, v.RequestCode, v.RequestCategory,
		v.Date, v.Value, v.Start, v.Destination,
	)
	if err != nil {
		return "", err
	}
	return v.ID, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]Voucher, int64, error) {
	where := []string{"user_id = $1"}
	args := []any{f.UserID}

	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.Pool.QueryRow(
		ctx, `SELECT COUNT(*) FROM vouchers_v2 WHERE `+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.Pool.Query(ctx, fmt.Sprintf(`
		SELECT `+voucherColumns+`
		FROM vouchers_v2
		WHERE %s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, total, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Voucher, error) {
	return scanVoucher(r.Pool.QueryRow(ctx,
		`SELECT `+voucherColumns+` FROM vouchers_v2 WHERE id = $1`, id))
}

func (r *Repository) Update(ctx context.Context, id string, f UpdateFields) error {
	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if f.TaxNumber != nil {
		set("tax_number", *f.TaxNumber)
	}
	if f.RequestCode != nil {
		set("request_code", *f.RequestCode)
		set("request_category", requestCategory(*f.RequestCode))
	}
	if f.Date != nil {
		set("date", *f.Date)
	}
	if f.Value != nil {
		set("value", *f.Value)
	}
	if f.Start != nil {
		set("start_location", *f.Start)
	}
	if f.Destination != nil {
		set("destination", *f.Destination)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	_, err := r.Pool.Exec(ctx, fmt.Sprintf(
		`UPDATE vouchers_v2 SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args),
	), args...)
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM vouchers_v2 WHERE id = $1`, id)
	return err
}

// ListRange returns the (date, value) projection of a user's vouchers inside
// [from, to], ascending by date. The earnings statistics bucket these rows.
func (r *Repository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]EarningRow, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT date, value
		FROM vouchers_v2
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]EarningRow, 0)
	for rows.Next() {
		var e EarningRow
		if err := rows.Scan(&e.Date, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumBetween totals a user's voucher values inside [from, to).
func (r *Repository) SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	var total float64
	err := r.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(value), 0)::float8
		FROM vouchers_v2
		WHERE user_id = $1 AND date >= $2 AND date < $3`, userID, from, to).Scan(&total)
	return total, err
}

// Recent returns the user's n most recent vouchers by date.
func (r *Repository) Recent(ctx context.Context, userID string, n int) ([]Voucher, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+voucherColumns+`
		FROM vouchers_v2
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`, userID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

package voucher

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

func (r *Repository) Insert(ctx context.Context, v *Voucher) (string, error) {
	v.ID = storage.NewID()
	_, err := r.Pool.Exec(
		ctx,
		`INSERT INTO vouchers (id, user_id, value, voucher_number, order_number, company, voucher_date)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.UserID, v.Value, v.VoucherNumber, v.OrderNumber, v.Company, v.VoucherDate,
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
		where = append(where, fmt.Sprintf("voucher_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("voucher_date <= $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.Pool.QueryRow(
		ctx, `SELECT COUNT(*) FROM vouchers WHERE `+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.Pool.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, value, voucher_number, order_number, company, voucher_date, created_at
		FROM vouchers
		WHERE %s
		ORDER BY voucher_date DESC
		LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Voucher, 0)
	for rows.Next() {
		var v Voucher
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Value, &v.VoucherNumber, &v.OrderNumber,
			&v.Company, &v.VoucherDate, &v.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Voucher, error) {
	var v Voucher
	err := r.Pool.QueryRow(ctx, `
		SELECT id, user_id, value, voucher_number, order_number, company, voucher_date, created_at
		FROM vouchers WHERE id = $1`, id,
	).Scan(&v.ID, &v.UserID, &v.Value, &v.VoucherNumber, &v.OrderNumber, &v.Company, &v.VoucherDate, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) Update(ctx context.Context, id string, f UpdateFields) error {
	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if f.Value != nil {
		set("value", *f.Value)
	}
	if f.VoucherNumber != nil {
		set("voucher_number", *f.VoucherNumber)
	}
	if f.OrderNumber != nil {
		set("order_number", *f.OrderNumber)
	}
	if f.Company != nil {
		set("company", *f.Company)
	}
	if f.VoucherDate != nil {
		set("voucher_date", *f.VoucherDate)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	_, err := r.Pool.Exec(ctx, fmt.Sprintf(
		`UPDATE vouchers SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args),
	), args...)
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	return err
}

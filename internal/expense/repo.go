package expense

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

func (r *Repository) Insert(ctx context.Context, e *Expense) (string, error) {
	e.ID = storage.NewID()
	_, err := r.Pool.Exec(
		ctx,
		`INSERT INTO expenses (id, user_id, value, category, date, description, payment_method)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, e.Value, e.Category, e.Date, e.Description, e.PaymentMethod,
	)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]Expense, int64, error) {
	where := []string{"user_id = $1"}
	args := []any{f.UserID}

	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
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
		ctx, `SELECT COUNT(*) FROM expenses WHERE `+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.Pool.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, value, category, date, description, payment_method, created_at
		FROM expenses
		WHERE %s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Expense, 0)
	for rows.Next() {
		var e Expense
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Value, &e.Category, &e.Date,
			&e.Description, &e.PaymentMethod, &e.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	var e Expense
	err := r.Pool.QueryRow(ctx, `
		SELECT id, user_id, value, category, date, description, payment_method, created_at
		FROM expenses WHERE id = $1`, id,
	).Scan(&e.ID, &e.UserID, &e.Value, &e.Category, &e.Date, &e.Description, &e.PaymentMethod, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
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
	if f.Category != nil {
		set("category", *f.Category)
	}
	if f.Date != nil {
		set("date", *f.Date)
	}
	if f.Description.Set {
		set("description", f.Description.Value)
	}
	if f.PaymentMethod.Set {
		set("payment_method", f.PaymentMethod.Value)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	_, err := r.Pool.Exec(ctx, fmt.Sprintf(
		`UPDATE expenses SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args),
	), args...)
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return err
}

// SumByCategory totals expense values grouped by category over an optional
// date range.
func (r *Repository) SumByCategory(ctx context.Context, f ListFilter) (map[string]float64, error) {
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

	rows, err := r.Pool.Query(ctx, fmt.Sprintf(`
		SELECT category, SUM(value)::float8
		FROM expenses
		WHERE %s
		GROUP BY category`, strings.Join(where, " AND ")), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		summary[category] = total
	}
	return summary, rows.Err()
}

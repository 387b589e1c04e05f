package http

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/domain"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/storage"
)

// UserRepository persists users in Postgres.
type UserRepository struct {
	Pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Pool: pool}
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	u.ID = storage.NewID()
	_, err := r.Pool.Exec(
		ctx,
		`INSERT INTO users (id, name, email, cpf, password_hash)
         VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.CPF, u.PasswordHash,
	)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) FindByCPF(ctx context.Context, cpf string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE cpf = $1`, cpf)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.Pool.QueryRow(
		ctx,
		`SELECT id, name, email, cpf, password_hash, created_at FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CPF, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

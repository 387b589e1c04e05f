// Package storage holds the shared persistence plumbing: the pgx pool
// constructor, record id generation, ownership scoping and pagination
// arithmetic used by every resource repository.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when a record exists but belongs to another
	// user.
	ErrForbidden = errors.New("record owned by another user")
)

// Connect builds a pgx pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Owned is implemented by records carrying an owning user id.
type Owned interface {
	Owner() string
}

// CheckOwner enforces the ownership invariant shared by every read-by-id and
// mutating operation: the record's user id must match the authenticated one.
func CheckOwner(rec Owned, userID string) error {
	if rec.Owner() != userID {
		return ErrForbidden
	}
	return nil
}

// Package audit records best-effort audit entries for mutating operations.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	UserID     string
	Action     string // e.g. "expense.create", "voucher.delete"
	EntityType string // "expense", "voucher", "voucher_v2"
	EntityID   string
	IP         string
	UserAgent  string
	Metadata   any
}

// Logger writes audit entries. A nil DB turns it into a no-op, which tests
// rely on.
type Logger struct {
	DB *pgxpool.Pool
}

// Record persists the entry without blocking the request; failures are
// logged and swallowed.
func (l *Logger) Record(e Entry) {
	if l == nil || l.DB == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var metadata []byte
		if e.Metadata != nil {
			metadata, _ = json.Marshal(e.Metadata)
		}

		_, err := l.DB.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, user_agent, metadata)
VALUES (NULLIF($1,''), $2, $3, NULLIF($4,''), $5, $6, $7)
`, e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, e.UserAgent, metadata)
		if err != nil {
			log.Printf("audit: failed to record %s: %v", e.Action, err)
		}
	}()
}

// Package audit keeps a postgres record of who generated which packet.
// Only metadata is stored; packet bytes are never persisted.
package audit

import (
	"context"
	"database/sql"
	"time"

	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/logger"
)

// Entry is one successful packet generation.
type Entry struct {
	Username    string
	CompanyID   string
	CompanyName string
	Filename    string
	GeneratedAt time.Time
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

// Record inserts one audit row. Callers treat a failure here as a
// warning; it must never fail the workflow that produced the packet.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO packet_audit (username, company_id, company_name, filename, generated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.Username, entry.CompanyID, entry.CompanyName, entry.Filename, entry.GeneratedAt,
	)
	if err != nil {
		s.logger.Error("audit insert failed", map[string]interface{}{
			"username": entry.Username,
			"company":  entry.CompanyID,
			"error":    err,
		})
		return apperrors.NewAuditWriteError(err)
	}
	return nil
}

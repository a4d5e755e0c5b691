package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

// execer is the subset of pgxpool.Pool used for inserts.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type AuditRepository struct {
	db execer
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db execer) *AuditRepository {
	return &AuditRepository{db: db}
}

const insertAuditSQL = `INSERT INTO audit_logs (user_id, email, action, ip, user_agent, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *AuditRepository) Insert(ctx context.Context, e entity.AuditEntry) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, insertAuditSQL, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, raw, e.CreatedAt)
	return err
}

package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

// AuditRepository keeps audit entries in a slice; Entries returns a copy.
type AuditRepository struct {
	mu      sync.Mutex
	entries []entity.AuditEntry
}

func NewAuditRepository() *AuditRepository { return &AuditRepository{} }

func (r *AuditRepository) Insert(ctx context.Context, e entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *AuditRepository) Entries() []entity.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditEntry(nil), r.entries...)
}

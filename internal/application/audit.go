package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

const auditTimeout = 2 * time.Second

// recordAudit appends an audit entry. Failures are logged and swallowed.
func recordAudit(ctx context.Context, repo repository.AuditRepository, log *logrus.Logger, at time.Time, action string, u *entity.User, email string, meta RequestMeta, extra map[string]any) {
	if repo == nil {
		return
	}
	e := entity.AuditEntry{
		Email:     entity.NormalizeEmail(email),
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  extra,
		CreatedAt: at.UTC(),
	}
	if u != nil {
		e.UserID = u.ID
		e.Email = u.Email
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := repo.Insert(c, e); err != nil && log != nil {
		log.WithError(err).WithFields(logrus.Fields{"action": action, "user_id": e.UserID}).Warn("audit insert failed")
	}
}

// reindex pushes u to the search index. Failures are logged and swallowed.
func reindex(ctx context.Context, idx UserIndexer, log *logrus.Logger, u *entity.User) {
	if idx == nil || u == nil {
		return
	}
	if err := idx.Index(ctx, u); err != nil && log != nil {
		log.WithError(err).WithField("user_id", u.ID).Warn("user reindex failed")
	}
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// writeAudit records an audit entry. A failing audit store is logged and
// never fails the operation being audited.
func writeAudit(ctx context.Context, store driven.AuditStore, entry domain.AuditEntry) {
	if store == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Actor == "" {
		entry.Actor = domain.ActorSystem
	}
	if err := store.Record(ctx, &entry); err != nil {
		logger.Warn("audit %s for %s: %v", entry.Operation, entry.TenantID, err)
	}
}

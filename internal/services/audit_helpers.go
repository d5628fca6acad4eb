package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/charlesng35/memberhub/pkg/logger"
)

// Audit results.
const (
	auditResultSuccess = "success"
	auditResultFailure = "failure"
)

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

package audit

import "context"

type AuditService interface {
	// ListAuditLog returns the audit trail visible to the viewer in filter.
	ListAuditLog(ctx context.Context, filter AuditFilter) (ListAuditResponse, error)
}

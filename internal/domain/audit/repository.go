package audit

import "context"

type AuditRepository interface {
	// Append writes entries in order. It joins a surrounding transaction.
	Append(ctx context.Context, entries ...Entry) error

	// List returns entries oldest first with the unpaginated total.
	List(ctx context.Context, filter AuditFilter) ([]Entry, int64, error)
}

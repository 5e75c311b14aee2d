package memory

import (
	"context"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
)

type auditRepositoryImpl struct {
	store *Store
}

func NewAuditRepository(store *Store) audit.AuditRepository {
	return &auditRepositoryImpl{store: store}
}

func (r *auditRepositoryImpl) Append(_ context.Context, entries ...audit.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = append(r.store.audits, entries...)
	return nil
}

func (r *auditRepositoryImpl) List(_ context.Context, filter audit.AuditFilter) ([]audit.Entry, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []audit.Entry
	for _, e := range r.store.audits {
		if filter.ArrangementID != nil && e.ArrangementID != *filter.ArrangementID {
			continue
		}
		if filter.BatchID != nil && (e.BatchID == nil || *e.BatchID != *filter.BatchID) {
			continue
		}
		if filter.ActorID != nil && e.ActorID != *filter.ActorID {
			continue
		}
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.CreatedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, e)
	}

	total := int64(len(matched))
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

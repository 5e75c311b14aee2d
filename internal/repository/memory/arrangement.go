package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
)

type arrangementRepositoryImpl struct {
	store *Store
}

func NewArrangementRepository(store *Store) arrangement.ArrangementRepository {
	return &arrangementRepositoryImpl{store: store}
}

func (r *arrangementRepositoryImpl) CreateMany(_ context.Context, items []arrangement.Arrangement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, a := range items {
		if _, exists := r.store.arrangements[a.ID]; exists {
			return fmt.Errorf("arrangement %s already exists", a.ID)
		}
	}
	for _, a := range items {
		a.SupportingDocuments = slices.Clone(a.SupportingDocuments)
		r.store.arrangements[a.ID] = a
	}
	return nil
}

func (r *arrangementRepositoryImpl) GetByID(_ context.Context, id string) (arrangement.Arrangement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.arrangements[id]
	if !ok {
		return arrangement.Arrangement{}, arrangement.ErrArrangementNotFound
	}
	return a, nil
}

func (r *arrangementRepositoryImpl) GetByBatchID(_ context.Context, batchID string) ([]arrangement.Arrangement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []arrangement.Arrangement
	for _, a := range r.store.arrangements {
		if a.BatchID != nil && *a.BatchID == batchID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b arrangement.Arrangement) int {
		return cmp.Or(a.WorkDate.Compare(b.WorkDate), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// LockByIDs relies on the caller holding Store.WithinTx for exclusivity.
func (r *arrangementRepositoryImpl) LockByIDs(_ context.Context, ids []string) ([]arrangement.Arrangement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := make([]arrangement.Arrangement, 0, len(sorted))
	for _, id := range sorted {
		a, ok := r.store.arrangements[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", arrangement.ErrArrangementNotFound, id)
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *arrangementRepositoryImpl) UpdateStatus(_ context.Context, update arrangement.StatusUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.arrangements[update.ID]
	if !ok {
		return arrangement.ErrArrangementNotFound
	}
	if a.Status != update.From {
		return fmt.Errorf("%w: arrangement %s is %s", arrangement.ErrIllegalTransition, a.ID, a.Status)
	}

	a.Status = update.To
	a.ApprovingOfficerID = update.ApprovingOfficerID
	if update.StatusReason != nil {
		a.StatusReason = update.StatusReason
	}
	a.UpdatedAt = update.UpdatedAt
	r.store.arrangements[a.ID] = a
	return nil
}

func (r *arrangementRepositoryImpl) List(_ context.Context, requesterIDs []string, filter arrangement.ArrangementFilter) ([]arrangement.Arrangement, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	from, to := filter.DateRange()
	var search string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	var matched []arrangement.Arrangement
	for _, a := range r.store.arrangements {
		if !slices.Contains(requesterIDs, a.RequesterID) {
			continue
		}
		if from != nil && a.LastDate().Before(*from) {
			continue
		}
		if to != nil && a.WorkDate.After(*to) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, a.Status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Reason), search) {
			continue
		}
		matched = append(matched, a)
	}

	slices.SortFunc(matched, func(a, b arrangement.Arrangement) int {
		return cmp.Or(b.WorkDate.Compare(a.WorkDate), cmp.Compare(a.ID, b.ID))
	})

	total := int64(len(matched))
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

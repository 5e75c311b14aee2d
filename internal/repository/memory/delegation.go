package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
)

type delegationRepositoryImpl struct {
	store *Store
}

func NewDelegationRepository(store *Store) delegation.DelegationRepository {
	return &delegationRepositoryImpl{store: store}
}

func (r *delegationRepositoryImpl) Create(_ context.Context, d delegation.Delegation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.delegations {
		if existing.ManagerID == d.ManagerID && existing.Status.IsActive() {
			return fmt.Errorf("%w: manager %s already has delegation %s", delegation.ErrDelegationConflict, d.ManagerID, existing.ID)
		}
	}
	r.store.delegations[d.ID] = d
	return nil
}

func (r *delegationRepositoryImpl) GetByID(_ context.Context, id string) (delegation.Delegation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.delegations[id]
	if !ok {
		return delegation.Delegation{}, delegation.ErrDelegationNotFound
	}
	return d, nil
}

func (r *delegationRepositoryImpl) GetActiveByManager(_ context.Context, managerID string) (delegation.Delegation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, d := range r.store.delegations {
		if d.ManagerID == managerID && d.Status.IsActive() {
			return d, nil
		}
	}
	return delegation.Delegation{}, delegation.ErrDelegationNotFound
}

// LockByID relies on the caller holding Store.WithinTx for exclusivity.
func (r *delegationRepositoryImpl) LockByID(ctx context.Context, id string) (delegation.Delegation, error) {
	return r.GetByID(ctx, id)
}

func (r *delegationRepositoryImpl) UpdateStatus(_ context.Context, update delegation.StatusUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d, ok := r.store.delegations[update.ID]
	if !ok {
		return delegation.ErrDelegationNotFound
	}
	if d.Status != update.From {
		return fmt.Errorf("%w: delegation %s is %s", delegation.ErrIllegalTransition, d.ID, d.Status)
	}

	d.Status = update.To
	if update.ResponseReason != nil {
		d.ResponseReason = update.ResponseReason
	}
	if update.RespondedAt != nil {
		d.RespondedAt = update.RespondedAt
	}
	if update.UndelegatedAt != nil {
		d.UndelegatedAt = update.UndelegatedAt
	}
	d.UpdatedAt = update.UpdatedAt
	r.store.delegations[d.ID] = d
	return nil
}

func (r *delegationRepositoryImpl) ListByManager(_ context.Context, managerID string) ([]delegation.Delegation, error) {
	return r.list(func(d delegation.Delegation) bool { return d.ManagerID == managerID }), nil
}

func (r *delegationRepositoryImpl) ListByDelegate(_ context.Context, delegateID string, statuses ...delegation.Status) ([]delegation.Delegation, error) {
	return r.list(func(d delegation.Delegation) bool {
		if d.DelegateManagerID != delegateID {
			return false
		}
		return len(statuses) == 0 || slices.Contains(statuses, d.Status)
	}), nil
}

func (r *delegationRepositoryImpl) list(keep func(delegation.Delegation) bool) []delegation.Delegation {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []delegation.Delegation
	for _, d := range r.store.delegations {
		if keep(d) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b delegation.Delegation) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return out
}

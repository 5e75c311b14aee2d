package delegation

import "context"

type DelegationRepository interface {
	// Create inserts d. It returns ErrDelegationConflict when the manager
	// already has an active delegation.
	Create(ctx context.Context, d Delegation) error

	GetByID(ctx context.Context, id string) (Delegation, error)

	// GetActiveByManager returns the manager's pending or accepted delegation,
	// or ErrDelegationNotFound.
	GetActiveByManager(ctx context.Context, managerID string) (Delegation, error)

	// LockByID loads d and holds a row lock until the transaction ends.
	LockByID(ctx context.Context, id string) (Delegation, error)

	// UpdateStatus returns ErrIllegalTransition when the stored status no
	// longer equals update.From.
	UpdateStatus(ctx context.Context, update StatusUpdate) error

	// ListByManager returns every delegation made by the manager, newest first.
	ListByManager(ctx context.Context, managerID string) ([]Delegation, error)

	// ListByDelegate returns delegations naming delegateID, newest first,
	// optionally restricted to the given statuses.
	ListByDelegate(ctx context.Context, delegateID string, statuses ...Status) ([]Delegation, error)
}

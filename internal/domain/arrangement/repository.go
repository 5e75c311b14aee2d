package arrangement

import "context"

// ArrangementRepository persists arrangements. Methods called with a context
// from database.Transactor.WithinTx join that transaction.
type ArrangementRepository interface {
	// CreateMany inserts every arrangement or none of them.
	CreateMany(ctx context.Context, items []Arrangement) error

	GetByID(ctx context.Context, id string) (Arrangement, error)

	// GetByBatchID returns the occurrences of a batch ordered by work date.
	GetByBatchID(ctx context.Context, batchID string) ([]Arrangement, error)

	// LockByIDs loads the given arrangements and holds row locks on them until
	// the surrounding transaction ends. Rows are locked in ascending id order.
	LockByIDs(ctx context.Context, ids []string) ([]Arrangement, error)

	// UpdateStatus applies a guarded status change. It returns
	// ErrIllegalTransition when the stored status no longer equals update.From.
	UpdateStatus(ctx context.Context, update StatusUpdate) error

	// List returns arrangements requested by any of requesterIDs, newest work
	// date first, together with the unpaginated total.
	List(ctx context.Context, requesterIDs []string, filter ArrangementFilter) ([]Arrangement, int64, error)
}

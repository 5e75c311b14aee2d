package arrangement

import "context"

// ArrangementService is the request lifecycle: submission, transitions and
// the read projections over arrangements.
type ArrangementService interface {
	// Submit creates one ad-hoc arrangement or a whole recurring batch atomically.
	Submit(ctx context.Context, req SubmitArrangementRequest) (SubmitArrangementResponse, error)

	// Preview expands a recurrence without persisting anything.
	Preview(ctx context.Context, req RecurrenceRequest) (PreviewResponse, error)

	// Transition applies a lifecycle action, fanning out across a batch when
	// the action allows it.
	Transition(ctx context.Context, req TransitionRequest) (TransitionResponse, error)

	Get(ctx context.Context, viewerID string, id string) (ArrangementResponse, error)
	GetBatch(ctx context.Context, viewerID string, batchID string) ([]ArrangementResponse, error)

	ListByRequester(ctx context.Context, requesterID string, filter ArrangementFilter) (ListArrangementResponse, error)

	// ListBySubordinates lists arrangements of the manager's direct reports and
	// of the reports of managers who delegated to them.
	ListBySubordinates(ctx context.Context, managerID string, filter ArrangementFilter) (ListArrangementResponse, error)
}

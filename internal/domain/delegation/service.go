package delegation

import "context"

type DelegationService interface {
	Delegate(ctx context.Context, req DelegateRequest) (DelegationResponse, error)

	// Respond lets the named delegate accept or reject a pending delegation.
	Respond(ctx context.Context, req RespondRequest) (DelegationResponse, error)

	// Undelegate ends a manager's accepted delegation.
	Undelegate(ctx context.Context, req UndelegateRequest) (DelegationResponse, error)

	ListMine(ctx context.Context, managerID string) ([]DelegationResponse, error)
	ListIncoming(ctx context.Context, delegateID string) ([]DelegationResponse, error)
}

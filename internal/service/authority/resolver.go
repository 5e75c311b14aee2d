// Package authority decides who may act on an arrangement right now.
package authority

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

// maxChainDepth bounds reporting-line walks so a cyclic directory cannot loop.
const maxChainDepth = 32

// Resolver reads the employee directory and delegations on every call. Nothing
// is cached.
type Resolver struct {
	employee.EmployeeRepository
	delegation.DelegationRepository
}

func NewResolver(employeeRepository employee.EmployeeRepository, delegationRepository delegation.DelegationRepository) *Resolver {
	return &Resolver{
		EmployeeRepository:   employeeRepository,
		DelegationRepository: delegationRepository,
	}
}

// ResolveAuthority returns the effective approver for a manager's reports: the
// accepted delegate if there is one, otherwise the manager. Delegation does
// not chain.
func (r *Resolver) ResolveAuthority(ctx context.Context, managerID string) (string, error) {
	d, err := r.DelegationRepository.GetActiveByManager(ctx, managerID)
	if errors.Is(err, delegation.ErrDelegationNotFound) {
		return managerID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get active delegation for manager %s: %w", managerID, err)
	}
	if d.Status == delegation.StatusAccepted {
		return d.DelegateManagerID, nil
	}
	return managerID, nil
}

// ApproverFor resolves the authority for arrangements requested by requesterID.
func (r *Resolver) ApproverFor(ctx context.Context, requesterID string) (string, error) {
	requester, err := r.EmployeeRepository.GetByID(ctx, requesterID)
	if err != nil {
		return "", fmt.Errorf("failed to get requester %s: %w", requesterID, err)
	}
	if !requester.HasManager() {
		return "", fmt.Errorf("%w: %s", arrangement.ErrManagerNotFound, requesterID)
	}
	return r.ResolveAuthority(ctx, *requester.ReportingManagerID)
}

// Authorize returns nil when actorID is the authority of record for a right
// now. Requesters never hold authority over their own arrangements.
func (r *Resolver) Authorize(ctx context.Context, actorID string, a arrangement.Arrangement) error {
	if actorID == a.RequesterID {
		return fmt.Errorf("%w: requester cannot act as authority", arrangement.ErrNotAuthorized)
	}
	approver, err := r.ApproverFor(ctx, a.RequesterID)
	if err != nil {
		return err
	}
	if approver != actorID {
		return fmt.Errorf("%w: authority for arrangement %s is %s", arrangement.ErrNotAuthorized, a.ID, approver)
	}
	return nil
}

// CanAdministerDelegations reports whether actorID may create or end
// delegations for managerID: the manager themself, or a director above them
// in the reporting line.
func (r *Resolver) CanAdministerDelegations(ctx context.Context, actorID, managerID string) (bool, error) {
	if actorID == managerID {
		return true, nil
	}

	actor, err := r.EmployeeRepository.GetByID(ctx, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to get actor %s: %w", actorID, err)
	}
	if actor.Role != user.RoleDirector {
		return false, nil
	}

	return r.reportsTo(ctx, managerID, actorID)
}

// reportsTo walks up from employeeID looking for ancestorID.
func (r *Resolver) reportsTo(ctx context.Context, employeeID, ancestorID string) (bool, error) {
	seen := map[string]bool{employeeID: true}
	current := employeeID
	for range maxChainDepth {
		emp, err := r.EmployeeRepository.GetByID(ctx, current)
		if err != nil {
			return false, fmt.Errorf("failed to get employee %s: %w", current, err)
		}
		if !emp.HasManager() {
			return false, nil
		}
		next := *emp.ReportingManagerID
		if next == ancestorID {
			return true, nil
		}
		if seen[next] {
			return false, nil
		}
		seen[next] = true
		current = next
	}
	return false, nil
}

// Delegators returns the managers whose accepted delegation names delegateID.
func (r *Resolver) Delegators(ctx context.Context, delegateID string) ([]string, error) {
	items, err := r.DelegationRepository.ListByDelegate(ctx, delegateID, delegation.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegations for delegate %s: %w", delegateID, err)
	}
	ids := make([]string, 0, len(items))
	for _, d := range items {
		ids = append(ids, d.ManagerID)
	}
	return ids, nil
}

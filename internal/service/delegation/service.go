package delegation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Administrators decides who may create or end a manager's delegations.
type Administrators interface {
	CanAdministerDelegations(ctx context.Context, actorID, managerID string) (bool, error)
}

type DelegationServiceImpl struct {
	tx      database.Transactor
	locks   *lock.Manager
	admins  Administrators
	metrics metrics.Recorder

	delegation.DelegationRepository
	employee.EmployeeRepository

	now func() time.Time
}

func NewDelegationService(
	tx database.Transactor,
	locks *lock.Manager,
	admins Administrators,
	recorder metrics.Recorder,
	delegationRepository delegation.DelegationRepository,
	employeeRepository employee.EmployeeRepository,
) *DelegationServiceImpl {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &DelegationServiceImpl{
		tx:                   tx,
		locks:                locks,
		admins:               admins,
		metrics:              recorder,
		DelegationRepository: delegationRepository,
		EmployeeRepository:   employeeRepository,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

var _ delegation.DelegationService = (*DelegationServiceImpl)(nil)

// lockManager serializes delegation changes for one manager with arrangement
// transitions that resolve authority through that manager.
func (s *DelegationServiceImpl) lockManager(ctx context.Context, managerID string) (func(), error) {
	release, err := s.locks.Acquire(ctx, "delegation:"+managerID)
	if errors.Is(err, lock.ErrTimeout) {
		return nil, delegation.ErrConcurrentModification
	}
	return release, err
}

func (s *DelegationServiceImpl) Delegate(ctx context.Context, req delegation.DelegateRequest) (delegation.DelegationResponse, error) {
	if err := req.Validate(); err != nil {
		return delegation.DelegationResponse{}, err
	}
	if req.DelegateManagerID == req.ManagerID {
		return delegation.DelegationResponse{}, fmt.Errorf("%w: a manager cannot delegate to themself", delegation.ErrDelegationConflict)
	}

	allowed, err := s.admins.CanAdministerDelegations(ctx, req.ActorID, req.ManagerID)
	if err != nil {
		return delegation.DelegationResponse{}, err
	}
	if !allowed {
		return delegation.DelegationResponse{}, delegation.ErrNotAuthorized
	}

	manager, err := s.EmployeeRepository.GetByID(ctx, req.ManagerID)
	if err != nil {
		return delegation.DelegationResponse{}, fmt.Errorf("failed to get manager: %w", err)
	}
	if !manager.Role.IsManagerLevel() {
		return delegation.DelegationResponse{}, fmt.Errorf("%w: %s has no approval authority to delegate", delegation.ErrNotAuthorized, manager.ID)
	}

	delegate, err := s.EmployeeRepository.GetByID(ctx, req.DelegateManagerID)
	if err != nil {
		return delegation.DelegationResponse{}, fmt.Errorf("failed to get delegate: %w", err)
	}
	if !delegate.Role.IsManagerLevel() {
		return delegation.DelegationResponse{}, delegation.ErrDelegateNotEligible
	}

	id, err := uuid.NewV7()
	if err != nil {
		return delegation.DelegationResponse{}, fmt.Errorf("failed to generate id: %w", err)
	}
	now := s.now()
	d := delegation.Delegation{
		ID:                id.String(),
		ManagerID:         req.ManagerID,
		DelegateManagerID: req.DelegateManagerID,
		Status:            delegation.StatusPending,
		Reason:            trimmed(req.Reason),
		DateOfDelegation:  now,
		CreatedBy:         req.ActorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	release, err := s.lockManager(ctx, req.ManagerID)
	if err != nil {
		return delegation.DelegationResponse{}, err
	}
	defer release()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		active, err := s.DelegationRepository.GetActiveByManager(ctx, req.ManagerID)
		if err == nil {
			return fmt.Errorf("%w: delegation %s is %s", delegation.ErrDelegationConflict, active.ID, active.Status)
		}
		if !errors.Is(err, delegation.ErrDelegationNotFound) {
			return fmt.Errorf("failed to get active delegation: %w", err)
		}
		return s.DelegationRepository.Create(ctx, d)
	})
	if err != nil {
		return delegation.DelegationResponse{}, err
	}

	s.metrics.DelegationTransition("delegate")
	slog.Info("delegation created",
		"delegation_id", d.ID,
		"manager_id", d.ManagerID,
		"delegate_manager_id", d.DelegateManagerID,
		"actor_id", req.ActorID,
	)
	return delegation.NewDelegationResponse(d), nil
}

func (s *DelegationServiceImpl) Respond(ctx context.Context, req delegation.RespondRequest) (delegation.DelegationResponse, error) {
	if err := req.Validate(); err != nil {
		return delegation.DelegationResponse{}, err
	}

	id := req.DelegationID
	if id == "" {
		found, err := s.findForDelegate(ctx, req.DelegateID)
		if err != nil {
			return delegation.DelegationResponse{}, err
		}
		id = found
	}

	d, err := s.DelegationRepository.GetByID(ctx, id)
	if err != nil {
		return delegation.DelegationResponse{}, err
	}
	if d.DelegateManagerID != req.DelegateID {
		return delegation.DelegationResponse{}, fmt.Errorf("%w: only the named delegate may respond", delegation.ErrNotAuthorized)
	}

	release, err := s.lockManager(ctx, d.ManagerID)
	if err != nil {
		return delegation.DelegationResponse{}, err
	}
	defer release()

	action := req.Decision.Action()
	var updated delegation.Delegation
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.DelegationRepository.LockByID(ctx, id)
		if err != nil {
			return err
		}
		to, ok := delegation.Next(current.Status, action)
		if !ok {
			return fmt.Errorf("%w: cannot %s a delegation that is %s", delegation.ErrIllegalTransition, action, current.Status)
		}
		if action == delegation.ActionReject && !req.HasReason() {
			return delegation.ErrReasonRequired
		}

		now := s.now()
		update := delegation.StatusUpdate{
			ID:             current.ID,
			From:           current.Status,
			To:             to,
			ResponseReason: trimmed(req.Reason),
			RespondedAt:    &now,
			UpdatedAt:      now,
		}
		if err := s.DelegationRepository.UpdateStatus(ctx, update); err != nil {
			return err
		}

		updated = current
		updated.Status = to
		if update.ResponseReason != nil {
			updated.ResponseReason = update.ResponseReason
		}
		updated.RespondedAt = &now
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		slog.Warn("delegation response rejected", "delegation_id", id, "actor_id", req.DelegateID, "error", err)
		return delegation.DelegationResponse{}, err
	}

	s.metrics.DelegationTransition(string(action))
	slog.Info("delegation responded",
		"delegation_id", updated.ID,
		"manager_id", updated.ManagerID,
		"status", updated.Status,
	)
	return delegation.NewDelegationResponse(updated), nil
}

// findForDelegate picks the delegation a response without an id refers to:
// the single pending one, or else the most recent naming the delegate.
func (s *DelegationServiceImpl) findForDelegate(ctx context.Context, delegateID string) (string, error) {
	pending, err := s.DelegationRepository.ListByDelegate(ctx, delegateID, delegation.StatusPending)
	if err != nil {
		return "", fmt.Errorf("failed to list pending delegations: %w", err)
	}
	switch len(pending) {
	case 1:
		return pending[0].ID, nil
	case 0:
	default:
		return "", delegation.ErrDelegationAmbiguous
	}

	all, err := s.DelegationRepository.ListByDelegate(ctx, delegateID)
	if err != nil {
		return "", fmt.Errorf("failed to list delegations: %w", err)
	}
	if len(all) == 0 {
		return "", delegation.ErrDelegationNotFound
	}
	return all[0].ID, nil
}

func (s *DelegationServiceImpl) Undelegate(ctx context.Context, req delegation.UndelegateRequest) (delegation.DelegationResponse, error) {
	if err := req.Validate(); err != nil {
		return delegation.DelegationResponse{}, err
	}

	allowed, err := s.admins.CanAdministerDelegations(ctx, req.ActorID, req.ManagerID)
	if err != nil {
		return delegation.DelegationResponse{}, err
	}
	if !allowed {
		return delegation.DelegationResponse{}, delegation.ErrNotAuthorized
	}

	release, err := s.lockManager(ctx, req.ManagerID)
	if err != nil {
		return delegation.DelegationResponse{}, err
	}
	defer release()

	var updated delegation.Delegation
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		active, err := s.DelegationRepository.GetActiveByManager(ctx, req.ManagerID)
		if errors.Is(err, delegation.ErrDelegationNotFound) {
			return fmt.Errorf("%w: manager %s has no accepted delegation", delegation.ErrIllegalTransition, req.ManagerID)
		}
		if err != nil {
			return fmt.Errorf("failed to get active delegation: %w", err)
		}

		current, err := s.DelegationRepository.LockByID(ctx, active.ID)
		if err != nil {
			return err
		}
		to, ok := delegation.Next(current.Status, delegation.ActionUndelegate)
		if !ok {
			return fmt.Errorf("%w: cannot undelegate a delegation that is %s", delegation.ErrIllegalTransition, current.Status)
		}

		now := s.now()
		if err := s.DelegationRepository.UpdateStatus(ctx, delegation.StatusUpdate{
			ID:            current.ID,
			From:          current.Status,
			To:            to,
			UndelegatedAt: &now,
			UpdatedAt:     now,
		}); err != nil {
			return err
		}

		updated = current
		updated.Status = to
		updated.UndelegatedAt = &now
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return delegation.DelegationResponse{}, err
	}

	s.metrics.DelegationTransition(string(delegation.ActionUndelegate))
	slog.Info("delegation ended",
		"delegation_id", updated.ID,
		"manager_id", updated.ManagerID,
		"actor_id", req.ActorID,
	)
	return delegation.NewDelegationResponse(updated), nil
}

func (s *DelegationServiceImpl) ListMine(ctx context.Context, managerID string) ([]delegation.DelegationResponse, error) {
	items, err := s.DelegationRepository.ListByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegations: %w", err)
	}
	return delegation.NewDelegationResponses(items), nil
}

func (s *DelegationServiceImpl) ListIncoming(ctx context.Context, delegateID string) ([]delegation.DelegationResponse, error) {
	items, err := s.DelegationRepository.ListByDelegate(ctx, delegateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegations: %w", err)
	}
	return delegation.NewDelegationResponses(items), nil
}

func trimmed(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

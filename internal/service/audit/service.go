package audit

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

// Viewer decides whether an employee may read an arrangement.
type Viewer interface {
	CanView(ctx context.Context, viewerID string, a arrangement.Arrangement) error
}

type AuditServiceImpl struct {
	audit.AuditRepository
	arrangement.ArrangementRepository
	employee.EmployeeRepository
	viewer Viewer
}

func NewAuditService(
	auditRepository audit.AuditRepository,
	arrangementRepository arrangement.ArrangementRepository,
	employeeRepository employee.EmployeeRepository,
	viewer Viewer,
) *AuditServiceImpl {
	return &AuditServiceImpl{
		AuditRepository:       auditRepository,
		ArrangementRepository: arrangementRepository,
		EmployeeRepository:    employeeRepository,
		viewer:                viewer,
	}
}

var _ audit.AuditService = (*AuditServiceImpl)(nil)

// ListAuditLog returns the whole trail to audit viewers. Everyone else must
// scope the query to an arrangement or batch they can read.
func (s *AuditServiceImpl) ListAuditLog(ctx context.Context, filter audit.AuditFilter) (audit.ListAuditResponse, error) {
	if err := filter.Validate(); err != nil {
		return audit.ListAuditResponse{}, err
	}

	viewer, err := s.EmployeeRepository.GetByID(ctx, filter.ViewerID)
	if err != nil {
		return audit.ListAuditResponse{}, fmt.Errorf("failed to get viewer: %w", err)
	}

	if !user.HasPermission(viewer.Role, user.PermissionAuditView) {
		if err := s.checkScope(ctx, filter); err != nil {
			return audit.ListAuditResponse{}, err
		}
	}

	entries, total, err := s.AuditRepository.List(ctx, filter)
	if err != nil {
		return audit.ListAuditResponse{}, fmt.Errorf("failed to list audit log: %w", err)
	}
	return audit.NewListAuditResponse(entries, total, filter), nil
}

func (s *AuditServiceImpl) checkScope(ctx context.Context, filter audit.AuditFilter) error {
	var target arrangement.Arrangement
	switch {
	case filter.ArrangementID != nil:
		a, err := s.ArrangementRepository.GetByID(ctx, *filter.ArrangementID)
		if err != nil {
			return err
		}
		target = a
	case filter.BatchID != nil:
		items, err := s.ArrangementRepository.GetByBatchID(ctx, *filter.BatchID)
		if err != nil {
			return fmt.Errorf("failed to get batch: %w", err)
		}
		if len(items) == 0 {
			return arrangement.ErrBatchNotFound
		}
		target = items[0]
	default:
		return audit.ErrAuditLogForbidden
	}

	if err := s.viewer.CanView(ctx, filter.ViewerID, target); err != nil {
		return fmt.Errorf("%w: %w", audit.ErrAuditLogForbidden, err)
	}
	return nil
}

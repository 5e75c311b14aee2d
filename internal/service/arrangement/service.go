package arrangement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/recurrence"
	"github.com/google/uuid"
)

// AuthorityResolver answers who may act on an arrangement at this moment.
type AuthorityResolver interface {
	ApproverFor(ctx context.Context, requesterID string) (string, error)
	Authorize(ctx context.Context, actorID string, a arrangement.Arrangement) error
	Delegators(ctx context.Context, delegateID string) ([]string, error)
}

type ArrangementServiceImpl struct {
	tx        database.Transactor
	locks     *lock.Manager
	authority AuthorityResolver
	metrics   metrics.Recorder

	arrangement.ArrangementRepository
	audit.AuditRepository
	employee.EmployeeRepository

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

func NewArrangementService(
	tx database.Transactor,
	locks *lock.Manager,
	authority AuthorityResolver,
	recorder metrics.Recorder,
	arrangementRepository arrangement.ArrangementRepository,
	auditRepository audit.AuditRepository,
	employeeRepository employee.EmployeeRepository,
) *ArrangementServiceImpl {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &ArrangementServiceImpl{
		tx:                    tx,
		locks:                 locks,
		authority:             authority,
		metrics:               recorder,
		ArrangementRepository: arrangementRepository,
		AuditRepository:       auditRepository,
		EmployeeRepository:    employeeRepository,
		now:                   func() time.Time { return time.Now().UTC() },
		newID:                 uuid.NewV7,
	}
}

var _ arrangement.ArrangementService = (*ArrangementServiceImpl)(nil)

func (s *ArrangementServiceImpl) id() (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// Submit validates the request, expands it into dated occurrences and stores
// them together with their audit entries in one transaction.
func (s *ArrangementServiceImpl) Submit(ctx context.Context, req arrangement.SubmitArrangementRequest) (arrangement.SubmitArrangementResponse, error) {
	if err := req.Validate(); err != nil {
		return arrangement.SubmitArrangementResponse{}, err
	}

	if _, err := s.EmployeeRepository.GetByID(ctx, req.RequesterID); err != nil {
		return arrangement.SubmitArrangementResponse{}, fmt.Errorf("failed to get requester: %w", err)
	}

	approver, err := s.authority.ApproverFor(ctx, req.RequesterID)
	if err != nil {
		return arrangement.SubmitArrangementResponse{}, err
	}

	var (
		dates    []time.Time
		excluded []time.Time
		endDate  *time.Time
		batchID  *string
		kind     = "ad_hoc"
	)
	if req.Recurrence != nil {
		spec, err := req.Recurrence.Spec()
		if err != nil {
			return arrangement.SubmitArrangementResponse{}, err
		}
		result, err := recurrence.Expand(spec)
		if err != nil {
			return arrangement.SubmitArrangementResponse{}, err
		}
		dates, excluded = result.Dates, result.Excluded

		id, err := s.id()
		if err != nil {
			return arrangement.SubmitArrangementResponse{}, err
		}
		batchID = &id
		kind = "recurring"
	} else {
		workDate, _ := recurrence.ParseDate(*req.WorkDate)
		last := workDate
		if req.EndDate != nil {
			end, _ := recurrence.ParseDate(*req.EndDate)
			if !end.Equal(workDate) {
				endDate = &end
			}
			last = end
		}
		if allWeekend(workDate, last) {
			return arrangement.SubmitArrangementResponse{}, fmt.Errorf("%w: %s", arrangement.ErrWeekendDate, *req.WorkDate)
		}
		dates = []time.Time{workDate}
	}

	reason := strings.TrimSpace(req.Reason)
	now := s.now()
	items := make([]arrangement.Arrangement, 0, len(dates))
	entries := make([]audit.Entry, 0, len(dates))
	for _, date := range dates {
		id, err := s.id()
		if err != nil {
			return arrangement.SubmitArrangementResponse{}, err
		}
		officer := approver
		items = append(items, arrangement.Arrangement{
			ID:                  id,
			RequesterID:         req.RequesterID,
			ApprovingOfficerID:  &officer,
			WorkDate:            date,
			EndDate:             endDate,
			Slot:                req.Slot,
			Reason:              reason,
			Status:              arrangement.StatusPendingApproval,
			BatchID:             batchID,
			SupportingDocuments: slices.Clone(req.SupportingDocuments),
			CreatedAt:           now,
			UpdatedAt:           now,
		})

		logID, err := s.id()
		if err != nil {
			return arrangement.SubmitArrangementResponse{}, err
		}
		entries = append(entries, audit.Entry{
			ID:            logID,
			ArrangementID: id,
			BatchID:       batchID,
			ActorID:       req.RequesterID,
			Action:        arrangement.ActionSubmit,
			NewStatus:     arrangement.StatusPendingApproval,
			CreatedAt:     now,
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ArrangementRepository.CreateMany(ctx, items); err != nil {
			return fmt.Errorf("failed to create arrangements: %w", err)
		}
		if err := s.AuditRepository.Append(ctx, entries...); err != nil {
			return fmt.Errorf("failed to append audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return arrangement.SubmitArrangementResponse{}, err
	}

	s.metrics.Submitted(kind, len(items))
	slog.Info("arrangement submitted",
		"requester_id", req.RequesterID,
		"kind", kind,
		"occurrences", len(items),
		"excluded", len(excluded),
	)

	return arrangement.SubmitArrangementResponse{
		BatchID:       batchID,
		Arrangements:  arrangement.NewArrangementResponses(items),
		ExcludedDates: arrangement.FormatDates(excluded),
	}, nil
}

// allWeekend reports whether every day from start to end falls on a weekend.
func allWeekend(start, end time.Time) bool {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !recurrence.IsWeekend(d) {
			return false
		}
	}
	return true
}

func (s *ArrangementServiceImpl) Preview(ctx context.Context, req arrangement.RecurrenceRequest) (arrangement.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return arrangement.PreviewResponse{}, err
	}
	spec, err := req.Spec()
	if err != nil {
		return arrangement.PreviewResponse{}, err
	}
	result, err := recurrence.Expand(spec)
	if err != nil {
		return arrangement.PreviewResponse{}, err
	}
	return arrangement.PreviewResponse{
		Dates:         arrangement.FormatDates(result.Dates),
		ExcludedDates: arrangement.FormatDates(result.Excluded),
	}, nil
}

func (s *ArrangementServiceImpl) Get(ctx context.Context, viewerID string, id string) (arrangement.ArrangementResponse, error) {
	a, err := s.ArrangementRepository.GetByID(ctx, id)
	if err != nil {
		return arrangement.ArrangementResponse{}, err
	}
	if err := s.canView(ctx, viewerID, a); err != nil {
		return arrangement.ArrangementResponse{}, err
	}
	return arrangement.NewArrangementResponse(a), nil
}

func (s *ArrangementServiceImpl) GetBatch(ctx context.Context, viewerID string, batchID string) ([]arrangement.ArrangementResponse, error) {
	items, err := s.ArrangementRepository.GetByBatchID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	if len(items) == 0 {
		return nil, arrangement.ErrBatchNotFound
	}
	if err := s.canView(ctx, viewerID, items[0]); err != nil {
		return nil, err
	}
	return arrangement.NewArrangementResponses(items), nil
}

// CanView returns nil when viewerID may read a: the requester, their
// reporting manager, the current authority, or an HR/director role.
func (s *ArrangementServiceImpl) CanView(ctx context.Context, viewerID string, a arrangement.Arrangement) error {
	return s.canView(ctx, viewerID, a)
}

func (s *ArrangementServiceImpl) canView(ctx context.Context, viewerID string, a arrangement.Arrangement) error {
	if viewerID == a.RequesterID {
		return nil
	}

	viewer, err := s.EmployeeRepository.GetByID(ctx, viewerID)
	if err != nil {
		return fmt.Errorf("failed to get viewer: %w", err)
	}
	if viewer.Role.CanViewAll() {
		return nil
	}

	requester, err := s.EmployeeRepository.GetByID(ctx, a.RequesterID)
	if err != nil {
		return fmt.Errorf("failed to get requester: %w", err)
	}
	if requester.HasManager() && *requester.ReportingManagerID == viewerID {
		return nil
	}

	approver, err := s.authority.ApproverFor(ctx, a.RequesterID)
	if err != nil && !errors.Is(err, arrangement.ErrManagerNotFound) {
		return err
	}
	if approver == viewerID {
		return nil
	}
	return arrangement.ErrNotAuthorized
}

func (s *ArrangementServiceImpl) ListByRequester(ctx context.Context, requesterID string, filter arrangement.ArrangementFilter) (arrangement.ListArrangementResponse, error) {
	if err := filter.Validate(); err != nil {
		return arrangement.ListArrangementResponse{}, err
	}

	items, total, err := s.ArrangementRepository.List(ctx, []string{requesterID}, filter)
	if err != nil {
		return arrangement.ListArrangementResponse{}, fmt.Errorf("failed to list arrangements: %w", err)
	}
	return arrangement.NewListArrangementResponse(items, total, filter), nil
}

func (s *ArrangementServiceImpl) ListBySubordinates(ctx context.Context, managerID string, filter arrangement.ArrangementFilter) (arrangement.ListArrangementResponse, error) {
	if err := filter.Validate(); err != nil {
		return arrangement.ListArrangementResponse{}, err
	}

	managers := []string{managerID}
	delegators, err := s.authority.Delegators(ctx, managerID)
	if err != nil {
		return arrangement.ListArrangementResponse{}, err
	}
	managers = append(managers, delegators...)

	var requesterIDs []string
	for _, m := range managers {
		reports, err := s.EmployeeRepository.ListByManager(ctx, m)
		if err != nil {
			return arrangement.ListArrangementResponse{}, fmt.Errorf("failed to list reports of %s: %w", m, err)
		}
		for _, e := range reports {
			if e.ID != managerID && !slices.Contains(requesterIDs, e.ID) {
				requesterIDs = append(requesterIDs, e.ID)
			}
		}
	}

	if len(requesterIDs) == 0 {
		return arrangement.NewListArrangementResponse(nil, 0, filter), nil
	}

	items, total, err := s.ArrangementRepository.List(ctx, requesterIDs, filter)
	if err != nil {
		return arrangement.ListArrangementResponse{}, fmt.Errorf("failed to list arrangements: %w", err)
	}
	return arrangement.NewListArrangementResponse(items, total, filter), nil
}

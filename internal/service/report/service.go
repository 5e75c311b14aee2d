package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/recurrence"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	report.ReportRepository
	employee.EmployeeRepository
}

func NewReportService(reportRepository report.ReportRepository, employeeRepository employee.EmployeeRepository) report.ReportService {
	return &ReportServiceImpl{
		ReportRepository:   reportRepository,
		EmployeeRepository: employeeRepository,
	}
}

// GetStatistics aggregates arrangements by status, slot and kind. The three
// queries run in parallel.
func (s *ReportServiceImpl) GetStatistics(ctx context.Context, req report.StatisticsRequest) (report.StatisticsReport, error) {
	if err := req.Validate(); err != nil {
		return report.StatisticsReport{}, err
	}

	q := report.StatisticsQuery{}
	if req.StartDate != nil {
		from, _ := recurrence.ParseDate(*req.StartDate)
		q.From = &from
	}
	if req.EndDate != nil {
		to, _ := recurrence.ParseDate(*req.EndDate)
		q.To = &to
	}
	if req.ManagerID != nil {
		reports, err := s.EmployeeRepository.ListByManager(ctx, *req.ManagerID)
		if err != nil {
			return report.StatisticsReport{}, fmt.Errorf("failed to list reports: %w", err)
		}
		q.RequesterIDs = make([]string, 0, len(reports))
		for _, e := range reports {
			q.RequesterIDs = append(q.RequesterIDs, e.ID)
		}
	}

	var (
		byStatus map[arrangement.Status]int64
		bySlot   map[arrangement.Slot]int64
		byKind   report.KindCounts
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.ReportRepository.CountByStatus(gCtx, q)
		if err != nil {
			return fmt.Errorf("failed to count by status: %w", err)
		}
		byStatus = counts
		return nil
	})

	g.Go(func() error {
		counts, err := s.ReportRepository.CountBySlot(gCtx, q)
		if err != nil {
			return fmt.Errorf("failed to count by slot: %w", err)
		}
		bySlot = counts
		return nil
	})

	g.Go(func() error {
		counts, err := s.ReportRepository.CountByKind(gCtx, q)
		if err != nil {
			return fmt.Errorf("failed to count by kind: %w", err)
		}
		byKind = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		return report.StatisticsReport{}, err
	}

	// Every status and slot appears, zero or not.
	statusCounts := make(map[arrangement.Status]int64, len(arrangement.AllStatuses()))
	var total int64
	for _, st := range arrangement.AllStatuses() {
		statusCounts[st] = byStatus[st]
		total += byStatus[st]
	}
	slotCounts := map[arrangement.Slot]int64{
		arrangement.SlotAM:      bySlot[arrangement.SlotAM],
		arrangement.SlotPM:      bySlot[arrangement.SlotPM],
		arrangement.SlotFullDay: bySlot[arrangement.SlotFullDay],
	}

	return report.StatisticsReport{
		PeriodStart: req.StartDate,
		PeriodEnd:   req.EndDate,
		ManagerID:   req.ManagerID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Total:       total,
		ByStatus:    statusCounts,
		BySlot:      slotCounts,
		ByKind:      byKind,
	}, nil
}

package memory

import (
	"context"
	"slices"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
)

type reportRepositoryImpl struct {
	store *Store
}

func NewReportRepository(store *Store) report.ReportRepository {
	return &reportRepositoryImpl{store: store}
}

func (r *reportRepositoryImpl) each(q report.StatisticsQuery, fn func(arrangement.Arrangement)) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.arrangements {
		if q.RequesterIDs != nil && !slices.Contains(q.RequesterIDs, a.RequesterID) {
			continue
		}
		if q.From != nil && a.LastDate().Before(*q.From) {
			continue
		}
		if q.To != nil && a.WorkDate.After(*q.To) {
			continue
		}
		fn(a)
	}
}

func (r *reportRepositoryImpl) CountByStatus(_ context.Context, q report.StatisticsQuery) (map[arrangement.Status]int64, error) {
	counts := make(map[arrangement.Status]int64)
	r.each(q, func(a arrangement.Arrangement) { counts[a.Status]++ })
	return counts, nil
}

func (r *reportRepositoryImpl) CountBySlot(_ context.Context, q report.StatisticsQuery) (map[arrangement.Slot]int64, error) {
	counts := make(map[arrangement.Slot]int64)
	r.each(q, func(a arrangement.Arrangement) { counts[a.Slot]++ })
	return counts, nil
}

func (r *reportRepositoryImpl) CountByKind(_ context.Context, q report.StatisticsQuery) (report.KindCounts, error) {
	var counts report.KindCounts
	r.each(q, func(a arrangement.Arrangement) {
		if a.InBatch() {
			counts.Recurring++
		} else {
			counts.AdHoc++
		}
	})
	return counts, nil
}

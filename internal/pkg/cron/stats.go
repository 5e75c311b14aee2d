package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/metrics"
)

// StatsJobs keeps the per-status arrangement gauge current.
type StatsJobs struct {
	reportRepo report.ReportRepository
	recorder   metrics.Recorder
}

func NewStatsJobs(reportRepo report.ReportRepository, recorder metrics.Recorder) *StatsJobs {
	return &StatsJobs{reportRepo: reportRepo, recorder: recorder}
}

func (j *StatsJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("refresh_arrangement_status_gauge", interval, j.RefreshStatusGauge)
}

// RefreshStatusGauge counts every arrangement by status and publishes the
// totals.
func (j *StatsJobs) RefreshStatusGauge(ctx context.Context) error {
	counts, err := j.reportRepo.CountByStatus(ctx, report.StatisticsQuery{})
	if err != nil {
		return fmt.Errorf("count arrangements by status: %w", err)
	}

	values := make(map[string]int64, len(counts))
	for status, n := range counts {
		values[string(status)] = n
	}
	j.recorder.SetStatusCounts(values)
	return nil
}

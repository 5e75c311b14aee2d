package report

import (
	"context"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
)

// ReportRepository aggregates arrangements for statistics.
type ReportRepository interface {
	CountByStatus(ctx context.Context, q StatisticsQuery) (map[arrangement.Status]int64, error)
	CountBySlot(ctx context.Context, q StatisticsQuery) (map[arrangement.Slot]int64, error)
	CountByKind(ctx context.Context, q StatisticsQuery) (KindCounts, error)
}

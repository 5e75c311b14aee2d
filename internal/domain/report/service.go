package report

import "context"

// ReportService defines the interface for HR statistics
type ReportService interface {
	GetStatistics(ctx context.Context, req StatisticsRequest) (StatisticsReport, error)
}

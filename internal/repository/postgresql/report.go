package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// statisticsWhere renders q as a WHERE clause over arrangements.
func statisticsWhere(q report.StatisticsQuery) (string, []interface{}) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	paramCount := 0

	if q.RequesterIDs != nil {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("requester_id = ANY($%d)", paramCount))
		args = append(args, q.RequesterIDs)
	}
	if q.From != nil {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("COALESCE(end_date, work_date) >= $%d", paramCount))
		args = append(args, *q.From)
	}
	if q.To != nil {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("work_date <= $%d", paramCount))
		args = append(args, *q.To)
	}

	return strings.Join(whereClauses, " AND "), args
}

func (r *reportRepositoryImpl) countBy(ctx context.Context, column string, q report.StatisticsQuery) (map[string]int64, error) {
	db := GetQuerier(ctx, r.db)

	where, args := statisticsWhere(q)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM arrangements
		WHERE %s
		GROUP BY %s
	`, column, where, column)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count arrangements by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count row: %w", column, err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return counts, nil
}

// CountByStatus implements report.ReportRepository.
func (r *reportRepositoryImpl) CountByStatus(ctx context.Context, q report.StatisticsQuery) (map[arrangement.Status]int64, error) {
	raw, err := r.countBy(ctx, "status", q)
	if err != nil {
		return nil, err
	}
	counts := make(map[arrangement.Status]int64, len(raw))
	for k, v := range raw {
		counts[arrangement.Status(k)] = v
	}
	return counts, nil
}

// CountBySlot implements report.ReportRepository.
func (r *reportRepositoryImpl) CountBySlot(ctx context.Context, q report.StatisticsQuery) (map[arrangement.Slot]int64, error) {
	raw, err := r.countBy(ctx, "slot", q)
	if err != nil {
		return nil, err
	}
	counts := make(map[arrangement.Slot]int64, len(raw))
	for k, v := range raw {
		counts[arrangement.Slot(k)] = v
	}
	return counts, nil
}

// CountByKind implements report.ReportRepository.
func (r *reportRepositoryImpl) CountByKind(ctx context.Context, q report.StatisticsQuery) (report.KindCounts, error) {
	db := GetQuerier(ctx, r.db)

	where, args := statisticsWhere(q)
	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN batch_id IS NULL THEN 1 ELSE 0 END), 0) as ad_hoc,
			COALESCE(SUM(CASE WHEN batch_id IS NOT NULL THEN 1 ELSE 0 END), 0) as recurring
		FROM arrangements
		WHERE %s
	`, where)

	var counts report.KindCounts
	if err := db.QueryRow(ctx, query, args...).Scan(&counts.AdHoc, &counts.Recurring); err != nil {
		return report.KindCounts{}, fmt.Errorf("failed to count arrangements by kind: %w", err)
	}
	return counts, nil
}

package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

// Append implements audit.AuditRepository.
func (r *auditRepositoryImpl) Append(ctx context.Context, entries ...audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO arrangement_audit_logs (
			id, arrangement_id, batch_id, actor_id, action, previous_status, new_status, status_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, e := range entries {
		var previous *string
		if e.PreviousStatus != nil {
			p := string(*e.PreviousStatus)
			previous = &p
		}
		_, err := q.Exec(ctx, query,
			e.ID, e.ArrangementID, e.BatchID, e.ActorID, string(e.Action),
			previous, string(e.NewStatus), e.StatusReason, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit entry for arrangement %s: %w", e.ArrangementID, err)
		}
	}
	return nil
}

// List implements audit.AuditRepository.
func (r *auditRepositoryImpl) List(ctx context.Context, filter audit.AuditFilter) ([]audit.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	paramCount := 0

	add := func(clause string, value interface{}) {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf(clause, paramCount))
		args = append(args, value)
	}

	if filter.ArrangementID != nil {
		add("arrangement_id = $%d", *filter.ArrangementID)
	}
	if filter.BatchID != nil {
		add("batch_id = $%d", *filter.BatchID)
	}
	if filter.ActorID != nil {
		add("actor_id = $%d", *filter.ActorID)
	}
	if filter.Action != nil {
		add("action = $%d", string(*filter.Action))
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM arrangement_audit_logs WHERE %s`, whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, arrangement_id, batch_id, actor_id, action, previous_status, new_status, status_reason, created_at
		FROM arrangement_audit_logs
		WHERE %s
		ORDER BY created_at, id
		LIMIT $%d OFFSET $%d
	`, whereClause, paramCount+1, paramCount+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(
			&e.ID, &e.ArrangementID, &e.BatchID, &e.ActorID, &e.Action,
			&e.PreviousStatus, &e.NewStatus, &e.StatusReason, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, total, nil
}

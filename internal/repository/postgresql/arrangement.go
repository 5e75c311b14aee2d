package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type arrangementRepositoryImpl struct {
	db *database.DB
}

func NewArrangementRepository(db *database.DB) arrangement.ArrangementRepository {
	return &arrangementRepositoryImpl{db: db}
}

const arrangementColumns = `id, requester_id, approving_officer_id, work_date, end_date, slot, reason,
	status, status_reason, batch_id, supporting_documents, created_at, updated_at`

func scanArrangement(row pgx.Row) (arrangement.Arrangement, error) {
	var a arrangement.Arrangement
	err := row.Scan(
		&a.ID, &a.RequesterID, &a.ApprovingOfficerID, &a.WorkDate, &a.EndDate, &a.Slot, &a.Reason,
		&a.Status, &a.StatusReason, &a.BatchID, &a.SupportingDocuments, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func collectArrangements(rows pgx.Rows) ([]arrangement.Arrangement, error) {
	defer rows.Close()

	var items []arrangement.Arrangement
	for rows.Next() {
		a, err := scanArrangement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan arrangement row: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return items, nil
}

// CreateMany implements arrangement.ArrangementRepository. All rows go in one
// pgx batch; callers wrap it in a transaction for atomicity.
func (r *arrangementRepositoryImpl) CreateMany(ctx context.Context, items []arrangement.Arrangement) error {
	if len(items) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO arrangements (
			id, requester_id, approving_officer_id, work_date, end_date, slot, reason,
			status, status_reason, batch_id, supporting_documents, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	batch := &pgx.Batch{}
	for _, a := range items {
		docs := a.SupportingDocuments
		if docs == nil {
			docs = []string{}
		}
		batch.Queue(query,
			a.ID, a.RequesterID, a.ApprovingOfficerID, a.WorkDate, a.EndDate, string(a.Slot), a.Reason,
			string(a.Status), a.StatusReason, a.BatchID, docs, a.CreatedAt, a.UpdatedAt,
		)
	}

	results := q.SendBatch(ctx, batch)
	for _, a := range items {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert arrangement %s: %w", a.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to insert arrangements: %w", err)
	}
	return nil
}

// GetByID implements arrangement.ArrangementRepository.
func (r *arrangementRepositoryImpl) GetByID(ctx context.Context, id string) (arrangement.Arrangement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + arrangementColumns + ` FROM arrangements WHERE id = $1`

	a, err := scanArrangement(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return arrangement.Arrangement{}, arrangement.ErrArrangementNotFound
		}
		return arrangement.Arrangement{}, fmt.Errorf("failed to get arrangement with id %s: %w", id, err)
	}
	return a, nil
}

// GetByBatchID implements arrangement.ArrangementRepository.
func (r *arrangementRepositoryImpl) GetByBatchID(ctx context.Context, batchID string) ([]arrangement.Arrangement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + arrangementColumns + `
		FROM arrangements
		WHERE batch_id = $1
		ORDER BY work_date, id
	`

	rows, err := q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch %s: %w", batchID, err)
	}
	return collectArrangements(rows)
}

// LockByIDs implements arrangement.ArrangementRepository. Must run inside a
// transaction; the ORDER BY fixes the lock acquisition order.
func (r *arrangementRepositoryImpl) LockByIDs(ctx context.Context, ids []string) ([]arrangement.Arrangement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + arrangementColumns + `
		FROM arrangements
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, arrangement.ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to lock arrangements: %w", err)
	}
	items, err := collectArrangements(rows)
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, arrangement.ErrConcurrentModification
		}
		return nil, err
	}

	seen := make(map[string]bool, len(items))
	for _, a := range items {
		seen[a.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return nil, fmt.Errorf("%w: %s", arrangement.ErrArrangementNotFound, id)
		}
	}
	return items, nil
}

// UpdateStatus implements arrangement.ArrangementRepository.
func (r *arrangementRepositoryImpl) UpdateStatus(ctx context.Context, update arrangement.StatusUpdate) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE arrangements
		SET status = $1,
			approving_officer_id = $2,
			status_reason = COALESCE($3, status_reason),
			updated_at = $4
		WHERE id = $5 AND status = $6
	`

	tag, err := q.Exec(ctx, query,
		string(update.To), update.ApprovingOfficerID, update.StatusReason, update.UpdatedAt,
		update.ID, string(update.From),
	)
	if err != nil {
		return fmt.Errorf("failed to update arrangement %s: %w", update.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: arrangement %s is no longer %s", arrangement.ErrIllegalTransition, update.ID, update.From)
	}
	return nil
}

// List implements arrangement.ArrangementRepository.
func (r *arrangementRepositoryImpl) List(ctx context.Context, requesterIDs []string, filter arrangement.ArrangementFilter) ([]arrangement.Arrangement, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause dynamically
	whereClauses := []string{"requester_id = ANY($1)"}
	args := []interface{}{requesterIDs}
	paramCount := 1

	// Date range overlaps [start_date, end_date]
	from, to := filter.DateRange()
	if from != nil {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("COALESCE(end_date, work_date) >= $%d", paramCount))
		args = append(args, *from)
	}
	if to != nil {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("work_date <= $%d", paramCount))
		args = append(args, *to)
	}

	// Status filter
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("status = ANY($%d)", paramCount))
		args = append(args, statuses)
	}

	// Free-text search over the reason
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("reason ILIKE $%d", paramCount))
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
	}

	whereClause := strings.Join(whereClauses, " AND ")

	// Count query
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM arrangements WHERE %s`, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count arrangements: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM arrangements
		WHERE %s
		ORDER BY work_date DESC, id
		LIMIT $%d OFFSET $%d
	`, arrangementColumns, whereClause, paramCount+1, paramCount+2)

	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query arrangements: %w", err)
	}
	items, err := collectArrangements(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

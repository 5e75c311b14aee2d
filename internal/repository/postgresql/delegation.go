package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type delegationRepositoryImpl struct {
	db *database.DB
}

func NewDelegationRepository(db *database.DB) delegation.DelegationRepository {
	return &delegationRepositoryImpl{db: db}
}

const delegationColumns = `id, manager_id, delegate_manager_id, status, reason, response_reason,
	date_of_delegation, responded_at, undelegated_at, created_by, created_at, updated_at`

func scanDelegation(row pgx.Row) (delegation.Delegation, error) {
	var d delegation.Delegation
	err := row.Scan(
		&d.ID, &d.ManagerID, &d.DelegateManagerID, &d.Status, &d.Reason, &d.ResponseReason,
		&d.DateOfDelegation, &d.RespondedAt, &d.UndelegatedAt, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *delegationRepositoryImpl) queryOne(ctx context.Context, query string, args ...interface{}) (delegation.Delegation, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDelegation(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return delegation.Delegation{}, delegation.ErrDelegationNotFound
		}
		if isLockNotAvailable(err) {
			return delegation.Delegation{}, delegation.ErrConcurrentModification
		}
		return delegation.Delegation{}, fmt.Errorf("failed to get delegation: %w", err)
	}
	return d, nil
}

func (r *delegationRepositoryImpl) queryMany(ctx context.Context, query string, args ...interface{}) ([]delegation.Delegation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query delegations: %w", err)
	}
	defer rows.Close()

	var items []delegation.Delegation
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delegation row: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return items, nil
}

// Create implements delegation.DelegationRepository.
func (r *delegationRepositoryImpl) Create(ctx context.Context, d delegation.Delegation) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO delegations (
			id, manager_id, delegate_manager_id, status, reason, date_of_delegation,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		d.ID, d.ManagerID, d.DelegateManagerID, string(d.Status), d.Reason, d.DateOfDelegation,
		d.CreatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation && constraint == activeDelegationIdx {
			return fmt.Errorf("%w: manager %s already has an active delegation", delegation.ErrDelegationConflict, d.ManagerID)
		}
		return fmt.Errorf("failed to create delegation: %w", err)
	}
	return nil
}

// GetByID implements delegation.DelegationRepository.
func (r *delegationRepositoryImpl) GetByID(ctx context.Context, id string) (delegation.Delegation, error) {
	return r.queryOne(ctx, `SELECT `+delegationColumns+` FROM delegations WHERE id = $1`, id)
}

// GetActiveByManager implements delegation.DelegationRepository.
func (r *delegationRepositoryImpl) GetActiveByManager(ctx context.Context, managerID string) (delegation.Delegation, error) {
	query := `SELECT ` + delegationColumns + `
		FROM delegations
		WHERE manager_id = $1 AND status IN ('pending', 'accepted')
	`
	return r.queryOne(ctx, query, managerID)
}

// LockByID implements delegation.DelegationRepository.
func (r *delegationRepositoryImpl) LockByID(ctx context.Context, id string) (delegation.Delegation, error) {
	return r.queryOne(ctx, `SELECT `+delegationColumns+` FROM delegations WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus implements delegation.DelegationRepository.
func (r *delegationRepositoryImpl) UpdateStatus(ctx context.Context, update delegation.StatusUpdate) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE delegations
		SET status = $1,
			response_reason = COALESCE($2, response_reason),
			responded_at = COALESCE($3, responded_at),
			undelegated_at = COALESCE($4, undelegated_at),
			updated_at = $5
		WHERE id = $6 AND status = $7
	`

	tag, err := q.Exec(ctx, query,
		string(update.To), update.ResponseReason, update.RespondedAt, update.UndelegatedAt, update.UpdatedAt,
		update.ID, string(update.From),
	)
	if err != nil {
		return fmt.Errorf("failed to update delegation %s: %w", update.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: delegation %s is no longer %s", delegation.ErrIllegalTransition, update.ID, update.From)
	}
	return nil
}

// ListByManager implements delegation.DelegationRepository.
func (r *delegationRepositoryImpl) ListByManager(ctx context.Context, managerID string) ([]delegation.Delegation, error) {
	query := `SELECT ` + delegationColumns + `
		FROM delegations
		WHERE manager_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryMany(ctx, query, managerID)
}

// ListByDelegate implements delegation.DelegationRepository.
func (r *delegationRepositoryImpl) ListByDelegate(ctx context.Context, delegateID string, statuses ...delegation.Status) ([]delegation.Delegation, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + delegationColumns + `
			FROM delegations
			WHERE delegate_manager_id = $1
			ORDER BY created_at DESC, id DESC
		`
		return r.queryMany(ctx, query, delegateID)
	}

	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	query := `SELECT ` + delegationColumns + `
		FROM delegations
		WHERE delegate_manager_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC, id DESC
	`
	return r.queryMany(ctx, query, delegateID, values)
}

package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func newArrangement(requesterID, workDate string, batchID *string) arrangement.Arrangement {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return arrangement.Arrangement{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		WorkDate:    date(workDate),
		Slot:        arrangement.SlotFullDay,
		Reason:      "Focus day",
		Status:      arrangement.StatusPendingApproval,
		BatchID:     batchID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func seed(t *testing.T, setup *TestDatabaseSetup) fixtures.SeededOrg {
	t.Helper()
	org, err := fixtures.SeedOrg(context.Background(), postgresql.NewEmployeeRepository(setup.DB), fixtures.DefaultOrg)
	require.NoError(t, err)
	return org
}

func TestArrangementRepository_Lifecycle(t *testing.T) {
	setup := NewTestDatabase(t)
	org := seed(t, setup)
	ctx := context.Background()

	repo := postgresql.NewArrangementRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB, time.Second)

	batchID := uuid.NewString()
	staff := org.ID("staff_a1")
	items := []arrangement.Arrangement{
		newArrangement(staff, "2024-10-01", &batchID),
		newArrangement(staff, "2024-10-08", &batchID),
	}
	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		return repo.CreateMany(ctx, items)
	}))

	got, err := repo.GetByID(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, staff, got.RequesterID)
	assert.Equal(t, "2024-10-01", got.WorkDate.Format(time.DateOnly))
	assert.Empty(t, got.SupportingDocuments)

	batch, err := repo.GetByBatchID(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, items[0].ID, batch[0].ID)

	manager := org.ID("manager_a")
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := repo.LockByIDs(ctx, []string{items[0].ID})
		if err != nil {
			return err
		}
		return repo.UpdateStatus(ctx, arrangement.StatusUpdate{
			ID:                 locked[0].ID,
			From:               arrangement.StatusPendingApproval,
			To:                 arrangement.StatusApproved,
			ApprovingOfficerID: &manager,
			UpdatedAt:          time.Now(),
		})
	})
	require.NoError(t, err)

	// A second update from the stale status must not apply.
	err = repo.UpdateStatus(ctx, arrangement.StatusUpdate{
		ID:        items[0].ID,
		From:      arrangement.StatusPendingApproval,
		To:        arrangement.StatusRejected,
		UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, arrangement.ErrIllegalTransition)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, arrangement.ErrArrangementNotFound)

	filter := arrangement.ArrangementFilter{Statuses: []arrangement.Status{arrangement.StatusApproved}}
	require.NoError(t, filter.Validate())
	list, total, err := repo.List(ctx, []string{staff}, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, items[0].ID, list[0].ID)
	require.NotNil(t, list[0].ApprovingOfficerID)
	assert.Equal(t, manager, *list[0].ApprovingOfficerID)
}

func TestArrangementRepository_CreateManyIsAtomic(t *testing.T) {
	setup := NewTestDatabase(t)
	org := seed(t, setup)
	ctx := context.Background()

	repo := postgresql.NewArrangementRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB, time.Second)

	batchID := uuid.NewString()
	staff := org.ID("staff_a1")
	first := newArrangement(staff, "2024-10-01", &batchID)
	second := newArrangement(staff, "2024-10-08", &batchID)
	duplicate := newArrangement(staff, "2024-10-15", &batchID)
	duplicate.ID = first.ID

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		return repo.CreateMany(ctx, []arrangement.Arrangement{first, second, duplicate})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), duplicate.ID)

	batch, err := repo.GetByBatchID(ctx, batchID)
	require.NoError(t, err)
	assert.Empty(t, batch)

	require.NoError(t, repo.CreateMany(ctx, nil))
}

func TestDelegationRepository_ActiveUniqueness(t *testing.T) {
	setup := NewTestDatabase(t)
	org := seed(t, setup)
	ctx := context.Background()

	repo := postgresql.NewDelegationRepository(setup.DB)
	now := time.Now().UTC()

	first := delegation.Delegation{
		ID:                uuid.NewString(),
		ManagerID:         org.ID("manager_a"),
		DelegateManagerID: org.ID("manager_b"),
		Status:            delegation.StatusPending,
		DateOfDelegation:  now,
		CreatedBy:         org.ID("manager_a"),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := first
	second.ID = uuid.NewString()
	second.DelegateManagerID = org.ID("director")
	assert.ErrorIs(t, repo.Create(ctx, second), delegation.ErrDelegationConflict)

	active, err := repo.GetActiveByManager(ctx, first.ManagerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	respondedAt := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, delegation.StatusUpdate{
		ID:          first.ID,
		From:        delegation.StatusPending,
		To:          delegation.StatusAccepted,
		RespondedAt: &respondedAt,
		UpdatedAt:   respondedAt,
	}))

	incoming, err := repo.ListByDelegate(ctx, org.ID("manager_b"), delegation.StatusAccepted)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.NotNil(t, incoming[0].RespondedAt)

	_, err = repo.GetActiveByManager(ctx, org.ID("manager_b"))
	assert.ErrorIs(t, err, delegation.ErrDelegationNotFound)
}

func TestAuditAndReportRepositories(t *testing.T) {
	setup := NewTestDatabase(t)
	org := seed(t, setup)
	ctx := context.Background()

	arrangements := postgresql.NewArrangementRepository(setup.DB)
	audits := postgresql.NewAuditRepository(setup.DB)
	reports := postgresql.NewReportRepository(setup.DB)

	batchID := uuid.NewString()
	items := []arrangement.Arrangement{
		newArrangement(org.ID("staff_a1"), "2024-10-01", nil),
		newArrangement(org.ID("staff_a2"), "2024-10-02", &batchID),
		newArrangement(org.ID("staff_b1"), "2024-11-05", nil),
	}
	require.NoError(t, arrangements.CreateMany(ctx, items))

	entries := make([]audit.Entry, 0, len(items))
	for _, a := range items {
		entries = append(entries, audit.Entry{
			ID:            uuid.NewString(),
			ArrangementID: a.ID,
			BatchID:       a.BatchID,
			ActorID:       a.RequesterID,
			Action:        arrangement.ActionSubmit,
			NewStatus:     arrangement.StatusPendingApproval,
			CreatedAt:     time.Now().UTC(),
		})
	}
	require.NoError(t, audits.Append(ctx, entries...))

	filter := audit.AuditFilter{BatchID: &batchID}
	require.NoError(t, filter.Validate())
	logged, total, err := audits.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logged, 1)
	assert.Nil(t, logged[0].PreviousStatus)

	from, to := date("2024-10-01"), date("2024-10-31")
	q := report.StatisticsQuery{From: &from, To: &to}

	byStatus, err := reports.CountByStatus(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[arrangement.StatusPendingApproval])

	byKind, err := reports.CountByKind(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, report.KindCounts{AdHoc: 1, Recurring: 1}, byKind)

	q.RequesterIDs = []string{org.ID("staff_a1")}
	bySlot, err := reports.CountBySlot(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bySlot[arrangement.SlotFullDay])
}

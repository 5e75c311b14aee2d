package arrangement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/recurrence"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/wfh-backend-go/internal/service/authority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc          *ArrangementServiceImpl
	store        *memory.Store
	org          fixtures.SeededOrg
	locks        *lock.Manager
	arrangements arrangement.ArrangementRepository
	audits       audit.AuditRepository
	delegations  delegation.DelegationRepository
}

func newTestEnv(t *testing.T, lockWait time.Duration) testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	employees := memory.NewEmployeeRepository(store)
	org, err := fixtures.SeedOrg(ctx, employees, fixtures.DefaultOrg)
	require.NoError(t, err)

	delegations := memory.NewDelegationRepository(store)
	arrangements := memory.NewArrangementRepository(store)
	audits := memory.NewAuditRepository(store)
	locks := lock.NewManager(lockWait)

	svc := NewArrangementService(store, locks, authority.NewResolver(employees, delegations), nil, arrangements, audits, employees)
	return testEnv{
		svc:          svc,
		store:        store,
		org:          org,
		locks:        locks,
		arrangements: arrangements,
		audits:       audits,
		delegations:  delegations,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func (e testEnv) submitAdHoc(t *testing.T, requesterKey, date string) arrangement.ArrangementResponse {
	t.Helper()
	resp, err := e.svc.Submit(context.Background(), arrangement.SubmitArrangementRequest{
		RequesterID: e.org.ID(requesterKey),
		WorkDate:    strPtr(date),
		Slot:        arrangement.SlotFullDay,
		Reason:      "Home internet install",
	})
	require.NoError(t, err)
	require.Len(t, resp.Arrangements, 1)
	return resp.Arrangements[0]
}

func (e testEnv) submitWeekly(t *testing.T, requesterKey string, occurrences int) arrangement.SubmitArrangementResponse {
	t.Helper()
	resp, err := e.svc.Submit(context.Background(), arrangement.SubmitArrangementRequest{
		RequesterID: e.org.ID(requesterKey),
		Slot:        arrangement.SlotAM,
		Reason:      "School run",
		Recurrence: &arrangement.RecurrenceRequest{
			StartDate:   "2024-10-01",
			Interval:    1,
			Unit:        "week",
			Occurrences: intPtr(occurrences),
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Arrangements, occurrences)
	return resp
}

func (e testEnv) transition(actorKey, id string, action arrangement.Action, reason *string) (arrangement.TransitionResponse, error) {
	return e.svc.Transition(context.Background(), arrangement.TransitionRequest{
		ArrangementID: id,
		ActorID:       e.org.ID(actorKey),
		Action:        action,
		Reason:        reason,
	})
}

func (e testEnv) status(t *testing.T, id string) arrangement.Status {
	t.Helper()
	a, err := e.arrangements.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a.Status
}

func (e testEnv) auditCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := e.audits.List(context.Background(), audit.AuditFilter{Page: 1, Limit: 100})
	require.NoError(t, err)
	return total
}

func (e testEnv) acceptDelegation(t *testing.T, managerKey, delegateKey string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	err := e.store.WithinTx(ctx, func(ctx context.Context) error {
		return e.delegations.Create(ctx, delegation.Delegation{
			ID:                "dlg-" + managerKey,
			ManagerID:         e.org.ID(managerKey),
			DelegateManagerID: e.org.ID(delegateKey),
			Status:            delegation.StatusAccepted,
			DateOfDelegation:  now,
			CreatedBy:         e.org.ID(managerKey),
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	})
	require.NoError(t, err)
}

func TestSubmit_AdHoc(t *testing.T) {
	env := newTestEnv(t, time.Second)

	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	assert.Equal(t, arrangement.StatusPendingApproval, a.Status)
	assert.Equal(t, "2024-10-01", a.WorkDate)
	assert.Nil(t, a.BatchID)
	require.NotNil(t, a.ApprovingOfficerID)
	assert.Equal(t, env.org.ID("manager_a"), *a.ApprovingOfficerID)

	entries, _, err := env.audits.List(context.Background(), audit.AuditFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, arrangement.ActionSubmit, entries[0].Action)
	assert.Nil(t, entries[0].PreviousStatus)
	assert.Equal(t, arrangement.StatusPendingApproval, entries[0].NewStatus)
}

func TestSubmit_WeekendRules(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()

	// 2024-10-05 is a Saturday.
	_, err := env.svc.Submit(ctx, arrangement.SubmitArrangementRequest{
		RequesterID: env.org.ID("staff_a1"),
		WorkDate:    strPtr("2024-10-05"),
		Reason:      "Weekend",
	})
	assert.ErrorIs(t, err, arrangement.ErrWeekendDate)

	_, err = env.svc.Submit(ctx, arrangement.SubmitArrangementRequest{
		RequesterID: env.org.ID("staff_a1"),
		WorkDate:    strPtr("2024-10-05"),
		EndDate:     strPtr("2024-10-06"),
		Reason:      "Weekend trip",
	})
	assert.ErrorIs(t, err, arrangement.ErrWeekendDate)

	// Friday to Sunday is partly a weekday.
	resp, err := env.svc.Submit(ctx, arrangement.SubmitArrangementRequest{
		RequesterID: env.org.ID("staff_a1"),
		WorkDate:    strPtr("2024-10-04"),
		EndDate:     strPtr("2024-10-06"),
		Reason:      "Conference",
	})
	require.NoError(t, err)
	require.Len(t, resp.Arrangements, 1)
	require.NotNil(t, resp.Arrangements[0].EndDate)
	assert.Equal(t, "2024-10-06", *resp.Arrangements[0].EndDate)
	assert.Equal(t, arrangement.SlotFullDay, resp.Arrangements[0].Slot)

	assert.Equal(t, int64(1), env.auditCount(t))
}

func TestSubmit_Recurring(t *testing.T) {
	env := newTestEnv(t, time.Second)

	resp, err := env.svc.Submit(context.Background(), arrangement.SubmitArrangementRequest{
		RequesterID: env.org.ID("staff_a1"),
		Slot:        arrangement.SlotPM,
		Reason:      "Physiotherapy",
		Recurrence: &arrangement.RecurrenceRequest{
			StartDate: "2024-10-01",
			Interval:  1,
			Unit:      "week",
			EndDate:   strPtr("2024-10-22"),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.BatchID)
	require.Len(t, resp.Arrangements, 4)
	assert.Empty(t, resp.ExcludedDates)

	var dates []string
	for _, a := range resp.Arrangements {
		dates = append(dates, a.WorkDate)
		require.NotNil(t, a.BatchID)
		assert.Equal(t, *resp.BatchID, *a.BatchID)
	}
	assert.Equal(t, []string{"2024-10-01", "2024-10-08", "2024-10-15", "2024-10-22"}, dates)
	assert.Equal(t, int64(4), env.auditCount(t))

	batch, err := env.svc.GetBatch(context.Background(), env.org.ID("manager_a"), *resp.BatchID)
	require.NoError(t, err)
	assert.Len(t, batch, 4)
}

func TestSubmit_Failures(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()

	_, err := env.svc.Submit(ctx, arrangement.SubmitArrangementRequest{
		RequesterID: env.org.ID("director"),
		WorkDate:    strPtr("2024-10-01"),
		Reason:      "Offsite",
	})
	assert.ErrorIs(t, err, arrangement.ErrManagerNotFound)

	_, err = env.svc.Submit(ctx, arrangement.SubmitArrangementRequest{
		RequesterID: env.org.ID("staff_a1"),
		Reason:      "Too long",
		Recurrence: &arrangement.RecurrenceRequest{
			StartDate: "2024-10-01",
			Interval:  1,
			Unit:      "month",
			EndDate:   strPtr("2025-10-02"),
		},
	})
	assert.ErrorIs(t, err, recurrence.ErrInvalidRecurrence)

	_, err = env.svc.Submit(ctx, arrangement.SubmitArrangementRequest{
		RequesterID: env.org.ID("staff_a1"),
		WorkDate:    strPtr("2024-10-01"),
		Reason:      "   ",
	})
	assert.Error(t, err)

	assert.Equal(t, int64(0), env.auditCount(t))
}

func TestTransition_ApproveRequiresCurrentAuthority(t *testing.T) {
	env := newTestEnv(t, time.Second)
	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	_, err := env.transition("manager_b", a.ID, arrangement.ActionApprove, nil)
	assert.ErrorIs(t, err, arrangement.ErrNotAuthorized)
	assert.Equal(t, arrangement.StatusPendingApproval, env.status(t, a.ID))

	_, err = env.transition("staff_a1", a.ID, arrangement.ActionApprove, nil)
	assert.ErrorIs(t, err, arrangement.ErrNotAuthorized)

	resp, err := env.transition("manager_a", a.ID, arrangement.ActionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusApproved, resp.Status)
	assert.Equal(t, arrangement.StatusApproved, env.status(t, a.ID))

	stored, err := env.arrangements.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ApprovingOfficerID)
	assert.Equal(t, env.org.ID("manager_a"), *stored.ApprovingOfficerID)

	// Only the accepted transition is audited.
	assert.Equal(t, int64(2), env.auditCount(t))
}

func TestTransition_DelegationShiftsAuthority(t *testing.T) {
	env := newTestEnv(t, time.Second)
	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	env.acceptDelegation(t, "manager_a", "manager_b")

	_, err := env.transition("manager_a", a.ID, arrangement.ActionApprove, nil)
	assert.ErrorIs(t, err, arrangement.ErrNotAuthorized)

	_, err = env.transition("manager_b", a.ID, arrangement.ActionApprove, nil)
	require.NoError(t, err)

	stored, err := env.arrangements.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, env.org.ID("manager_b"), *stored.ApprovingOfficerID)
}

func TestTransition_RejectNeedsReasonAndIsTerminal(t *testing.T) {
	env := newTestEnv(t, time.Second)
	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	_, err := env.transition("manager_a", a.ID, arrangement.ActionReject, nil)
	assert.ErrorIs(t, err, arrangement.ErrReasonRequired)
	_, err = env.transition("manager_a", a.ID, arrangement.ActionReject, strPtr("  "))
	assert.ErrorIs(t, err, arrangement.ErrReasonRequired)
	assert.Equal(t, arrangement.StatusPendingApproval, env.status(t, a.ID))

	_, err = env.transition("manager_a", a.ID, arrangement.ActionReject, strPtr("Team offsite that day"))
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusRejected, env.status(t, a.ID))

	for _, action := range arrangement.TransitionActions() {
		for _, actor := range []string{"staff_a1", "manager_a"} {
			_, err := env.transition(actor, a.ID, action, strPtr("again"))
			assert.ErrorIs(t, err, arrangement.ErrIllegalTransition, "%s by %s", action, actor)
		}
	}
	assert.Equal(t, arrangement.StatusRejected, env.status(t, a.ID))

	stored, err := env.arrangements.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.StatusReason)
	assert.Equal(t, "Team offsite that day", *stored.StatusReason)
}

func TestTransition_WithdrawalFlow(t *testing.T) {
	env := newTestEnv(t, time.Second)
	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	_, err := env.transition("manager_a", a.ID, arrangement.ActionApprove, nil)
	require.NoError(t, err)

	_, err = env.transition("manager_a", a.ID, arrangement.ActionWithdraw, strPtr("no"))
	assert.ErrorIs(t, err, arrangement.ErrNotAuthorized)

	_, err = env.transition("staff_a1", a.ID, arrangement.ActionWithdraw, nil)
	assert.ErrorIs(t, err, arrangement.ErrReasonRequired)

	_, err = env.transition("staff_a1", a.ID, arrangement.ActionWithdraw, strPtr("Back in office"))
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusPendingWithdrawal, env.status(t, a.ID))

	_, err = env.transition("manager_a", a.ID, arrangement.ActionRejectWithdrawal, nil)
	assert.ErrorIs(t, err, arrangement.ErrReasonRequired)

	_, err = env.transition("manager_a", a.ID, arrangement.ActionRejectWithdrawal, strPtr("Already planned around it"))
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusApproved, env.status(t, a.ID))

	_, err = env.transition("staff_a1", a.ID, arrangement.ActionWithdraw, strPtr("Really back in office"))
	require.NoError(t, err)
	_, err = env.transition("manager_a", a.ID, arrangement.ActionApproveWithdrawal, nil)
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusWithdrawn, env.status(t, a.ID))
}

func TestTransition_CancellationPaths(t *testing.T) {
	env := newTestEnv(t, time.Second)

	pending := env.submitAdHoc(t, "staff_a1", "2024-10-01")
	_, err := env.transition("manager_a", pending.ID, arrangement.ActionCancel, nil)
	assert.ErrorIs(t, err, arrangement.ErrNotAuthorized)
	_, err = env.transition("staff_a1", pending.ID, arrangement.ActionCancel, nil)
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusCancelled, env.status(t, pending.ID))

	approved := env.submitAdHoc(t, "staff_a1", "2024-10-02")
	_, err = env.transition("manager_a", approved.ID, arrangement.ActionApprove, nil)
	require.NoError(t, err)

	// Direct cancel is only for pending requests.
	_, err = env.transition("staff_a1", approved.ID, arrangement.ActionCancel, nil)
	assert.ErrorIs(t, err, arrangement.ErrIllegalTransition)

	_, err = env.transition("manager_a", approved.ID, arrangement.ActionRequestCancellation, nil)
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusPendingCancellation, env.status(t, approved.ID))

	_, err = env.transition("manager_b", approved.ID, arrangement.ActionApprove, nil)
	assert.ErrorIs(t, err, arrangement.ErrNotAuthorized)
	_, err = env.transition("manager_a", approved.ID, arrangement.ActionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, arrangement.StatusCancelled, env.status(t, approved.ID))
}

func TestTransition_BatchCancelSkipsTerminal(t *testing.T) {
	env := newTestEnv(t, time.Second)
	batch := env.submitWeekly(t, "staff_a1", 3)
	first, second, third := batch.Arrangements[0], batch.Arrangements[1], batch.Arrangements[2]

	_, err := env.transition("manager_a", second.ID, arrangement.ActionReject, strPtr("Client visit"))
	require.NoError(t, err)

	resp, err := env.transition("staff_a1", first.ID, arrangement.ActionCancel, nil)
	require.NoError(t, err)

	assert.Len(t, resp.Changes, 2)
	assert.Equal(t, []string{second.ID}, resp.Skipped)
	assert.Equal(t, arrangement.StatusCancelled, env.status(t, first.ID))
	assert.Equal(t, arrangement.StatusRejected, env.status(t, second.ID))
	assert.Equal(t, arrangement.StatusCancelled, env.status(t, third.ID))

	cancel := arrangement.ActionCancel
	entries, _, err := env.audits.List(context.Background(), audit.AuditFilter{
		BatchID: batch.BatchID,
		Action:  &cancel,
		Page:    1,
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTransition_BatchFansOutToEligibleOccurrences(t *testing.T) {
	env := newTestEnv(t, time.Second)
	batch := env.submitWeekly(t, "staff_a1", 3)
	first, second, third := batch.Arrangements[0], batch.Arrangements[1], batch.Arrangements[2]

	_, err := env.transition("manager_a", second.ID, arrangement.ActionApprove, nil)
	require.NoError(t, err)
	before := env.auditCount(t)

	// Withdrawal only applies to the approved occurrence.
	resp, err := env.transition("staff_a1", second.ID, arrangement.ActionWithdraw, strPtr("Office reopened"))
	require.NoError(t, err)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, second.ID, resp.Changes[0].ArrangementID)
	assert.ElementsMatch(t, []string{first.ID, third.ID}, resp.Skipped)
	assert.Equal(t, arrangement.StatusPendingWithdrawal, env.status(t, second.ID))
	assert.Equal(t, arrangement.StatusPendingApproval, env.status(t, first.ID))
	assert.Equal(t, arrangement.StatusPendingApproval, env.status(t, third.ID))

	// Cancel reaches every pending occurrence and leaves the withdrawal alone.
	resp, err = env.transition("staff_a1", first.ID, arrangement.ActionCancel, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Changes, 2)
	assert.Equal(t, []string{second.ID}, resp.Skipped)
	assert.Equal(t, arrangement.StatusCancelled, env.status(t, first.ID))
	assert.Equal(t, arrangement.StatusPendingWithdrawal, env.status(t, second.ID))
	assert.Equal(t, arrangement.StatusCancelled, env.status(t, third.ID))

	assert.Equal(t, before+3, env.auditCount(t))
}

func TestTransition_BatchTargetMustAdmitAction(t *testing.T) {
	env := newTestEnv(t, time.Second)
	batch := env.submitWeekly(t, "staff_a1", 2)
	before := env.auditCount(t)

	// The target itself still decides legality.
	_, err := env.transition("staff_a1", batch.Arrangements[0].ID, arrangement.ActionWithdraw, strPtr("Office reopened"))
	assert.ErrorIs(t, err, arrangement.ErrIllegalTransition)
	for _, a := range batch.Arrangements {
		assert.Equal(t, arrangement.StatusPendingApproval, env.status(t, a.ID))
	}
	assert.Equal(t, before, env.auditCount(t))
}

func TestTransition_AuthorityRequestCancellationDoesNotFanOut(t *testing.T) {
	env := newTestEnv(t, time.Second)
	batch := env.submitWeekly(t, "staff_a1", 2)
	for _, a := range batch.Arrangements {
		_, err := env.transition("manager_a", a.ID, arrangement.ActionApprove, nil)
		require.NoError(t, err)
	}

	resp, err := env.transition("manager_a", batch.Arrangements[0].ID, arrangement.ActionRequestCancellation, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Changes, 1)
	assert.Equal(t, arrangement.StatusApproved, env.status(t, batch.Arrangements[1].ID))

	// The requester's request fans out and passes over the occurrence already
	// awaiting cancellation.
	resp, err = env.transition("staff_a1", batch.Arrangements[1].ID, arrangement.ActionRequestCancellation, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Changes, 1)
	assert.Equal(t, []string{batch.Arrangements[0].ID}, resp.Skipped)
	assert.Equal(t, arrangement.StatusPendingCancellation, env.status(t, batch.Arrangements[0].ID))
	assert.Equal(t, arrangement.StatusPendingCancellation, env.status(t, batch.Arrangements[1].ID))
}

func TestTransition_ConcurrentApprovalsSerialize(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)
	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		illegal   int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.transition("manager_a", a.ID, arrangement.ActionApprove, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, arrangement.ErrIllegalTransition):
				illegal++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, illegal)
	assert.Equal(t, int64(2), env.auditCount(t))
}

func TestTransition_LockContention(t *testing.T) {
	env := newTestEnv(t, 20*time.Millisecond)
	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	release, err := env.locks.Acquire(context.Background(), arrangementLockPrefix+a.ID)
	require.NoError(t, err)
	defer release()

	_, err = env.transition("manager_a", a.ID, arrangement.ActionApprove, nil)
	assert.ErrorIs(t, err, arrangement.ErrConcurrentModification)
	assert.Equal(t, arrangement.StatusPendingApproval, env.status(t, a.ID))
}

func TestTransition_UnknownArrangement(t *testing.T) {
	env := newTestEnv(t, time.Second)

	_, err := env.transition("manager_a", "missing", arrangement.ActionApprove, nil)
	assert.ErrorIs(t, err, arrangement.ErrArrangementNotFound)

	_, err = env.transition("manager_a", "missing", arrangement.ActionSubmit, nil)
	assert.Error(t, err)
}

func TestGet_Visibility(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()
	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")

	for _, key := range []string{"staff_a1", "manager_a", "hr", "director"} {
		_, err := env.svc.Get(ctx, env.org.ID(key), a.ID)
		assert.NoError(t, err, key)
	}
	for _, key := range []string{"staff_a2", "manager_b"} {
		_, err := env.svc.Get(ctx, env.org.ID(key), a.ID)
		assert.ErrorIs(t, err, arrangement.ErrNotAuthorized, key)
	}

	env.acceptDelegation(t, "manager_a", "manager_b")
	_, err := env.svc.Get(ctx, env.org.ID("manager_b"), a.ID)
	assert.NoError(t, err)
}

func TestListBySubordinates(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()

	env.submitAdHoc(t, "staff_a1", "2024-10-01")
	env.submitAdHoc(t, "staff_a2", "2024-10-02")
	b1 := env.submitAdHoc(t, "staff_b1", "2024-10-03")

	list, err := env.svc.ListBySubordinates(ctx, env.org.ID("manager_a"), arrangement.ArrangementFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, "1-2 of 2 results", list.Showing)

	env.acceptDelegation(t, "manager_b", "manager_a")
	list, err = env.svc.ListBySubordinates(ctx, env.org.ID("manager_a"), arrangement.ArrangementFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
	// Newest work date first.
	assert.Equal(t, b1.ID, list.Arrangements[0].ID)

	list, err = env.svc.ListBySubordinates(ctx, env.org.ID("manager_a"), arrangement.ArrangementFilter{
		StartDate: strPtr("2024-10-02"),
		EndDate:   strPtr("2024-10-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)

	list, err = env.svc.ListBySubordinates(ctx, env.org.ID("staff_a1"), arrangement.ArrangementFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), list.TotalCount)
	assert.Empty(t, list.Arrangements)
}

func TestListByRequester_Filters(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()

	a := env.submitAdHoc(t, "staff_a1", "2024-10-01")
	env.submitWeekly(t, "staff_a1", 3)
	_, err := env.transition("manager_a", a.ID, arrangement.ActionApprove, nil)
	require.NoError(t, err)

	list, err := env.svc.ListByRequester(ctx, env.org.ID("staff_a1"), arrangement.ArrangementFilter{
		Statuses: []arrangement.Status{arrangement.StatusApproved},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, a.ID, list.Arrangements[0].ID)

	list, err = env.svc.ListByRequester(ctx, env.org.ID("staff_a1"), arrangement.ArrangementFilter{
		Search: strPtr("school"),
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
	assert.Len(t, list.Arrangements, 2)
	assert.Equal(t, 2, list.TotalPages)

	_, err = env.svc.ListByRequester(ctx, env.org.ID("staff_a1"), arrangement.ArrangementFilter{
		Statuses: []arrangement.Status{"unknown"},
	})
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, time.Second)

	resp, err := env.svc.Preview(context.Background(), arrangement.RecurrenceRequest{
		StartDate:   "2024-06-15",
		Interval:    1,
		Unit:        "month",
		Occurrences: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-07-15", "2024-08-15"}, resp.Dates)
	assert.Equal(t, []string{"2024-06-15"}, resp.ExcludedDates)
	assert.Equal(t, int64(0), env.auditCount(t))
}

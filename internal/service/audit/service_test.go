package audit

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/memory"
	arrangementsvc "github.com/cmlabs-hris/wfh-backend-go/internal/service/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/service/authority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*AuditServiceImpl, *arrangementsvc.ArrangementServiceImpl, fixtures.SeededOrg) {
	t.Helper()
	store := memory.NewStore()
	employees := memory.NewEmployeeRepository(store)
	org, err := fixtures.SeedOrg(context.Background(), employees, fixtures.DefaultOrg)
	require.NoError(t, err)

	arrangements := memory.NewArrangementRepository(store)
	audits := memory.NewAuditRepository(store)
	resolver := authority.NewResolver(employees, memory.NewDelegationRepository(store))
	lifecycle := arrangementsvc.NewArrangementService(store, lock.NewManager(time.Second), resolver, nil, arrangements, audits, employees)

	return NewAuditService(audits, arrangements, employees, lifecycle), lifecycle, org
}

func TestListAuditLog(t *testing.T) {
	svc, lifecycle, org := setup(t)
	ctx := context.Background()

	date := "2024-10-01"
	submitted, err := lifecycle.Submit(ctx, arrangement.SubmitArrangementRequest{
		RequesterID: org.ID("staff_a1"),
		WorkDate:    &date,
		Reason:      "Plumber visit",
	})
	require.NoError(t, err)
	id := submitted.Arrangements[0].ID

	reason := "Quarter close"
	_, err = lifecycle.Transition(ctx, arrangement.TransitionRequest{
		ArrangementID: id,
		ActorID:       org.ID("manager_a"),
		Action:        arrangement.ActionReject,
		Reason:        &reason,
	})
	require.NoError(t, err)

	// HR sees everything.
	all, err := svc.ListAuditLog(ctx, audit.AuditFilter{ViewerID: org.ID("hr")})
	require.NoError(t, err)
	require.Equal(t, int64(2), all.TotalCount)
	assert.Equal(t, arrangement.ActionSubmit, all.Entries[0].Action)
	assert.Nil(t, all.Entries[0].PreviousStatus)
	assert.Equal(t, arrangement.ActionReject, all.Entries[1].Action)
	require.NotNil(t, all.Entries[1].PreviousStatus)
	assert.Equal(t, arrangement.StatusPendingApproval, *all.Entries[1].PreviousStatus)
	assert.Equal(t, arrangement.StatusRejected, all.Entries[1].NewStatus)
	assert.Equal(t, &reason, all.Entries[1].StatusReason)

	// The requester must scope the query to their arrangement.
	_, err = svc.ListAuditLog(ctx, audit.AuditFilter{ViewerID: org.ID("staff_a1")})
	assert.ErrorIs(t, err, audit.ErrAuditLogForbidden)

	own, err := svc.ListAuditLog(ctx, audit.AuditFilter{ViewerID: org.ID("staff_a1"), ArrangementID: &id})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.TotalCount)

	_, err = svc.ListAuditLog(ctx, audit.AuditFilter{ViewerID: org.ID("staff_a2"), ArrangementID: &id})
	assert.ErrorIs(t, err, audit.ErrAuditLogForbidden)

	actor := org.ID("manager_a")
	byActor, err := svc.ListAuditLog(ctx, audit.AuditFilter{ViewerID: org.ID("director"), ActorID: &actor})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byActor.TotalCount)
}

func TestListAuditLog_InvalidFilter(t *testing.T) {
	svc, _, org := setup(t)

	bogus := arrangement.Action("teleport")
	_, err := svc.ListAuditLog(context.Background(), audit.AuditFilter{ViewerID: org.ID("hr"), Action: &bogus})
	assert.Error(t, err)
}

package arrangement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/lock"
)

const (
	arrangementLockPrefix = "arrangement:"
	delegationLockPrefix  = "delegation:"
)

// Transition applies req.Action to the target arrangement and, for requester
// batch actions, to every sibling whose status admits the action. Either every
// change commits with its audit entry or nothing does.
func (s *ArrangementServiceImpl) Transition(ctx context.Context, req arrangement.TransitionRequest) (arrangement.TransitionResponse, error) {
	resp, err := s.transition(ctx, req)
	if err != nil {
		s.metrics.TransitionFailed(string(req.Action), failureReason(err))
		slog.Warn("arrangement transition rejected",
			"arrangement_id", req.ArrangementID,
			"action", req.Action,
			"actor_id", req.ActorID,
			"error", err,
		)
		return arrangement.TransitionResponse{}, err
	}

	s.metrics.TransitionAccepted(string(req.Action), len(resp.Changes))
	slog.Info("arrangement transition applied",
		"arrangement_id", req.ArrangementID,
		"action", req.Action,
		"actor_id", req.ActorID,
		"status", resp.Status,
		"affected", len(resp.Changes),
	)
	return resp, nil
}

func (s *ArrangementServiceImpl) transition(ctx context.Context, req arrangement.TransitionRequest) (arrangement.TransitionResponse, error) {
	if err := req.Validate(); err != nil {
		return arrangement.TransitionResponse{}, err
	}

	target, err := s.ArrangementRepository.GetByID(ctx, req.ArrangementID)
	if err != nil {
		return arrangement.TransitionResponse{}, err
	}

	ids := []string{target.ID}
	if target.InBatch() && arrangement.IsBatchAction(req.Action) {
		siblings, err := s.ArrangementRepository.GetByBatchID(ctx, *target.BatchID)
		if err != nil {
			return arrangement.TransitionResponse{}, fmt.Errorf("failed to get batch: %w", err)
		}
		for _, sibling := range siblings {
			if sibling.ID != target.ID {
				ids = append(ids, sibling.ID)
			}
		}
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, arrangementLockPrefix+id)
	}
	// Delegation changes for the requester's manager wait for this transition.
	if requester, err := s.EmployeeRepository.GetByID(ctx, target.RequesterID); err == nil && requester.HasManager() {
		keys = append(keys, delegationLockPrefix+*requester.ReportingManagerID)
	}

	release, err := s.locks.Acquire(ctx, keys...)
	if errors.Is(err, lock.ErrTimeout) {
		return arrangement.TransitionResponse{}, arrangement.ErrConcurrentModification
	}
	if err != nil {
		return arrangement.TransitionResponse{}, err
	}
	defer release()

	var resp arrangement.TransitionResponse
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.ArrangementRepository.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		r, err := s.apply(ctx, req, target.ID, locked)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return arrangement.TransitionResponse{}, err
	}
	return resp, nil
}

// apply runs inside the transaction with every row in locked held.
func (s *ArrangementServiceImpl) apply(ctx context.Context, req arrangement.TransitionRequest, targetID string, locked []arrangement.Arrangement) (arrangement.TransitionResponse, error) {
	var current arrangement.Arrangement
	for _, a := range locked {
		if a.ID == targetID {
			current = a
		}
	}
	if current.ID == "" {
		return arrangement.TransitionResponse{}, arrangement.ErrArrangementNotFound
	}

	rule, ok := arrangement.Lookup(current.Status, req.Action)
	if !ok {
		return arrangement.TransitionResponse{}, fmt.Errorf("%w: cannot %s an arrangement that is %s",
			arrangement.ErrIllegalTransition, req.Action, current.Status)
	}

	officer, err := s.authorize(ctx, req.ActorID, current, rule)
	if err != nil {
		return arrangement.TransitionResponse{}, err
	}

	if rule.ReasonRequired && !req.HasReason() {
		return arrangement.TransitionResponse{}, arrangement.ErrReasonRequired
	}
	var reason *string
	if req.HasReason() {
		trimmed := strings.TrimSpace(*req.Reason)
		reason = &trimmed
	}

	type step struct {
		item arrangement.Arrangement
		to   arrangement.Status
	}
	steps := []step{{item: current, to: rule.To}}
	var skipped []string

	if rule.Batch && req.ActorID == current.RequesterID && current.InBatch() {
		for _, sibling := range locked {
			if sibling.ID == current.ID {
				continue
			}
			if sibling.Status.IsTerminal() {
				skipped = append(skipped, sibling.ID)
				continue
			}
			if sibling.RequesterID != req.ActorID {
				return arrangement.TransitionResponse{}, fmt.Errorf("%w: batch occurrence %s", arrangement.ErrNotAuthorized, sibling.ID)
			}
			// Occurrences the action does not apply to keep their status.
			siblingRule, ok := arrangement.Lookup(sibling.Status, req.Action)
			if !ok {
				skipped = append(skipped, sibling.ID)
				continue
			}
			steps = append(steps, step{item: sibling, to: siblingRule.To})
		}
	}

	now := s.now()
	changes := make([]arrangement.StatusChange, 0, len(steps))
	entries := make([]audit.Entry, 0, len(steps))
	for _, st := range steps {
		update := arrangement.StatusUpdate{
			ID:                 st.item.ID,
			From:               st.item.Status,
			To:                 st.to,
			ApprovingOfficerID: officer,
			StatusReason:       reason,
			UpdatedAt:          now,
		}
		if err := s.ArrangementRepository.UpdateStatus(ctx, update); err != nil {
			return arrangement.TransitionResponse{}, err
		}

		logID, err := s.id()
		if err != nil {
			return arrangement.TransitionResponse{}, err
		}
		from := st.item.Status
		entries = append(entries, audit.Entry{
			ID:             logID,
			ArrangementID:  st.item.ID,
			BatchID:        st.item.BatchID,
			ActorID:        req.ActorID,
			Action:         req.Action,
			PreviousStatus: &from,
			NewStatus:      st.to,
			StatusReason:   reason,
			CreatedAt:      now,
		})
		changes = append(changes, arrangement.StatusChange{
			ArrangementID:  st.item.ID,
			PreviousStatus: from,
			NewStatus:      st.to,
		})
	}

	if err := s.AuditRepository.Append(ctx, entries...); err != nil {
		return arrangement.TransitionResponse{}, fmt.Errorf("failed to append audit log: %w", err)
	}

	return arrangement.TransitionResponse{
		ArrangementID: current.ID,
		Action:        req.Action,
		Status:        rule.To,
		BatchID:       current.BatchID,
		Changes:       changes,
		Skipped:       skipped,
	}, nil
}

// authorize checks the actor against rule and returns the approving officer
// to record.
func (s *ArrangementServiceImpl) authorize(ctx context.Context, actorID string, a arrangement.Arrangement, rule arrangement.Rule) (*string, error) {
	isRequester := actorID == a.RequesterID

	switch rule.Actor {
	case arrangement.ActorRequester:
		if !isRequester {
			return nil, fmt.Errorf("%w: only the requester may do this", arrangement.ErrNotAuthorized)
		}
	case arrangement.ActorAuthority:
		if err := s.authority.Authorize(ctx, actorID, a); err != nil {
			return nil, err
		}
		return &actorID, nil
	case arrangement.ActorRequesterOrAuthority:
		if !isRequester {
			if err := s.authority.Authorize(ctx, actorID, a); err != nil {
				return nil, err
			}
			return &actorID, nil
		}
	default:
		return nil, arrangement.ErrNotAuthorized
	}

	// Requester actions record whoever now holds authority over the request.
	approver, err := s.authority.ApproverFor(ctx, a.RequesterID)
	if errors.Is(err, arrangement.ErrManagerNotFound) {
		return a.ApprovingOfficerID, nil
	}
	if err != nil {
		return nil, err
	}
	return &approver, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, arrangement.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, arrangement.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, arrangement.ErrReasonRequired):
		return "reason_required"
	case errors.Is(err, arrangement.ErrManagerNotFound):
		return "manager_not_found"
	case errors.Is(err, arrangement.ErrArrangementNotFound):
		return "not_found"
	case errors.Is(err, arrangement.ErrConcurrentModification):
		return "contention"
	}
	return "other"
}

package delegation

import (
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type DelegateRequest struct {
	ActorID string `json:"-"`
	// ManagerID defaults to the actor. A director may name a manager in
	// their reporting line.
	ManagerID         string  `json:"manager_id,omitempty"`
	DelegateManagerID string  `json:"delegate_manager_id"`
	Reason            *string `json:"reason,omitempty"`
}

func (r *DelegateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ActorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "actor_id",
			Message: "actor_id is required",
		})
	}
	if validator.IsEmpty(r.ManagerID) {
		r.ManagerID = r.ActorID
	}
	if validator.IsEmpty(r.DelegateManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "delegate_manager_id",
			Message: "delegate_manager_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

func (d Decision) Action() Action {
	if d == DecisionAccept {
		return ActionAccept
	}
	return ActionReject
}

type RespondRequest struct {
	DelegateID string `json:"-"`
	// DelegationID may be omitted when the delegate has exactly one pending
	// delegation.
	DelegationID string   `json:"delegation_id,omitempty"`
	Decision     Decision `json:"decision"`
	Reason       *string  `json:"reason,omitempty"`
}

func (r *RespondRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DelegateID) {
		errs = append(errs, validator.ValidationError{
			Field:   "delegate_id",
			Message: "delegate_id is required",
		})
	}
	if r.Decision != DecisionAccept && r.Decision != DecisionReject {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: accept, reject",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *RespondRequest) HasReason() bool {
	return r.Reason != nil && !validator.IsEmpty(*r.Reason)
}

type UndelegateRequest struct {
	ActorID   string `json:"-"`
	ManagerID string `json:"manager_id,omitempty"`
}

func (r *UndelegateRequest) Validate() error {
	if validator.IsEmpty(r.ActorID) {
		return validator.ValidationErrors{{
			Field:   "actor_id",
			Message: "actor_id is required",
		}}
	}
	if validator.IsEmpty(r.ManagerID) {
		r.ManagerID = r.ActorID
	}
	return nil
}

type DelegationResponse struct {
	ID                string     `json:"delegation_id"`
	ManagerID         string     `json:"manager_id"`
	DelegateManagerID string     `json:"delegate_manager_id"`
	Status            Status     `json:"status"`
	Reason            *string    `json:"reason"`
	ResponseReason    *string    `json:"response_reason"`
	DateOfDelegation  time.Time  `json:"date_of_delegation"`
	RespondedAt       *time.Time `json:"responded_at"`
	UndelegatedAt     *time.Time `json:"undelegated_at"`
	CreatedBy         string     `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func NewDelegationResponse(d Delegation) DelegationResponse {
	return DelegationResponse{
		ID:                d.ID,
		ManagerID:         d.ManagerID,
		DelegateManagerID: d.DelegateManagerID,
		Status:            d.Status,
		Reason:            d.Reason,
		ResponseReason:    d.ResponseReason,
		DateOfDelegation:  d.DateOfDelegation,
		RespondedAt:       d.RespondedAt,
		UndelegatedAt:     d.UndelegatedAt,
		CreatedBy:         d.CreatedBy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func NewDelegationResponses(items []Delegation) []DelegationResponse {
	out := make([]DelegationResponse, 0, len(items))
	for _, d := range items {
		out = append(out, NewDelegationResponse(d))
	}
	return out
}

package delegation

import "time"

type Status string

const (
	StatusPending     Status = "pending"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusUndelegated Status = "undelegated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusUndelegated:
		return true
	}
	return false
}

// IsActive reports whether s counts toward the one-active-delegation limit.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAccepted
}

func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusUndelegated
}

type Action string

const (
	ActionAccept     Action = "accept"
	ActionReject     Action = "reject"
	ActionUndelegate Action = "undelegate"
)

type transitionKey struct {
	From   Status
	Action Action
}

var transitions = map[transitionKey]Status{
	{StatusPending, ActionAccept}:      StatusAccepted,
	{StatusPending, ActionReject}:      StatusRejected,
	{StatusAccepted, ActionUndelegate}: StatusUndelegated,
}

// Next returns the status reached by applying action in from.
func Next(from Status, action Action) (Status, bool) {
	to, ok := transitions[transitionKey{From: from, Action: action}]
	return to, ok
}

// Delegation transfers a manager's approval authority to a peer manager.
type Delegation struct {
	ID                string
	ManagerID         string
	DelegateManagerID string
	Status            Status
	Reason            *string // note from the delegating side
	ResponseReason    *string // required when the delegate rejects
	DateOfDelegation  time.Time
	RespondedAt       *time.Time
	UndelegatedAt     *time.Time
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StatusUpdate is a guarded status change, applied only while the stored
// status equals From.
type StatusUpdate struct {
	ID             string
	From           Status
	To             Status
	ResponseReason *string
	RespondedAt    *time.Time
	UndelegatedAt  *time.Time
	UpdatedAt      time.Time
}

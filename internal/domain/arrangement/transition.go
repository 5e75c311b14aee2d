package arrangement

import "slices"

type Action string

const (
	ActionSubmit              Action = "submit"
	ActionApprove             Action = "approve"
	ActionReject              Action = "reject"
	ActionCancel              Action = "cancel"
	ActionWithdraw            Action = "withdraw"
	ActionApproveWithdrawal   Action = "approve_withdrawal"
	ActionRejectWithdrawal    Action = "reject_withdrawal"
	ActionRequestCancellation Action = "request_cancellation"
)

// TransitionActions lists the actions accepted by Transition.
func TransitionActions() []Action {
	return []Action{
		ActionApprove,
		ActionReject,
		ActionCancel,
		ActionWithdraw,
		ActionApproveWithdrawal,
		ActionRejectWithdrawal,
		ActionRequestCancellation,
	}
}

func (a Action) Valid() bool {
	return slices.Contains(TransitionActions(), a)
}

// Actor names who may perform a transition.
type Actor int

const (
	ActorRequester Actor = iota + 1
	ActorAuthority
	ActorRequesterOrAuthority
)

func (a Actor) String() string {
	switch a {
	case ActorRequester:
		return "requester"
	case ActorAuthority:
		return "authority"
	case ActorRequesterOrAuthority:
		return "requester or authority"
	}
	return "unknown"
}

// Rule is the outcome of a legal (status, action) pair.
type Rule struct {
	To             Status
	Actor          Actor
	ReasonRequired bool
	// Batch marks requester-initiated actions that fan out to every
	// non-terminal occurrence of a recurring batch.
	Batch bool
}

type transitionKey struct {
	From   Status
	Action Action
}

// transitions is the complete lifecycle. Anything absent is illegal.
var transitions = map[transitionKey]Rule{
	{StatusPendingApproval, ActionApprove}: {To: StatusApproved, Actor: ActorAuthority},
	{StatusPendingApproval, ActionReject}:  {To: StatusRejected, Actor: ActorAuthority, ReasonRequired: true},
	{StatusPendingApproval, ActionCancel}:  {To: StatusCancelled, Actor: ActorRequester, Batch: true},

	{StatusApproved, ActionWithdraw}:            {To: StatusPendingWithdrawal, Actor: ActorRequester, ReasonRequired: true, Batch: true},
	{StatusApproved, ActionRequestCancellation}: {To: StatusPendingCancellation, Actor: ActorRequesterOrAuthority, Batch: true},

	{StatusPendingWithdrawal, ActionApproveWithdrawal}: {To: StatusWithdrawn, Actor: ActorAuthority},
	{StatusPendingWithdrawal, ActionRejectWithdrawal}:  {To: StatusApproved, Actor: ActorAuthority, ReasonRequired: true},

	{StatusPendingCancellation, ActionApprove}: {To: StatusCancelled, Actor: ActorAuthority},
}

// Lookup returns the rule for performing action on an arrangement in from.
func Lookup(from Status, action Action) (Rule, bool) {
	rule, ok := transitions[transitionKey{From: from, Action: action}]
	return rule, ok
}

// AvailableActions lists the actions legal from s, in TransitionActions order.
func AvailableActions(s Status) []Action {
	var actions []Action
	for _, action := range TransitionActions() {
		if _, ok := Lookup(s, action); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

// IsBatchAction reports whether action may fan out across a batch from any
// status.
func IsBatchAction(action Action) bool {
	for key, rule := range transitions {
		if key.Action == action && rule.Batch {
			return true
		}
	}
	return false
}

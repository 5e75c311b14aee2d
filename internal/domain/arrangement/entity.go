package arrangement

import (
	"slices"
	"time"
)

type Status string

const (
	StatusPendingApproval     Status = "pending_approval"
	StatusApproved            Status = "approved"
	StatusRejected            Status = "rejected"
	StatusPendingWithdrawal   Status = "pending_withdrawal"
	StatusWithdrawn           Status = "withdrawn"
	StatusPendingCancellation Status = "pending_cancellation"
	StatusCancelled           Status = "cancelled"
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusPendingApproval,
		StatusApproved,
		StatusRejected,
		StatusPendingWithdrawal,
		StatusWithdrawn,
		StatusPendingCancellation,
		StatusCancelled,
	}
}

func (s Status) Valid() bool {
	return slices.Contains(AllStatuses(), s)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusWithdrawn || s == StatusCancelled
}

type Slot string

const (
	SlotAM      Slot = "am"
	SlotPM      Slot = "pm"
	SlotFullDay Slot = "full_day"
)

func (s Slot) Valid() bool {
	return s == SlotAM || s == SlotPM || s == SlotFullDay
}

// MaxSupportingDocuments is the number of document references an arrangement may carry.
const MaxSupportingDocuments = 3

// Arrangement is one requested day (or date range) of remote or out-of-office work.
type Arrangement struct {
	ID          string
	RequesterID string
	// ApprovingOfficerID records the authority at the last transition. It is
	// history only and never used to authorize.
	ApprovingOfficerID *string

	WorkDate time.Time
	EndDate  *time.Time
	Slot     Slot

	Reason       string
	Status       Status
	StatusReason *string

	BatchID             *string
	SupportingDocuments []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InBatch reports whether a is an occurrence of a recurring submission.
func (a Arrangement) InBatch() bool {
	return a.BatchID != nil && *a.BatchID != ""
}

// LastDate is the final calendar day covered by a.
func (a Arrangement) LastDate() time.Time {
	if a.EndDate != nil {
		return *a.EndDate
	}
	return a.WorkDate
}

// StatusUpdate is a single guarded status change. It applies only while the
// stored status still equals From. A nil StatusReason keeps the stored one.
type StatusUpdate struct {
	ID                 string
	From               Status
	To                 Status
	ApprovingOfficerID *string
	StatusReason       *string
	UpdatedAt          time.Time
}

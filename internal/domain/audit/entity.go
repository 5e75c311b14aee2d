package audit

import (
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
)

// Entry records one accepted change to an arrangement. Entries are never
// updated or deleted.
type Entry struct {
	ID             string
	ArrangementID  string
	BatchID        *string
	ActorID        string
	Action         arrangement.Action
	PreviousStatus *arrangement.Status // nil for submissions
	NewStatus      arrangement.Status
	StatusReason   *string
	CreatedAt      time.Time
}

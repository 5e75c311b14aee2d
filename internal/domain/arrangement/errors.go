package arrangement

import "errors"

var (
	ErrArrangementNotFound    = errors.New("Arrangement not found")
	ErrBatchNotFound          = errors.New("Arrangement batch not found")
	ErrNotAuthorized          = errors.New("Not authorized to act on this arrangement")
	ErrIllegalTransition      = errors.New("Illegal status transition")
	ErrReasonRequired         = errors.New("A reason is required for this action")
	ErrManagerNotFound        = errors.New("No reporting manager found for requester")
	ErrWeekendDate            = errors.New("Requested dates fall entirely on a weekend")
	ErrConcurrentModification = errors.New("Arrangement is being modified by another request, try again")
)

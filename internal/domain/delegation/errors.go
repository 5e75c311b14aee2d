package delegation

import "errors"

var (
	ErrDelegationNotFound     = errors.New("Delegation not found")
	ErrDelegationConflict     = errors.New("Delegation conflicts with an existing delegation")
	ErrIllegalTransition      = errors.New("Illegal delegation transition")
	ErrNotAuthorized          = errors.New("Not authorized to act on this delegation")
	ErrReasonRequired         = errors.New("A reason is required to reject a delegation")
	ErrDelegateNotEligible    = errors.New("Delegate must be a manager")
	ErrDelegationAmbiguous    = errors.New("More than one pending delegation, specify delegation_id")
	ErrConcurrentModification = errors.New("Delegation is being modified by another request, try again")
)

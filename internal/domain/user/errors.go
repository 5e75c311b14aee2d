package user

import "errors"

var (
	ErrInvalidToken            = errors.New("Invalid or expired token")
	ErrInsufficientPermissions = errors.New("Insufficient permissions")
	ErrEmployeeClaimMissing    = errors.New("Employee ID not found in token")
)

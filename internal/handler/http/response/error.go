package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/recurrence"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrEmployeeClaimMissing):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Arrangement domain errors
	case errors.Is(err, arrangement.ErrArrangementNotFound):
		NotFound(w, "Arrangement not found")
	case errors.Is(err, arrangement.ErrBatchNotFound):
		NotFound(w, "Arrangement batch not found")
	case errors.Is(err, arrangement.ErrNotAuthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, arrangement.ErrIllegalTransition):
		ConflictWithCode(w, "ILLEGAL_TRANSITION", err.Error())
	case errors.Is(err, arrangement.ErrConcurrentModification):
		ConflictWithCode(w, "CONCURRENT_MODIFICATION", err.Error())
	case errors.Is(err, arrangement.ErrReasonRequired):
		UnprocessableEntity(w, "REASON_REQUIRED", err.Error())
	case errors.Is(err, arrangement.ErrWeekendDate):
		UnprocessableEntity(w, "WEEKEND_DATE", err.Error())
	case errors.Is(err, arrangement.ErrManagerNotFound):
		UnprocessableEntity(w, "MANAGER_NOT_FOUND", err.Error())
	case errors.Is(err, recurrence.ErrInvalidRecurrence):
		UnprocessableEntity(w, "INVALID_RECURRENCE", err.Error())

	// Delegation domain errors
	case errors.Is(err, delegation.ErrDelegationNotFound):
		NotFound(w, "Delegation not found")
	case errors.Is(err, delegation.ErrNotAuthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, delegation.ErrIllegalTransition):
		ConflictWithCode(w, "ILLEGAL_TRANSITION", err.Error())
	case errors.Is(err, delegation.ErrDelegationConflict):
		ConflictWithCode(w, "DELEGATION_CONFLICT", err.Error())
	case errors.Is(err, delegation.ErrDelegationAmbiguous):
		ConflictWithCode(w, "DELEGATION_AMBIGUOUS", err.Error())
	case errors.Is(err, delegation.ErrConcurrentModification):
		ConflictWithCode(w, "CONCURRENT_MODIFICATION", err.Error())
	case errors.Is(err, delegation.ErrReasonRequired):
		UnprocessableEntity(w, "REASON_REQUIRED", err.Error())
	case errors.Is(err, delegation.ErrDelegateNotEligible):
		UnprocessableEntity(w, "DELEGATE_NOT_ELIGIBLE", err.Error())

	// Audit and report errors
	case errors.Is(err, audit.ErrAuditLogForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

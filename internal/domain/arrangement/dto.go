package arrangement

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/recurrence"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type RecurrenceRequest struct {
	StartDate   string  `json:"start_date"`
	Interval    int     `json:"interval"`
	Unit        string  `json:"unit"`
	EndDate     *string `json:"end_date,omitempty"`
	Occurrences *int    `json:"occurrences,omitempty"`
}

func (r *RecurrenceRequest) Validate() error {
	var errs validator.ValidationErrors

	// Start date
	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "recurrence.start_date",
			Message: "recurrence.start_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "recurrence.start_date",
			Message: "recurrence.start_date must be in YYYY-MM-DD format",
		})
	}

	// Interval
	if r.Interval < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "recurrence.interval",
			Message: "recurrence.interval must be at least 1",
		})
	}

	// Unit
	if !recurrence.Unit(r.Unit).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "recurrence.unit",
			Message: "recurrence.unit must be one of: week, month",
		})
	}

	// End date or occurrences
	if (r.EndDate == nil) == (r.Occurrences == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "recurrence",
			Message: "exactly one of recurrence.end_date or recurrence.occurrences is required",
		})
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "recurrence.end_date",
				Message: "recurrence.end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.Occurrences != nil && *r.Occurrences < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "recurrence.occurrences",
			Message: "recurrence.occurrences must be at least 1",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Spec converts a validated request into a recurrence spec.
func (r *RecurrenceRequest) Spec() (recurrence.Spec, error) {
	start, err := recurrence.ParseDate(r.StartDate)
	if err != nil {
		return recurrence.Spec{}, fmt.Errorf("%w: invalid start date", recurrence.ErrInvalidRecurrence)
	}

	spec := recurrence.Spec{
		Start:    start,
		Interval: r.Interval,
		Unit:     recurrence.Unit(r.Unit),
		Count:    r.Occurrences,
	}
	if r.EndDate != nil {
		end, err := recurrence.ParseDate(*r.EndDate)
		if err != nil {
			return recurrence.Spec{}, fmt.Errorf("%w: invalid end date", recurrence.ErrInvalidRecurrence)
		}
		spec.End = &end
	}

	return spec, nil
}

type SubmitArrangementRequest struct {
	RequesterID         string             `json:"-"`
	WorkDate            *string            `json:"work_date,omitempty"`
	EndDate             *string            `json:"end_date,omitempty"`
	Slot                Slot               `json:"slot"`
	Reason              string             `json:"reason"`
	SupportingDocuments []string           `json:"supporting_documents,omitempty"`
	Recurrence          *RecurrenceRequest `json:"recurrence,omitempty"`
}

func (r *SubmitArrangementRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Slot == "" {
		r.Slot = SlotFullDay
	}
	r.Reason = strings.TrimSpace(r.Reason)

	// Requester
	if validator.IsEmpty(r.RequesterID) {
		errs = append(errs, validator.ValidationError{
			Field:   "requester_id",
			Message: "requester_id is required",
		})
	}

	// Reason
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	// Slot
	if !r.Slot.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "slot",
			Message: "slot must be one of: am, pm, full_day",
		})
	}

	// Supporting documents
	if len(r.SupportingDocuments) > MaxSupportingDocuments {
		errs = append(errs, validator.ValidationError{
			Field:   "supporting_documents",
			Message: fmt.Sprintf("supporting_documents must not exceed %d items", MaxSupportingDocuments),
		})
	}
	for _, doc := range r.SupportingDocuments {
		if validator.IsEmpty(doc) {
			errs = append(errs, validator.ValidationError{
				Field:   "supporting_documents",
				Message: "supporting_documents must not contain empty references",
			})
			break
		}
	}

	// Dates: either an ad-hoc work date or a recurrence
	switch {
	case r.WorkDate == nil && r.Recurrence == nil:
		errs = append(errs, validator.ValidationError{
			Field:   "work_date",
			Message: "one of work_date or recurrence is required",
		})
	case r.WorkDate != nil && r.Recurrence != nil:
		errs = append(errs, validator.ValidationError{
			Field:   "recurrence",
			Message: "recurrence cannot be combined with work_date",
		})
	case r.Recurrence != nil:
		if r.EndDate != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date cannot be combined with recurrence",
			})
		}
		if err := r.Recurrence.Validate(); err != nil {
			errs = append(errs, err.(validator.ValidationErrors)...)
		}
	default:
		workDate, ok := validator.IsValidDate(*r.WorkDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "work_date",
				Message: "work_date must be in YYYY-MM-DD format",
			})
		}
		if r.EndDate != nil {
			endDate, endOK := validator.IsValidDate(*r.EndDate)
			if !endOK {
				errs = append(errs, validator.ValidationError{
					Field:   "end_date",
					Message: "end_date must be in YYYY-MM-DD format",
				})
			} else if ok && endDate.Before(workDate) {
				errs = append(errs, validator.ValidationError{
					Field:   "end_date",
					Message: "end_date must not be before work_date",
				})
			}
			if r.Slot != SlotFullDay {
				errs = append(errs, validator.ValidationError{
					Field:   "slot",
					Message: "multi-day requests must use the full_day slot",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TransitionRequest struct {
	ArrangementID string  `json:"-"`
	ActorID       string  `json:"-"`
	Action        Action  `json:"action"`
	Reason        *string `json:"reason,omitempty"`
}

func (r *TransitionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ArrangementID) {
		errs = append(errs, validator.ValidationError{
			Field:   "arrangement_id",
			Message: "arrangement_id is required",
		})
	}

	if validator.IsEmpty(r.ActorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "actor_id",
			Message: "actor_id is required",
		})
	}

	if !r.Action.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: approve, reject, cancel, withdraw, approve_withdrawal, reject_withdrawal, request_cancellation",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// HasReason reports whether a non-blank reason was supplied.
func (r *TransitionRequest) HasReason() bool {
	return r.Reason != nil && !validator.IsEmpty(*r.Reason)
}

type ArrangementFilter struct {
	StartDate *string  `json:"start_date,omitempty"`
	EndDate   *string  `json:"end_date,omitempty"`
	Statuses  []Status `json:"status,omitempty"`
	Search    *string  `json:"search,omitempty"`
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Validate checks the filter and fills pagination defaults.
func (f *ArrangementFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must not exceed %d", MaxPageLimit),
		})
	}

	var start, end time.Time
	var startOK, endOK bool
	if f.StartDate != nil {
		if start, startOK = validator.IsValidDate(*f.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if end, endOK = validator.IsValidDate(*f.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	for _, s := range f.Statuses {
		if !s.Valid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: fmt.Sprintf("unknown status %q", s),
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DateRange returns the parsed bounds of a validated filter.
func (f ArrangementFilter) DateRange() (from, to *time.Time) {
	if f.StartDate != nil {
		if t, err := recurrence.ParseDate(*f.StartDate); err == nil {
			from = &t
		}
	}
	if f.EndDate != nil {
		if t, err := recurrence.ParseDate(*f.EndDate); err == nil {
			to = &t
		}
	}
	return from, to
}

func (f ArrangementFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ArrangementResponse struct {
	ID                  string    `json:"arrangement_id"`
	RequesterID         string    `json:"requester_id"`
	ApprovingOfficerID  *string   `json:"approving_officer_id"`
	WorkDate            string    `json:"work_date"`
	EndDate             *string   `json:"end_date,omitempty"`
	Slot                Slot      `json:"slot"`
	Reason              string    `json:"reason"`
	Status              Status    `json:"status"`
	StatusReason        *string   `json:"status_reason,omitempty"`
	BatchID             *string   `json:"batch_id"`
	SupportingDocuments []string  `json:"supporting_documents"`
	AvailableActions    []Action  `json:"available_actions"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewArrangementResponse(a Arrangement) ArrangementResponse {
	resp := ArrangementResponse{
		ID:                  a.ID,
		RequesterID:         a.RequesterID,
		ApprovingOfficerID:  a.ApprovingOfficerID,
		WorkDate:            a.WorkDate.Format(recurrence.DateLayout),
		Slot:                a.Slot,
		Reason:              a.Reason,
		Status:              a.Status,
		StatusReason:        a.StatusReason,
		BatchID:             a.BatchID,
		SupportingDocuments: a.SupportingDocuments,
		AvailableActions:    AvailableActions(a.Status),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
	if resp.SupportingDocuments == nil {
		resp.SupportingDocuments = []string{}
	}
	if a.EndDate != nil {
		end := a.EndDate.Format(recurrence.DateLayout)
		resp.EndDate = &end
	}
	return resp
}

func NewArrangementResponses(items []Arrangement) []ArrangementResponse {
	out := make([]ArrangementResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewArrangementResponse(a))
	}
	return out
}

type ListArrangementResponse struct {
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
	Showing      string                `json:"showing"`
	Arrangements []ArrangementResponse `json:"arrangements"`
}

// NewListArrangementResponse builds the paginated envelope for a validated filter.
func NewListArrangementResponse(items []Arrangement, totalCount int64, filter ArrangementFilter) ListArrangementResponse {
	responses := NewArrangementResponses(items)

	totalPages := int(math.Ceil(float64(totalCount) / float64(filter.Limit)))

	start := filter.Offset() + 1
	end := start + len(responses) - 1
	if end > int(totalCount) {
		end = int(totalCount)
	}

	showing := fmt.Sprintf("%d-%d of %d results", start, end, totalCount)
	if totalCount == 0 || len(responses) == 0 {
		showing = fmt.Sprintf("0 of %d results", totalCount)
	}

	return ListArrangementResponse{
		TotalCount:   totalCount,
		Page:         filter.Page,
		Limit:        filter.Limit,
		TotalPages:   totalPages,
		Showing:      showing,
		Arrangements: responses,
	}
}

type SubmitArrangementResponse struct {
	BatchID       *string               `json:"batch_id"`
	Arrangements  []ArrangementResponse `json:"arrangements"`
	ExcludedDates []string              `json:"excluded_dates"`
}

type StatusChange struct {
	ArrangementID  string `json:"arrangement_id"`
	PreviousStatus Status `json:"previous_status"`
	NewStatus      Status `json:"new_status"`
}

type TransitionResponse struct {
	ArrangementID string         `json:"arrangement_id"`
	Action        Action         `json:"action"`
	Status        Status         `json:"status"`
	BatchID       *string        `json:"batch_id,omitempty"`
	Changes       []StatusChange `json:"changes"`
	// Skipped lists batch occurrences left alone because they were terminal or
	// their status does not admit the action.
	Skipped []string `json:"skipped,omitempty"`
}

type PreviewResponse struct {
	Dates         []string `json:"dates"`
	ExcludedDates []string `json:"excluded_dates"`
}

func FormatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(recurrence.DateLayout))
	}
	return out
}

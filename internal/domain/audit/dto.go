package audit

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type AuditFilter struct {
	ViewerID      string              `json:"-"`
	ArrangementID *string             `json:"arrangement_id,omitempty"`
	BatchID       *string             `json:"batch_id,omitempty"`
	ActorID       *string             `json:"actor_id,omitempty"`
	Action        *arrangement.Action `json:"action,omitempty"`
	From          *time.Time          `json:"from,omitempty"`
	To            *time.Time          `json:"to,omitempty"`
	Page          int                 `json:"page"`
	Limit         int                 `json:"limit"`
}

func (f *AuditFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = arrangement.DefaultPageLimit
	}
	if f.Limit > arrangement.MaxPageLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must not exceed %d", arrangement.MaxPageLimit),
		})
	}

	if f.Action != nil && *f.Action != arrangement.ActionSubmit && !f.Action.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: fmt.Sprintf("unknown action %q", *f.Action),
		})
	}

	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must not be before from",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (f AuditFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type EntryResponse struct {
	ID             string              `json:"log_id"`
	ArrangementID  string              `json:"arrangement_id"`
	BatchID        *string             `json:"batch_id"`
	ActorID        string              `json:"actor_id"`
	Action         arrangement.Action  `json:"action"`
	PreviousStatus *arrangement.Status `json:"previous_status"`
	NewStatus      arrangement.Status  `json:"new_status"`
	StatusReason   *string             `json:"status_reason"`
	CreatedAt      time.Time           `json:"timestamp"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		ArrangementID:  e.ArrangementID,
		BatchID:        e.BatchID,
		ActorID:        e.ActorID,
		Action:         e.Action,
		PreviousStatus: e.PreviousStatus,
		NewStatus:      e.NewStatus,
		StatusReason:   e.StatusReason,
		CreatedAt:      e.CreatedAt,
	}
}

type ListAuditResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Entries    []EntryResponse `json:"entries"`
}

func NewListAuditResponse(entries []Entry, total int64, filter AuditFilter) ListAuditResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewEntryResponse(e))
	}
	return ListAuditResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Entries:    out,
	}
}

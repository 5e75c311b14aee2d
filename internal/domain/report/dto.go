package report

import (
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

// ========================================
// ARRANGEMENT STATISTICS
// ========================================

type StatisticsRequest struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	// ManagerID restricts the report to the manager's direct reports.
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *StatisticsRequest) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var startOK, endOK bool
	if r.StartDate != nil {
		if start, startOK = validator.IsValidDate(*r.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.EndDate != nil {
		if end, endOK = validator.IsValidDate(*r.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}
	if r.ManagerID != nil && validator.IsEmpty(*r.ManagerID) {
		r.ManagerID = nil
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StatisticsQuery is the repository-level form of a statistics request. A nil
// RequesterIDs means every requester.
type StatisticsQuery struct {
	From         *time.Time
	To           *time.Time
	RequesterIDs []string
}

type KindCounts struct {
	AdHoc     int64 `json:"ad_hoc"`
	Recurring int64 `json:"recurring"`
}

type StatisticsReport struct {
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
	ManagerID   *string `json:"manager_id,omitempty"`
	GeneratedAt string  `json:"generated_at"`

	Total    int64                        `json:"total"`
	ByStatus map[arrangement.Status]int64 `json:"by_status"`
	BySlot   map[arrangement.Slot]int64   `json:"by_slot"`
	ByKind   KindCounts                   `json:"by_kind"`
}

package employee

import (
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

// Employee is the directory view of a person: who they are and who they
// report to.
type Employee struct {
	ID                 string
	EmployeeCode       *string
	FullName           string
	Email              string
	Department         *string
	Position           *string
	Role               user.Role
	ReportingManagerID *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasManager reports whether the employee has a reporting manager on record.
func (e Employee) HasManager() bool {
	return e.ReportingManagerID != nil && *e.ReportingManagerID != ""
}

package employee

import "context"

// EmployeeRepository is the read side of the employee directory plus the
// insert used for seeding.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListByManager(ctx context.Context, managerID string) ([]Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
}

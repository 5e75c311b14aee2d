package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/google/uuid"
)

type employeeRepositoryImpl struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepositoryImpl{store: store}
}

func (r *employeeRepositoryImpl) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepositoryImpl) ListByManager(_ context.Context, managerID string) ([]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []employee.Employee
	for _, e := range r.store.employees {
		if e.ReportingManagerID != nil && *e.ReportingManagerID == managerID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b employee.Employee) int {
		return cmp.Or(cmp.Compare(a.FullName, b.FullName), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *employeeRepositoryImpl) Create(_ context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.employees {
		if e.Email == newEmployee.Email {
			return employee.Employee{}, employee.ErrEmailExists
		}
	}

	if newEmployee.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return employee.Employee{}, err
		}
		newEmployee.ID = id.String()
	}
	now := time.Now().UTC()
	newEmployee.CreatedAt = now
	newEmployee.UpdatedAt = now

	r.store.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

package fixtures

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func strPtr(s string) *string { return &s }

// ==========================================
// DEFAULT ORGANISATION
// ==========================================

// Member describes one seeded employee. ManagerKey refers to an earlier
// member's Key.
type Member struct {
	Key        string
	FullName   string
	Email      string
	Department string
	Position   string
	Role       user.Role
	ManagerKey string
}

// DefaultOrg is a small reporting tree: a director over HR and two managers,
// each manager with their own staff.
var DefaultOrg = []Member{
	{Key: "director", FullName: "Diana Hartono", Email: "diana@example.com", Department: "Operations", Position: "Director", Role: user.RoleDirector},
	{Key: "hr", FullName: "Hana Wijaya", Email: "hana@example.com", Department: "People", Position: "HR Lead", Role: user.RoleHR, ManagerKey: "director"},
	{Key: "manager_a", FullName: "Arif Santoso", Email: "arif@example.com", Department: "Engineering", Position: "Engineering Manager", Role: user.RoleManager, ManagerKey: "director"},
	{Key: "manager_b", FullName: "Bella Kusuma", Email: "bella@example.com", Department: "Finance", Position: "Finance Manager", Role: user.RoleManager, ManagerKey: "director"},
	{Key: "staff_a1", FullName: "Citra Lestari", Email: "citra@example.com", Department: "Engineering", Position: "Engineer", Role: user.RoleStaff, ManagerKey: "manager_a"},
	{Key: "staff_a2", FullName: "Dimas Pratama", Email: "dimas@example.com", Department: "Engineering", Position: "Engineer", Role: user.RoleStaff, ManagerKey: "manager_a"},
	{Key: "staff_b1", FullName: "Eka Putri", Email: "eka@example.com", Department: "Finance", Position: "Accountant", Role: user.RoleStaff, ManagerKey: "manager_b"},
}

// SeededOrg maps member keys to the ids they were stored under.
type SeededOrg struct {
	IDs map[string]string
}

// ID returns the id of the member with key, or "" if it was not seeded.
func (o SeededOrg) ID(key string) string {
	return o.IDs[key]
}

// SeedOrg creates members in order.
func SeedOrg(ctx context.Context, repo employee.EmployeeRepository, members []Member) (SeededOrg, error) {
	org := SeededOrg{IDs: make(map[string]string, len(members))}

	for _, m := range members {
		e := employee.Employee{
			FullName:   m.FullName,
			Email:      m.Email,
			Department: strPtr(m.Department),
			Position:   strPtr(m.Position),
			Role:       m.Role,
		}
		if m.ManagerKey != "" {
			managerID, ok := org.IDs[m.ManagerKey]
			if !ok {
				return SeededOrg{}, fmt.Errorf("seed %s: manager %q not seeded yet", m.Key, m.ManagerKey)
			}
			e.ReportingManagerID = &managerID
		}

		created, err := repo.Create(ctx, e)
		if err != nil {
			return SeededOrg{}, fmt.Errorf("seed %s: %w", m.Key, err)
		}
		org.IDs[m.Key] = created.ID
	}

	return org, nil
}

package services

import (
	"context"
	"log/slog"
	"strings"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

// EmployeeService manages staff records. Deactivating keeps an employee's
// payment history intact; Delete fails while payments still reference them.
type EmployeeService struct {
	gw gateway.Gateway
}

func NewEmployeeService(gw gateway.Gateway) *EmployeeService {
	return &EmployeeService{gw: gw}
}

// List returns every employee, newest first.
func (s *EmployeeService) List(ctx context.Context, sess gateway.Session) ([]core.Employee, error) {
	return s.gw.Employees().List(ctx, sess, gateway.All().OrderBy(gateway.FieldCreatedAt, true))
}

// Active returns active employees ordered by name.
func (s *EmployeeService) Active(ctx context.Context, sess gateway.Session) ([]core.Employee, error) {
	return s.gw.Employees().List(ctx, sess,
		gateway.Where(gateway.FieldIsActive, "true").OrderBy(gateway.FieldName, false))
}

// Create stores a new employee; new employees start active.
func (s *EmployeeService) Create(ctx context.Context, sess gateway.Session, e core.Employee) (core.Employee, error) {
	e = trimEmployee(e)
	e.Active = true
	if err := e.Validate(); err != nil {
		return core.Employee{}, err
	}
	created, err := s.gw.Employees().Create(ctx, sess, e)
	if err != nil {
		return core.Employee{}, err
	}
	slog.InfoContext(ctx, "Employee created", "employee_id", created.ID, "name", created.Name)
	return created, nil
}

// Update edits the employee's details. A nil active keeps the stored flag.
func (s *EmployeeService) Update(ctx context.Context, sess gateway.Session, e core.Employee, active *bool) (core.Employee, error) {
	e = trimEmployee(e)
	if e.ID == "" {
		return core.Employee{}, core.Invalid("id", "is required")
	}
	if err := e.Validate(); err != nil {
		return core.Employee{}, err
	}
	if active != nil {
		e.Active = *active
	} else {
		stored, err := getByID(ctx, sess, s.gw.Employees(), gateway.EntityEmployees, e.ID)
		if err != nil {
			return core.Employee{}, err
		}
		e.Active = stored.Active
	}
	return s.gw.Employees().Update(ctx, sess, e)
}

// ToggleActive flips the employee's active flag.
func (s *EmployeeService) ToggleActive(ctx context.Context, sess gateway.Session, id string) (core.Employee, error) {
	e, err := getByID(ctx, sess, s.gw.Employees(), gateway.EntityEmployees, id)
	if err != nil {
		return core.Employee{}, err
	}
	e.Active = !e.Active
	updated, err := s.gw.Employees().Update(ctx, sess, e)
	if err != nil {
		return core.Employee{}, err
	}
	slog.InfoContext(ctx, "Employee active flag changed", "employee_id", id, "active", updated.Active)
	return updated, nil
}

func (s *EmployeeService) Delete(ctx context.Context, sess gateway.Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.Invalid("id", "is required")
	}
	if err := s.gw.Employees().Delete(ctx, sess, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Employee deleted", "employee_id", id)
	return nil
}

// SuggestedSalary is the nominal salary, offered as the default amount of a
// new payment.
func (s *EmployeeService) SuggestedSalary(ctx context.Context, sess gateway.Session, id string) (core.Money, error) {
	e, err := getByID(ctx, sess, s.gw.Employees(), gateway.EntityEmployees, id)
	if err != nil {
		return core.Money{}, err
	}
	return e.Salary, nil
}

func trimEmployee(e core.Employee) core.Employee {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Role = strings.TrimSpace(e.Role)
	e.Phone = strings.TrimSpace(e.Phone)
	e.Email = strings.TrimSpace(e.Email)
	return e
}

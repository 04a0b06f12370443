package http

import (
	"net/http"

	"garagetracker/internal/core"
	applog "garagetracker/internal/log"
	"garagetracker/internal/middleware/auth"
)

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	es, err := s.svc.Employees.List(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(toEmployeeViews(es)).Write(w)
}

// handleActiveEmployees lists the employees a salary can be paid to.
func (s *Server) handleActiveEmployees(w http.ResponseWriter, r *http.Request) {
	es, err := s.svc.Employees.Active(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(toEmployeeViews(es)).Write(w)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	e, err := employeeFrom(p)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.svc.Employees.Create(r.Context(), auth.SessionFrom(r.Context()), e)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toEmployeeView(created)).Write(w)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	e, err := employeeFrom(p)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	e.ID = pathID(r)
	active, err := p.OptionalBool("active")
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	updated, err := s.svc.Employees.Update(r.Context(), auth.SessionFrom(r.Context()), e, active)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(toEmployeeView(updated)).Write(w)
}

// handleDeleteEmployee fails with 409 while salary payments reference the
// employee.
func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Employees.Delete(r.Context(), auth.SessionFrom(r.Context()), pathID(r)); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleToggleEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Employees.ToggleActive(r.Context(), auth.SessionFrom(r.Context()), pathID(r))
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(toEmployeeView(e)).Write(w)
}

func (s *Server) handleSuggestedSalary(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Employees.SuggestedSalary(r.Context(), auth.SessionFrom(r.Context()), pathID(r))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(map[string]int64{"salary_cents": m.Cents}).Write(w)
}

func employeeFrom(p *RequestBodyParser) (core.Employee, error) {
	salary, err := p.Amount("salary")
	if err != nil {
		return core.Employee{}, err
	}
	return core.Employee{
		Name:   p.Get("name"),
		Role:   p.Get("role"),
		Salary: salary,
		Phone:  p.Get("phone"),
		Email:  p.Get("email"),
	}, nil
}

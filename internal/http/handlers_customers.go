package http

import (
	"net/http"

	"garagetracker/internal/core"
	applog "garagetracker/internal/log"
	"garagetracker/internal/middleware/auth"
)

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	cs, err := s.svc.Customers.List(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(toCustomerViews(cs)).Write(w)
}

// handleSearchCustomers matches q against name, phone, plate and vehicle.
func (s *Server) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	cs, err := s.svc.Customers.Search(r.Context(), auth.SessionFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(toCustomerViews(cs)).Write(w)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	c, err := s.svc.Customers.Create(r.Context(), auth.SessionFrom(r.Context()), customerFrom(p))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toCustomerView(c)).Write(w)
}

// handleUpdateCustomer replaces every editable field of the customer.
func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	in := customerFrom(p)
	in.ID = pathID(r)
	c, err := s.svc.Customers.Update(r.Context(), auth.SessionFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(toCustomerView(c)).Write(w)
}

// handleDeleteCustomer removes the customer and their service history.
func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Customers.Delete(r.Context(), auth.SessionFrom(r.Context()), pathID(r)); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.Customers.History(r.Context(), auth.SessionFrom(r.Context()), pathID(r))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(toHistoryView(h)).Write(w)
}

func customerFrom(p *RequestBodyParser) core.Customer {
	return core.Customer{
		Name:         p.Get("name"),
		Phone:        p.Get("phone"),
		Email:        p.Get("email"),
		VehicleMake:  p.Get("vehicle_make"),
		VehicleModel: p.Get("vehicle_model"),
		VehicleYear:  p.Get("vehicle_year"),
		LicensePlate: p.Get("license_plate"),
		Notes:        p.Get("notes"),
	}
}

package http

import (
	"net/http"

	"garagetracker/internal/core"
	applog "garagetracker/internal/log"
	"garagetracker/internal/middleware/auth"
	"garagetracker/internal/services"
)

// handleRecordIncome takes the daily income form, with optional photos
// under "images".
func (s *Server) handleRecordIncome(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	date, err := p.Date("date", today())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	amount, err := p.Amount("amount")
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	images, rejected := p.Images("images")

	res, err := s.svc.Ledger.RecordIncome(r.Context(), auth.SessionFrom(r.Context()), services.IncomeEntry{
		Date:         date,
		CustomerName: p.Get("customer_name"),
		Contact:      p.Get("contact"),
		Car:          p.Get("car"),
		CurrentKM:    p.Get("current_km"),
		ServiceType:  p.Get("service_type"),
		ServiceNotes: p.Get("service_notes"),
		Source:       p.Get("source"),
		Amount:       amount,
		Images:       images,
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.ledger.LogLedgerWrite(r.Context(), applog.OpCreate, string(core.LedgerIncome), res.RecordID, date.String(), amount.Cents)

	urls := res.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	NewJSONResponse().Status(http.StatusCreated).Body(incomeResultView{
		CustomerID:    res.CustomerID,
		RecordID:      res.RecordID,
		ImageURLs:     urls,
		FailedUploads: res.FailedUploads + rejected,
	}).Write(w)
}

func (s *Server) handleDayIncome(w http.ResponseWriter, r *http.Request) {
	d, err := queryDate(r, "date")
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	rows, err := s.svc.Ledger.DayIncome(r.Context(), auth.SessionFrom(r.Context()), d)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(toDayIncomeView(d, rows)).Write(w)
}

// handleRecordService stores a service record for an existing customer,
// with optional photos under "images".
func (s *Server) handleRecordService(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	date, err := p.Date("service_date", today())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	cost, err := p.Amount("cost")
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	images, rejected := p.Images("images")

	res, err := s.svc.Ledger.RecordService(r.Context(), auth.SessionFrom(r.Context()), services.ServiceInput{
		CustomerID:  p.Get("customer_id"),
		Date:        date,
		ServiceType: p.Get("service_type"),
		Cost:        cost,
		Description: p.Get("description"),
		PartsUsed:   p.Get("parts_used"),
		Technician:  p.Get("technician"),
		Status:      core.ServiceStatus(p.Get("status")),
		Images:      images,
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.ledger.LogLedgerWrite(r.Context(), applog.OpCreate, string(core.LedgerIncome), res.ID, date.String(), cost.Cents)
	NewJSONResponse().Status(http.StatusCreated).Body(toRecordedView(res, rejected)).Write(w)
}

func (s *Server) handleDeleteServiceRecord(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.svc.Ledger.DeleteServiceRecord(r.Context(), auth.SessionFrom(r.Context()), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.ledger.LogLedgerWrite(r.Context(), applog.OpDelete, string(core.LedgerIncome), id, "", 0)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleRecordSalary(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	date, err := p.Date("payment_date", today())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	amount, err := p.PositiveAmount("amount")
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	id, err := s.svc.Ledger.RecordSalaryPayment(r.Context(), auth.SessionFrom(r.Context()), services.SalaryInput{
		EmployeeID: p.Get("employee_id"),
		Amount:     amount,
		Date:       date,
		Notes:      p.Get("notes"),
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.ledger.LogLedgerWrite(r.Context(), applog.OpCreate, string(core.LedgerSalary), id, date.String(), amount.Cents)
	NewJSONResponse().Status(http.StatusCreated).Body(createdView{ID: id}).Write(w)
}

func (s *Server) handleDeleteSalary(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.svc.Ledger.DeleteSalaryPayment(r.Context(), auth.SessionFrom(r.Context()), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.ledger.LogLedgerWrite(r.Context(), applog.OpDelete, string(core.LedgerSalary), id, "", 0)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleRecordMarketing stores a marketing expense with receipts under
// "images".
func (s *Server) handleRecordMarketing(w http.ResponseWriter, r *http.Request) {
	p := parse(w, r)
	if p == nil {
		return
	}
	defer closeParser(r, p)

	date, err := p.Date("expense_date", today())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	amount, err := p.PositiveAmount("amount")
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	images, rejected := p.Images("images")

	res, err := s.svc.Ledger.RecordMarketingExpense(r.Context(), auth.SessionFrom(r.Context()), services.MarketingInput{
		Title:    p.Get("title"),
		Amount:   amount,
		Category: p.Get("category"),
		Date:     date,
		Notes:    p.Get("notes"),
		Images:   images,
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.ledger.LogLedgerWrite(r.Context(), applog.OpCreate, string(core.LedgerMarketing), res.ID, date.String(), amount.Cents)
	NewJSONResponse().Status(http.StatusCreated).Body(toRecordedView(res, rejected)).Write(w)
}

func (s *Server) handleDeleteMarketing(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.svc.Ledger.DeleteMarketingExpense(r.Context(), auth.SessionFrom(r.Context()), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.ledger.LogLedgerWrite(r.Context(), applog.OpDelete, string(core.LedgerMarketing), id, "", 0)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

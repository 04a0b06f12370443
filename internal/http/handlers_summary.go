package http

import (
	"net/http"
	"strings"

	"garagetracker/internal/core"
	applog "garagetracker/internal/log"
	"garagetracker/internal/middleware/auth"
)

// handleSummary summarizes the closed range [start, end]; both are required.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDateValue("start", strings.TrimSpace(q.Get("start")), core.Date{})
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	end, err := parseDateValue("end", strings.TrimSpace(q.Get("end")), core.Date{})
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}

	sum, err := s.svc.Summary.Summarize(r.Context(), auth.SessionFrom(r.Context()), start, end)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toSummaryView(sum)).Write(w)
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	d, err := queryDate(r, "date")
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	sum, err := s.svc.Summary.Daily(r.Context(), auth.SessionFrom(r.Context()), d)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toSummaryView(sum)).Write(w)
}

// handleMonthlySummary summarizes the calendar month containing date.
func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	d, err := queryDate(r, "date")
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	sum, err := s.svc.Summary.Monthly(r.Context(), auth.SessionFrom(r.Context()), d)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toSummaryView(sum)).Write(w)
}

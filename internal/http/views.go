package http

import (
	"time"

	"garagetracker/internal/core"
	"garagetracker/internal/services"
)

// JSON views. Amounts are integer minor units.
type (
	customerView struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Phone        string    `json:"phone,omitempty"`
		Email        string    `json:"email,omitempty"`
		VehicleMake  string    `json:"vehicle_make,omitempty"`
		VehicleModel string    `json:"vehicle_model,omitempty"`
		VehicleYear  string    `json:"vehicle_year,omitempty"`
		LicensePlate string    `json:"license_plate,omitempty"`
		Notes        string    `json:"notes,omitempty"`
		CreatedAt    time.Time `json:"created_at"`
	}

	serviceRecordView struct {
		ID          string    `json:"id"`
		CustomerID  string    `json:"customer_id"`
		ServiceDate core.Date `json:"service_date"`
		ServiceType string    `json:"service_type"`
		CostCents   int64     `json:"cost_cents"`
		Description string    `json:"description,omitempty"`
		PartsUsed   string    `json:"parts_used,omitempty"`
		Technician  string    `json:"technician,omitempty"`
		Status      string    `json:"status"`
		ImageURLs   []string  `json:"image_urls"`
		CreatedAt   time.Time `json:"created_at"`
	}

	incomeRowView struct {
		Record   serviceRecordView `json:"record"`
		Customer customerView      `json:"customer"`
	}

	dayIncomeView struct {
		Date       core.Date       `json:"date"`
		TotalCents int64           `json:"total_cents"`
		Entries    []incomeRowView `json:"entries"`
	}

	incomeResultView struct {
		CustomerID    string   `json:"customer_id"`
		RecordID      string   `json:"record_id"`
		ImageURLs     []string `json:"image_urls"`
		FailedUploads int      `json:"failed_uploads"`
	}

	historyView struct {
		Customer        customerView        `json:"customer"`
		Records         []serviceRecordView `json:"records"`
		TotalSpentCents int64               `json:"total_spent_cents"`
	}

	employeeView struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Role        string    `json:"role"`
		SalaryCents int64     `json:"salary_cents"`
		Active      bool      `json:"active"`
		Phone       string    `json:"phone,omitempty"`
		Email       string    `json:"email,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	summaryView struct {
		Start                 core.Date `json:"start"`
		End                   core.Date `json:"end"`
		IncomeCents           int64     `json:"income_cents"`
		SalaryExpenseCents    int64     `json:"salary_expense_cents"`
		MarketingExpenseCents int64     `json:"marketing_expense_cents"`
		ExpensesCents         int64     `json:"expenses_cents"`
		ProfitCents           int64     `json:"profit_cents"`
	}

	createdView struct {
		ID string `json:"id"`
	}

	recordedView struct {
		ID            string   `json:"id"`
		ImageURLs     []string `json:"image_urls"`
		FailedUploads int      `json:"failed_uploads"`
	}
)

func toCustomerView(c core.Customer) customerView {
	return customerView{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		VehicleMake:  c.VehicleMake,
		VehicleModel: c.VehicleModel,
		VehicleYear:  c.VehicleYear,
		LicensePlate: c.LicensePlate,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
	}
}

func toCustomerViews(cs []core.Customer) []customerView {
	out := make([]customerView, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCustomerView(c))
	}
	return out
}

func toServiceRecordView(r core.ServiceRecord) serviceRecordView {
	urls := r.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return serviceRecordView{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		ServiceDate: r.ServiceDate,
		ServiceType: r.ServiceType,
		CostCents:   r.Cost.Cents,
		Description: r.Description,
		PartsUsed:   r.PartsUsed,
		Technician:  r.Technician,
		Status:      string(r.Status),
		ImageURLs:   urls,
		CreatedAt:   r.CreatedAt,
	}
}

func toDayIncomeView(d core.Date, rows []services.IncomeRow) dayIncomeView {
	v := dayIncomeView{Date: d, Entries: make([]incomeRowView, 0, len(rows))}
	for _, row := range rows {
		v.TotalCents += row.Record.Cost.Cents
		v.Entries = append(v.Entries, incomeRowView{
			Record:   toServiceRecordView(row.Record),
			Customer: toCustomerView(row.Customer),
		})
	}
	return v
}

func toHistoryView(h services.CustomerHistory) historyView {
	v := historyView{
		Customer:        toCustomerView(h.Customer),
		Records:         make([]serviceRecordView, 0, len(h.Records)),
		TotalSpentCents: h.TotalSpent.Cents,
	}
	for _, r := range h.Records {
		v.Records = append(v.Records, toServiceRecordView(r))
	}
	return v
}

func toEmployeeView(e core.Employee) employeeView {
	return employeeView{
		ID:          e.ID,
		Name:        e.Name,
		Role:        e.Role,
		SalaryCents: e.Salary.Cents,
		Active:      e.Active,
		Phone:       e.Phone,
		Email:       e.Email,
		CreatedAt:   e.CreatedAt,
	}
}

func toEmployeeViews(es []core.Employee) []employeeView {
	out := make([]employeeView, 0, len(es))
	for _, e := range es {
		out = append(out, toEmployeeView(e))
	}
	return out
}

func toSummaryView(s core.Summary) summaryView {
	return summaryView{
		Start:                 s.Range.Start,
		End:                   s.Range.End,
		IncomeCents:           s.Income.Cents,
		SalaryExpenseCents:    s.SalaryExpense.Cents,
		MarketingExpenseCents: s.MarketingExpense.Cents,
		ExpensesCents:         s.Expenses.Cents,
		ProfitCents:           s.Profit.Cents,
	}
}

// toRecordedView folds files the parser rejected into the failed count.
func toRecordedView(r services.Recorded, rejected int) recordedView {
	urls := r.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return recordedView{ID: r.ID, ImageURLs: urls, FailedUploads: r.FailedUploads + rejected}
}

package storage

import (
	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

var customerSchema = schema[core.Customer]{
	entity: gateway.EntityCustomers,
	cols: []string{"id", "user_id", "name", "phone", "email", "vehicle_make", "vehicle_model",
		"vehicle_year", "license_plate", "notes", "created_at", "updated_at"},
	meta: func(c *core.Customer) meta {
		return meta{id: &c.ID, user: &c.UserID, created: &c.CreatedAt, updated: &c.UpdatedAt}
	},
	args: func(c core.Customer) ([]any, error) {
		return []any{c.ID, c.UserID, c.Name, c.Phone, c.Email, c.VehicleMake, c.VehicleModel,
			c.VehicleYear, c.LicensePlate, c.Notes, formatStamp(c.CreatedAt), formatStamp(c.UpdatedAt)}, nil
	},
	scan: func(s rowScanner) (core.Customer, error) {
		var (
			c  core.Customer
			ts stamps
		)
		err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, &c.VehicleMake, &c.VehicleModel,
			&c.VehicleYear, &c.LicensePlate, &c.Notes, &ts.created, &ts.updated)
		if err != nil {
			return c, err
		}
		return c, ts.into(meta{created: &c.CreatedAt, updated: &c.UpdatedAt})
	},
}

var serviceSchema = schema[core.ServiceRecord]{
	entity: gateway.EntityServiceRecords,
	cols: []string{"id", "user_id", "customer_id", "service_date", "service_type", "cost_cents",
		"description", "parts_used", "technician", "status", "image_urls", "created_at", "updated_at"},
	meta: func(r *core.ServiceRecord) meta {
		return meta{id: &r.ID, user: &r.UserID, created: &r.CreatedAt, updated: &r.UpdatedAt}
	},
	args: func(r core.ServiceRecord) ([]any, error) {
		urls, err := encodeURLs(r.ImageURLs)
		if err != nil {
			return nil, err
		}
		return []any{r.ID, r.UserID, r.CustomerID, r.ServiceDate.String(), r.ServiceType, r.Cost.Cents,
			r.Description, r.PartsUsed, r.Technician, string(r.Status), urls,
			formatStamp(r.CreatedAt), formatStamp(r.UpdatedAt)}, nil
	},
	scan: func(s rowScanner) (core.ServiceRecord, error) {
		var (
			r            core.ServiceRecord
			date, status string
			urls         string
			ts           stamps
		)
		err := s.Scan(&r.ID, &r.UserID, &r.CustomerID, &date, &r.ServiceType, &r.Cost.Cents,
			&r.Description, &r.PartsUsed, &r.Technician, &status, &urls, &ts.created, &ts.updated)
		if err != nil {
			return r, err
		}
		r.Status = core.ServiceStatus(status)
		if r.ServiceDate, err = parseDate(date); err != nil {
			return r, err
		}
		if r.ImageURLs, err = decodeURLs(urls); err != nil {
			return r, err
		}
		return r, ts.into(meta{created: &r.CreatedAt, updated: &r.UpdatedAt})
	},
}

var employeeSchema = schema[core.Employee]{
	entity: gateway.EntityEmployees,
	cols: []string{"id", "user_id", "name", "role", "salary_cents", "is_active", "phone", "email",
		"created_at", "updated_at"},
	meta: func(e *core.Employee) meta {
		return meta{id: &e.ID, user: &e.UserID, created: &e.CreatedAt, updated: &e.UpdatedAt}
	},
	args: func(e core.Employee) ([]any, error) {
		return []any{e.ID, e.UserID, e.Name, e.Role, e.Salary.Cents, e.Active, e.Phone, e.Email,
			formatStamp(e.CreatedAt), formatStamp(e.UpdatedAt)}, nil
	},
	scan: func(s rowScanner) (core.Employee, error) {
		var (
			e  core.Employee
			ts stamps
		)
		err := s.Scan(&e.ID, &e.UserID, &e.Name, &e.Role, &e.Salary.Cents, &e.Active, &e.Phone, &e.Email,
			&ts.created, &ts.updated)
		if err != nil {
			return e, err
		}
		return e, ts.into(meta{created: &e.CreatedAt, updated: &e.UpdatedAt})
	},
}

var salarySchema = schema[core.SalaryPayment]{
	entity: gateway.EntitySalaryPayments,
	cols:   []string{"id", "user_id", "employee_id", "amount_cents", "payment_date", "notes", "created_at"},
	meta: func(p *core.SalaryPayment) meta {
		return meta{id: &p.ID, user: &p.UserID, created: &p.CreatedAt}
	},
	args: func(p core.SalaryPayment) ([]any, error) {
		return []any{p.ID, p.UserID, p.EmployeeID, p.Amount.Cents, p.PaymentDate.String(), p.Notes,
			formatStamp(p.CreatedAt)}, nil
	},
	scan: func(s rowScanner) (core.SalaryPayment, error) {
		var (
			p    core.SalaryPayment
			date string
			ts   stamps
		)
		err := s.Scan(&p.ID, &p.UserID, &p.EmployeeID, &p.Amount.Cents, &date, &p.Notes, &ts.created)
		if err != nil {
			return p, err
		}
		if p.PaymentDate, err = parseDate(date); err != nil {
			return p, err
		}
		return p, ts.into(meta{created: &p.CreatedAt})
	},
}

var marketingSchema = schema[core.MarketingExpense]{
	entity: gateway.EntityMarketingExpenses,
	cols: []string{"id", "user_id", "title", "amount_cents", "category", "expense_date", "notes",
		"image_urls", "created_at"},
	meta: func(e *core.MarketingExpense) meta {
		return meta{id: &e.ID, user: &e.UserID, created: &e.CreatedAt}
	},
	args: func(e core.MarketingExpense) ([]any, error) {
		urls, err := encodeURLs(e.ImageURLs)
		if err != nil {
			return nil, err
		}
		return []any{e.ID, e.UserID, e.Title, e.Amount.Cents, e.Category, e.ExpenseDate.String(), e.Notes,
			urls, formatStamp(e.CreatedAt)}, nil
	},
	scan: func(s rowScanner) (core.MarketingExpense, error) {
		var (
			e          core.MarketingExpense
			date, urls string
			ts         stamps
		)
		err := s.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount.Cents, &e.Category, &date, &e.Notes,
			&urls, &ts.created)
		if err != nil {
			return e, err
		}
		if e.ExpenseDate, err = parseDate(date); err != nil {
			return e, err
		}
		if e.ImageURLs, err = decodeURLs(urls); err != nil {
			return e, err
		}
		return e, ts.into(meta{created: &e.CreatedAt})
	},
}

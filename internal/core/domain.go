package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending    ServiceStatus = "pending"
	StatusInProgress ServiceStatus = "in_progress"
	StatusCompleted  ServiceStatus = "completed"
)

const dateLayout = "2006-01-02"

type (
	ServiceStatus string

	// Date is a calendar date with no time component, held at UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Customer struct {
		ID           string
		UserID       string
		Name         string
		Phone        string
		Email        string
		VehicleMake  string
		VehicleModel string
		VehicleYear  string
		LicensePlate string
		Notes        string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	ServiceRecord struct {
		ID          string
		UserID      string
		CustomerID  string
		ServiceDate Date
		ServiceType string
		Cost        Money // zero when absent
		Description string
		PartsUsed   string
		Technician  string
		Status      ServiceStatus
		ImageURLs   []string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Employee struct {
		ID        string
		UserID    string
		Name      string
		Role      string
		Salary    Money // nominal monthly salary, only a default for new payments
		Active    bool
		Phone     string
		Email     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	SalaryPayment struct {
		ID          string
		UserID      string
		EmployeeID  string
		Amount      Money
		PaymentDate Date
		Notes       string
		CreatedAt   time.Time
	}

	MarketingExpense struct {
		ID          string
		UserID      string
		Title       string
		Amount      Money
		Category    string
		ExpenseDate Date
		Notes       string
		ImageURLs   []string
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// String renders the date as YYYY-MM-DD; the zero date renders empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// AddDays returns the date n calendar days later (earlier when n < 0).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Equal reports whether both dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// MarshalJSON shadows time.Time's RFC 3339 encoding with YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", "" and null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate accepts zero, which stands for an absent amount.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (s ServiceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", "is required")
	}
	if len(c.Name) > 200 {
		return Invalid("name", "too long (max 200 characters)")
	}
	return nil
}

func (r ServiceRecord) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return Invalid("customer_id", "is required")
	}
	if err := r.ServiceDate.Validate(); err != nil {
		return Invalid("service_date", err.Error())
	}
	if strings.TrimSpace(r.ServiceType) == "" {
		return Invalid("service_type", "is required")
	}
	if err := r.Cost.Validate(); err != nil {
		return Invalid("cost", "must not be negative")
	}
	if !r.Status.Valid() {
		return Invalid("status", "must be one of pending, in_progress, completed")
	}
	return nil
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Invalid("name", "is required")
	}
	if strings.TrimSpace(e.Role) == "" {
		return Invalid("role", "is required")
	}
	if err := e.Salary.Validate(); err != nil {
		return Invalid("salary", "must not be negative")
	}
	return nil
}

func (p SalaryPayment) Validate() error {
	if strings.TrimSpace(p.EmployeeID) == "" {
		return Invalid("employee_id", "is required")
	}
	if p.Amount.Cents <= 0 {
		return Invalid("amount", "must be positive")
	}
	if err := p.PaymentDate.Validate(); err != nil {
		return Invalid("payment_date", err.Error())
	}
	return nil
}

func (e MarketingExpense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return Invalid("title", "is required")
	}
	if e.Amount.Cents <= 0 {
		return Invalid("amount", "must be positive")
	}
	if err := e.ExpenseDate.Validate(); err != nil {
		return Invalid("expense_date", err.Error())
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"garagetracker/internal/amqp"
	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
	"garagetracker/internal/photostore"
)

// EventPublisher announces ledger changes to downstream consumers.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

type (
	// ServiceInput is a service record as entered by the caller.
	ServiceInput struct {
		CustomerID  string
		Date        core.Date
		ServiceType string
		Cost        core.Money
		Description string
		PartsUsed   string
		Technician  string
		Status      core.ServiceStatus // completed when empty
		ImageURLs   []string
		Images      []Attachment // uploaded and appended after ImageURLs
	}

	// Recorded is a stored ledger row and the outcome of its uploads.
	Recorded struct {
		ID            string
		ImageURLs     []string
		FailedUploads int
	}

	// IncomeEntry is one line of the daily income form: who came in, what
	// was done and what they paid.
	IncomeEntry struct {
		Date         core.Date
		CustomerName string
		Contact      string
		Car          string
		CurrentKM    string
		ServiceType  string
		ServiceNotes string
		Source       string
		Amount       core.Money
		Images       []Attachment
	}

	IncomeResult struct {
		CustomerID    string
		RecordID      string
		ImageURLs     []string
		FailedUploads int
	}

	// IncomeRow is a service record joined with its customer.
	IncomeRow struct {
		Record   core.ServiceRecord
		Customer core.Customer
	}

	SalaryInput struct {
		EmployeeID string
		Amount     core.Money
		Date       core.Date
		Notes      string
	}

	MarketingInput struct {
		Title    string
		Amount   core.Money
		Category string
		Date     core.Date
		Notes    string
		Images   []Attachment
	}
)

// LedgerService writes the three ledgers: service income, salary payments
// and marketing expenses. Each successful write is followed by a ledger
// event when a publisher is configured; publish failures never fail the
// write, which is already stored.
type LedgerService struct {
	gw        gateway.Gateway
	resolver  *CustomerResolver
	uploader  *Uploader
	publisher EventPublisher
}

func NewLedgerService(gw gateway.Gateway, resolver *CustomerResolver, uploader *Uploader, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		gw:        gw,
		resolver:  resolver,
		uploader:  uploader,
		publisher: publisher,
	}
}

// RecordService stores a service record for an existing customer. Photos
// that fail to upload are skipped and counted.
func (s *LedgerService) RecordService(ctx context.Context, sess gateway.Session, in ServiceInput) (Recorded, error) {
	rec := core.ServiceRecord{
		CustomerID:  strings.TrimSpace(in.CustomerID),
		ServiceDate: in.Date,
		ServiceType: strings.TrimSpace(in.ServiceType),
		Cost:        in.Cost,
		Description: in.Description,
		PartsUsed:   in.PartsUsed,
		Technician:  in.Technician,
		Status:      in.Status,
	}
	if rec.Status == "" {
		rec.Status = core.StatusCompleted
	}
	if err := rec.Validate(); err != nil {
		return Recorded{}, err
	}

	uploaded, failed := s.uploader.UploadAll(ctx, photostore.PrefixService, in.Images)
	rec.ImageURLs = append(append([]string(nil), in.ImageURLs...), uploaded...)

	created, err := s.gw.ServiceRecords().Create(ctx, sess, rec)
	if err != nil {
		return Recorded{}, err
	}

	slog.InfoContext(ctx, "Service record saved",
		"id", created.ID,
		"customer_id", created.CustomerID,
		"service_date", created.ServiceDate,
		"amount_cents", created.Cost.Cents)

	s.publish(ctx, amqp.ActionCreated, core.IncomeEntry(created))
	return Recorded{ID: created.ID, ImageURLs: created.ImageURLs, FailedUploads: failed}, nil
}

// RecordIncome resolves the customer, uploads the photos and stores a
// completed service record. Photos that fail to upload are skipped.
func (s *LedgerService) RecordIncome(ctx context.Context, sess gateway.Session, e IncomeEntry) (IncomeResult, error) {
	if strings.TrimSpace(e.CustomerName) == "" {
		return IncomeResult{}, core.Invalid("customer_name", "is required")
	}
	if strings.TrimSpace(e.ServiceType) == "" {
		return IncomeResult{}, core.Invalid("service_type", "is required")
	}
	if err := e.Date.Validate(); err != nil {
		return IncomeResult{}, core.Invalid("date", err.Error())
	}
	if err := e.Amount.Validate(); err != nil {
		return IncomeResult{}, core.Invalid("amount", "must not be negative")
	}

	customerID, err := s.resolver.Resolve(ctx, sess, ResolveRequest{
		Name:        e.CustomerName,
		Phone:       e.Contact,
		VehicleMake: e.Car,
		SourceNote:  e.Source,
	})
	if err != nil {
		return IncomeResult{}, err
	}

	rec, err := s.RecordService(ctx, sess, ServiceInput{
		CustomerID:  customerID,
		Date:        e.Date,
		ServiceType: e.ServiceType,
		Cost:        e.Amount,
		Description: fmt.Sprintf("%s\nKM: %s\nSource: %s", e.ServiceNotes, e.CurrentKM, e.Source),
		Status:      core.StatusCompleted,
		Images:      e.Images,
	})
	if err != nil {
		return IncomeResult{}, err
	}

	return IncomeResult{
		CustomerID:    customerID,
		RecordID:      rec.ID,
		ImageURLs:     rec.ImageURLs,
		FailedUploads: rec.FailedUploads,
	}, nil
}

// DeleteServiceRecord removes one service record. Summaries of its date
// stop counting it immediately.
func (s *LedgerService) DeleteServiceRecord(ctx context.Context, sess gateway.Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.Invalid("id", "is required")
	}
	if err := s.gw.ServiceRecords().Delete(ctx, sess, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Service record deleted", "id", id)
	s.publish(ctx, amqp.ActionDeleted, core.LedgerEntry{ID: id, Kind: core.LedgerIncome})
	return nil
}

// DayIncome lists the service records of day d, newest first, each with
// its customer.
func (s *LedgerService) DayIncome(ctx context.Context, sess gateway.Session, d core.Date) ([]IncomeRow, error) {
	if err := d.Validate(); err != nil {
		return nil, core.Invalid("date", err.Error())
	}
	records, err := s.gw.ServiceRecords().List(ctx, sess,
		gateway.Where(gateway.FieldServiceDate, d.String()).OrderBy(gateway.FieldCreatedAt, true))
	if err != nil {
		return nil, err
	}

	customers := make(map[string]core.Customer)
	rows := make([]IncomeRow, 0, len(records))
	for _, rec := range records {
		c, ok := customers[rec.CustomerID]
		if !ok {
			found, err := s.gw.Customers().List(ctx, sess, gateway.Where(gateway.FieldID, rec.CustomerID))
			if err != nil {
				return nil, err
			}
			if len(found) > 0 {
				c = found[0]
			}
			customers[rec.CustomerID] = c
		}
		rows = append(rows, IncomeRow{Record: rec, Customer: c})
	}
	return rows, nil
}

func (s *LedgerService) RecordSalaryPayment(ctx context.Context, sess gateway.Session, in SalaryInput) (string, error) {
	p := core.SalaryPayment{
		EmployeeID:  strings.TrimSpace(in.EmployeeID),
		Amount:      in.Amount,
		PaymentDate: in.Date,
		Notes:       in.Notes,
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	created, err := s.gw.SalaryPayments().Create(ctx, sess, p)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Salary payment saved",
		"id", created.ID,
		"employee_id", created.EmployeeID,
		"payment_date", created.PaymentDate,
		"amount_cents", created.Amount.Cents)

	s.publish(ctx, amqp.ActionCreated, core.SalaryEntry(created))
	return created.ID, nil
}

func (s *LedgerService) DeleteSalaryPayment(ctx context.Context, sess gateway.Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.Invalid("id", "is required")
	}
	if err := s.gw.SalaryPayments().Delete(ctx, sess, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Salary payment deleted", "id", id)
	s.publish(ctx, amqp.ActionDeleted, core.LedgerEntry{ID: id, Kind: core.LedgerSalary})
	return nil
}

// RecordMarketingExpense stores a marketing expense with its receipts.
// Receipts that fail to upload are skipped and counted.
func (s *LedgerService) RecordMarketingExpense(ctx context.Context, sess gateway.Session, in MarketingInput) (Recorded, error) {
	e := core.MarketingExpense{
		Title:       strings.TrimSpace(in.Title),
		Amount:      in.Amount,
		Category:    strings.TrimSpace(in.Category),
		ExpenseDate: in.Date,
		Notes:       in.Notes,
	}
	if err := e.Validate(); err != nil {
		return Recorded{}, err
	}

	var failed int
	e.ImageURLs, failed = s.uploader.UploadAll(ctx, photostore.PrefixMarketing, in.Images)

	created, err := s.gw.MarketingExpenses().Create(ctx, sess, e)
	if err != nil {
		return Recorded{}, err
	}

	slog.InfoContext(ctx, "Marketing expense saved",
		"id", created.ID,
		"title", created.Title,
		"expense_date", created.ExpenseDate,
		"amount_cents", created.Amount.Cents)

	s.publish(ctx, amqp.ActionCreated, core.MarketingEntry(created))
	return Recorded{ID: created.ID, ImageURLs: created.ImageURLs, FailedUploads: failed}, nil
}

func (s *LedgerService) DeleteMarketingExpense(ctx context.Context, sess gateway.Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.Invalid("id", "is required")
	}
	if err := s.gw.MarketingExpenses().Delete(ctx, sess, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Marketing expense deleted", "id", id)
	s.publish(ctx, amqp.ActionDeleted, core.LedgerEntry{ID: id, Kind: core.LedgerMarketing})
	return nil
}

func (s *LedgerService) publish(ctx context.Context, action amqp.EventAction, entry core.LedgerEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(action, entry)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"id", entry.ID, "kind", entry.Kind, "action", action, "error", err)
	}
}

package services

import (
	"context"
	"log/slog"
	"strings"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

// minSearchLen is the shortest term Search acts on.
const minSearchLen = 2

// CustomerHistory is a customer's service records, newest first, with the
// total they have spent.
type CustomerHistory struct {
	Customer   core.Customer
	Records    []core.ServiceRecord
	TotalSpent core.Money
}

type CustomerDirectory struct {
	gw gateway.Gateway
}

func NewCustomerDirectory(gw gateway.Gateway) *CustomerDirectory {
	return &CustomerDirectory{gw: gw}
}

func (d *CustomerDirectory) Create(ctx context.Context, sess gateway.Session, c core.Customer) (core.Customer, error) {
	c = trimCustomer(c)
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	created, err := d.gw.Customers().Create(ctx, sess, c)
	if err != nil {
		return core.Customer{}, err
	}
	slog.InfoContext(ctx, "Customer created", "customer_id", created.ID, "name", created.Name)
	return created, nil
}

func (d *CustomerDirectory) Update(ctx context.Context, sess gateway.Session, c core.Customer) (core.Customer, error) {
	c = trimCustomer(c)
	if c.ID == "" {
		return core.Customer{}, core.Invalid("id", "is required")
	}
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	return d.gw.Customers().Update(ctx, sess, c)
}

// Delete removes the customer together with their service history.
func (d *CustomerDirectory) Delete(ctx context.Context, sess gateway.Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.Invalid("id", "is required")
	}
	if err := d.gw.Customers().Delete(ctx, sess, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Customer deleted", "customer_id", id)
	return nil
}

// List returns every customer, newest first.
func (d *CustomerDirectory) List(ctx context.Context, sess gateway.Session) ([]core.Customer, error) {
	return d.gw.Customers().List(ctx, sess, gateway.All().OrderBy(gateway.FieldCreatedAt, true))
}

// Search matches term case-insensitively against name, phone, plate and
// vehicle. Terms shorter than two characters match nothing.
func (d *CustomerDirectory) Search(ctx context.Context, sess gateway.Session, term string) ([]core.Customer, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if len([]rune(term)) < minSearchLen {
		return []core.Customer{}, nil
	}

	all, err := d.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	out := make([]core.Customer, 0)
	for _, c := range all {
		for _, field := range []string{c.Name, c.Phone, c.LicensePlate, c.VehicleMake, c.VehicleModel} {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// History returns the customer's records by service date, newest first.
func (d *CustomerDirectory) History(ctx context.Context, sess gateway.Session, customerID string) (CustomerHistory, error) {
	c, err := getByID(ctx, sess, d.gw.Customers(), gateway.EntityCustomers, customerID)
	if err != nil {
		return CustomerHistory{}, err
	}
	records, err := d.gw.ServiceRecords().List(ctx, sess,
		gateway.Where(gateway.FieldCustomerID, c.ID).OrderBy(gateway.FieldServiceDate, true))
	if err != nil {
		return CustomerHistory{}, err
	}

	h := CustomerHistory{Customer: c, Records: records}
	for _, r := range records {
		h.TotalSpent = h.TotalSpent.Add(r.Cost)
	}
	return h, nil
}

func trimCustomer(c core.Customer) core.Customer {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.LicensePlate = strings.TrimSpace(c.LicensePlate)
	return c
}

// getByID loads one row or fails with a StoreError wrapping ErrNotFound.
func getByID[T any](ctx context.Context, sess gateway.Session, t gateway.Table[T], entity, id string) (T, error) {
	var zero T
	if strings.TrimSpace(id) == "" {
		return zero, core.Invalid("id", "is required")
	}
	rows, err := t.List(ctx, sess, gateway.Where(gateway.FieldID, id))
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, gateway.Fail("get", entity, gateway.ErrNotFound)
	}
	return rows[0], nil
}

// Package memory is an in-process gateway.Gateway used by default and in tests.
//
// All tables share one mutex so that foreign-key checks and cascades observe
// a consistent view of every table.
package memory

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

const stampLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	last  time.Time
	newID func() string

	customers *table[core.Customer]
	services  *table[core.ServiceRecord]
	employees *table[core.Employee]
	salaries  *table[core.SalaryPayment]
	marketing *table[core.MarketingExpense]
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now, newID: func() string { return uuid.NewString() }}
	for _, o := range opts {
		o(s)
	}

	s.customers = &table[core.Customer]{s: s, schema: customerSchema}
	s.services = &table[core.ServiceRecord]{s: s, schema: serviceSchema}
	s.employees = &table[core.Employee]{s: s, schema: employeeSchema}
	s.salaries = &table[core.SalaryPayment]{s: s, schema: salarySchema}
	s.marketing = &table[core.MarketingExpense]{s: s, schema: marketingSchema}

	s.services.beforeWrite = func(r core.ServiceRecord) error {
		if !s.customers.has(r.CustomerID) {
			return gateway.ErrConstraint
		}
		return nil
	}
	s.salaries.beforeWrite = func(p core.SalaryPayment) error {
		if !s.employees.has(p.EmployeeID) {
			return gateway.ErrConstraint
		}
		return nil
	}
	s.customers.afterDelete = func(c core.Customer) {
		s.services.removeWhere(func(r core.ServiceRecord) bool { return r.CustomerID == c.ID })
	}
	s.employees.beforeDelete = func(e core.Employee) error {
		for _, p := range s.salaries.rows {
			if p.EmployeeID == e.ID {
				return gateway.ErrConstraint
			}
		}
		return nil
	}
	return s
}

func (s *Store) Customers() gateway.Table[core.Customer]                 { return s.customers }
func (s *Store) ServiceRecords() gateway.Table[core.ServiceRecord]       { return s.services }
func (s *Store) Employees() gateway.Table[core.Employee]                 { return s.employees }
func (s *Store) SalaryPayments() gateway.Table[core.SalaryPayment]       { return s.salaries }
func (s *Store) MarketingExpenses() gateway.Table[core.MarketingExpense] { return s.marketing }

// stamp returns a strictly increasing UTC timestamp. Caller holds s.mu.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

type schema[T any] struct {
	entity  string
	id      func(*T) *string
	user    func(*T) *string
	created func(*T) *time.Time
	updated func(*T) *time.Time // nil when the entity has no updated_at
	field   func(T, string) string
	clone   func(T) T
}

type table[T any] struct {
	s      *Store
	schema schema[T]
	rows   []T

	beforeWrite  func(T) error
	beforeDelete func(T) error
	afterDelete  func(T)
}

func (t *table[T]) begin(ctx context.Context, op string, sess gateway.Session) error {
	if err := ctx.Err(); err != nil {
		return gateway.Fail(op, t.schema.entity, err)
	}
	if err := sess.Check(); err != nil {
		return gateway.Fail(op, t.schema.entity, err)
	}
	return nil
}

func (t *table[T]) List(ctx context.Context, sess gateway.Session, f gateway.Filter) ([]T, error) {
	if err := t.begin(ctx, "list", sess); err != nil {
		return nil, err
	}
	if err := gateway.CheckFilter(t.schema.entity, f); err != nil {
		return nil, err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	out := make([]T, 0)
	for _, row := range t.rows {
		if t.match(row, f) {
			out = append(out, t.schema.clone(row))
		}
	}
	if f.Order != nil {
		field, desc := f.Order.Field, f.Order.Desc
		sort.SliceStable(out, func(i, j int) bool {
			a, b := t.schema.field(out[i], field), t.schema.field(out[j], field)
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return out, nil
}

func (t *table[T]) match(row T, f gateway.Filter) bool {
	for _, c := range f.Eq {
		if t.schema.field(row, c.Field) != c.Value {
			return false
		}
	}
	if r := f.Range; r != nil {
		v := t.schema.field(row, r.Field)
		if v < r.From.String() || v > r.To.String() {
			return false
		}
	}
	return true
}

func (t *table[T]) Create(ctx context.Context, sess gateway.Session, rec T) (T, error) {
	var zero T
	if err := t.begin(ctx, "create", sess); err != nil {
		return zero, err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.beforeWrite != nil {
		if err := t.beforeWrite(rec); err != nil {
			return zero, gateway.Fail("create", t.schema.entity, err)
		}
	}
	rec = t.schema.clone(rec)
	now := t.s.stamp()
	*t.schema.id(&rec) = t.s.newID()
	*t.schema.user(&rec) = sess.UserID
	*t.schema.created(&rec) = now
	if t.schema.updated != nil {
		*t.schema.updated(&rec) = now
	}
	t.rows = append(t.rows, rec)
	return t.schema.clone(rec), nil
}

func (t *table[T]) Update(ctx context.Context, sess gateway.Session, rec T) (T, error) {
	var zero T
	if err := t.begin(ctx, "update", sess); err != nil {
		return zero, err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	i := t.index(*t.schema.id(&rec))
	if i < 0 {
		return zero, gateway.Fail("update", t.schema.entity, gateway.ErrNotFound)
	}
	if t.beforeWrite != nil {
		if err := t.beforeWrite(rec); err != nil {
			return zero, gateway.Fail("update", t.schema.entity, err)
		}
	}
	old := &t.rows[i]
	rec = t.schema.clone(rec)
	*t.schema.user(&rec) = *t.schema.user(old)
	*t.schema.created(&rec) = *t.schema.created(old)
	if t.schema.updated != nil {
		*t.schema.updated(&rec) = t.s.stamp()
	}
	t.rows[i] = rec
	return t.schema.clone(rec), nil
}

func (t *table[T]) Delete(ctx context.Context, sess gateway.Session, id string) error {
	if err := t.begin(ctx, "delete", sess); err != nil {
		return err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	i := t.index(id)
	if i < 0 {
		return gateway.Fail("delete", t.schema.entity, gateway.ErrNotFound)
	}
	row := t.rows[i]
	if t.beforeDelete != nil {
		if err := t.beforeDelete(row); err != nil {
			return gateway.Fail("delete", t.schema.entity, err)
		}
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	if t.afterDelete != nil {
		t.afterDelete(row)
	}
	return nil
}

func (t *table[T]) index(id string) int {
	for i := range t.rows {
		if *t.schema.id(&t.rows[i]) == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) has(id string) bool { return t.index(id) >= 0 }

func (t *table[T]) removeWhere(pred func(T) bool) {
	t.rows = slices.DeleteFunc(t.rows, pred)
}

func stampKey(t time.Time) string { return t.UTC().Format(stampLayout) }

var customerSchema = schema[core.Customer]{
	entity:  gateway.EntityCustomers,
	id:      func(c *core.Customer) *string { return &c.ID },
	user:    func(c *core.Customer) *string { return &c.UserID },
	created: func(c *core.Customer) *time.Time { return &c.CreatedAt },
	updated: func(c *core.Customer) *time.Time { return &c.UpdatedAt },
	field: func(c core.Customer, name string) string {
		switch name {
		case gateway.FieldID:
			return c.ID
		case gateway.FieldUserID:
			return c.UserID
		case gateway.FieldCreatedAt:
			return stampKey(c.CreatedAt)
		case gateway.FieldName:
			return c.Name
		case gateway.FieldPhone:
			return c.Phone
		}
		return ""
	},
	clone: func(c core.Customer) core.Customer { return c },
}

var serviceSchema = schema[core.ServiceRecord]{
	entity:  gateway.EntityServiceRecords,
	id:      func(r *core.ServiceRecord) *string { return &r.ID },
	user:    func(r *core.ServiceRecord) *string { return &r.UserID },
	created: func(r *core.ServiceRecord) *time.Time { return &r.CreatedAt },
	updated: func(r *core.ServiceRecord) *time.Time { return &r.UpdatedAt },
	field: func(r core.ServiceRecord, name string) string {
		switch name {
		case gateway.FieldID:
			return r.ID
		case gateway.FieldUserID:
			return r.UserID
		case gateway.FieldCreatedAt:
			return stampKey(r.CreatedAt)
		case gateway.FieldCustomerID:
			return r.CustomerID
		case gateway.FieldServiceDate:
			return r.ServiceDate.String()
		case gateway.FieldStatus:
			return string(r.Status)
		}
		return ""
	},
	clone: func(r core.ServiceRecord) core.ServiceRecord {
		r.ImageURLs = slices.Clone(r.ImageURLs)
		return r
	},
}

var employeeSchema = schema[core.Employee]{
	entity:  gateway.EntityEmployees,
	id:      func(e *core.Employee) *string { return &e.ID },
	user:    func(e *core.Employee) *string { return &e.UserID },
	created: func(e *core.Employee) *time.Time { return &e.CreatedAt },
	updated: func(e *core.Employee) *time.Time { return &e.UpdatedAt },
	field: func(e core.Employee, name string) string {
		switch name {
		case gateway.FieldID:
			return e.ID
		case gateway.FieldUserID:
			return e.UserID
		case gateway.FieldCreatedAt:
			return stampKey(e.CreatedAt)
		case gateway.FieldName:
			return e.Name
		case gateway.FieldIsActive:
			return strconv.FormatBool(e.Active)
		}
		return ""
	},
	clone: func(e core.Employee) core.Employee { return e },
}

var salarySchema = schema[core.SalaryPayment]{
	entity:  gateway.EntitySalaryPayments,
	id:      func(p *core.SalaryPayment) *string { return &p.ID },
	user:    func(p *core.SalaryPayment) *string { return &p.UserID },
	created: func(p *core.SalaryPayment) *time.Time { return &p.CreatedAt },
	field: func(p core.SalaryPayment, name string) string {
		switch name {
		case gateway.FieldID:
			return p.ID
		case gateway.FieldUserID:
			return p.UserID
		case gateway.FieldCreatedAt:
			return stampKey(p.CreatedAt)
		case gateway.FieldEmployeeID:
			return p.EmployeeID
		case gateway.FieldPaymentDate:
			return p.PaymentDate.String()
		}
		return ""
	},
	clone: func(p core.SalaryPayment) core.SalaryPayment { return p },
}

var marketingSchema = schema[core.MarketingExpense]{
	entity:  gateway.EntityMarketingExpenses,
	id:      func(e *core.MarketingExpense) *string { return &e.ID },
	user:    func(e *core.MarketingExpense) *string { return &e.UserID },
	created: func(e *core.MarketingExpense) *time.Time { return &e.CreatedAt },
	field: func(e core.MarketingExpense, name string) string {
		switch name {
		case gateway.FieldID:
			return e.ID
		case gateway.FieldUserID:
			return e.UserID
		case gateway.FieldCreatedAt:
			return stampKey(e.CreatedAt)
		case gateway.FieldExpenseDate:
			return e.ExpenseDate.String()
		case gateway.FieldCategory:
			return e.Category
		}
		return ""
	},
	clone: func(e core.MarketingExpense) core.MarketingExpense {
		e.ImageURLs = slices.Clone(e.ImageURLs)
		return e
	},
}

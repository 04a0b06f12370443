package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"garagetracker/internal/amqp"
	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
	"garagetracker/internal/gateway/memory"
)

var sess = gateway.Session{UserID: "admin"}

var errStoreDown = errors.New("store unavailable")

// countingTable counts calls and optionally fails them.
type countingTable[T any] struct {
	gateway.Table[T]
	entity string
	calls  *atomic.Int64
	fail   *error
}

func (t countingTable[T]) List(ctx context.Context, s gateway.Session, f gateway.Filter) ([]T, error) {
	t.calls.Add(1)
	if *t.fail != nil {
		return nil, gateway.Fail("list", t.entity, *t.fail)
	}
	return t.Table.List(ctx, s, f)
}

func (t countingTable[T]) Create(ctx context.Context, s gateway.Session, rec T) (T, error) {
	t.calls.Add(1)
	if *t.fail != nil {
		var zero T
		return zero, gateway.Fail("create", t.entity, *t.fail)
	}
	return t.Table.Create(ctx, s, rec)
}

func (t countingTable[T]) Update(ctx context.Context, s gateway.Session, rec T) (T, error) {
	t.calls.Add(1)
	if *t.fail != nil {
		var zero T
		return zero, gateway.Fail("update", t.entity, *t.fail)
	}
	return t.Table.Update(ctx, s, rec)
}

func (t countingTable[T]) Delete(ctx context.Context, s gateway.Session, id string) error {
	t.calls.Add(1)
	if *t.fail != nil {
		return gateway.Fail("delete", t.entity, *t.fail)
	}
	return t.Table.Delete(ctx, s, id)
}

// countingGateway wraps the memory store so tests can count gateway calls and
// break individual tables.
type countingGateway struct {
	store *memory.Store
	calls atomic.Int64

	failCustomers, failServices, failEmployees, failSalaries, failMarketing error
}

func newCountingGateway() *countingGateway {
	return &countingGateway{store: memory.New()}
}

func (g *countingGateway) Customers() gateway.Table[core.Customer] {
	return countingTable[core.Customer]{g.store.Customers(), gateway.EntityCustomers, &g.calls, &g.failCustomers}
}

func (g *countingGateway) ServiceRecords() gateway.Table[core.ServiceRecord] {
	return countingTable[core.ServiceRecord]{g.store.ServiceRecords(), gateway.EntityServiceRecords, &g.calls, &g.failServices}
}

func (g *countingGateway) Employees() gateway.Table[core.Employee] {
	return countingTable[core.Employee]{g.store.Employees(), gateway.EntityEmployees, &g.calls, &g.failEmployees}
}

func (g *countingGateway) SalaryPayments() gateway.Table[core.SalaryPayment] {
	return countingTable[core.SalaryPayment]{g.store.SalaryPayments(), gateway.EntitySalaryPayments, &g.calls, &g.failSalaries}
}

func (g *countingGateway) MarketingExpenses() gateway.Table[core.MarketingExpense] {
	return countingTable[core.MarketingExpense]{g.store.MarketingExpenses(), gateway.EntityMarketingExpenses, &g.calls, &g.failMarketing}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

// flakyPhotoStore fails Save for bodies reading "bad".
type flakyPhotoStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *flakyPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if string(b) == "bad" {
		return "", errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := prefix + "/" + string(b)
	s.saved = append(s.saved, key)
	return key, nil
}

func (s *flakyPhotoStore) Get(context.Context, string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("not implemented")
}

func (s *flakyPhotoStore) Delete(context.Context, string) error { return nil }

func (s *flakyPhotoStore) URL(key string) string { return "/uploads/" + key }

func day(y, m, d int) core.Date { return core.NewDate(y, m, d) }

func pkr(rupees int64) core.Money { return core.Money{Cents: rupees * 100} }

package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
	"garagetracker/internal/gateway/memory"
)

func listCustomers(t *testing.T, gw gateway.Gateway) []core.Customer {
	t.Helper()
	rows, err := gw.Customers().List(context.Background(), sess, gateway.All())
	require.NoError(t, err)
	return rows
}

func TestResolveSamePhoneReturnsSameCustomer(t *testing.T) {
	gw := newCountingGateway()
	r := NewCustomerResolver(gw)
	ctx := context.Background()
	req := ResolveRequest{Name: "Ali Khan", Phone: "0300-1234567", VehicleMake: "Honda Civic", SourceNote: "Google"}

	first, err := r.Resolve(ctx, sess, req)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, sess, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	rows := listCustomers(t, gw)
	require.Len(t, rows, 1)
	assert.Equal(t, "Source: Google", rows[0].Notes)
	assert.Equal(t, "Honda Civic", rows[0].VehicleMake)
	assert.Equal(t, "admin", rows[0].UserID)
}

func TestResolveEmptyPhoneAlwaysCreates(t *testing.T) {
	gw := newCountingGateway()
	r := NewCustomerResolver(gw)
	ctx := context.Background()

	first, err := r.Resolve(ctx, sess, ResolveRequest{Name: "Walk-in", SourceNote: "Walk-in"})
	require.NoError(t, err)
	second, err := r.Resolve(ctx, sess, ResolveRequest{Name: "Walk-in", Phone: "   ", SourceNote: "Walk-in"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, listCustomers(t, gw), 2)
}

func TestResolveMatchIsExact(t *testing.T) {
	gw := newCountingGateway()
	r := NewCustomerResolver(gw)
	ctx := context.Background()

	a, err := r.Resolve(ctx, sess, ResolveRequest{Name: "Ali", Phone: "111"})
	require.NoError(t, err)
	b, err := r.Resolve(ctx, sess, ResolveRequest{Name: "ali", Phone: "111"})
	require.NoError(t, err)
	c, err := r.Resolve(ctx, sess, ResolveRequest{Name: "Ali", Phone: "222"})
	require.NoError(t, err)
	d, err := r.Resolve(ctx, sess, ResolveRequest{Name: "  Ali ", Phone: " 111 "})
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "name match is case-sensitive")
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, d, "input is trimmed before matching")
	assert.Len(t, listCustomers(t, gw), 3)
}

func TestResolvePrefersOldestDuplicate(t *testing.T) {
	gw := newCountingGateway()
	ctx := context.Background()
	oldest, err := gw.Customers().Create(ctx, sess, core.Customer{Name: "Sara", Phone: "555"})
	require.NoError(t, err)
	_, err = gw.Customers().Create(ctx, sess, core.Customer{Name: "Sara", Phone: "555"})
	require.NoError(t, err)

	id, err := NewCustomerResolver(gw).Resolve(ctx, sess, ResolveRequest{Name: "Sara", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, id)
	assert.Len(t, listCustomers(t, gw), 2)
}

func TestResolveRequiresNameBeforeAnyCall(t *testing.T) {
	gw := newCountingGateway()
	_, err := NewCustomerResolver(gw).Resolve(context.Background(), sess, ResolveRequest{Name: "  ", Phone: "1"})

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "customer_name", ve.Field)
	assert.Zero(t, gw.calls.Load())
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	gw := newCountingGateway()
	gw.failCustomers = errStoreDown

	_, err := NewCustomerResolver(gw).Resolve(context.Background(), sess, ResolveRequest{Name: "Ali", Phone: "1"})
	var se *gateway.StoreError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestResolveConcurrentCallersCreateOneCustomer(t *testing.T) {
	gw := newCountingGateway()
	r := NewCustomerResolver(gw)
	ctx := context.Background()

	const n = 32
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.Resolve(ctx, sess, ResolveRequest{Name: "Hamza", Phone: "0321", SourceNote: "Referral"})
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, listCustomers(t, gw), 1)
}

// gatedGateway holds customer lookups until release is closed.
type gatedGateway struct {
	gateway.Gateway
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedGateway) Customers() gateway.Table[core.Customer] {
	return gatedCustomers{Table: g.Gateway.Customers(), g: g}
}

type gatedCustomers struct {
	gateway.Table[core.Customer]
	g *gatedGateway
}

func (t gatedCustomers) List(ctx context.Context, s gateway.Session, f gateway.Filter) ([]core.Customer, error) {
	t.g.once.Do(func() { close(t.g.entered) })
	<-t.g.release
	return t.Table.List(ctx, s, f)
}

func TestResolveCancelledCallerDoesNotFailOthers(t *testing.T) {
	gw := &gatedGateway{Gateway: memory.New(), entered: make(chan struct{}), release: make(chan struct{})}
	r := NewCustomerResolver(gw)
	req := ResolveRequest{Name: "Bilal", Phone: "0333", SourceNote: "Walk-in"}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(firstCtx, sess, req)
		firstErr <- err
	}()
	<-gw.entered

	type result struct {
		id  string
		err error
	}
	second := make(chan result, 1)
	go func() {
		id, err := r.Resolve(context.Background(), sess, req)
		second <- result{id, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(gw.release)
	got := <-second
	require.NoError(t, got.err)
	assert.NotEmpty(t, got.id)

	rows := listCustomers(t, gw)
	require.Len(t, rows, 1)
	assert.Equal(t, got.id, rows[0].ID)
}

package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

var sess = gateway.Session{UserID: "admin"}

func fixedClock() func() time.Time {
	t0 := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestCreateAssignsIdentity(t *testing.T) {
	s := New(WithClock(fixedClock()))
	ctx := context.Background()

	c, err := s.Customers().Create(ctx, sess, core.Customer{Name: "Ali", Phone: "0300"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "admin", c.UserID)
	assert.False(t, c.CreatedAt.IsZero())

	c2, err := s.Customers().Create(ctx, sess, core.Customer{Name: "Ali", Phone: "0300"})
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, c2.ID)
	assert.True(t, c2.CreatedAt.After(c.CreatedAt), "timestamps must be strictly increasing")
}

func TestRejectsEmptySession(t *testing.T) {
	s := New()
	_, err := s.Customers().List(context.Background(), gateway.Session{}, gateway.All())

	var se *gateway.StoreError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, gateway.ErrNoSession)
	assert.Equal(t, "list", se.Op)
}

func TestListFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, err := s.Customers().Create(ctx, sess, core.Customer{Name: "Ali"})
	require.NoError(t, err)

	for _, d := range []core.Date{
		core.NewDate(2024, 12, 31),
		core.NewDate(2025, 1, 1),
		core.NewDate(2025, 1, 15),
		core.NewDate(2025, 1, 31),
		core.NewDate(2025, 2, 1),
	} {
		_, err := s.ServiceRecords().Create(ctx, sess, core.ServiceRecord{
			CustomerID: c.ID, ServiceDate: d, ServiceType: "Oil Change",
			Cost: core.Money{Cents: 100}, Status: core.StatusCompleted,
		})
		require.NoError(t, err)
	}

	rows, err := s.ServiceRecords().List(ctx, sess, gateway.All().
		Between(gateway.FieldServiceDate, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31)).
		OrderBy(gateway.FieldServiceDate, true))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-01-31", rows[0].ServiceDate.String())
	assert.Equal(t, "2025-01-01", rows[2].ServiceDate.String())

	rows, err = s.ServiceRecords().List(ctx, sess, gateway.Where(gateway.FieldServiceDate, "2025-01-15"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = s.ServiceRecords().List(ctx, sess, gateway.Where("cost", "100"))
	assert.ErrorIs(t, err, gateway.ErrBadFilter)
}

func TestUpdateKeepsCreatorAndCreation(t *testing.T) {
	s := New()
	ctx := context.Background()
	e, err := s.Employees().Create(ctx, sess, core.Employee{Name: "Bilal", Role: "Mechanic", Active: true})
	require.NoError(t, err)

	e.Active = false
	e.UserID = "someone-else"
	updated, err := s.Employees().Update(ctx, gateway.Session{UserID: "other"}, e)
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "admin", updated.UserID)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)

	_, err = s.Employees().Update(ctx, sess, core.Employee{ID: "missing"})
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	assert.ErrorIs(t, s.Employees().Delete(ctx, sess, "missing"), gateway.ErrNotFound)
}

func TestForeignKeys(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ServiceRecords().Create(ctx, sess, core.ServiceRecord{CustomerID: "nope"})
	assert.ErrorIs(t, err, gateway.ErrConstraint)

	e, err := s.Employees().Create(ctx, sess, core.Employee{Name: "Bilal", Role: "Mechanic"})
	require.NoError(t, err)
	_, err = s.SalaryPayments().Create(ctx, sess, core.SalaryPayment{
		EmployeeID: e.ID, Amount: core.Money{Cents: 2000}, PaymentDate: core.NewDate(2025, 1, 5),
	})
	require.NoError(t, err)

	err = s.Employees().Delete(ctx, sess, e.ID)
	assert.ErrorIs(t, err, gateway.ErrConstraint)
}

func TestDeleteCustomerCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Customers().Create(ctx, sess, core.Customer{Name: "A"})
	b, _ := s.Customers().Create(ctx, sess, core.Customer{Name: "B"})
	for _, id := range []string{a.ID, a.ID, b.ID} {
		_, err := s.ServiceRecords().Create(ctx, sess, core.ServiceRecord{CustomerID: id, ServiceDate: core.NewDate(2025, 1, 5)})
		require.NoError(t, err)
	}

	require.NoError(t, s.Customers().Delete(ctx, sess, a.ID))

	rows, err := s.ServiceRecords().List(ctx, sess, gateway.All())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].CustomerID)
}

func TestReturnedRowsDoNotAliasStore(t *testing.T) {
	s := New()
	ctx := context.Background()
	m, err := s.MarketingExpenses().Create(ctx, sess, core.MarketingExpense{
		Title: "Flyers", Amount: core.Money{Cents: 500}, ExpenseDate: core.NewDate(2025, 1, 5),
		ImageURLs: []string{"a.jpg"},
	})
	require.NoError(t, err)
	m.ImageURLs[0] = "tampered"

	rows, err := s.MarketingExpenses().List(ctx, sess, gateway.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, rows[0].ImageURLs)
}

func TestCanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Customers().Create(ctx, sess, core.Customer{Name: "A"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConcurrentWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Customers().Create(ctx, sess, core.Customer{Name: "C"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := s.Customers().List(ctx, sess, gateway.All())
	require.NoError(t, err)
	assert.Len(t, rows, 50)
}

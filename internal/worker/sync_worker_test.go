package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagetracker/internal/amqp"
	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
	gwmemory "garagetracker/internal/gateway/memory"
	"garagetracker/internal/sheets/memory"
)

var sess = gateway.Session{UserID: "worker"}

type failingWriter struct{ err error }

func (w failingWriter) AppendEntry(context.Context, core.LedgerEntry) (string, error) {
	return "", w.err
}

func (w failingWriter) DeleteEntry(context.Context, string) error { return w.err }

func TestHandleLedgerEvent(t *testing.T) {
	sheet := memory.New()
	w := NewSyncWorker(sheet, nil)
	ctx := context.Background()
	entry := core.LedgerEntry{ID: "r1", Kind: core.LedgerIncome, Date: core.NewDate(2025, 1, 5), Label: "Oil Change", Amount: core.Money{Cents: 500000}}

	require.NoError(t, w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.ActionCreated, entry)))
	require.NoError(t, w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.ActionCreated, entry)))

	rows := sheet.Entries()
	require.Len(t, rows, 1, "redelivery must not duplicate rows")
	assert.Equal(t, "Oil Change", rows[0].Label)
	assert.Equal(t, int64(500000), rows[0].Amount.Cents)
	assert.True(t, rows[0].Date.Equal(entry.Date))

	deleted := amqp.NewLedgerEvent(amqp.ActionDeleted, core.LedgerEntry{ID: "r1", Kind: core.LedgerIncome})
	require.NoError(t, w.HandleLedgerEvent(ctx, deleted))
	assert.Empty(t, sheet.Entries())

	require.NoError(t, w.HandleLedgerEvent(ctx, deleted), "deleting an absent row is not an error")
}

func TestHandleLedgerEventPropagatesWriterErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewSyncWorker(failingWriter{err: boom}, nil)
	ctx := context.Background()

	err := w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.ActionCreated, core.LedgerEntry{ID: "x"}))
	assert.ErrorIs(t, err, boom)

	err = w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.ActionDeleted, core.LedgerEntry{ID: "x"}))
	assert.ErrorIs(t, err, boom)

	err = w.HandleLedgerEvent(ctx, &amqp.LedgerEvent{ID: "x", Action: "archived"})
	assert.Error(t, err)
}

func TestBackfill(t *testing.T) {
	gw := gwmemory.New()
	ctx := context.Background()
	c, err := gw.Customers().Create(ctx, sess, core.Customer{Name: "Ali"})
	require.NoError(t, err)
	emp, err := gw.Employees().Create(ctx, sess, core.Employee{Name: "Bilal", Role: "Mechanic", Active: true})
	require.NoError(t, err)

	in := core.NewDate(2025, 1, 5)
	out := core.NewDate(2025, 2, 1)
	for _, d := range []core.Date{in, out} {
		_, err := gw.ServiceRecords().Create(ctx, sess, core.ServiceRecord{
			CustomerID: c.ID, ServiceDate: d, ServiceType: "Tuning", Cost: core.Money{Cents: 100}, Status: core.StatusCompleted,
		})
		require.NoError(t, err)
	}
	_, err = gw.SalaryPayments().Create(ctx, sess, core.SalaryPayment{EmployeeID: emp.ID, PaymentDate: in, Amount: core.Money{Cents: 50}})
	require.NoError(t, err)
	_, err = gw.MarketingExpenses().Create(ctx, sess, core.MarketingExpense{Title: "Flyers", ExpenseDate: in, Amount: core.Money{Cents: 20}})
	require.NoError(t, err)

	sheet := memory.New()
	w := NewSyncWorker(sheet, gw)
	january := core.MonthOf(in)

	n, err := w.Backfill(ctx, sess, january)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	kinds := map[core.LedgerKind]int{}
	for _, e := range sheet.Entries() {
		kinds[e.Kind]++
	}
	assert.Equal(t, map[core.LedgerKind]int{core.LedgerIncome: 1, core.LedgerSalary: 1, core.LedgerMarketing: 1}, kinds)

	_, err = w.Backfill(ctx, sess, january)
	require.NoError(t, err)
	assert.Len(t, sheet.Entries(), 3)
}

func TestBackfillRequiresGatewayAndRange(t *testing.T) {
	_, err := NewSyncWorker(memory.New(), nil).Backfill(context.Background(), sess, core.Day(core.NewDate(2025, 1, 1)))
	assert.Error(t, err)

	bad := core.DateRange{Start: core.NewDate(2025, 2, 1), End: core.NewDate(2025, 1, 1)}
	_, err = NewSyncWorker(memory.New(), gwmemory.New()).Backfill(context.Background(), sess, bad)
	assert.ErrorIs(t, err, core.ErrValidation)
}

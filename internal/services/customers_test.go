package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

func TestCustomerDirectoryCreateTrimsAndValidates(t *testing.T) {
	gw := newCountingGateway()
	d := NewCustomerDirectory(gw)
	ctx := context.Background()

	c, err := d.Create(ctx, sess, core.Customer{Name: "  Usman  ", Phone: " 0333 ", LicensePlate: " LEA-123 "})
	require.NoError(t, err)
	assert.Equal(t, "Usman", c.Name)
	assert.Equal(t, "0333", c.Phone)
	assert.Equal(t, "LEA-123", c.LicensePlate)

	calls := gw.calls.Load()
	_, err = d.Create(ctx, sess, core.Customer{Name: "   "})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, calls, gw.calls.Load())
}

func TestCustomerDirectorySearch(t *testing.T) {
	gw := newCountingGateway()
	d := NewCustomerDirectory(gw)
	ctx := context.Background()
	for _, c := range []core.Customer{
		{Name: "Ali Khan", Phone: "0300-111", VehicleMake: "Honda"},
		{Name: "Sara", Phone: "0321-222", LicensePlate: "LEB-9090"},
		{Name: "Bilal", VehicleModel: "Civic"},
	} {
		_, err := d.Create(ctx, sess, c)
		require.NoError(t, err)
	}

	tests := []struct {
		term string
		want []string
	}{
		{"ali", []string{"Ali Khan"}},
		{"HONDA", []string{"Ali Khan"}},
		{"leb-", []string{"Sara"}},
		{"0321", []string{"Sara"}},
		{"civ", []string{"Bilal"}},
		{"a", nil},
		{"  ", nil},
		{"zz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := d.Search(ctx, sess, tt.term)
			require.NoError(t, err)
			require.NotNil(t, got)
			var names []string
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCustomerDirectoryListNewestFirst(t *testing.T) {
	d := NewCustomerDirectory(newCountingGateway())
	ctx := context.Background()
	first, err := d.Create(ctx, sess, core.Customer{Name: "First"})
	require.NoError(t, err)
	second, err := d.Create(ctx, sess, core.Customer{Name: "Second"})
	require.NoError(t, err)

	got, err := d.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestCustomerHistory(t *testing.T) {
	f := newLedgerFixture(t)
	older := f.service(t, day(2025, 1, 2), pkr(1000))
	newer := f.service(t, day(2025, 2, 10), pkr(2500))
	f.service(t, day(2025, 1, 20), core.Money{})

	h, err := NewCustomerDirectory(f.gw).History(context.Background(), sess, f.customerID)
	require.NoError(t, err)
	assert.Equal(t, "Ali", h.Customer.Name)
	require.Len(t, h.Records, 3)
	assert.Equal(t, newer, h.Records[0].ID)
	assert.Equal(t, older, h.Records[2].ID)
	assert.Equal(t, pkr(3500), h.TotalSpent)
}

func TestCustomerHistoryUnknown(t *testing.T) {
	_, err := NewCustomerDirectory(newCountingGateway()).History(context.Background(), sess, "nope")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestCustomerDeleteCascadesToHistory(t *testing.T) {
	f := newLedgerFixture(t)
	f.service(t, day(2025, 1, 5), pkr(5000))
	ctx := context.Background()

	require.NoError(t, NewCustomerDirectory(f.gw).Delete(ctx, sess, f.customerID))

	sum, err := NewSummarizer(f.gw).Daily(ctx, sess, day(2025, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, core.Money{}, sum.Income)
}

func TestCustomerUpdate(t *testing.T) {
	d := NewCustomerDirectory(newCountingGateway())
	ctx := context.Background()
	c, err := d.Create(ctx, sess, core.Customer{Name: "Ali"})
	require.NoError(t, err)

	c.VehicleMake = "Suzuki"
	updated, err := d.Update(ctx, sess, c)
	require.NoError(t, err)
	assert.Equal(t, "Suzuki", updated.VehicleMake)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)

	_, err = d.Update(ctx, sess, core.Customer{Name: "Ghost"})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = d.Update(ctx, sess, core.Customer{ID: "ghost", Name: "Ghost"})
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

func TestEmployeeLifecycle(t *testing.T) {
	svc := NewEmployeeService(newCountingGateway())
	ctx := context.Background()

	zain, err := svc.Create(ctx, sess, core.Employee{Name: " Zain ", Role: "Mechanic", Salary: pkr(40000)})
	require.NoError(t, err)
	assert.True(t, zain.Active)
	assert.Equal(t, "Zain", zain.Name)

	_, err = svc.Create(ctx, sess, core.Employee{Name: "Asad", Role: "Helper", Salary: pkr(25000)})
	require.NoError(t, err)

	active, err := svc.Active(ctx, sess)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Asad", active[0].Name)
	assert.Equal(t, "Zain", active[1].Name)

	toggled, err := svc.ToggleActive(ctx, sess, zain.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	active, err = svc.Active(ctx, sess)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Asad", active[0].Name)

	all, err := svc.List(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	salary, err := svc.SuggestedSalary(ctx, sess, zain.ID)
	require.NoError(t, err)
	assert.Equal(t, pkr(40000), salary)
}

func TestEmployeeValidation(t *testing.T) {
	gw := newCountingGateway()
	svc := NewEmployeeService(gw)
	ctx := context.Background()

	_, err := svc.Create(ctx, sess, core.Employee{Name: "Zain"})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "role", ve.Field)

	_, err = svc.Create(ctx, sess, core.Employee{Name: "Zain", Role: "Mechanic", Salary: core.Money{Cents: -5}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "salary", ve.Field)
	assert.Zero(t, gw.calls.Load())
}

func TestEmployeeDeleteWithPaymentsFails(t *testing.T) {
	f := newLedgerFixture(t)
	f.salary(t, day(2025, 1, 5), pkr(1000))
	svc := NewEmployeeService(f.gw)
	ctx := context.Background()

	err := svc.Delete(ctx, sess, f.employeeID)
	assert.ErrorIs(t, err, gateway.ErrConstraint)

	e, err := svc.Create(ctx, sess, core.Employee{Name: "Temp", Role: "Helper"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, sess, e.ID))

	_, err = svc.ToggleActive(ctx, sess, e.ID)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestEmployeeUpdateKeepsActiveFlagUnlessGiven(t *testing.T) {
	svc := NewEmployeeService(newCountingGateway())
	ctx := context.Background()

	zain, err := svc.Create(ctx, sess, core.Employee{Name: "Zain", Role: "Helper", Salary: pkr(30000)})
	require.NoError(t, err)
	_, err = svc.ToggleActive(ctx, sess, zain.ID)
	require.NoError(t, err)

	edited, err := svc.Update(ctx, sess, core.Employee{ID: zain.ID, Name: "Zain", Role: "Mechanic", Salary: pkr(35000)}, nil)
	require.NoError(t, err)
	assert.False(t, edited.Active)
	assert.Equal(t, "Mechanic", edited.Role)

	active, err := svc.Active(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, active)

	on := true
	edited, err = svc.Update(ctx, sess, core.Employee{ID: zain.ID, Name: "Zain", Role: "Mechanic"}, &on)
	require.NoError(t, err)
	assert.True(t, edited.Active)

	_, err = svc.Update(ctx, sess, core.Employee{ID: "missing", Name: "Ghost", Role: "Helper"}, nil)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

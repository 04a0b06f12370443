package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagetracker/internal/core"
)

func TestFilterBuilderDoesNotShareConditions(t *testing.T) {
	base := Where(FieldName, "Ali")
	a := base.And(FieldPhone, "1")
	b := base.And(FieldPhone, "2")

	require.Len(t, a.Eq, 2)
	require.Len(t, b.Eq, 2)
	assert.Equal(t, "1", a.Eq[1].Value)
	assert.Equal(t, "2", b.Eq[1].Value)
	assert.Len(t, base.Eq, 1)
}

func TestCheckFilter(t *testing.T) {
	ok := All().Between(FieldServiceDate, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31)).OrderBy(FieldCreatedAt, true)
	assert.NoError(t, CheckFilter(EntityServiceRecords, ok))

	err := CheckFilter(EntityServiceRecords, All().OrderBy(FieldPaymentDate, false))
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, EntityServiceRecords, se.Entity)
	assert.ErrorIs(t, err, ErrBadFilter)
}

func TestSessionCheck(t *testing.T) {
	assert.ErrorIs(t, Session{UserID: "  "}.Check(), ErrNoSession)
	assert.NoError(t, Session{UserID: "admin"}.Check())
}

package services

import (
	"testing"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshRecord() *models.Attendance {
	return &models.Attendance{Balance: domain.DailyBalance, Paid: domain.PaymentNotPaid}
}

func TestSettleButawThenBoundary(t *testing.T) {
	r := freshRecord()

	require.NoError(t, SettleButaw(r))
	assert.Equal(t, 20.0, r.Butaw)
	assert.Equal(t, 300.0, r.Balance)
	assert.Equal(t, domain.PaymentNotPaid, r.Paid)

	require.NoError(t, SettleBoundary(r))
	assert.Equal(t, 300.0, r.Boundary)
	assert.Equal(t, 0.0, r.Balance)
	assert.Equal(t, domain.PaymentPaid, r.Paid)
}

func TestSettleBoundaryThenButaw(t *testing.T) {
	r := freshRecord()

	require.NoError(t, SettleBoundary(r))
	assert.Equal(t, 20.0, r.Balance)
	assert.Equal(t, domain.PaymentNotPaid, r.Paid)

	require.NoError(t, SettleButaw(r))
	assert.Equal(t, 0.0, r.Balance)
	assert.Equal(t, domain.PaymentPaid, r.Paid)
}

func TestSettleBoth(t *testing.T) {
	r := freshRecord()

	require.NoError(t, SettleBoth(r))
	assert.Equal(t, 20.0, r.Butaw)
	assert.Equal(t, 300.0, r.Boundary)
	assert.Equal(t, 0.0, r.Balance)
	assert.Equal(t, domain.PaymentPaid, r.Paid)
}

func TestSettleRejectsRepeatedPayment(t *testing.T) {
	r := freshRecord()
	require.NoError(t, SettleButaw(r))

	assert.ErrorIs(t, SettleButaw(r), domain.ErrPaymentNotApplicable)
	assert.ErrorIs(t, SettleBoth(r), domain.ErrPaymentNotApplicable)

	require.NoError(t, SettleBoundary(r))
	assert.ErrorIs(t, SettleBoundary(r), domain.ErrPaymentNotApplicable)
	assert.ErrorIs(t, SettleButaw(r), domain.ErrPaymentNotApplicable)
	assert.Equal(t, 0.0, r.Balance)
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingApprove(t *testing.T) {
	now := time.Now().UTC()
	b := Booking{Status: BookingStatusPending, Quantity: 2}

	require.NoError(t, b.Approve(now))
	assert.Equal(t, BookingStatusApproved, b.Status)
	require.NotNil(t, b.ApprovedAt)
	assert.Equal(t, now, *b.ApprovedAt)

	// Terminal: neither outcome can be applied again
	assert.ErrorIs(t, b.Approve(now), ErrBookingNotPending)
	assert.ErrorIs(t, b.Reject(now), ErrBookingNotPending)
}

func TestBookingReject(t *testing.T) {
	now := time.Now().UTC()
	b := Booking{Status: BookingStatusPending}

	require.NoError(t, b.Reject(now))
	assert.Equal(t, BookingStatusRejected, b.Status)
	require.NotNil(t, b.RejectedAt)
	assert.Nil(t, b.ApprovedAt)

	assert.ErrorIs(t, b.Approve(now), ErrBookingNotPending)
}

func TestBookingIsPending(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPending}).IsPending())
	assert.False(t, (&Booking{Status: BookingStatusApproved}).IsPending())
	assert.False(t, (&Booking{Status: BookingStatusRejected}).IsPending())
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCancel(t *testing.T) {
	s := SessionBooking{Status: SessionStatusBooked, BookedAt: time.Now().UTC()}

	require.NoError(t, s.Cancel())
	assert.Equal(t, SessionStatusCancelled, s.Status)

	assert.ErrorIs(t, s.Cancel(), ErrSessionNotActive)
}

func TestAttendanceDuration(t *testing.T) {
	checkIn := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	a := AttendanceRecord{UserID: 1, CheckInAt: checkIn}

	assert.True(t, a.IsOpen())
	assert.Equal(t, 30*time.Minute, a.Duration(checkIn.Add(30*time.Minute)))

	checkOut := checkIn.Add(90 * time.Minute)
	a.CheckOutAt = &checkOut
	assert.False(t, a.IsOpen())
	// Closed visits ignore the reference time
	assert.Equal(t, 90*time.Minute, a.Duration(checkIn.Add(5*time.Hour)))
}

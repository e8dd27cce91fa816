package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
)

func decidedBooking(id, userID, equipmentID uint, status models.BookingStatus) *models.Booking {
	b := &models.Booking{
		UserID:          userID,
		EquipmentTypeID: equipmentID,
		Quantity:        1,
		Status:          status,
		RequestedAt:     time.Now().UTC(),
	}
	b.ID = id
	return b
}

func attachedClient(t *testing.T, hub *services.Hub, id uint) *services.Client {
	t.Helper()
	client := &services.Client{
		ID:       id,
		UserType: "member",
		Send:     make(chan []byte, 8),
		Hub:      hub,
	}
	hub.Register(client)
	assert.Eventually(t, func() bool {
		return hub.GetConnectedClients() > 0
	}, time.Second, 10*time.Millisecond)
	return client
}

func TestNotifyBookingDecisionCarriesItemName(t *testing.T) {
	hub := services.NewHub()
	go hub.Run()
	client := attachedClient(t, hub, 7)

	booking := decidedBooking(3, 7, 1, models.BookingStatusApproved)
	equipment := &models.EquipmentType{Name: "Yoga Mat", Category: "accessories"}
	equipment.ID = 1

	notifyBookingDecision(hub, booking, equipment, nil)

	select {
	case raw := <-client.Send:
		var msg services.WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "booking_decision", msg.Type)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, "Yoga Mat", data["itemName"])
		assert.Equal(t, "approved", data["status"])
	case <-time.After(time.Second):
		t.Fatal("member never received the decision")
	}
}

func TestNotifyBookingDecisionSkippedWithoutEquipment(t *testing.T) {
	hub := services.NewHub()
	go hub.Run()
	client := attachedClient(t, hub, 7)

	booking := decidedBooking(3, 7, 1, models.BookingStatusRejected)
	member := &models.User{Username: "ama", Email: "ama@example.com"}
	member.ID = 7

	// Equipment row failed to load, nothing goes out
	notifyBookingDecision(hub, booking, nil, member)

	select {
	case <-client.Send:
		t.Fatal("fan-out ran without an equipment row")
	case <-time.After(50 * time.Millisecond):
	}
}

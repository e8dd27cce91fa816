package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, id uint, userType string) *Client {
	return &Client{
		ID:       id,
		UserType: userType,
		Send:     make(chan []byte, 8),
		Hub:      hub,
	}
}

func registerAndWait(t *testing.T, hub *Hub, client *Client, want int) {
	t.Helper()
	hub.register <- client
	assert.Eventually(t, func() bool {
		return hub.GetConnectedClients() == want
	}, time.Second, 10*time.Millisecond)
}

func TestHubSendBookingDecisionTargetsOneUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 7, "member")
	other := newTestClient(hub, 8, "member")
	registerAndWait(t, hub, member, 1)
	registerAndWait(t, hub, other, 2)

	hub.SendBookingDecision(7, BookingDecision{
		BookingID: 3,
		ItemID:    1,
		ItemName:  "Yoga Mat",
		Status:    "approved",
	})

	select {
	case raw := <-member.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "booking_decision", msg.Type)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, "approved", data["status"])
		assert.Equal(t, "Yoga Mat", data["itemName"])
	case <-time.After(time.Second):
		t.Fatal("member never received the decision")
	}

	select {
	case <-other.Send:
		t.Fatal("decision leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubOccupancyBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 7, "member")
	admin := newTestClient(hub, 1, "admin")
	registerAndWait(t, hub, member, 1)
	registerAndWait(t, hub, admin, 2)

	hub.SendOccupancyUpdate(OccupancyUpdate{Occupancy: 12, Timestamp: time.Now().Unix()})

	for _, client := range []*Client{member, admin} {
		select {
		case raw := <-client.Send:
			var msg WebSocketMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "occupancy_update", msg.Type)
			data := msg.Data.(map[string]interface{})
			assert.Equal(t, float64(12), data["occupancy"])
		case <-time.After(time.Second):
			t.Fatalf("client %d missed the occupancy update", client.ID)
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 7, "member")
	registerAndWait(t, hub, client, 1)

	hub.unregister <- client
	assert.Eventually(t, func() bool {
		return hub.GetConnectedClients() == 0
	}, time.Second, 10*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)
}

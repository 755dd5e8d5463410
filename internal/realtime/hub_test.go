package realtime

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func testHub() *Hub {
	return NewHub(slog.Default())
}

func prepared(e *Event) *Event {
	e.prepare()
	return e
}

// ---------------------------------------------------------------------------
// shouldSend tests
// ---------------------------------------------------------------------------

func TestShouldSend_AllEvents(t *testing.T) {
	client := &Client{sub: Subscription{AllEvents: true}}

	event := prepared(&Event{Type: EventReading, Timestamp: time.Now()})
	if !shouldSend(client, event) {
		t.Error("AllEvents client should receive all events")
	}
}

func TestShouldSend_EventTypeFilter(t *testing.T) {
	client := &Client{sub: Subscription{
		EventTypes: []EventType{EventAlert, EventRiskAssessment},
	}}

	alertEvent := prepared(&Event{Type: EventAlert})
	riskEvent := prepared(&Event{Type: EventRiskAssessment})
	readingEvent := prepared(&Event{Type: EventReading})

	if !shouldSend(client, alertEvent) {
		t.Error("Should receive alert events")
	}
	if !shouldSend(client, riskEvent) {
		t.Error("Should receive risk_assessment events")
	}
	if shouldSend(client, readingEvent) {
		t.Error("Should NOT receive reading events")
	}
}

func TestShouldSend_BatchFilter(t *testing.T) {
	client := &Client{sub: Subscription{
		BatchIDs: []string{"batch_1"},
	}}

	matching := prepared(&Event{
		Type: EventReading,
		Data: map[string]any{"batchId": "batch_1", "temperatureC": 4.2},
	})
	notMatching := prepared(&Event{
		Type: EventReading,
		Data: map[string]any{"batchId": "batch_2", "temperatureC": 4.2},
	})

	if !shouldSend(client, matching) {
		t.Error("Should match on batch ID")
	}
	if shouldSend(client, notMatching) {
		t.Error("Should NOT match unrelated batches")
	}
}

func TestShouldSend_LevelFilter(t *testing.T) {
	client := &Client{sub: Subscription{
		Levels: []string{"HIGH"},
	}}

	high := prepared(&Event{
		Type: EventAlert,
		Data: map[string]any{"batchId": "batch_1", "level": "HIGH"},
	})
	medium := prepared(&Event{
		Type: EventAlert,
		Data: map[string]any{"batchId": "batch_1", "level": "MEDIUM"},
	})
	noLevel := prepared(&Event{
		Type: EventReading,
		Data: map[string]any{"batchId": "batch_1"},
	})

	if !shouldSend(client, high) {
		t.Error("Should receive HIGH alerts")
	}
	if shouldSend(client, medium) {
		t.Error("Should NOT receive MEDIUM alerts")
	}
	if !shouldSend(client, noLevel) {
		t.Error("Level filter should only apply to events that carry a level")
	}
}

func TestShouldSend_EmptySubscription(t *testing.T) {
	// No filters, not AllEvents
	client := &Client{sub: Subscription{}}

	event := prepared(&Event{Type: EventReading})
	if !shouldSend(client, event) {
		t.Error("Empty subscription (no filters) should receive events")
	}
}

func TestShouldSend_NonObjectData(t *testing.T) {
	client := &Client{sub: Subscription{
		BatchIDs: []string{"batch_1"},
	}}

	// Event with non-object data should not crash; no batch ID can match.
	event := prepared(&Event{
		Type: EventReading,
		Data: "string data not an object",
	})

	if shouldSend(client, event) {
		t.Error("Batch filter should drop events with no extractable batch ID")
	}
}

// ---------------------------------------------------------------------------
// Hub lifecycle tests
// ---------------------------------------------------------------------------

func TestHub_Stats_Initial(t *testing.T) {
	h := testHub()

	stats := h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients, got %v", stats["connectedClients"])
	}
	if stats["totalEvents"].(int64) != 0 {
		t.Errorf("Expected 0 total events, got %v", stats["totalEvents"])
	}
}

func TestHub_BroadcastAndStats(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Broadcast an event
	h.Broadcast(&Event{Type: EventReading, Timestamp: time.Now()})
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["totalEvents"].(int64) != 1 {
		t.Errorf("Expected 1 total event, got %v", stats["totalEvents"])
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{AllEvents: true},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["connectedClients"].(int) != 1 {
		t.Errorf("Expected 1 connected client, got %v", stats["connectedClients"])
	}
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak 1, got %v", stats["peakClients"])
	}

	h.unregister <- client
	time.Sleep(50 * time.Millisecond)

	stats = h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients after unregister, got %v", stats["connectedClients"])
	}
	// Peak should still be 1
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak still 1, got %v", stats["peakClients"])
	}
}

func TestHub_BroadcastToClient(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{AllEvents: true},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	h.Publish("alert", map[string]any{"batchId": "batch_1", "level": "HIGH"})

	select {
	case msg := <-client.send:
		if len(msg) == 0 {
			t.Error("Expected non-empty message")
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestHub_ContextCancellation(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// Hub stopped
	case <-time.After(2 * time.Second):
		t.Error("Hub did not stop after context cancellation")
	}
}

func TestHub_FilteredBroadcast(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Client only wants alerts
	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{EventTypes: []EventType{EventAlert}},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	// Send a reading event (should be filtered out)
	h.Broadcast(&Event{Type: EventReading, Timestamp: time.Now()})
	time.Sleep(100 * time.Millisecond)

	select {
	case <-client.send:
		t.Error("Client should NOT receive reading event")
	default:
		// Good - filtered out
	}

	// Send an alert event (should be received)
	h.Broadcast(&Event{Type: EventAlert, Timestamp: time.Now()})

	select {
	case msg := <-client.send:
		if len(msg) == 0 {
			t.Error("Expected non-empty message")
		}
	case <-time.After(time.Second):
		t.Error("Client should receive alert event")
	}
}

package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"duel-crowd-bets/internal/domain"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, have %d", want, hub.Subscribers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	waitForSubscribers(t, hub, 1)

	side := domain.SideA
	sent := domain.LedgerEvent{
		Kind:      domain.EventSupportPlaced,
		Duel:      domain.Identity{1},
		Actor:     domain.Identity{2},
		Side:      &side,
		Amount:    500_000,
		NetAmount: 490_000,
		Timestamp: 1_700_000_000,
	}
	hub.Publish(context.Background(), sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.LedgerEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Kind != sent.Kind {
		t.Errorf("expected kind %s, got %s", sent.Kind, got.Kind)
	}
	if got.Duel != sent.Duel {
		t.Errorf("duel identity did not survive the round trip")
	}
	if got.Side == nil || *got.Side != domain.SideA {
		t.Errorf("expected side A, got %v", got.Side)
	}
	if got.NetAmount != sent.NetAmount {
		t.Errorf("expected net %d, got %d", sent.NetAmount, got.NetAmount)
	}
}

func TestHub_MultipleSubscribers(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	first := dial(t, server)
	defer first.Close()
	second := dial(t, server)
	defer second.Close()
	waitForSubscribers(t, hub, 2)

	hub.Publish(context.Background(), domain.LedgerEvent{
		Kind: domain.EventDuelCreated,
		Duel: domain.Identity{7},
	})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got domain.LedgerEvent
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read event: %v", err)
		}
		if got.Kind != domain.EventDuelCreated {
			t.Errorf("expected %s, got %s", domain.EventDuelCreated, got.Kind)
		}
	}
}

func TestHub_DisconnectRemovesSubscriber(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)

	// Publishing into an empty hub is a no-op, not a panic.
	hub.Publish(context.Background(), domain.LedgerEvent{Kind: domain.EventDuelCreated})
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil)

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	waitForSubscribers(t, hub, 1)

	if err := hub.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	// Double close should be safe.
	if err := hub.Close(); err != nil {
		t.Errorf("double Close: %v", err)
	}

	// The client sees the connection end.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.SendBuffer = 1
	hub := NewHub(&cfg)
	defer hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	// The client never reads; the hub must keep accepting publishes.
	conn := dial(t, server)
	defer conn.Close()
	waitForSubscribers(t, hub, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			hub.Publish(context.Background(), domain.LedgerEvent{Kind: domain.EventSupportPlaced})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

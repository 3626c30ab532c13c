package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default(), nil)

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default(), nil)
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default(), nil)

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	msg := NewMessage(EntityCompletion, ActionCreated, "c42", map[string]any{"chore_id": "ch1"})
	hub.Broadcast(msg)

	// Check both clients received the message
	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "completion_created" {
				t.Errorf("expected type completion_created, got %s", got.Type)
			}
			if got.Entity != "completion" {
				t.Errorf("expected entity completion, got %s", got.Entity)
			}
			if got.ID != "c42" {
				t.Errorf("expected id c42, got %s", got.ID)
			}
			if got.Extra["chore_id"] != "ch1" {
				t.Errorf("expected extra chore_id ch1, got %v", got.Extra)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default(), nil)
	// Should not panic
	msg := NewMessage(EntityChore, ActionDeleted, "ch1", nil)
	hub.Broadcast(msg)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default(), nil)

	c := mockClient(hub)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("test", "fill", fmt.Sprint(i), nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(NewMessage("test", "dropped", "999", nil))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	tests := []struct {
		entity, action, want string
	}{
		{EntityBadge, ActionEarned, "badge_earned"},
		{EntityInstance, ActionDue, "instance_due"},
		{EntityAssignment, ActionApplied, "assignment_applied"},
		{EntityMember, ActionUpdated, "member_updated"},
	}
	for _, tt := range tests {
		msg := NewMessage(tt.entity, tt.action, "x", nil)
		if msg.Type != tt.want {
			t.Errorf("NewMessage(%s, %s).Type = %s, want %s", tt.entity, tt.action, msg.Type, tt.want)
		}
		if msg.Entity != tt.entity || msg.Action != tt.action || msg.ID != "x" {
			t.Errorf("NewMessage(%s, %s) = %+v", tt.entity, tt.action, msg)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default(), nil)
	var wg sync.WaitGroup

	// Spawn goroutines that register, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage("test", "concurrent", "", nil))
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

type countingObserver struct {
	mu        sync.Mutex
	connected int
	departed  int
}

func (o *countingObserver) ClientConnected() {
	o.mu.Lock()
	o.connected++
	o.mu.Unlock()
}

func (o *countingObserver) ClientDisconnected() {
	o.mu.Lock()
	o.departed++
	o.mu.Unlock()
}

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	hub := NewHub(slog.Default(), obs)

	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	if obs.connected != 1 || obs.departed != 1 {
		t.Errorf("observer = %d connected, %d departed; want 1, 1", obs.connected, obs.departed)
	}
}

func TestHandleWebSocket(t *testing.T) {
	hub := NewHub(slog.Default(), nil)
	srv := httptest.NewServer(HandleWebSocket(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(NewMessage(EntityBadge, ActionEarned, "streak-3", map[string]any{"member_id": "m1"}))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "badge_earned" || got.ID != "streak-3" {
		t.Errorf("message = %+v", got)
	}

	conn.Close(ws.StatusNormalClosure, "")
	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandleWebSocketOrigin(t *testing.T) {
	hub := NewHub(slog.Default(), nil)
	srv := httptest.NewServer(HandleWebSocket(hub, []string{"chores.example.com"}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	tests := []struct {
		origin string
		ok     bool
	}{
		{"https://chores.example.com", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			conn, _, err := ws.Dial(ctx, url, &ws.DialOptions{
				HTTPHeader: http.Header{"Origin": {tt.origin}},
			})
			if tt.ok {
				if err != nil {
					t.Fatalf("dial: %v", err)
				}
				conn.CloseNow()
				return
			}
			if err == nil {
				conn.CloseNow()
				t.Error("expected dial to be rejected")
			}
		})
	}
}

package ws

import (
	"context"
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/search"
)

func startHub(t *testing.T, onCancel func()) (*Hub, *websocket.Conn, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil)
	hub.Cancel = onCancel
	ctx, stop := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		stop()
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			stop()
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return hub, conn, stop
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestProgressBroadcast(t *testing.T) {
	hub, conn, stop := startHub(t, nil)
	defer stop()

	hub.ProgressSink()(search.Progress{Processed: 10, Pruned: 5, Total: 100, ETA: 2 * time.Second, Threshold: math.Inf(-1)})
	msg := readMessage(t, conn)
	if msg.Type != TypeProgress {
		t.Fatalf("got type %q, want %q", msg.Type, TypeProgress)
	}
	var p map[string]any
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatal(err)
	}
	if p["processed"] != 10.0 || p["total"] != 100.0 {
		t.Errorf("got payload %v", p)
	}
	if p["threshold"] != nil {
		t.Errorf("got threshold %v, want null", p["threshold"])
	}
	if p["etaSeconds"] != 2.0 {
		t.Errorf("got eta %v, want 2", p["etaSeconds"])
	}

	hub.ProgressSink()(search.Progress{Threshold: 42.5})
	msg = readMessage(t, conn)
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatal(err)
	}
	if p["threshold"] != 42.5 {
		t.Errorf("got threshold %v, want 42.5", p["threshold"])
	}
}

func TestResultBroadcast(t *testing.T) {
	hub, conn, stop := startHub(t, nil)
	defer stop()

	res := search.Result{Stats: search.Stats{Total: 8, Processed: 8}}
	if err := hub.PublishResult("run-1", res); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	var got struct {
		ID    string       `json:"id"`
		Stats search.Stats `json:"stats"`
	}
	if err := json.Unmarshal(msg.Payload, &got); err != nil {
		t.Fatal(err)
	}
	if msg.Type != TypeResult || got.ID != "run-1" || got.Stats.Total != 8 {
		t.Errorf("got %s %+v", msg.Type, got)
	}
}

func TestClientCancel(t *testing.T) {
	called := make(chan struct{})
	_, conn, stop := startHub(t, func() { close(called) })
	defer stop()

	if err := conn.WriteJSON(Message{Type: TypeCancel}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("cancel not delivered")
	}
}

func TestPublishAfterStop(t *testing.T) {
	hub := NewHub(nil)
	ctx, stop := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(finished)
	}()
	stop()
	<-finished

	// fill the buffer so the closed hub is the only way out
	for i := 0; i < cap(hub.Broadcast); i++ {
		hub.Broadcast <- nil
	}
	if err := hub.Publish(TypeProgress, 1); err != ErrClosed {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

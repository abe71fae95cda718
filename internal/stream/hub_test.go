package stream

import (
	"encoding/json"
	"testing"
)

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub()
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}

	h.Register(c)
	if h.ClientCount() != 1 {
		t.Errorf("count = %d, want 1", h.ClientCount())
	}

	h.Unregister("c1")
	if h.ClientCount() != 0 {
		t.Errorf("count = %d, want 0", h.ClientCount())
	}
	if _, open := <-c.Send; open {
		t.Error("send channel should be closed after unregister")
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	h.Register(c)

	h.Broadcast(map[string]int{"players": 3})

	select {
	case msg := <-c.Send:
		var got map[string]int
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatal(err)
		}
		if got["players"] != 3 {
			t.Errorf("payload = %v", got)
		}
	default:
		t.Fatal("no message delivered")
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub()
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	h.Register(c)

	h.Broadcast("first")
	h.Broadcast("second") // channel full, must not block

	if h.ClientCount() != 1 {
		t.Error("client should remain registered")
	}
}

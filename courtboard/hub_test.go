package courtboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("room"))
		if !hub.Register(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return hub, server, cancel
}

func dial(t *testing.T, server *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForRoomSize(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("room %s size = %d, want %d", room, hub.RoomSize(room), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesOnlyItsRoom(t *testing.T) {
	hub, server, _ := startHub(t)
	inRoom := dial(t, server, "tournament-1")
	otherRoom := dial(t, server, "tournament-2")
	waitForRoomSize(t, hub, "tournament-1", 1)
	waitForRoomSize(t, hub, "tournament-2", 1)

	hub.BroadcastToRoom("tournament-1", map[string]string{"type": "MATCH_STARTED"})
	hub.BroadcastToRoom("tournament-1", map[string]string{"type": "MATCH_QUEUED"})

	for _, want := range []string{"MATCH_STARTED", "MATCH_QUEUED"} {
		inRoom.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := inRoom.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var event map[string]string
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("frame %q is not one JSON event: %v", data, err)
		}
		if event["type"] != want {
			t.Fatalf("event type = %q, want %q", event["type"], want)
		}
	}

	otherRoom.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, data, err := otherRoom.ReadMessage(); err == nil {
		t.Fatalf("other room received %q", data)
	}
}

func TestClosedConnectionLeavesRoom(t *testing.T) {
	hub, server, _ := startHub(t)
	conn := dial(t, server, "tournament-1")
	waitForRoomSize(t, hub, "tournament-1", 1)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitForRoomSize(t, hub, "tournament-1", 0)
}

func TestStoppedHubRejectsClients(t *testing.T) {
	hub, server, cancel := startHub(t)
	conn := dial(t, server, "tournament-1")
	waitForRoomSize(t, hub, "tournament-1", 1)

	cancel()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection still open after hub stopped")
	}
	waitForRoomSize(t, hub, "tournament-1", 0)

	if hub.Register(NewClient(hub, nil, "tournament-1")) {
		t.Fatal("Register succeeded on a stopped hub")
	}
}

package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitSubscribed(t *testing.T, h *Hub, marketID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		n := len(h.subs[marketID])
		h.mu.RUnlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("subscription not registered")
}

func TestHubBroadcastAndPingConcurrent(t *testing.T) {
	hub := NewHub(func(r *http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "m1"}))
	waitSubscribed(t, hub, "m1")

	// broadcasts numa goroutine enquanto o handler responde pings:
	// as escritas na mesma conexão são serializadas pelo lock do client
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.Broadcast(PriceUpdate{MarketID: "m1", Payload: map[string]int{"v": i}})
		}
	}()
	for i := 0; i < 10; i++ {
		require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	}

	pongs, updates := 0, 0
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for pongs < 10 || updates < 50 {
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		switch {
		case msg["type"] == "pong":
			pongs++
		case msg["marketId"] == "m1":
			updates++
		}
	}
	wg.Wait()

	assert.Equal(t, 10, pongs)
	assert.Equal(t, 50, updates)
}

func TestHubBroadcastIgnoresOtherMarkets(t *testing.T) {
	hub := NewHub(func(r *http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "m1"}))
	waitSubscribed(t, hub, "m1")

	hub.Broadcast(PriceUpdate{MarketID: "outro", Payload: "x"})
	hub.Broadcast(PriceUpdate{MarketID: "m1", Payload: "y"})

	var msg map[string]interface{}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "m1", msg["marketId"])
	assert.Equal(t, "y", msg["payload"])
}

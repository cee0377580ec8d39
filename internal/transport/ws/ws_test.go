package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/appareldesk/storefront/internal/hub"
	"github.com/appareldesk/storefront/internal/service/models/stockevent"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h *hub.Hub) (*httptest.Server, string) {
	t.Helper()

	transport := NewTransport(h)
	server := httptest.NewServer(http.HandlerFunc(transport.HandleStockUpdates))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	return server, wsURL
}

func waitForSubscribers(t *testing.T, h *hub.Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for h.Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count never reached %d, have %d", want, h.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStockUpdatesStreamedToObserver(t *testing.T) {
	h := hub.MustNewHub()
	_, wsURL := newTestServer(t, h)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForSubscribers(t, h, 1)

	published := stockevent.New(7, 3, 2, time.Now())
	h.Publish(published)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var got stockevent.Event
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, stockevent.TypeStockUpdate, got.Type)
	assert.EqualValues(t, 7, got.ProductID)
	assert.Equal(t, 3, got.NewStock)
	assert.EqualValues(t, 2, got.Version)
}

func TestEveryObserverReceivesEachEvent(t *testing.T) {
	h := hub.MustNewHub()
	_, wsURL := newTestServer(t, h)

	first, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer first.Close()

	second, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer second.Close()

	waitForSubscribers(t, h, 2)

	h.Publish(stockevent.New(10, 8, 2, time.Now()))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		var got stockevent.Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.EqualValues(t, 10, got.ProductID)
		assert.Equal(t, 8, got.NewStock)
	}
}

func TestObserverDisconnectRemovesSubscriber(t *testing.T) {
	h := hub.MustNewHub()
	_, wsURL := newTestServer(t, h)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	waitForSubscribers(t, h, 1)

	require.NoError(t, conn.Close())

	waitForSubscribers(t, h, 0)

	// Publishing after the disconnect must not block or panic.
	h.Publish(stockevent.New(1, 1, 2, time.Now()))
}

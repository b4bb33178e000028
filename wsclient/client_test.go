package wsclient

import (
	"net"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/ws"
)

func TestBackoff_DoublesPerAttemptUpToCap(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	assert.Equal(t, 100*time.Millisecond, backoff(0, base, max))
	assert.Equal(t, 200*time.Millisecond, backoff(1, base, max))
	assert.Equal(t, 400*time.Millisecond, backoff(2, base, max))
	assert.Equal(t, 800*time.Millisecond, backoff(3, base, max))
	assert.Equal(t, max, backoff(4, base, max))
	assert.Equal(t, max, backoff(20, base, max))

	// Shift overflow must still land on the cap
	assert.Equal(t, max, backoff(70, base, max))
}

func TestConnect_AfterCloseReturnsErrClosed(t *testing.T) {
	c := New(Config{URL: "ws://127.0.0.1:1/ws"})
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Connect(), ErrClosed)
}

func TestConnect_FailureSchedulesReconnect(t *testing.T) {
	c := New(Config{
		URL:       "ws://127.0.0.1:1/ws",
		BaseDelay: time.Minute, // keep the retry from firing during the test
		MaxDelay:  time.Hour,
	})
	defer c.Close()

	require.Error(t, c.Connect())

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, 1, c.attempts)
	assert.NotNil(t, c.retryTimer)
	assert.Equal(t, StateDisconnected, c.state)
}

func TestConnect_FailureWhileHiddenSkipsReconnect(t *testing.T) {
	c := New(Config{
		URL:     "ws://127.0.0.1:1/ws",
		Visible: func() bool { return false },
	})
	defer c.Close()

	require.Error(t, c.Connect())

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Zero(t, c.attempts)
	assert.Nil(t, c.retryTimer, "hidden client must not schedule a redial")
}

func TestConnect_StopsAtAttemptCeiling(t *testing.T) {
	c := New(Config{
		URL:         "ws://127.0.0.1:1/ws",
		MaxAttempts: 2,
		BaseDelay:   time.Minute,
		MaxDelay:    time.Hour,
	})
	defer c.Close()

	c.mu.Lock()
	c.attempts = 2
	c.mu.Unlock()

	require.Error(t, c.Connect())

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, 2, c.attempts, "attempts must not grow past the ceiling")
	assert.Nil(t, c.retryTimer)
}

func TestClose_DuringDialDiscardsConnection(t *testing.T) {
	hub := ws.NewHub()
	url := startHubServer(t, hub)

	// The NetDial hook fires mid-Connect, after the closed check at the
	// top but before the connection is adopted.
	var c *Client
	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		NetDial: func(network, addr string) (net.Conn, error) {
			conn, err := net.Dial(network, addr)
			if err == nil {
				c.Close()
			}
			return conn, err
		},
	}
	c = New(Config{URL: url, Dialer: dialer})

	require.ErrorIs(t, c.Connect(), ErrClosed)
	assert.Equal(t, StateDisconnected, c.State())

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Nil(t, c.conn, "a connection adopted after Close would leak")
}

func TestOnEvent_LatestRegistrationWins(t *testing.T) {
	c := New(Config{URL: "ws://127.0.0.1:1/ws"})
	defer c.Close()

	var first, second int
	c.OnEvent(func(Event) { first++ })
	c.OnEvent(func(Event) { second++ })

	c.dispatch(Event{Type: EventPong})

	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestSend_DroppedWhenNotOpen(t *testing.T) {
	c := New(Config{URL: "ws://127.0.0.1:1/ws"})
	defer c.Close()

	assert.NotPanics(t, func() {
		c.Send(map[string]string{"type": EventPing})
	})
}

// startHubServer runs a real broadcaster on a loopback port and returns its
// ws:// URL.
func startHubServer(t *testing.T, hub *ws.Hub) string {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, fiberws.New(hub.Handle))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/ws"
}

func waitForEvent(t *testing.T, events <-chan Event, eventType string) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Type == eventType {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}

func TestClient_ReceivesBroadcastsEndToEnd(t *testing.T) {
	hub := ws.NewHub()
	url := startHubServer(t, hub)

	events := make(chan Event, 16)
	c := New(Config{URL: url})
	c.OnEvent(func(e Event) { events <- e })
	require.NoError(t, c.Connect())
	defer c.Close()

	waitForEvent(t, events, EventConnectionEstablished)

	require.Eventually(t, func() bool { return hub.Count() == 1 },
		3*time.Second, 10*time.Millisecond)

	hub.Broadcast(ws.PointsAwarded(7, 150, "incident response"))
	got := waitForEvent(t, events, EventPointsAwarded)
	assert.EqualValues(t, 7, got.EmployeeID)
	assert.Equal(t, 150, got.Points)
	assert.Equal(t, "incident response", got.Reason)

	hub.Broadcast(ws.RankChanged(2))
	assert.EqualValues(t, 2, waitForEvent(t, events, EventRankChanged).NewRank)
}

func TestClient_PingPongEndToEnd(t *testing.T) {
	hub := ws.NewHub()
	url := startHubServer(t, hub)

	events := make(chan Event, 16)
	c := New(Config{URL: url})
	c.OnEvent(func(e Event) { events <- e })
	require.NoError(t, c.Connect())
	defer c.Close()

	waitForEvent(t, events, EventConnectionEstablished)

	c.Send(map[string]string{"type": EventPing})
	pong := waitForEvent(t, events, EventPong)
	assert.NotEmpty(t, pong.Timestamp)
}

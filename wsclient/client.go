// wsclient/client.go - Reconnecting notification client
package wsclient

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
)

// State is the connection lifecycle phase.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "disconnected"
	}
}

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("client closed")

// Event type tags mirrored from the broadcast protocol.
const (
	EventConnectionEstablished = "CONNECTION_ESTABLISHED"
	EventPointsAwarded         = "POINTS_AWARDED"
	EventAchievementUnlocked   = "ACHIEVEMENT_UNLOCKED"
	EventRankChanged           = "RANK_CHANGED"
	EventPing                  = "PING"
	EventPong                  = "PONG"
	EventError                 = "ERROR"
)

// Event is the flat union of frames the broadcaster sends; only the fields
// matching Type are populated.
type Event struct {
	Type            string `json:"type"`
	EmployeeID      uint   `json:"employeeId,omitempty"`
	Points          int    `json:"points,omitempty"`
	Reason          string `json:"reason,omitempty"`
	AchievementName string `json:"achievementName,omitempty"`
	NewRank         int64  `json:"newRank,omitempty"`
	Message         string `json:"message,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
}

// Config controls dialing and the reconnect schedule.
type Config struct {
	URL string

	// Backoff: delay for attempt n is BaseDelay << n, capped at MaxDelay.
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int

	// Visible gates reconnects the way the browser client gates them on
	// tab visibility: while it reports false, no reconnect is scheduled.
	// Callers resume with Connect once visible again. Defaults to always
	// visible.
	Visible func() bool

	Dialer *websocket.Dialer
}

func (cfg *Config) applyDefaults() {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.Visible == nil {
		cfg.Visible = func() bool { return true }
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
}

// Client maintains one connection to the notification broadcaster and
// redials with exponential backoff when it drops.
type Client struct {
	cfg Config

	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	attempts   int
	handler    func(Event)
	retryTimer *time.Timer
	closed     bool
}

func New(cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{cfg: cfg}
}

// OnEvent registers the inbound event handler. Only one handler is active
// at a time; the latest registration wins.
func (c *Client) OnEvent(handler func(Event)) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// State returns the current lifecycle phase.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the broadcaster. On success the retry counter resets and a
// read loop starts; on failure a reconnect is scheduled per the backoff
// policy and the dial error is returned. Calling Connect while already
// connecting or open is a no-op.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, _, err := c.cfg.Dialer.Dial(c.cfg.URL, nil)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		c.scheduleReconnect()
		return err
	}

	c.mu.Lock()
	if c.closed {
		// Close raced the dial; discard the fresh connection
		c.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Send serializes and writes a message, fire-and-forget. Dropped silently
// when the connection is not open.
func (c *Client) Send(v interface{}) {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || conn == nil {
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

// Close tears the client down; no further reconnects are attempted.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.state = StateDisconnected
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		c.dispatch(event)
	}

	conn.Close()

	c.mu.Lock()
	closed := c.closed
	if c.conn == conn {
		c.conn = nil
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	if !closed {
		c.scheduleReconnect()
	}
}

func (c *Client) dispatch(event Event) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		handler(event)
	}
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateDisconnected {
		return
	}
	if !c.cfg.Visible() {
		// Hidden: skip scheduling; the owner reconnects on visibility.
		return
	}
	if c.attempts >= c.cfg.MaxAttempts {
		log.Printf("wsclient: giving up after %d reconnect attempts", c.attempts)
		return
	}

	delay := backoff(c.attempts, c.cfg.BaseDelay, c.cfg.MaxDelay)
	c.attempts++
	c.retryTimer = time.AfterFunc(delay, func() {
		_ = c.Connect()
	})
}

// backoff computes the delay before reconnect attempt n: base doubled per
// attempt, bounded above by max.
func backoff(attempt int, base, max time.Duration) time.Duration {
	d := base << uint(attempt)
	if d <= 0 || d > max {
		return max
	}
	return d
}

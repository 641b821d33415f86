// Package pushlistener maintains a persistent WebSocket connection to the
// vendor cloud's relay endpoint and dispatches push notifications to
// registered listeners. It reconnects with exponential backoff, doubling
// from 5s up to a 300s ceiling and resetting to 5s after every successful
// connection, per the coordinator's redesigned reconnect policy.
package pushlistener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"climatehub.dev/hub/internal/clock"
	"climatehub.dev/hub/internal/logging"
	"climatehub.dev/hub/internal/metrics"
	"climatehub.dev/hub/internal/protocol"
	"github.com/gorilla/websocket"
)

const (
	initialBackoff = 5 * time.Second
	maxBackoff     = 300 * time.Second
	pingInterval   = 10 * time.Second
)

// Message is one push notification payload, already stripped of the
// session envelope.
type Message struct {
	EndpointID string
	Params     map[string]int
}

// Listener is the function invoked for every push message received.
type Listener func(Message)

// Dialer abstracts websocket.DefaultDialer so tests can substitute a fake
// connection without a real network round trip.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, error)
}

// Conn is the subset of *websocket.Conn the push listener needs.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type gorillaDialer struct{}

func (gorillaDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, urlStr, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Client connects to the relay endpoint for a region and runs until its
// context is canceled, reconnecting on any failure.
type Client struct {
	dialer       Dialer
	region       protocol.Region
	token        string
	loginSession string
	userID       string
	clock        clock.Clock
	logger       *logging.Logger
	metrics      *metrics.Collector

	mu           sync.RWMutex
	listeners    []Listener
	rawListeners []RawListener
}

// New builds a Client. A nil dialer uses the real gorilla/websocket
// dialer; a nil clock uses the real wall clock. loginSession and userID
// are carried in the init frame's scope, identifying which cloud session
// the relay should bind push notifications to.
func New(region protocol.Region, token, loginSession, userID string, dialer Dialer, clk clock.Clock, logger *logging.Logger, m *metrics.Collector) *Client {
	if dialer == nil {
		dialer = gorillaDialer{}
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		dialer:       dialer,
		region:       region,
		token:        token,
		loginSession: loginSession,
		userID:       userID,
		clock:        clk,
		logger:       logger.WithComponent("pushlistener"),
		metrics:      m,
	}
}

// Subscribe registers fn to receive every push message that names a
// specific endpoint, from here on.
func (c *Client) Subscribe(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// RawListener receives every non-session-control frame (anything but
// init/initk/ping/pingk) verbatim, regardless of whether it also carried
// an endpointId and was dispatched to a Listener.
type RawListener func(raw []byte)

// SubscribeRaw registers fn to receive every non-session-control frame
// unchanged, for forwarding to downstream fan-out subscribers that have
// no notion of a specific device.
func (c *Client) SubscribeRaw(fn RawListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rawListeners = append(c.rawListeners, fn)
}

// Run connects and processes messages until ctx is canceled, reconnecting
// with exponential backoff on any connection error.
func (c *Client) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		established, err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Warn("push listener connection failed", "error", err, "retry_in", backoff)
		}
		c.metrics.IncPushReconnect()

		if established {
			backoff = initialBackoff
		}

		timer := c.clock.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		}

		if !established {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// initScope carries the cloud session identity the relay binds push
// notifications to.
type initScope struct {
	LoginSession string `json:"loginsession"`
	UserID       string `json:"userid"`
}

// initFrame is the session-open handshake frame, sent once per connection.
type initFrame struct {
	Data      map[string]string `json:"data"`
	MessageID string            `json:"messageid"`
	MsgType   string            `json:"msgtype"`
	Scope     initScope         `json:"scope"`
}

// pingFrame is sent every pingInterval to keep the relay session alive.
type pingFrame struct {
	MessageID string `json:"messageid"`
	MsgType   string `json:"msgtype"`
}

// runOnce dials, handshakes, and reads messages until the connection
// fails or ctx is canceled. The returned bool reports whether the session
// handshake (init/initk) completed, which resets the backoff in Run even
// though this particular connection attempt ultimately failed.
func (c *Client) runOnce(ctx context.Context) (established bool, err error) {
	header := http.Header{}
	header.Set("CompanyId", protocol.CompanyID)
	header.Set("Origin", protocol.APIBaseURL(c.region))
	header.Set("User-Agent", protocol.SpoofUserAgent)
	header.Set("X-License-Id", protocol.LicenseID)
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	wsURL := protocol.WebSocketBaseURL(c.region) + "/appsync/apprelay/relayconnect"
	if _, err := url.Parse(wsURL); err != nil {
		return false, fmt.Errorf("pushlistener: invalid url: %w", err)
	}

	conn, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return false, fmt.Errorf("pushlistener: dial: %w", err)
	}
	defer conn.Close()

	now := c.clock.Now().Unix()
	init := initFrame{
		Data:      map[string]string{"relayrule": "share"},
		MessageID: fmt.Sprintf("%d000", now),
		MsgType:   "init",
		Scope:     initScope{LoginSession: c.loginSession, UserID: c.userID},
	}
	body, err := json.Marshal(init)
	if err != nil {
		return false, fmt.Errorf("pushlistener: build init frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return false, fmt.Errorf("pushlistener: send init: %w", err)
	}

	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.pingLoop(conn, stopPing)

	for {
		if ctx.Err() != nil {
			return established, nil
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return established, fmt.Errorf("pushlistener: read: %w", err)
		}
		ok, dead := c.handleFrame(data)
		if ok {
			established = true
		}
		if dead {
			return established, fmt.Errorf("pushlistener: session reported non-zero status")
		}
	}
}

// pingLoop sends a keepalive ping frame every pingInterval until stop
// closes, which happens when runOnce returns for any reason.
func (c *Client) pingLoop(conn Conn, stop <-chan struct{}) {
	timer := c.clock.NewTimer(pingInterval)
	defer timer.Stop()
	for {
		select {
		case <-timer.C():
			pf := pingFrame{MessageID: fmt.Sprintf("%d000", c.clock.Now().Unix()), MsgType: "ping"}
			body, _ := json.Marshal(pf)
			_ = conn.WriteMessage(websocket.TextMessage, body)
			timer.Reset(pingInterval)
		case <-stop:
			return
		}
	}
}

type frame struct {
	MsgType string `json:"msgtype"`
	Status  int    `json:"status"`
	Data    struct {
		EndpointID string         `json:"endpointId"`
		Params     map[string]int `json:"params"`
	} `json:"data"`
}

// handleFrame processes one inbound frame. established reports whether
// this was the "initk" handshake acknowledgment with status==0; dead
// reports whether an "initk" or "pingk" carried a non-zero status, which
// per the session protocol means the session has died and the connection
// must be torn down and reconnected.
func (c *Client) handleFrame(data []byte) (established, dead bool) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.logger.Warn("pushlistener: malformed frame", "error", err)
		return false, false
	}

	switch f.MsgType {
	case "initk":
		if f.Status != 0 {
			return false, true
		}
		c.logger.Debug("push session established")
		return true, false
	case "pingk":
		if f.Status != 0 {
			return false, true
		}
	case "push":
		c.metrics.IncPushMessage()
		if f.Data.EndpointID != "" {
			c.dispatch(Message{EndpointID: f.Data.EndpointID, Params: f.Data.Params})
		} else {
			c.dispatchRaw(data)
		}
	default:
		c.dispatchRaw(data)
	}
	return false, false
}

func (c *Client) dispatch(msg Message) {
	c.mu.RLock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(msg)
	}
}

func (c *Client) dispatchRaw(data []byte) {
	c.mu.RLock()
	listeners := make([]RawListener, len(c.rawListeners))
	copy(listeners, c.rawListeners)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(data)
	}
}

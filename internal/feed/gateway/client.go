// Package gateway implements feed.Client against a broker quote gateway
// speaking JSON over WebSocket. One connection carries the live tick push
// and the request/response history fetches.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"txf-bar-engine/internal/domain"
	"txf-bar-engine/internal/feed"
)

// Config configures the gateway client.
type Config struct {
	// Endpoint is the gateway WebSocket URL.
	Endpoint string
	// APIKey and SecretKey authenticate the login request.
	APIKey    string
	SecretKey string
	// Contract is the contract alias to subscribe, e.g. TXFR1. The gateway
	// answers the subscribe with the resolved contract code.
	Contract string

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	// CallTimeout bounds one fetch request/response round trip.
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 1 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 30 * time.Second
	}
	return c
}

// Client is a feed.Client backed by one gateway WebSocket connection.
type Client struct {
	cfg    Config
	logger *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool
	reqID  atomic.Uint64

	// pending maps request id to the channel waiting for its response.
	pending   map[uint64]chan *envelope
	pendingMu sync.Mutex

	handlerMu sync.RWMutex
	handler   feed.TickHandler

	statusMu  sync.Mutex
	connected bool
	contract  string

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// New creates a gateway client, connects, logs in and subscribes to the
// configured contract. A failed connect or login returns the client in
// not-connected state together with the error, so a caller may keep it and
// serve status queries while the feed is down.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	c := &Client{
		cfg:     cfg.withDefaults(),
		logger:  logger,
		pending: make(map[uint64]chan *envelope),
		done:    make(chan struct{}),
	}
	if c.logger == nil {
		c.logger = log.Default()
	}

	err := c.connect(ctx)

	c.wg.Add(1)
	go c.readLoop()
	c.wg.Add(1)
	go c.pingLoop()

	if err != nil {
		return c, err
	}

	if err := c.session(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// connect establishes the WebSocket connection.
func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// session performs login and contract subscription on a fresh connection.
func (c *Client) session(ctx context.Context) error {
	if _, err := c.call(ctx, envelope{
		Op:        opLogin,
		APIKey:    c.cfg.APIKey,
		SecretKey: c.cfg.SecretKey,
	}); err != nil {
		return fmt.Errorf("gateway login: %w", err)
	}

	resp, err := c.call(ctx, envelope{
		Op:       opSubscribe,
		Contract: c.cfg.Contract,
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.cfg.Contract, err)
	}

	c.statusMu.Lock()
	c.connected = true
	c.contract = resp.Contract
	c.statusMu.Unlock()

	c.logger.Printf("gateway session up, contract %s", resp.Contract)
	return nil
}

// call sends one request and waits for the matching response.
func (c *Client) call(ctx context.Context, req envelope) (*envelope, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	req.ID = c.reqID.Add(1)

	respCh := make(chan *envelope, 1)
	c.pendingMu.Lock()
	c.pending[req.ID] = respCh
	c.pendingMu.Unlock()

	drop := func() {
		c.pendingMu.Lock()
		delete(c.pending, req.ID)
		c.pendingMu.Unlock()
	}

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		drop()
		return nil, feed.ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		drop()
		return nil, fmt.Errorf("write %s: %w", req.Op, err)
	}

	select {
	case resp := <-respCh:
		if resp == nil {
			return nil, fmt.Errorf("%s: connection lost", req.Op)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("%s: gateway error: %s", req.Op, resp.Error)
		}
		return resp, nil
	case <-time.After(c.cfg.CallTimeout):
		drop()
		return nil, fmt.Errorf("%s: timeout after %s", req.Op, c.cfg.CallTimeout)
	case <-c.done:
		return nil, fmt.Errorf("client closed")
	case <-ctx.Done():
		drop()
		return nil, ctx.Err()
	}
}

// FetchBars implements feed.Client.
func (c *Client) FetchBars(ctx context.Context, contract string, start, end time.Time) ([]domain.RawBar, error) {
	if !c.Status().Connected {
		return nil, feed.ErrNotConnected
	}

	resp, err := c.call(ctx, envelope{
		Op:       opKBars,
		Contract: contract,
		Start:    formatDate(start),
		End:      formatDate(end),
	})
	if err != nil {
		return nil, err
	}

	bars := make([]domain.RawBar, 0, len(resp.Bars))
	for _, b := range resp.Bars {
		bars = append(bars, b.toRawBar())
	}
	return bars, nil
}

// FetchTicks implements feed.Client.
func (c *Client) FetchTicks(ctx context.Context, contract string, date time.Time) ([]domain.RawTick, error) {
	if !c.Status().Connected {
		return nil, feed.ErrNotConnected
	}

	resp, err := c.call(ctx, envelope{
		Op:       opTicks,
		Contract: contract,
		Date:     formatDate(date),
	})
	if err != nil {
		return nil, err
	}

	ticks := make([]domain.RawTick, 0, len(resp.Ticks))
	for _, t := range resp.Ticks {
		ticks = append(ticks, t.toRawTick())
	}
	return ticks, nil
}

// OnTick implements feed.Client.
func (c *Client) OnTick(h feed.TickHandler) {
	c.handlerMu.Lock()
	c.handler = h
	c.handlerMu.Unlock()
}

// Status implements feed.Client.
func (c *Client) Status() domain.FeedStatus {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return domain.FeedStatus{Connected: c.connected, Contract: c.contract}
}

// Close closes the connection and stops the background loops.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.pendingMu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	c.statusMu.Lock()
	c.connected = false
	c.statusMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads frames and dispatches them to waiters and the tick handler.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.cfg.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			c.markDisconnected()

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay *= 2
			if reconnectDelay > c.cfg.MaxReconnectDelay {
				reconnectDelay = c.cfg.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.cfg.ReconnectDelay

		c.handleMessage(message)
	}
}

// handleMessage routes one frame: responses go to the pending waiter,
// pushed ticks go to the registered handler. The handler is invoked
// outside every client lock.
func (c *Client) handleMessage(message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.logger.Printf("gateway: bad frame: %v", err)
		return
	}

	if env.ID != 0 {
		c.pendingMu.Lock()
		ch, ok := c.pending[env.ID]
		if ok {
			delete(c.pending, env.ID)
		}
		c.pendingMu.Unlock()

		if ok {
			ch <- &env
		}
		return
	}

	if env.Op == opTick && env.Tick != nil {
		c.handlerMu.RLock()
		h := c.handler
		c.handlerMu.RUnlock()

		if h != nil {
			h(env.Exchange, env.Tick.toRawTick())
		}
	}
}

// markDisconnected flips status and fails every pending call.
func (c *Client) markDisconnected() {
	c.statusMu.Lock()
	c.connected = false
	c.statusMu.Unlock()

	c.pendingMu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
}

// reconnect redials after the backoff delay and restores the session.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.logger.Printf("gateway reconnect failed: %v", err)
		return
	}

	if err := c.session(ctx); err != nil {
		c.logger.Printf("gateway session restore failed: %v", err)
	}
}

// pingLoop keeps the connection alive with ping frames.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			if conn != nil {
				conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.logger.Printf("gateway ping failed: %v", err)
				}
			}
			c.connMu.Unlock()
		}
	}
}

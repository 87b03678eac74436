// Package stream maintains a WebSocket subscription to the exchange's
// book-ticker feed and exposes the most recent quote. The grid strategy
// uses it as a fresher fill-price reference between polling cycles; the
// feed is advisory, so a dropped connection only makes quotes stale, never
// fails a strategy cycle.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Config holds stream connection settings.
type Config struct {
	URL                string        // e.g. wss://ws.backpack.exchange
	Symbol             string        // e.g. SOL_USDC
	HandshakeTimeout   time.Duration // default 10s
	ReadTimeout        time.Duration // default 30s
	PingInterval       time.Duration // default 15s
	ReconnectBaseDelay time.Duration // default 1s
	ReconnectMaxDelay  time.Duration // default 60s
}

func (c *Config) applyDefaults() {
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = time.Second
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = time.Minute
	}
}

// Quote is the latest top-of-book snapshot.
type Quote struct {
	Symbol  string
	BestBid decimal.Decimal
	BestAsk decimal.Decimal
	At      time.Time
}

// Mid returns the midpoint of the best bid and ask.
func (q Quote) Mid() decimal.Decimal {
	return q.BestBid.Add(q.BestAsk).Div(decimal.NewFromInt(2))
}

// Client subscribes to the book-ticker stream for one symbol and keeps the
// latest quote. Reconnects with exponential backoff.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	quote Quote
	has   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a stream client.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

// Start begins the connect/read loop.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop tears the connection down and waits for the loop to exit.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Quote returns the latest quote and whether one has been received.
// Callers must check At for staleness before trusting the prices.
func (c *Client) Quote() (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quote, c.has
}

// run keeps a single websocket session alive until the context terminates.
func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()

	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = c.cfg.ReconnectBaseDelay
	backoffCfg.MaxInterval = c.cfg.ReconnectMaxDelay

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("stream session ended, reconnecting", "error", err)

		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop {
			sleep = c.cfg.ReconnectMaxDelay
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// subscribeMessage is the stream subscription request.
type subscribeMessage struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

// session dials, subscribes, and reads until the connection fails.
func (c *Client) session(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}

	// Unblock ReadMessage when the context is cancelled.
	sessionDone := make(chan struct{})
	defer close(sessionDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-sessionDone:
			conn.Close()
		}
	}()

	sub := subscribeMessage{
		Method: "SUBSCRIBE",
		Params: []string{"bookTicker." + c.cfg.Symbol},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	c.logger.Info("stream connected", "url", c.cfg.URL, "symbol", c.cfg.Symbol)

	// Keepalive pings; the server closes idle connections.
	pingTicker := time.NewTicker(c.cfg.PingInterval)
	defer pingTicker.Stop()
	go func() {
		for {
			select {
			case <-sessionDone:
				return
			case <-pingTicker.C:
				deadline := time.Now().Add(time.Second)
				if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
					return
				}
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		quote, ok := parseBookTicker(data)
		if !ok {
			continue
		}

		c.mu.Lock()
		c.quote = quote
		c.has = true
		c.mu.Unlock()
	}
}

// bookTickerEnvelope is the wire format of a stream push.
type bookTickerEnvelope struct {
	Stream string `json:"stream"`
	Data   struct {
		Event   string `json:"e"`
		Symbol  string `json:"s"`
		BestAsk string `json:"a"`
		BestBid string `json:"b"`
	} `json:"data"`
}

// parseBookTicker extracts a quote from a raw stream message. Returns
// ok=false for non-ticker messages (subscription acks, other streams) and
// malformed payloads.
func parseBookTicker(data []byte) (Quote, bool) {
	var env bookTickerEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Quote{}, false
	}
	if env.Data.Event != "bookTicker" || env.Data.Symbol == "" {
		return Quote{}, false
	}

	bid, err := decimal.NewFromString(env.Data.BestBid)
	if err != nil {
		return Quote{}, false
	}
	ask, err := decimal.NewFromString(env.Data.BestAsk)
	if err != nil {
		return Quote{}, false
	}

	return Quote{
		Symbol:  env.Data.Symbol,
		BestBid: bid,
		BestAsk: ask,
		At:      time.Now(),
	}, true
}

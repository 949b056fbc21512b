package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfirmerConfig configures WebSocket confirmer behavior.
type WSConfirmerConfig struct {
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfirmerConfig returns default confirmer configuration.
func DefaultWSConfirmerConfig() WSConfirmerConfig {
	return WSConfirmerConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// WSConfirmer waits for transaction confirmation via signatureSubscribe.
// Signature subscriptions are one-shot: the node cancels them after the
// signature reaches the requested commitment, so there is no
// resubscription state to maintain across notifications.
type WSConfirmer struct {
	endpoint string
	config   WSConfirmerConfig

	conn    *websocket.Conn
	writeMu sync.Mutex

	requestID atomic.Uint64
	closed    atomic.Bool

	// mu guards pending (request ID -> waiter, before the node assigns a
	// subscription ID) and subs (subscription ID -> waiter).
	mu      sync.Mutex
	pending map[uint64]*sigWaiter
	subs    map[int64]*sigWaiter

	done chan struct{}
	wg   sync.WaitGroup
}

// sigWaiter carries the outcome of one signature subscription.
type sigWaiter struct {
	result chan error // nil = confirmed without error
}

// NewWSConfirmer connects to the WebSocket endpoint and starts the
// reader and ping loops.
func NewWSConfirmer(ctx context.Context, endpoint string, config *WSConfirmerConfig) (*WSConfirmer, error) {
	cfg := DefaultWSConfirmerConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSConfirmer{
		endpoint: endpoint,
		config:   cfg,
		pending:  make(map[uint64]*sigWaiter),
		subs:     make(map[int64]*sigWaiter),
		done:     make(chan struct{}),
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	c.conn = conn

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// WaitForSignature blocks until the signature reaches confirmed
// commitment, the transaction fails, or ctx is done.
func (c *WSConfirmer) WaitForSignature(ctx context.Context, signature string) error {
	if c.closed.Load() {
		return fmt.Errorf("confirmer closed")
	}

	reqID := c.requestID.Add(1)
	waiter := &sigWaiter{result: make(chan error, 1)}

	c.mu.Lock()
	c.pending[reqID] = waiter
	c.mu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": "confirmed"},
		},
	}
	if err := c.writeJSON(req); err != nil {
		c.dropWaiter(reqID, waiter)
		return fmt.Errorf("subscribe to signature: %w", err)
	}

	select {
	case <-ctx.Done():
		c.dropWaiter(reqID, waiter)
		return ctx.Err()
	case err := <-waiter.result:
		return err
	}
}

// writeJSON serializes writes to the connection.
func (c *WSConfirmer) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteJSON(v)
}

// dropWaiter removes a waiter from whichever map currently holds it.
func (c *WSConfirmer) dropWaiter(reqID uint64, w *sigWaiter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, reqID)
	for subID, waiter := range c.subs {
		if waiter == w {
			delete(c.subs, subID)
		}
	}
}

// wsMessage is a combined envelope for subscription confirmations and
// signature notifications.
type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Error  *rpcError       `json:"error"`
	Params *struct {
		Subscription int64 `json:"subscription"`
		Result       struct {
			Value struct {
				Err interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// readLoop dispatches incoming messages to waiters until the connection
// closes.
func (c *WSConfirmer) readLoop() {
	defer c.wg.Done()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.failAll(fmt.Errorf("websocket read: %w", err))
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch {
		case msg.Method == "signatureNotification" && msg.Params != nil:
			c.mu.Lock()
			waiter := c.subs[msg.Params.Subscription]
			delete(c.subs, msg.Params.Subscription)
			c.mu.Unlock()

			if waiter != nil {
				if txErr := msg.Params.Result.Value.Err; txErr != nil {
					waiter.result <- fmt.Errorf("transaction failed: %v", txErr)
				} else {
					waiter.result <- nil
				}
			}

		case msg.ID != 0:
			// Response to a subscribe request: rekey the waiter by its
			// assigned subscription ID.
			c.mu.Lock()
			waiter := c.pending[msg.ID]
			delete(c.pending, msg.ID)
			if waiter != nil {
				if msg.Error != nil {
					c.mu.Unlock()
					waiter.result <- msg.Error
					continue
				}
				var subID int64
				if err := json.Unmarshal(msg.Result, &subID); err == nil {
					c.subs[subID] = waiter
				}
			}
			c.mu.Unlock()
		}
	}
}

// pingLoop keeps the connection alive.
func (c *WSConfirmer) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// failAll delivers err to every outstanding waiter.
func (c *WSConfirmer) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, w := range c.pending {
		w.result <- err
		delete(c.pending, id)
	}
	for id, w := range c.subs {
		w.result <- err
		delete(c.subs, id)
	}
}

// Close shuts down the connection and fails any outstanding waits.
func (c *WSConfirmer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	err := c.conn.Close()
	c.wg.Wait()
	c.failAll(fmt.Errorf("confirmer closed"))
	return err
}

// Package stream maintains the single server-push connection and delivers
// decoded seat/hold events to subscribers.
package stream

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/logger"
	"seatwatch/pkg/model"
)

// State is the connection state visible to consumers, e.g. a connectivity
// indicator.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

type EventHandler func(model.StreamEvent)

type StateHandler func(State)

type Options struct {
	// URL is the absolute event-stream endpoint.
	URL string
	// Token, when set, supplies the bearer token per connection attempt.
	Token func() string
	// Reconnect enables automatic retry with exponential backoff and
	// jitter. Off by default: the caller then owns retry via Connect.
	Reconnect      bool
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Log            *logger.Logger
}

// Client owns the push connection exclusively. At most one connection is
// live at a time; Connect while connected closes the prior one first.
type Client struct {
	opts Options
	log  *logger.Logger
	http *http.Client

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	gen       uint64
	handlers  map[string]EventHandler
	stateSubs map[string]StateHandler
}

func New(opts Options) *Client {
	if opts.BackoffInitial <= 0 {
		opts.BackoffInitial = time.Second
	}
	if opts.BackoffMax < opts.BackoffInitial {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	return &Client{
		opts: opts,
		log:  opts.Log.Component("stream"),
		// No client-wide timeout: the response body is read for the
		// lifetime of the connection.
		http:      &http.Client{},
		handlers:  make(map[string]EventHandler),
		stateSubs: make(map[string]StateHandler),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers an event handler and returns its id.
func (c *Client) Subscribe(h EventHandler) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.handlers[id] = h
	c.mu.Unlock()
	return id
}

func (c *Client) Unsubscribe(id string) {
	c.mu.Lock()
	delete(c.handlers, id)
	c.mu.Unlock()
}

// OnStateChange registers a state listener and returns its id.
func (c *Client) OnStateChange(h StateHandler) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.stateSubs[id] = h
	c.mu.Unlock()
	return id
}

func (c *Client) RemoveStateListener(id string) {
	c.mu.Lock()
	delete(c.stateSubs, id)
	c.mu.Unlock()
}

// Connect opens a new connection, closing any prior one first. The ctx bounds
// the connection's lifetime.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.setState(gen, StateConnecting)
	go c.run(runCtx, gen)
}

// Disconnect closes the active connection if present. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.setState(gen, StateDisconnected)
}

// setState transitions the state and notifies listeners, unless a newer
// connection generation has taken over. Reports whether gen still owns the
// state.
func (c *Client) setState(gen uint64, s State) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	if c.state == s {
		c.mu.Unlock()
		return true
	}
	c.state = s
	subs := make([]StateHandler, 0, len(c.stateSubs))
	for _, h := range c.stateSubs {
		subs = append(subs, h)
	}
	c.mu.Unlock()

	for _, h := range subs {
		h(s)
	}
	return true
}

func (c *Client) run(ctx context.Context, gen uint64) {
	if !c.opts.Reconnect {
		err := c.streamOnce(ctx, gen)
		if c.setState(gen, StateDisconnected) && ctx.Err() == nil {
			c.log.Warn("Stream disconnected", "error", err)
		}
		return
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.opts.BackoffInitial
	bo.MaxInterval = c.opts.BackoffMax
	bo.MaxElapsedTime = 0
	for {
		err := c.streamOnce(ctx, gen)
		if !c.setState(gen, StateDisconnected) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		wait := bo.NextBackOff()
		c.log.Warn("Stream dropped, reconnecting", "error", err, "backoff", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if !c.setState(gen, StateConnecting) {
			return
		}
	}
}

// streamOnce runs one connection to completion and always returns a
// STREAM_DISCONNECTED error describing why it ended.
func (c *Client) streamOnce(ctx context.Context, gen uint64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.URL, nil)
	if err != nil {
		return apperrors.StreamDisconnected("invalid stream request", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.opts.Token != nil {
		if t := c.opts.Token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.StreamDisconnected("stream connection failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.StreamDisconnected(
			fmt.Sprintf("stream endpoint returned status %d", resp.StatusCode), nil)
	}
	if !c.setState(gen, StateConnected) {
		// Superseded while dialing; a newer connection owns the stream.
		return apperrors.StreamDisconnected("connection superseded", nil)
	}
	c.log.Info("Stream connected", "url", c.opts.URL)

	if err := readFrames(resp.Body, c.dispatch); err != nil {
		return apperrors.StreamDisconnected("stream read failed", err)
	}
	return apperrors.StreamDisconnected("stream closed by server", nil)
}

// dispatch decodes one frame and fans it out. Heartbeats (no event name),
// unknown event names and malformed payloads are dropped without killing the
// connection.
func (c *Client) dispatch(f frame) {
	if !model.EventType(f.event).Known() {
		c.log.Debug("Ignoring stream frame", "event", f.event)
		return
	}

	ev, err := model.DecodeStreamEvent([]byte(f.data))
	if err != nil {
		c.log.Warn("Dropping malformed stream payload", "event", f.event, "error", err)
		return
	}
	if string(ev.EventType) != f.event {
		c.log.Warn("Dropping stream payload with mismatched type",
			"event", f.event,
			"payload_type", ev.EventType,
		)
		return
	}

	c.mu.Lock()
	handlers := make([]EventHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

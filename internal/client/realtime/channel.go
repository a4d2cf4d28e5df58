package realtime

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/csvdesk/csvdesk/internal/client/credstore"
	"github.com/csvdesk/csvdesk/internal/client/models"
	"github.com/csvdesk/csvdesk/internal/logging"
)

const (
	// DefaultHeartbeatInterval is how often a ping frame is written while
	// the connection is open.
	DefaultHeartbeatInterval = 30 * time.Second

	// DefaultReconnectDelay is the pause before dialing again after a
	// disconnect or a failed dial.
	DefaultReconnectDelay = 3 * time.Second

	pingMessage = "ping"
	pongMessage = "pong"

	// eventListUpdated is the wire name of the list-change notification.
	eventListUpdated = "csv_list_updated"
)

// wireEvent is the JSON envelope the server pushes on the socket.
type wireEvent struct {
	Event string `json:"event"`
}

// Channel is an auto-reconnecting websocket subscription. Zero value is
// not usable; construct with New. All methods are safe for concurrent
// use.
type Channel struct {
	wsURL     string
	creds     credstore.Store
	dialer    *websocket.Dialer
	log       logging.Logger
	heartbeat time.Duration
	backoff   func() retry.Backoff

	mu            sync.Mutex
	state         models.ChannelState
	eventSubs     map[int]func(models.UpdateEvent)
	stateSubs     map[int]func(models.ChannelState)
	nextID        int
	generation    int
	cancelCurrent context.CancelFunc
	currentConn   *websocket.Conn
	runDone       chan struct{}
}

// Option configures a Channel.
type Option func(*Channel)

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// WithHeartbeatInterval sets the ping period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *Channel) { c.heartbeat = d }
}

// WithBackoff sets the factory producing the reconnect backoff. A fresh
// backoff is drawn from the factory after every successful connect, so
// the delay sequence restarts from the beginning each time the channel
// recovers.
func WithBackoff(factory func() retry.Backoff) Option {
	return func(c *Channel) { c.backoff = factory }
}

// New builds a Channel that will dial wsURL, authenticating with the
// access token read from creds at each attempt. The channel is idle
// until Start is called.
func New(wsURL string, creds credstore.Store, log logging.Logger, opts ...Option) *Channel {
	c := &Channel{
		wsURL:     wsURL,
		creds:     creds,
		dialer:    &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		log:       log,
		heartbeat: DefaultHeartbeatInterval,
		backoff: func() retry.Backoff {
			return retry.NewConstant(DefaultReconnectDelay)
		},
		state:     models.ChannelState{Connection: models.ConnectionClosed},
		eventSubs: make(map[int]func(models.UpdateEvent)),
		stateSubs: make(map[int]func(models.ChannelState)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the channel state.
func (c *Channel) State() models.ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every notification delivered on the
// channel and returns the matching unsubscribe. Callbacks for a single
// subscriber run in delivery order.
func (c *Channel) Subscribe(fn func(models.UpdateEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.eventSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.eventSubs, id)
	}
}

// SubscribeState registers fn for connection state transitions.
func (c *Channel) SubscribeState(fn func(models.ChannelState)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.stateSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.stateSubs, id)
	}
}

// Start launches the connect loop. Calling Start on a running channel
// restarts it: the previous loop is torn down first so at most one
// socket is live at any time.
func (c *Channel) Start(ctx context.Context) {
	c.stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.cancelCurrent = cancel
	c.runDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.run(runCtx, gen)
	}()
}

// Close tears the channel down: the socket is closed, the connect loop
// exits, and no reconnect is scheduled. The channel may be started
// again later.
func (c *Channel) Close() {
	c.stop()
	c.setState(func(s *models.ChannelState) {
		s.Connection = models.ConnectionClosed
	})
}

// stop invalidates the running generation and waits for its loop to
// return.
func (c *Channel) stop() {
	c.mu.Lock()
	c.generation++
	cancel := c.cancelCurrent
	conn := c.currentConn
	done := c.runDone
	c.cancelCurrent = nil
	c.currentConn = nil
	c.runDone = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if done != nil {
		<-done
	}
}

// current reports whether gen is still the live generation.
func (c *Channel) current(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen
}

// run is the connect loop for one generation. It dials, serves the
// connection until it drops, waits out the backoff and dials again,
// until the generation is invalidated or the context is cancelled.
func (c *Channel) run(ctx context.Context, gen int) {
	backoff := c.backoff()

	for {
		if ctx.Err() != nil || !c.current(gen) {
			return
		}

		c.setStateIf(gen, func(s *models.ChannelState) {
			s.Connection = models.ConnectionConnecting
		})

		conn, err := c.dial(ctx)
		if err != nil {
			c.log.Warn(ctx, "websocket dial failed", "error", err)
			if !c.waitReconnect(ctx, gen, backoff) {
				return
			}
			continue
		}

		c.mu.Lock()
		if c.generation != gen {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.currentConn = conn
		c.mu.Unlock()

		// Connected: the delay sequence restarts on the next drop.
		backoff = c.backoff()
		c.setStateIf(gen, func(s *models.ChannelState) {
			s.Connection = models.ConnectionOpen
			s.ReconnectAttempt = 0
		})
		c.log.Debug(ctx, "websocket connected", "url", c.wsURL)

		c.serve(ctx, gen, conn)

		c.mu.Lock()
		if c.currentConn == conn {
			c.currentConn = nil
		}
		c.mu.Unlock()
		conn.Close()

		c.setStateIf(gen, func(s *models.ChannelState) {
			s.Connection = models.ConnectionClosed
		})

		if !c.waitReconnect(ctx, gen, backoff) {
			return
		}
	}
}

// dial opens the socket, attaching the persisted access token as the
// token query parameter. A missing or unreadable token dials bare and
// lets the server decide.
func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	target := c.wsURL
	pair, err := c.creds.Load(ctx)
	if err != nil {
		c.log.Warn(ctx, "credential load failed, dialing without token", "error", err)
	}
	if pair.Complete() {
		u, parseErr := url.Parse(c.wsURL)
		if parseErr != nil {
			return nil, parseErr
		}
		q := u.Query()
		q.Set("token", pair.AccessToken)
		u.RawQuery = q.Encode()
		target = u.String()
	}

	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// serve pumps one open connection: a heartbeat writer plus the read
// loop. It returns when the connection drops or the context ends.
func (c *Channel) serve(ctx context.Context, gen int, conn *websocket.Conn) {
	stopPing := make(chan struct{})
	defer close(stopPing)

	go func() {
		ticker := time.NewTicker(c.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.TextMessage, []byte(pingMessage)); err != nil {
					conn.Close()
					return
				}
			case <-stopPing:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && c.current(gen) {
				c.log.Warn(ctx, "websocket read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.handleMessage(ctx, gen, data)
	}
}

// handleMessage interprets one text frame. Heartbeat replies refresh
// the liveness timestamp; known events are delivered to subscribers;
// everything else is ignored.
func (c *Channel) handleMessage(ctx context.Context, gen int, data []byte) {
	if string(data) == pongMessage {
		c.setStateIf(gen, func(s *models.ChannelState) {
			s.LastHeartbeatAt = time.Now()
		})
		return
	}

	var ev wireEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		// Not an event frame, drop it.
		return
	}

	switch ev.Event {
	case eventListUpdated:
		c.publish(models.UpdateEvent{Kind: models.KindListChanged, Payload: data})
	default:
		c.log.Debug(ctx, "ignoring unknown event", "event", ev.Event)
	}
}

// publish fans an event out to the current subscribers, outside the
// lock.
func (c *Channel) publish(ev models.UpdateEvent) {
	c.mu.Lock()
	fns := inOrder(c.eventSubs)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// inOrder flattens a subscriber map into registration order. Ids are
// handed out monotonically, so sorting them recovers the order in
// which the callbacks were subscribed.
func inOrder[T any](subs map[int]T) []T {
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, subs[id])
	}
	return out
}

// waitReconnect sleeps out the next backoff step, bumping the attempt
// counter. It returns false when the loop should exit instead of
// dialing again.
func (c *Channel) waitReconnect(ctx context.Context, gen int, backoff retry.Backoff) bool {
	delay, stop := backoff.Next()
	if stop {
		return false
	}

	c.setStateIf(gen, func(s *models.ChannelState) {
		s.ReconnectAttempt++
	})

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return false
	}
	return c.current(gen)
}

// setStateIf applies mutate only while gen is still live, so a stopped
// loop can never clobber the state of its successor.
func (c *Channel) setStateIf(gen int, mutate func(*models.ChannelState)) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	mutate(&c.state)
	view := c.state
	fns := inOrder(c.stateSubs)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(view)
	}
}

// setState is setStateIf without the generation guard, for transitions
// made by the owner itself (Close).
func (c *Channel) setState(mutate func(*models.ChannelState)) {
	c.mu.Lock()
	mutate(&c.state)
	view := c.state
	fns := inOrder(c.stateSubs)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(view)
	}
}

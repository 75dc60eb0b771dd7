package amqp

import (
	"context"
	"net"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Connection manages a single AMQP 0-9-1 connection: one TCP transport that
// may carry multiple Channels, all talking to a single virtual host
// (spec.md §3). Connections are created with Connect; channels are created
// exclusively through Connection.OpenChannel (spec.md §9, "Ownership of
// channels").
type Connection struct {
	engine       *engine
	synchroniser *Synchroniser
	sender       *sender

	mu         sync.Mutex
	channels   map[uint16]*Channel
	freeIDs    []uint16
	nextFresh  uint16
	channelMax uint16
	closing    bool

	closeWaiters sync.WaitGroup
	closed       chan struct{}
	closeOnce    sync.Once
}

// Connect dials opts.Host:opts.Port (or uses opts.Dial) and drives the
// Connection handshake to completion: protocol header, Start/StartOK,
// Tune/TuneOK, Open/OpenOK (spec.md §4.5).
func Connect(ctx context.Context, opts ConnectOptions) (*Connection, error) {
	opts = opts.withDefaults()

	conn, err := dialTransport(opts)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		channels:  make(map[uint16]*Channel),
		nextFresh: 1,
		closed:    make(chan struct{}),
	}
	d := newDispatcher()
	c.engine = newEngine(conn, d)
	c.synchroniser = NewSynchroniser()
	c.sender = newSender(0, c.engine)

	d.addHandler(0, c.handleFrame)
	go c.engine.run()

	if err := c.engine.sendProtocolHeader(); err != nil {
		d.removeHandler(0)
		return nil, err
	}

	if err := c.handshake(ctx, opts); err != nil {
		d.removeHandler(0)
		_ = c.engine.Close()
		return nil, err
	}
	return c, nil
}

func dialTransport(opts ConnectOptions) (net.Conn, error) {
	addr := net.JoinHostPort(opts.Host, itoa(opts.Port))
	if opts.Dial != nil {
		return opts.Dial("tcp", addr)
	}
	return net.DialTimeout("tcp", addr, opts.DialTimeout)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// handshake implements open-Connection from spec.md §4.5: protocol header,
// Start/StartOK, Tune/TuneOK (accepting the server's values verbatim),
// Open/OpenOK.
func (c *Connection) handshake(ctx context.Context, opts ConnectOptions) error {
	waitStart := c.synchroniser.Await(ctx, methodKey{classConnection, methodConnectionStart})
	if err := c.engine.sendProtocolHeader(); err != nil {
		return err
	}
	if _, err := waitStart(); err != nil {
		return err
	}

	startOK := &ConnectionStartOK{
		ClientProperties: Table{
			"product":  "asynqp-go",
			"version":  ClientVersion,
			"platform": runtime.Version(),
		},
		Mechanism: saslMechanism,
		Response:  amqplainResponse(opts.Username, opts.Password),
		Locale:    defaultLocale,
	}
	waitTune := c.synchroniser.Await(ctx, methodKey{classConnection, methodConnectionTune})
	if err := c.sender.sendMethod(startOK); err != nil {
		return err
	}
	tuneResult, err := waitTune()
	if err != nil {
		return errors.Wrap(err, "credentials rejected or connection closed during tune")
	}
	tune := tuneResult.(*ConnectionTune)

	c.channelMax = tune.ChannelMax
	c.engine.frameMax = tune.FrameMax

	tuneOK := &ConnectionTuneOK{ChannelMax: tune.ChannelMax, FrameMax: tune.FrameMax, Heartbeat: tune.Heartbeat}
	if err := c.sender.sendMethod(tuneOK); err != nil {
		return err
	}
	// "The client should start sending heartbeats after receiving
	// Connection.Tune" (spec.md §4.5 step 3).
	c.engine.startHeartbeat(tune.Heartbeat, c.onConnectionLost)

	waitOpenOK := c.synchroniser.Await(ctx, methodKey{classConnection, methodConnectionOpenOK})
	if err := c.sender.sendMethod(&ConnectionOpen{VirtualHost: opts.VirtualHost, Capabilities: "", Insist: false}); err != nil {
		return err
	}
	if _, err := waitOpenOK(); err != nil {
		return errors.Wrap(err, "virtual host rejected")
	}
	return nil
}

func amqplainResponse(username, password string) string {
	return string(packTable(Table{"LOGIN": username, "PASSWORD": password}))
}

// handleFrame is the Connection Actor's channel-0 frame handler (spec.md
// §4.5 steady state). Runs on the engine's single reader goroutine.
func (c *Connection) handleFrame(f Frame) {
	switch v := f.(type) {
	case *MethodFrame:
		switch m := v.Method.(type) {
		case *ConnectionClose:
			c.onServerClose(m)
		case *ConnectionCloseOK:
			c.onCloseOK()
		default:
			c.synchroniser.Notify(methodKey{m.ClassID(), m.MethodID()}, m)
		}
	case *poisonPill:
		c.onConnectionLost(v.cause)
	case *HeartbeatFrame:
		// already noted by the engine; nothing to do here.
	}
}

func (c *Connection) onServerClose(m *ConnectionClose) {
	_ = c.sender.sendMethod(&ConnectionCloseOK{})

	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	c.killAll(ErrServerConnectionClosed)

	// Give the loop a spin so the CloseOK we just queued can drain before
	// the transport goes away (spec.md §4.5).
	go func() {
		_ = c.engine.Close()
	}()
}

func (c *Connection) onCloseOK() {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	c.synchroniser.Notify(methodKey{classConnection, methodConnectionCloseOK}, &ConnectionCloseOK{})
	c.killAll(ErrClientConnectionClosed)
	_ = c.engine.Close()
}

func (c *Connection) onConnectionLost(cause error) {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	// A bad frame/unknown-channel failure is already a properly typed
	// AMQPError (spec.md §7 items 1/2); only a genuine transport failure
	// gets wrapped as ConnectionLostError (item 6).
	if amqpErr, ok := cause.(*AMQPError); ok {
		c.killAll(amqpErr)
		return
	}
	c.killAll(newConnectionLostError(cause))
}

// killAll stops the heartbeat monitor and kills the connection-level
// synchroniser plus every open channel's synchroniser with exc (spec.md
// §4.5 `_close_all`).
func (c *Connection) killAll(exc error) {
	if c.engine.heartbeat != nil {
		c.engine.heartbeat.Stop()
		c.closeWaiters.Add(1)
		go func() {
			defer c.closeWaiters.Done()
			c.engine.heartbeat.WaitClosed()
		}()
	}
	c.synchroniser.Killall(exc)

	c.mu.Lock()
	chans := make([]*Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		chans = append(chans, ch)
	}
	c.mu.Unlock()

	for _, ch := range chans {
		ch.killFromConnection(exc)
	}

	c.closeOnce.Do(func() { close(c.closed) })
}

// OpenChannel opens a new Channel on this connection (spec.md §4.6).
func (c *Connection) OpenChannel(ctx context.Context) (*Channel, error) {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return nil, ErrClientConnectionClosed
	}
	id, err := c.allocateChannelIDLocked()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	ch := newChannel(c, id)
	c.channels[id] = ch
	c.mu.Unlock()

	if err := ch.open(ctx); err != nil {
		c.mu.Lock()
		delete(c.channels, id)
		c.freeIDs = append(c.freeIDs, id)
		c.mu.Unlock()
		return nil, err
	}
	return ch, nil
}

// allocateChannelIDLocked hands out the lowest free positive channel id up
// to the negotiated channel_max, reusing freed ids (spec.md §4.6/§5).
func (c *Connection) allocateChannelIDLocked() (uint16, error) {
	if len(c.freeIDs) > 0 {
		sortUint16s(c.freeIDs)
		id := c.freeIDs[0]
		c.freeIDs = c.freeIDs[1:]
		return id, nil
	}
	if c.channelMax != 0 && c.nextFresh > c.channelMax {
		return 0, errors.New("channel_max exceeded")
	}
	id := c.nextFresh
	c.nextFresh++
	return id, nil
}

func sortUint16s(s []uint16) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func (c *Connection) releaseChannel(id uint16) {
	c.mu.Lock()
	delete(c.channels, id)
	c.freeIDs = append(c.freeIDs, id)
	c.mu.Unlock()
}

// Close requests a graceful shutdown: it sends Connection.Close and awaits
// Connection.CloseOK, then waits for every subsystem close-waiter (the
// heartbeat monitor) before returning. A second call is a documented no-op
// (spec.md §4.5/§9).
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		log.Warn("Close called on an already-closed connection")
		c.closeWaiters.Wait()
		return nil
	}
	c.closing = true
	c.mu.Unlock()

	wait := c.synchroniser.Await(ctx, methodKey{classConnection, methodConnectionCloseOK})
	err := c.sender.sendMethod(&ConnectionClose{ReplyCode: 0, ReplyText: "Connection closed by application"})
	if err != nil {
		c.closeWaiters.Wait()
		return err
	}
	if _, err := wait(); err != nil {
		if _, already := err.(*AlreadyClosed); already {
			c.closeWaiters.Wait()
			return nil
		}
		if _, ok := err.(*ConnectionLostError); ok {
			c.closeWaiters.Wait()
			return nil
		}
	}
	c.closeWaiters.Wait()
	return nil
}

// Closed returns a channel that is closed once the connection has fully
// shut down (client- or server-initiated, or lost).
func (c *Connection) Closed() <-chan struct{} { return c.closed }

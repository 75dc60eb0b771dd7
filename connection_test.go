package amqp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialConnectedPair drives the Connection handshake (spec.md §4.5) over a
// net.Pipe, playing the broker's side by hand, and returns the connected
// Connection plus the broker-side net.Conn for the test to keep scripting.
func dialConnectedPair(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	opts := ConnectOptions{
		VirtualHost: "/",
		Dial:        func(network, addr string) (net.Conn, error) { return client, nil },
	}

	type connectResult struct {
		conn *Connection
		err  error
	}
	resultCh := make(chan connectResult, 1)
	go func() {
		c, err := Connect(context.Background(), opts)
		resultCh <- connectResult{c, err}
	}()

	fr := newFrameReader(server)
	fw := newFrameWriter(server)

	hdr := make([]byte, 8)
	_, err := io.ReadFull(server, hdr)
	require.NoError(t, err)
	assert.Equal(t, protocolHeaderBytes[:], hdr)

	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 0, Method: &ConnectionStart{
		VersionMajor: 0, VersionMinor: 9, ServerProperties: Table{}, Mechanisms: "AMQPLAIN", Locales: "en_US",
	}}))

	f, err := fr.ReadFrame()
	require.NoError(t, err)
	_, ok := f.(*MethodFrame).Method.(*ConnectionStartOK)
	require.True(t, ok)

	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 0, Method: &ConnectionTune{
		ChannelMax: 0, FrameMax: 131072, Heartbeat: 0,
	}}))

	f, err = fr.ReadFrame()
	require.NoError(t, err)
	_, ok = f.(*MethodFrame).Method.(*ConnectionTuneOK)
	require.True(t, ok)

	f, err = fr.ReadFrame()
	require.NoError(t, err)
	openMF := f.(*MethodFrame)
	open, ok := openMF.Method.(*ConnectionOpen)
	require.True(t, ok)
	assert.Equal(t, "/", open.VirtualHost)

	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 0, Method: &ConnectionOpenOK{}}))

	r := <-resultCh
	require.NoError(t, r.err)
	return r.conn, server
}

func TestConnectPerformsHandshakeAndGracefulClose(t *testing.T) {
	conn, server := dialConnectedPair(t)
	fr := newFrameReader(server)
	fw := newFrameWriter(server)

	closeErrCh := make(chan error, 1)
	go func() { closeErrCh <- conn.Close(context.Background()) }()

	f, err := fr.ReadFrame()
	require.NoError(t, err)
	_, ok := f.(*MethodFrame).Method.(*ConnectionClose)
	require.True(t, ok)
	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 0, Method: &ConnectionCloseOK{}}))

	require.NoError(t, <-closeErrCh)

	// A second Close is a documented no-op.
	require.NoError(t, conn.Close(context.Background()))
}

func TestConnectionLossFailsPendingChannelCalls(t *testing.T) {
	conn, server := dialConnectedPair(t)
	fr := newFrameReader(server)
	fw := newFrameWriter(server)

	type openResult struct {
		ch  *Channel
		err error
	}
	openCh := make(chan openResult, 1)
	go func() {
		ch, err := conn.OpenChannel(context.Background())
		openCh <- openResult{ch, err}
	}()

	f, err := fr.ReadFrame()
	require.NoError(t, err)
	_, ok := f.(*MethodFrame).Method.(*ChannelOpen)
	require.True(t, ok)
	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 1, Method: &ChannelOpenOK{}}))

	r := <-openCh
	require.NoError(t, r.err)

	declResult := make(chan error, 1)
	go func() {
		_, err := r.ch.DeclareQueue(context.Background(), "q", false, false, false, nil)
		declResult <- err
	}()

	// Give the declare a chance to reach the broker side, then sever the
	// transport instead of responding.
	_, err = fr.ReadFrame()
	require.NoError(t, err)
	require.NoError(t, server.Close())

	err = <-declResult
	require.Error(t, err)
	var lost *ConnectionLostError
	assert.ErrorAs(t, err, &lost)

	<-conn.Closed()
	<-r.ch.Closed()
}

func TestMalformedFrameSurfacesAMQPErrorNotConnectionLost(t *testing.T) {
	conn, server := dialConnectedPair(t)
	fr := newFrameReader(server)
	fw := newFrameWriter(server)

	type openResult struct {
		ch  *Channel
		err error
	}
	openCh := make(chan openResult, 1)
	go func() {
		ch, err := conn.OpenChannel(context.Background())
		openCh <- openResult{ch, err}
	}()

	f, err := fr.ReadFrame()
	require.NoError(t, err)
	_, ok := f.(*MethodFrame).Method.(*ChannelOpen)
	require.True(t, ok)
	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 1, Method: &ChannelOpenOK{}}))

	openRes := <-openCh
	require.NoError(t, openRes.err)
	ch := openRes.ch

	declResult := make(chan error, 1)
	go func() {
		_, err := ch.DeclareQueue(context.Background(), "q", false, false, false, nil)
		declResult <- err
	}()

	_, err = fr.ReadFrame()
	require.NoError(t, err)

	// spec.md §8 scenario 4: a frame with its frame-end octet corrupted
	// (0xCD instead of 0xCE) must produce an AMQPError and close the
	// transport, not the ConnectionLostError a genuine transport failure
	// would produce.
	var buf bytes.Buffer
	require.NoError(t, newFrameWriter(&buf).WriteFrame(&HeartbeatFrame{}))
	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] = 0xCD
	_, err = server.Write(corrupted)
	require.NoError(t, err)

	err = <-declResult
	require.Error(t, err)
	var amqpErr *AMQPError
	require.True(t, errors.As(err, &amqpErr))
	var lost *ConnectionLostError
	assert.False(t, errors.As(err, &lost))

	<-conn.Closed()
}

func TestChannelDeclareQueueGetAckRoundTrip(t *testing.T) {
	conn, server := dialConnectedPair(t)
	fr := newFrameReader(server)
	fw := newFrameWriter(server)

	type openResult struct {
		ch  *Channel
		err error
	}
	openCh := make(chan openResult, 1)
	go func() {
		ch, err := conn.OpenChannel(context.Background())
		openCh <- openResult{ch, err}
	}()

	f, err := fr.ReadFrame()
	require.NoError(t, err)
	mf := f.(*MethodFrame)
	_, ok := mf.Method.(*ChannelOpen)
	require.True(t, ok)
	assert.Equal(t, uint16(1), mf.ChannelID)
	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 1, Method: &ChannelOpenOK{}}))

	openRes := <-openCh
	require.NoError(t, openRes.err)
	ch := openRes.ch

	type declResult struct {
		info QueueInfo
		err  error
	}
	declCh := make(chan declResult, 1)
	go func() {
		info, err := ch.DeclareQueue(context.Background(), "orders", true, false, false, nil)
		declCh <- declResult{info, err}
	}()

	f, err = fr.ReadFrame()
	require.NoError(t, err)
	qd, ok := f.(*MethodFrame).Method.(*QueueDeclare)
	require.True(t, ok)
	assert.Equal(t, "orders", qd.Queue)
	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 1, Method: &QueueDeclareOK{Queue: "orders"}}))

	dr := <-declCh
	require.NoError(t, dr.err)
	assert.Equal(t, "orders", dr.info.Name)

	type getResult struct {
		d   Delivery
		ok  bool
		err error
	}
	getCh := make(chan getResult, 1)
	go func() {
		d, ok, err := ch.Get(context.Background(), "orders", false)
		getCh <- getResult{d, ok, err}
	}()

	f, err = fr.ReadFrame()
	require.NoError(t, err)
	_, ok = f.(*MethodFrame).Method.(*BasicGet)
	require.True(t, ok)

	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 1, Method: &BasicGetOK{
		DeliveryTag: 7, RoutingKey: "orders",
	}}))
	require.NoError(t, fw.WriteFrame(&HeaderFrame{
		ChannelID: 1, ClassID: classBasic, BodySize: 5,
		Properties: BasicProperties{ContentType: "text/plain"},
	}))
	require.NoError(t, fw.WriteFrame(&BodyFrame{ChannelID: 1, Payload: []byte("hello")}))

	gr := <-getCh
	require.NoError(t, gr.err)
	require.True(t, gr.ok)
	assert.Equal(t, []byte("hello"), gr.d.Body)
	assert.Equal(t, uint64(7), gr.d.DeliveryTag)

	ackErrCh := make(chan error, 1)
	go func() { ackErrCh <- gr.d.Ack() }()

	f, err = fr.ReadFrame()
	require.NoError(t, err)
	ack, ok := f.(*MethodFrame).Method.(*BasicAck)
	require.True(t, ok)
	assert.Equal(t, uint64(7), ack.DeliveryTag)
	require.NoError(t, <-ackErrCh)
}

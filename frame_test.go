package amqp

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	method := &ExchangeDeclare{Exchange: "logs", Type: "fanout", Durable: true, Arguments: Table{"x-foo": "bar"}}
	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 3, Method: method}))

	fr := newFrameReader(&buf)
	got, err := fr.ReadFrame()
	require.NoError(t, err)

	mf, ok := got.(*MethodFrame)
	require.True(t, ok)
	assert.Equal(t, uint16(3), mf.ChannelID)
	decoded, ok := mf.Method.(*ExchangeDeclare)
	require.True(t, ok)
	assert.Equal(t, method, decoded)
}

func TestContentFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	props := BasicProperties{ContentType: "text/plain", DeliveryMode: 2}
	require.NoError(t, fw.WriteFrame(&HeaderFrame{ChannelID: 1, ClassID: classBasic, BodySize: 11, Properties: props}))
	require.NoError(t, fw.WriteFrame(&BodyFrame{ChannelID: 1, Payload: []byte("hello")}))
	require.NoError(t, fw.WriteFrame(&BodyFrame{ChannelID: 1, Payload: []byte(" world")}))

	fr := newFrameReader(&buf)

	f1, err := fr.ReadFrame()
	require.NoError(t, err)
	hf, ok := f1.(*HeaderFrame)
	require.True(t, ok)
	assert.Equal(t, uint64(11), hf.BodySize)
	assert.Equal(t, "text/plain", hf.Properties.ContentType)

	f2, err := fr.ReadFrame()
	require.NoError(t, err)
	bf, ok := f2.(*BodyFrame)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), bf.Payload)

	f3, err := fr.ReadFrame()
	require.NoError(t, err)
	bf2, ok := f3.(*BodyFrame)
	require.True(t, ok)
	assert.Equal(t, []byte(" world"), bf2.Payload)
}

func TestHeartbeatFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	require.NoError(t, fw.WriteFrame(&HeartbeatFrame{}))

	fr := newFrameReader(&buf)
	got, err := fr.ReadFrame()
	require.NoError(t, err)
	_, ok := got.(*HeartbeatFrame)
	assert.True(t, ok)
}

// pieceReader releases bytes one at a time, the way a real socket delivers a
// frame that arrives split across several TCP segments.
type pieceReader struct {
	data []byte
	pos  int
}

func (p *pieceReader) Read(b []byte) (int, error) {
	if p.pos >= len(p.data) {
		return 0, io.EOF
	}
	b[0] = p.data[p.pos]
	p.pos++
	return 1, nil
}

func TestFrameArrivingInPiecesStillParses(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	require.NoError(t, fw.WriteFrame(&MethodFrame{ChannelID: 0, Method: &ConnectionCloseOK{}}))

	fr := newFrameReader(&pieceReader{data: buf.Bytes()})
	got, err := fr.ReadFrame()
	require.NoError(t, err)
	mf, ok := got.(*MethodFrame)
	require.True(t, ok)
	_, ok = mf.Method.(*ConnectionCloseOK)
	assert.True(t, ok)
}

func TestReadFrameRejectsBadFrameEnd(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	require.NoError(t, fw.WriteFrame(&HeartbeatFrame{}))
	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] = 0x00 // should be frameEnd (0xCE)

	fr := newFrameReader(bytes.NewReader(corrupted))
	_, err := fr.ReadFrame()
	require.Error(t, err)

	// spec.md §8 scenario 4: a bad frame-end is a protocol/codec failure,
	// not a transport failure, so it must be distinguishable from a plain
	// I/O error (e.g. io.EOF) and end up surfaced as an AMQPError rather
	// than a ConnectionLostError.
	var syn *frameSyntaxError
	require.True(t, errors.As(err, &syn))
	amqpErr := newAMQPError(syn.cause)
	assert.Equal(t, replyFrameError, amqpErr.ReplyCode)
}

package amqp

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// Frame is the wire unit: one of MethodFrame, HeaderFrame, BodyFrame,
// HeartbeatFrame (spec.md §3). Every frame carries a channel id, 0 meaning
// connection-level.
type Frame interface {
	Channel() uint16
}

// MethodFrame carries a (class, method) pair and its decoded arguments.
type MethodFrame struct {
	ChannelID uint16
	Method    Method
}

func (f *MethodFrame) Channel() uint16 { return f.ChannelID }

// HeaderFrame carries the body size, property flags, and property table for
// a content that follows a "has-content" method.
type HeaderFrame struct {
	ChannelID  uint16
	ClassID    uint16
	BodySize   uint64
	Properties BasicProperties
}

func (f *HeaderFrame) Channel() uint16 { return f.ChannelID }

// BodyFrame carries a raw slice of the message body.
type BodyFrame struct {
	ChannelID uint16
	Payload   []byte
}

func (f *BodyFrame) Channel() uint16 { return f.ChannelID }

// HeartbeatFrame always carries channel 0 and zero payload.
type HeartbeatFrame struct{}

func (f *HeartbeatFrame) Channel() uint16 { return 0 }

// frameReader deframes the AMQP wire format:
//
//	type (1 octet) | channel (2 octets) | length (4 octets) | payload | frame-end (0xCE)
//
// per spec.md §4.1.
type frameReader struct {
	r *bufio.Reader
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{r: bufio.NewReaderSize(r, 32*1024)}
}

func (fr *frameReader) ReadFrame() (Frame, error) {
	typ, err := readOctet(fr.r)
	if err != nil {
		return nil, err
	}
	channel, err := readShortUint(fr.r)
	if err != nil {
		return nil, err
	}
	length, err := readLongUint(fr.r)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		return nil, errors.Wrap(err, "read frame payload")
	}
	end, err := readOctet(fr.r)
	if err != nil {
		return nil, err
	}
	if end != frameEnd {
		return nil, &frameSyntaxError{cause: errors.Errorf("malformed frame: expected frame-end 0x%02X, got 0x%02X", frameEnd, end)}
	}

	f, err := decodeFramePayload(typ, channel, payload)
	if err != nil {
		return nil, &frameSyntaxError{cause: err}
	}
	return f, nil
}

// frameSyntaxError marks a failure to make sense of bytes that were
// actually read off the wire — a bad frame-end octet, an unknown frame or
// method type, a malformed method/property payload (spec.md §7 taxonomy
// items 1/2) — as distinct from a transport failure (item 6). The engine
// surfaces this as an AMQPError rather than a ConnectionLostError.
type frameSyntaxError struct {
	cause error
}

func (e *frameSyntaxError) Error() string { return e.cause.Error() }
func (e *frameSyntaxError) Unwrap() error { return e.cause }

func decodeFramePayload(typ byte, channel uint16, payload []byte) (Frame, error) {
	body := newLimitedReader(payload)
	switch typ {
	case frameMethod:
		classID, err := readShortUint(body)
		if err != nil {
			return nil, err
		}
		methodID, err := readShortUint(body)
		if err != nil {
			return nil, err
		}
		m, err := newMethod(classID, methodID)
		if err != nil {
			return nil, err
		}
		if err := m.read(body); err != nil {
			return nil, err
		}
		return &MethodFrame{ChannelID: channel, Method: m}, nil
	case frameHeader:
		classID, err := readShortUint(body)
		if err != nil {
			return nil, err
		}
		if _, err := readShortUint(body); err != nil { // weight, reserved, always 0
			return nil, err
		}
		bodySize, err := readLonglongUint(body)
		if err != nil {
			return nil, err
		}
		props, err := readBasicProperties(body)
		if err != nil {
			return nil, err
		}
		return &HeaderFrame{ChannelID: channel, ClassID: classID, BodySize: bodySize, Properties: props}, nil
	case frameBody:
		return &BodyFrame{ChannelID: channel, Payload: payload}, nil
	case frameHeartbeat:
		return &HeartbeatFrame{}, nil
	default:
		return nil, errors.Errorf("unknown frame type %d", typ)
	}
}

// frameWriter frames outbound bytes in the same wire format.
type frameWriter struct {
	w io.Writer
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{w: w}
}

func (fw *frameWriter) WriteFrame(f Frame) error {
	var typ byte
	var payload []byte
	var err error

	switch v := f.(type) {
	case *MethodFrame:
		typ = frameMethod
		buf := &sliceWriter{}
		_ = writeShortUint(buf, v.Method.ClassID())
		_ = writeShortUint(buf, v.Method.MethodID())
		if err = v.Method.write(buf); err != nil {
			return err
		}
		payload = buf.b
	case *HeaderFrame:
		typ = frameHeader
		buf := &sliceWriter{}
		_ = writeShortUint(buf, v.ClassID)
		_ = writeShortUint(buf, 0)
		_ = writeLonglongUint(buf, v.BodySize)
		if err = writeBasicProperties(buf, v.Properties); err != nil {
			return err
		}
		payload = buf.b
	case *BodyFrame:
		typ = frameBody
		payload = v.Payload
	case *HeartbeatFrame:
		typ = frameHeartbeat
		payload = nil
	default:
		return errors.Errorf("unknown frame kind %T", f)
	}

	if err := writeOctet(fw.w, typ); err != nil {
		return err
	}
	if err := writeShortUint(fw.w, f.Channel()); err != nil {
		return err
	}
	if err := writeLongUint(fw.w, uint32(len(payload))); err != nil {
		return err
	}
	if _, err := fw.w.Write(payload); err != nil {
		return err
	}
	return writeOctet(fw.w, frameEnd)
}

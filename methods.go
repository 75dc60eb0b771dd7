package amqp

import (
	"io"

	"github.com/pkg/errors"
)

// Method is a class/method pair with an ordered, typed argument schema,
// used symmetrically for encode and decode (spec.md §3). Concrete types are
// generated by hand here from the AMQP 0-9-1 class/method tables referenced
// in spec.md §6, covering Connection, Channel, Exchange, Queue and Basic.
type Method interface {
	ClassID() uint16
	MethodID() uint16
	read(io.Reader) error
	write(io.Writer) error
}

type methodKey struct {
	class  uint16
	method uint16
}

// newMethod is the static dispatch table keyed by (class_id, method_id),
// replacing the source's runtime `handle_<FrameType>` name lookup per
// spec.md §9.
func newMethod(class, method uint16) (Method, error) {
	switch (methodKey{class, method}) {
	case methodKey{classConnection, methodConnectionStart}:
		return &ConnectionStart{}, nil
	case methodKey{classConnection, methodConnectionStartOK}:
		return &ConnectionStartOK{}, nil
	case methodKey{classConnection, methodConnectionSecure}:
		return &ConnectionSecure{}, nil
	case methodKey{classConnection, methodConnectionSecureOK}:
		return &ConnectionSecureOK{}, nil
	case methodKey{classConnection, methodConnectionTune}:
		return &ConnectionTune{}, nil
	case methodKey{classConnection, methodConnectionTuneOK}:
		return &ConnectionTuneOK{}, nil
	case methodKey{classConnection, methodConnectionOpen}:
		return &ConnectionOpen{}, nil
	case methodKey{classConnection, methodConnectionOpenOK}:
		return &ConnectionOpenOK{}, nil
	case methodKey{classConnection, methodConnectionClose}:
		return &ConnectionClose{}, nil
	case methodKey{classConnection, methodConnectionCloseOK}:
		return &ConnectionCloseOK{}, nil
	case methodKey{classConnection, methodConnectionBlocked}:
		return &ConnectionBlocked{}, nil
	case methodKey{classConnection, methodConnectionUnblocked}:
		return &ConnectionUnblocked{}, nil

	case methodKey{classChannel, methodChannelOpen}:
		return &ChannelOpen{}, nil
	case methodKey{classChannel, methodChannelOpenOK}:
		return &ChannelOpenOK{}, nil
	case methodKey{classChannel, methodChannelFlow}:
		return &ChannelFlow{}, nil
	case methodKey{classChannel, methodChannelFlowOK}:
		return &ChannelFlowOK{}, nil
	case methodKey{classChannel, methodChannelClose}:
		return &ChannelClose{}, nil
	case methodKey{classChannel, methodChannelCloseOK}:
		return &ChannelCloseOK{}, nil

	case methodKey{classExchange, methodExchangeDeclare}:
		return &ExchangeDeclare{}, nil
	case methodKey{classExchange, methodExchangeDeclareOK}:
		return &ExchangeDeclareOK{}, nil
	case methodKey{classExchange, methodExchangeDelete}:
		return &ExchangeDelete{}, nil
	case methodKey{classExchange, methodExchangeDeleteOK}:
		return &ExchangeDeleteOK{}, nil

	case methodKey{classQueue, methodQueueDeclare}:
		return &QueueDeclare{}, nil
	case methodKey{classQueue, methodQueueDeclareOK}:
		return &QueueDeclareOK{}, nil
	case methodKey{classQueue, methodQueueBind}:
		return &QueueBind{}, nil
	case methodKey{classQueue, methodQueueBindOK}:
		return &QueueBindOK{}, nil
	case methodKey{classQueue, methodQueueUnbind}:
		return &QueueUnbind{}, nil
	case methodKey{classQueue, methodQueueUnbindOK}:
		return &QueueUnbindOK{}, nil
	case methodKey{classQueue, methodQueuePurge}:
		return &QueuePurge{}, nil
	case methodKey{classQueue, methodQueuePurgeOK}:
		return &QueuePurgeOK{}, nil
	case methodKey{classQueue, methodQueueDelete}:
		return &QueueDelete{}, nil
	case methodKey{classQueue, methodQueueDeleteOK}:
		return &QueueDeleteOK{}, nil

	case methodKey{classBasic, methodBasicQos}:
		return &BasicQos{}, nil
	case methodKey{classBasic, methodBasicQosOK}:
		return &BasicQosOK{}, nil
	case methodKey{classBasic, methodBasicConsume}:
		return &BasicConsume{}, nil
	case methodKey{classBasic, methodBasicConsumeOK}:
		return &BasicConsumeOK{}, nil
	case methodKey{classBasic, methodBasicCancel}:
		return &BasicCancel{}, nil
	case methodKey{classBasic, methodBasicCancelOK}:
		return &BasicCancelOK{}, nil
	case methodKey{classBasic, methodBasicPublish}:
		return &BasicPublish{}, nil
	case methodKey{classBasic, methodBasicReturn}:
		return &BasicReturn{}, nil
	case methodKey{classBasic, methodBasicDeliver}:
		return &BasicDeliver{}, nil
	case methodKey{classBasic, methodBasicGet}:
		return &BasicGet{}, nil
	case methodKey{classBasic, methodBasicGetOK}:
		return &BasicGetOK{}, nil
	case methodKey{classBasic, methodBasicGetEmpty}:
		return &BasicGetEmpty{}, nil
	case methodKey{classBasic, methodBasicAck}:
		return &BasicAck{}, nil
	case methodKey{classBasic, methodBasicReject}:
		return &BasicReject{}, nil
	case methodKey{classBasic, methodBasicRecoverAsync}:
		return &BasicRecoverAsync{}, nil
	case methodKey{classBasic, methodBasicRecover}:
		return &BasicRecover{}, nil
	case methodKey{classBasic, methodBasicRecoverOK}:
		return &BasicRecoverOK{}, nil
	case methodKey{classBasic, methodBasicNack}:
		return &BasicNack{}, nil

	default:
		return nil, errors.Errorf("unknown method class=%d method=%d", class, method)
	}
}

func readBitsOctet(r io.Reader, n int) ([]bool, error) {
	b, err := readOctet(r)
	if err != nil {
		return nil, err
	}
	return unpackBools(b, n), nil
}

func writeBitsOctet(w io.Writer, bools ...bool) error {
	return writeOctet(w, packBools(bools...)[0])
}

// ---- Connection class ----

type ConnectionStart struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties Table
	Mechanisms       string
	Locales          string
}

func (*ConnectionStart) ClassID() uint16  { return classConnection }
func (*ConnectionStart) MethodID() uint16 { return methodConnectionStart }
func (m *ConnectionStart) read(r io.Reader) (err error) {
	major, err := readOctet(r)
	if err != nil {
		return err
	}
	minor, err := readOctet(r)
	if err != nil {
		return err
	}
	m.VersionMajor, m.VersionMinor = major, minor
	if m.ServerProperties, err = readTable(r); err != nil {
		return err
	}
	if m.Mechanisms, err = readLongStr(r); err != nil {
		return err
	}
	m.Locales, err = readLongStr(r)
	return err
}
func (m *ConnectionStart) write(w io.Writer) error {
	if err := writeOctet(w, m.VersionMajor); err != nil {
		return err
	}
	if err := writeOctet(w, m.VersionMinor); err != nil {
		return err
	}
	if _, err := w.Write(packTable(m.ServerProperties)); err != nil {
		return err
	}
	if err := writeLongStr(w, m.Mechanisms); err != nil {
		return err
	}
	return writeLongStr(w, m.Locales)
}

type ConnectionStartOK struct {
	ClientProperties Table
	Mechanism        string
	Response         string
	Locale           string
}

func (*ConnectionStartOK) ClassID() uint16  { return classConnection }
func (*ConnectionStartOK) MethodID() uint16 { return methodConnectionStartOK }
func (m *ConnectionStartOK) read(r io.Reader) (err error) {
	if m.ClientProperties, err = readTable(r); err != nil {
		return err
	}
	if m.Mechanism, err = readShortStr(r); err != nil {
		return err
	}
	if m.Response, err = readLongStr(r); err != nil {
		return err
	}
	m.Locale, err = readShortStr(r)
	return err
}
func (m *ConnectionStartOK) write(w io.Writer) error {
	if _, err := w.Write(packTable(m.ClientProperties)); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Mechanism); err != nil {
		return err
	}
	if err := writeLongStr(w, m.Response); err != nil {
		return err
	}
	return writeShortStr(w, m.Locale)
}

type ConnectionSecure struct{ Challenge string }

func (*ConnectionSecure) ClassID() uint16  { return classConnection }
func (*ConnectionSecure) MethodID() uint16 { return methodConnectionSecure }
func (m *ConnectionSecure) read(r io.Reader) (err error) {
	m.Challenge, err = readLongStr(r)
	return err
}
func (m *ConnectionSecure) write(w io.Writer) error { return writeLongStr(w, m.Challenge) }

type ConnectionSecureOK struct{ Response string }

func (*ConnectionSecureOK) ClassID() uint16  { return classConnection }
func (*ConnectionSecureOK) MethodID() uint16 { return methodConnectionSecureOK }
func (m *ConnectionSecureOK) read(r io.Reader) (err error) {
	m.Response, err = readLongStr(r)
	return err
}
func (m *ConnectionSecureOK) write(w io.Writer) error { return writeLongStr(w, m.Response) }

type ConnectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (*ConnectionTune) ClassID() uint16  { return classConnection }
func (*ConnectionTune) MethodID() uint16 { return methodConnectionTune }
func (m *ConnectionTune) read(r io.Reader) (err error) {
	if m.ChannelMax, err = readShortUint(r); err != nil {
		return err
	}
	if m.FrameMax, err = readLongUint(r); err != nil {
		return err
	}
	m.Heartbeat, err = readShortUint(r)
	return err
}
func (m *ConnectionTune) write(w io.Writer) error {
	if err := writeShortUint(w, m.ChannelMax); err != nil {
		return err
	}
	if err := writeLongUint(w, m.FrameMax); err != nil {
		return err
	}
	return writeShortUint(w, m.Heartbeat)
}

type ConnectionTuneOK struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (*ConnectionTuneOK) ClassID() uint16  { return classConnection }
func (*ConnectionTuneOK) MethodID() uint16 { return methodConnectionTuneOK }
func (m *ConnectionTuneOK) read(r io.Reader) (err error) {
	if m.ChannelMax, err = readShortUint(r); err != nil {
		return err
	}
	if m.FrameMax, err = readLongUint(r); err != nil {
		return err
	}
	m.Heartbeat, err = readShortUint(r)
	return err
}
func (m *ConnectionTuneOK) write(w io.Writer) error {
	if err := writeShortUint(w, m.ChannelMax); err != nil {
		return err
	}
	if err := writeLongUint(w, m.FrameMax); err != nil {
		return err
	}
	return writeShortUint(w, m.Heartbeat)
}

type ConnectionOpen struct {
	VirtualHost  string
	Capabilities string
	Insist       bool
}

func (*ConnectionOpen) ClassID() uint16  { return classConnection }
func (*ConnectionOpen) MethodID() uint16 { return methodConnectionOpen }
func (m *ConnectionOpen) read(r io.Reader) (err error) {
	if m.VirtualHost, err = readShortStr(r); err != nil {
		return err
	}
	if m.Capabilities, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Insist = bits[0]
	return nil
}
func (m *ConnectionOpen) write(w io.Writer) error {
	if err := writeShortStr(w, m.VirtualHost); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Capabilities); err != nil {
		return err
	}
	return writeBitsOctet(w, m.Insist)
}

type ConnectionOpenOK struct{ KnownHosts string }

func (*ConnectionOpenOK) ClassID() uint16  { return classConnection }
func (*ConnectionOpenOK) MethodID() uint16 { return methodConnectionOpenOK }
func (m *ConnectionOpenOK) read(r io.Reader) (err error) {
	m.KnownHosts, err = readShortStr(r)
	return err
}
func (m *ConnectionOpenOK) write(w io.Writer) error { return writeShortStr(w, m.KnownHosts) }

type ConnectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID_  uint16
	MethodID_ uint16
}

func (*ConnectionClose) ClassID() uint16  { return classConnection }
func (*ConnectionClose) MethodID() uint16 { return methodConnectionClose }
func (m *ConnectionClose) read(r io.Reader) (err error) {
	if m.ReplyCode, err = readShortUint(r); err != nil {
		return err
	}
	if m.ReplyText, err = readShortStr(r); err != nil {
		return err
	}
	if m.ClassID_, err = readShortUint(r); err != nil {
		return err
	}
	m.MethodID_, err = readShortUint(r)
	return err
}
func (m *ConnectionClose) write(w io.Writer) error {
	if err := writeShortUint(w, m.ReplyCode); err != nil {
		return err
	}
	if err := writeShortStr(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShortUint(w, m.ClassID_); err != nil {
		return err
	}
	return writeShortUint(w, m.MethodID_)
}

type ConnectionCloseOK struct{}

func (*ConnectionCloseOK) ClassID() uint16          { return classConnection }
func (*ConnectionCloseOK) MethodID() uint16         { return methodConnectionCloseOK }
func (*ConnectionCloseOK) read(io.Reader) error     { return nil }
func (*ConnectionCloseOK) write(io.Writer) error    { return nil }

type ConnectionBlocked struct{ Reason string }

func (*ConnectionBlocked) ClassID() uint16  { return classConnection }
func (*ConnectionBlocked) MethodID() uint16 { return methodConnectionBlocked }
func (m *ConnectionBlocked) read(r io.Reader) (err error) {
	m.Reason, err = readShortStr(r)
	return err
}
func (m *ConnectionBlocked) write(w io.Writer) error { return writeShortStr(w, m.Reason) }

type ConnectionUnblocked struct{}

func (*ConnectionUnblocked) ClassID() uint16       { return classConnection }
func (*ConnectionUnblocked) MethodID() uint16      { return methodConnectionUnblocked }
func (*ConnectionUnblocked) read(io.Reader) error  { return nil }
func (*ConnectionUnblocked) write(io.Writer) error { return nil }

// ---- Channel class ----

type ChannelOpen struct{ OutOfBand string }

func (*ChannelOpen) ClassID() uint16  { return classChannel }
func (*ChannelOpen) MethodID() uint16 { return methodChannelOpen }
func (m *ChannelOpen) read(r io.Reader) (err error) {
	m.OutOfBand, err = readShortStr(r)
	return err
}
func (m *ChannelOpen) write(w io.Writer) error { return writeShortStr(w, m.OutOfBand) }

type ChannelOpenOK struct{ ChannelID string }

func (*ChannelOpenOK) ClassID() uint16  { return classChannel }
func (*ChannelOpenOK) MethodID() uint16 { return methodChannelOpenOK }
func (m *ChannelOpenOK) read(r io.Reader) (err error) {
	m.ChannelID, err = readLongStr(r)
	return err
}
func (m *ChannelOpenOK) write(w io.Writer) error { return writeLongStr(w, m.ChannelID) }

type ChannelFlow struct{ Active bool }

func (*ChannelFlow) ClassID() uint16  { return classChannel }
func (*ChannelFlow) MethodID() uint16 { return methodChannelFlow }
func (m *ChannelFlow) read(r io.Reader) error {
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Active = bits[0]
	return nil
}
func (m *ChannelFlow) write(w io.Writer) error { return writeBitsOctet(w, m.Active) }

type ChannelFlowOK struct{ Active bool }

func (*ChannelFlowOK) ClassID() uint16  { return classChannel }
func (*ChannelFlowOK) MethodID() uint16 { return methodChannelFlowOK }
func (m *ChannelFlowOK) read(r io.Reader) error {
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Active = bits[0]
	return nil
}
func (m *ChannelFlowOK) write(w io.Writer) error { return writeBitsOctet(w, m.Active) }

type ChannelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID_  uint16
	MethodID_ uint16
}

func (*ChannelClose) ClassID() uint16  { return classChannel }
func (*ChannelClose) MethodID() uint16 { return methodChannelClose }
func (m *ChannelClose) read(r io.Reader) (err error) {
	if m.ReplyCode, err = readShortUint(r); err != nil {
		return err
	}
	if m.ReplyText, err = readShortStr(r); err != nil {
		return err
	}
	if m.ClassID_, err = readShortUint(r); err != nil {
		return err
	}
	m.MethodID_, err = readShortUint(r)
	return err
}
func (m *ChannelClose) write(w io.Writer) error {
	if err := writeShortUint(w, m.ReplyCode); err != nil {
		return err
	}
	if err := writeShortStr(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShortUint(w, m.ClassID_); err != nil {
		return err
	}
	return writeShortUint(w, m.MethodID_)
}

type ChannelCloseOK struct{}

func (*ChannelCloseOK) ClassID() uint16       { return classChannel }
func (*ChannelCloseOK) MethodID() uint16      { return methodChannelCloseOK }
func (*ChannelCloseOK) read(io.Reader) error  { return nil }
func (*ChannelCloseOK) write(io.Writer) error { return nil }

// ---- Exchange class ----

type ExchangeDeclare struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

func (*ExchangeDeclare) ClassID() uint16  { return classExchange }
func (*ExchangeDeclare) MethodID() uint16 { return methodExchangeDeclare }
func (m *ExchangeDeclare) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil { // reserved-1
		return err
	}
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	if m.Type, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 5)
	if err != nil {
		return err
	}
	m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait = bits[0], bits[1], bits[2], bits[3], bits[4]
	m.Arguments, err = readTable(r)
	return err
}
func (m *ExchangeDeclare) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Type); err != nil {
		return err
	}
	if err := writeBitsOctet(w, m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait); err != nil {
		return err
	}
	_, err := w.Write(packTable(m.Arguments))
	return err
}

type ExchangeDeclareOK struct{}

func (*ExchangeDeclareOK) ClassID() uint16       { return classExchange }
func (*ExchangeDeclareOK) MethodID() uint16      { return methodExchangeDeclareOK }
func (*ExchangeDeclareOK) read(io.Reader) error  { return nil }
func (*ExchangeDeclareOK) write(io.Writer) error { return nil }

type ExchangeDelete struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (*ExchangeDelete) ClassID() uint16  { return classExchange }
func (*ExchangeDelete) MethodID() uint16 { return methodExchangeDelete }
func (m *ExchangeDelete) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 2)
	if err != nil {
		return err
	}
	m.IfUnused, m.NoWait = bits[0], bits[1]
	return nil
}
func (m *ExchangeDelete) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	return writeBitsOctet(w, m.IfUnused, m.NoWait)
}

type ExchangeDeleteOK struct{}

func (*ExchangeDeleteOK) ClassID() uint16       { return classExchange }
func (*ExchangeDeleteOK) MethodID() uint16      { return methodExchangeDeleteOK }
func (*ExchangeDeleteOK) read(io.Reader) error  { return nil }
func (*ExchangeDeleteOK) write(io.Writer) error { return nil }

// ---- Queue class ----

type QueueDeclare struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func (*QueueDeclare) ClassID() uint16  { return classQueue }
func (*QueueDeclare) MethodID() uint16 { return methodQueueDeclare }
func (m *QueueDeclare) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 5)
	if err != nil {
		return err
	}
	m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait = bits[0], bits[1], bits[2], bits[3], bits[4]
	m.Arguments, err = readTable(r)
	return err
}
func (m *QueueDeclare) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	if err := writeBitsOctet(w, m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait); err != nil {
		return err
	}
	_, err := w.Write(packTable(m.Arguments))
	return err
}

type QueueDeclareOK struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (*QueueDeclareOK) ClassID() uint16  { return classQueue }
func (*QueueDeclareOK) MethodID() uint16 { return methodQueueDeclareOK }
func (m *QueueDeclareOK) read(r io.Reader) (err error) {
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	if m.MessageCount, err = readLongUint(r); err != nil {
		return err
	}
	m.ConsumerCount, err = readLongUint(r)
	return err
}
func (m *QueueDeclareOK) write(w io.Writer) error {
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	if err := writeLongUint(w, m.MessageCount); err != nil {
		return err
	}
	return writeLongUint(w, m.ConsumerCount)
}

type QueueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func (*QueueBind) ClassID() uint16  { return classQueue }
func (*QueueBind) MethodID() uint16 { return methodQueueBind }
func (m *QueueBind) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	if m.RoutingKey, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.NoWait = bits[0]
	m.Arguments, err = readTable(r)
	return err
}
func (m *QueueBind) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortStr(w, m.RoutingKey); err != nil {
		return err
	}
	if err := writeBitsOctet(w, m.NoWait); err != nil {
		return err
	}
	_, err := w.Write(packTable(m.Arguments))
	return err
}

type QueueBindOK struct{}

func (*QueueBindOK) ClassID() uint16       { return classQueue }
func (*QueueBindOK) MethodID() uint16      { return methodQueueBindOK }
func (*QueueBindOK) read(io.Reader) error  { return nil }
func (*QueueBindOK) write(io.Writer) error { return nil }

type QueueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (*QueueUnbind) ClassID() uint16  { return classQueue }
func (*QueueUnbind) MethodID() uint16 { return methodQueueUnbind }
func (m *QueueUnbind) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	if m.RoutingKey, err = readShortStr(r); err != nil {
		return err
	}
	m.Arguments, err = readTable(r)
	return err
}
func (m *QueueUnbind) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortStr(w, m.RoutingKey); err != nil {
		return err
	}
	_, err := w.Write(packTable(m.Arguments))
	return err
}

type QueueUnbindOK struct{}

func (*QueueUnbindOK) ClassID() uint16       { return classQueue }
func (*QueueUnbindOK) MethodID() uint16      { return methodQueueUnbindOK }
func (*QueueUnbindOK) read(io.Reader) error  { return nil }
func (*QueueUnbindOK) write(io.Writer) error { return nil }

type QueuePurge struct {
	Queue  string
	NoWait bool
}

func (*QueuePurge) ClassID() uint16  { return classQueue }
func (*QueuePurge) MethodID() uint16 { return methodQueuePurge }
func (m *QueuePurge) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.NoWait = bits[0]
	return nil
}
func (m *QueuePurge) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	return writeBitsOctet(w, m.NoWait)
}

type QueuePurgeOK struct{ MessageCount uint32 }

func (*QueuePurgeOK) ClassID() uint16  { return classQueue }
func (*QueuePurgeOK) MethodID() uint16 { return methodQueuePurgeOK }
func (m *QueuePurgeOK) read(r io.Reader) (err error) {
	m.MessageCount, err = readLongUint(r)
	return err
}
func (m *QueuePurgeOK) write(w io.Writer) error { return writeLongUint(w, m.MessageCount) }

type QueueDelete struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (*QueueDelete) ClassID() uint16  { return classQueue }
func (*QueueDelete) MethodID() uint16 { return methodQueueDelete }
func (m *QueueDelete) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 3)
	if err != nil {
		return err
	}
	m.IfUnused, m.IfEmpty, m.NoWait = bits[0], bits[1], bits[2]
	return nil
}
func (m *QueueDelete) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	return writeBitsOctet(w, m.IfUnused, m.IfEmpty, m.NoWait)
}

type QueueDeleteOK struct{ MessageCount uint32 }

func (*QueueDeleteOK) ClassID() uint16  { return classQueue }
func (*QueueDeleteOK) MethodID() uint16 { return methodQueueDeleteOK }
func (m *QueueDeleteOK) read(r io.Reader) (err error) {
	m.MessageCount, err = readLongUint(r)
	return err
}
func (m *QueueDeleteOK) write(w io.Writer) error { return writeLongUint(w, m.MessageCount) }

// ---- Basic class ----

type BasicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (*BasicQos) ClassID() uint16  { return classBasic }
func (*BasicQos) MethodID() uint16 { return methodBasicQos }
func (m *BasicQos) read(r io.Reader) (err error) {
	if m.PrefetchSize, err = readLongUint(r); err != nil {
		return err
	}
	if m.PrefetchCount, err = readShortUint(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Global = bits[0]
	return nil
}
func (m *BasicQos) write(w io.Writer) error {
	if err := writeLongUint(w, m.PrefetchSize); err != nil {
		return err
	}
	if err := writeShortUint(w, m.PrefetchCount); err != nil {
		return err
	}
	return writeBitsOctet(w, m.Global)
}

type BasicQosOK struct{}

func (*BasicQosOK) ClassID() uint16       { return classBasic }
func (*BasicQosOK) MethodID() uint16      { return methodBasicQosOK }
func (*BasicQosOK) read(io.Reader) error  { return nil }
func (*BasicQosOK) write(io.Writer) error { return nil }

type BasicConsume struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func (*BasicConsume) ClassID() uint16  { return classBasic }
func (*BasicConsume) MethodID() uint16 { return methodBasicConsume }
func (m *BasicConsume) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	if m.ConsumerTag, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 4)
	if err != nil {
		return err
	}
	m.NoLocal, m.NoAck, m.Exclusive, m.NoWait = bits[0], bits[1], bits[2], bits[3]
	m.Arguments, err = readTable(r)
	return err
}
func (m *BasicConsume) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	if err := writeShortStr(w, m.ConsumerTag); err != nil {
		return err
	}
	if err := writeBitsOctet(w, m.NoLocal, m.NoAck, m.Exclusive, m.NoWait); err != nil {
		return err
	}
	_, err := w.Write(packTable(m.Arguments))
	return err
}

type BasicConsumeOK struct{ ConsumerTag string }

func (*BasicConsumeOK) ClassID() uint16  { return classBasic }
func (*BasicConsumeOK) MethodID() uint16 { return methodBasicConsumeOK }
func (m *BasicConsumeOK) read(r io.Reader) (err error) {
	m.ConsumerTag, err = readShortStr(r)
	return err
}
func (m *BasicConsumeOK) write(w io.Writer) error { return writeShortStr(w, m.ConsumerTag) }

type BasicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (*BasicCancel) ClassID() uint16  { return classBasic }
func (*BasicCancel) MethodID() uint16 { return methodBasicCancel }
func (m *BasicCancel) read(r io.Reader) (err error) {
	if m.ConsumerTag, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.NoWait = bits[0]
	return nil
}
func (m *BasicCancel) write(w io.Writer) error {
	if err := writeShortStr(w, m.ConsumerTag); err != nil {
		return err
	}
	return writeBitsOctet(w, m.NoWait)
}

type BasicCancelOK struct{ ConsumerTag string }

func (*BasicCancelOK) ClassID() uint16  { return classBasic }
func (*BasicCancelOK) MethodID() uint16 { return methodBasicCancelOK }
func (m *BasicCancelOK) read(r io.Reader) (err error) {
	m.ConsumerTag, err = readShortStr(r)
	return err
}
func (m *BasicCancelOK) write(w io.Writer) error { return writeShortStr(w, m.ConsumerTag) }

type BasicPublish struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (*BasicPublish) ClassID() uint16  { return classBasic }
func (*BasicPublish) MethodID() uint16 { return methodBasicPublish }
func (m *BasicPublish) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	if m.RoutingKey, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 2)
	if err != nil {
		return err
	}
	m.Mandatory, m.Immediate = bits[0], bits[1]
	return nil
}
func (m *BasicPublish) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortStr(w, m.RoutingKey); err != nil {
		return err
	}
	return writeBitsOctet(w, m.Mandatory, m.Immediate)
}

type BasicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (*BasicReturn) ClassID() uint16  { return classBasic }
func (*BasicReturn) MethodID() uint16 { return methodBasicReturn }
func (m *BasicReturn) read(r io.Reader) (err error) {
	if m.ReplyCode, err = readShortUint(r); err != nil {
		return err
	}
	if m.ReplyText, err = readShortStr(r); err != nil {
		return err
	}
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	m.RoutingKey, err = readShortStr(r)
	return err
}
func (m *BasicReturn) write(w io.Writer) error {
	if err := writeShortUint(w, m.ReplyCode); err != nil {
		return err
	}
	if err := writeShortStr(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	return writeShortStr(w, m.RoutingKey)
}

type BasicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (*BasicDeliver) ClassID() uint16  { return classBasic }
func (*BasicDeliver) MethodID() uint16 { return methodBasicDeliver }
func (m *BasicDeliver) read(r io.Reader) (err error) {
	if m.ConsumerTag, err = readShortStr(r); err != nil {
		return err
	}
	if m.DeliveryTag, err = readLonglongUint(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Redelivered = bits[0]
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	m.RoutingKey, err = readShortStr(r)
	return err
}
func (m *BasicDeliver) write(w io.Writer) error {
	if err := writeShortStr(w, m.ConsumerTag); err != nil {
		return err
	}
	if err := writeLonglongUint(w, m.DeliveryTag); err != nil {
		return err
	}
	if err := writeBitsOctet(w, m.Redelivered); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	return writeShortStr(w, m.RoutingKey)
}

type BasicGet struct {
	Queue string
	NoAck bool
}

func (*BasicGet) ClassID() uint16  { return classBasic }
func (*BasicGet) MethodID() uint16 { return methodBasicGet }
func (m *BasicGet) read(r io.Reader) (err error) {
	if _, err = readShortUint(r); err != nil {
		return err
	}
	if m.Queue, err = readShortStr(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.NoAck = bits[0]
	return nil
}
func (m *BasicGet) write(w io.Writer) error {
	if err := writeShortUint(w, 0); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Queue); err != nil {
		return err
	}
	return writeBitsOctet(w, m.NoAck)
}

type BasicGetOK struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (*BasicGetOK) ClassID() uint16  { return classBasic }
func (*BasicGetOK) MethodID() uint16 { return methodBasicGetOK }
func (m *BasicGetOK) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglongUint(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Redelivered = bits[0]
	if m.Exchange, err = readShortStr(r); err != nil {
		return err
	}
	if m.RoutingKey, err = readShortStr(r); err != nil {
		return err
	}
	m.MessageCount, err = readLongUint(r)
	return err
}
func (m *BasicGetOK) write(w io.Writer) error {
	if err := writeLonglongUint(w, m.DeliveryTag); err != nil {
		return err
	}
	if err := writeBitsOctet(w, m.Redelivered); err != nil {
		return err
	}
	if err := writeShortStr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortStr(w, m.RoutingKey); err != nil {
		return err
	}
	return writeLongUint(w, m.MessageCount)
}

type BasicGetEmpty struct{ Reserved1 string }

func (*BasicGetEmpty) ClassID() uint16  { return classBasic }
func (*BasicGetEmpty) MethodID() uint16 { return methodBasicGetEmpty }
func (m *BasicGetEmpty) read(r io.Reader) (err error) {
	m.Reserved1, err = readShortStr(r)
	return err
}
func (m *BasicGetEmpty) write(w io.Writer) error { return writeShortStr(w, m.Reserved1) }

type BasicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (*BasicAck) ClassID() uint16  { return classBasic }
func (*BasicAck) MethodID() uint16 { return methodBasicAck }
func (m *BasicAck) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglongUint(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Multiple = bits[0]
	return nil
}
func (m *BasicAck) write(w io.Writer) error {
	if err := writeLonglongUint(w, m.DeliveryTag); err != nil {
		return err
	}
	return writeBitsOctet(w, m.Multiple)
}

type BasicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (*BasicReject) ClassID() uint16  { return classBasic }
func (*BasicReject) MethodID() uint16 { return methodBasicReject }
func (m *BasicReject) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglongUint(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Requeue = bits[0]
	return nil
}
func (m *BasicReject) write(w io.Writer) error {
	if err := writeLonglongUint(w, m.DeliveryTag); err != nil {
		return err
	}
	return writeBitsOctet(w, m.Requeue)
}

type BasicRecoverAsync struct{ Requeue bool }

func (*BasicRecoverAsync) ClassID() uint16  { return classBasic }
func (*BasicRecoverAsync) MethodID() uint16 { return methodBasicRecoverAsync }
func (m *BasicRecoverAsync) read(r io.Reader) error {
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Requeue = bits[0]
	return nil
}
func (m *BasicRecoverAsync) write(w io.Writer) error { return writeBitsOctet(w, m.Requeue) }

type BasicRecover struct{ Requeue bool }

func (*BasicRecover) ClassID() uint16  { return classBasic }
func (*BasicRecover) MethodID() uint16 { return methodBasicRecover }
func (m *BasicRecover) read(r io.Reader) error {
	bits, err := readBitsOctet(r, 1)
	if err != nil {
		return err
	}
	m.Requeue = bits[0]
	return nil
}
func (m *BasicRecover) write(w io.Writer) error { return writeBitsOctet(w, m.Requeue) }

type BasicRecoverOK struct{}

func (*BasicRecoverOK) ClassID() uint16       { return classBasic }
func (*BasicRecoverOK) MethodID() uint16      { return methodBasicRecoverOK }
func (*BasicRecoverOK) read(io.Reader) error  { return nil }
func (*BasicRecoverOK) write(io.Writer) error { return nil }

type BasicNack struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (*BasicNack) ClassID() uint16  { return classBasic }
func (*BasicNack) MethodID() uint16 { return methodBasicNack }
func (m *BasicNack) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglongUint(r); err != nil {
		return err
	}
	bits, err := readBitsOctet(r, 2)
	if err != nil {
		return err
	}
	m.Multiple, m.Requeue = bits[0], bits[1]
	return nil
}
func (m *BasicNack) write(w io.Writer) error {
	if err := writeLonglongUint(w, m.DeliveryTag); err != nil {
		return err
	}
	return writeBitsOctet(w, m.Multiple, m.Requeue)
}

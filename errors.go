package amqp

import (
	"fmt"

	"github.com/pkg/errors"
)

// AMQPError is the base of the error taxonomy described in spec.md §7: it
// carries a reply code, reply text, and the class/method that provoked it
// (zero when not applicable, e.g. framing errors).
type AMQPError struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (e *AMQPError) Error() string {
	if e.ClassID == 0 && e.MethodID == 0 {
		return fmt.Sprintf("AMQP error %d: %s", e.ReplyCode, e.ReplyText)
	}
	return fmt.Sprintf("AMQP error %d: %s (class=%d method=%d)", e.ReplyCode, e.ReplyText, e.ClassID, e.MethodID)
}

// newAMQPError wraps a plain codec/framing failure (taxonomy item 1/2 of
// spec.md §7) as an AMQPError with no reply code of its own.
func newAMQPError(cause error) *AMQPError {
	return &AMQPError{ReplyCode: replyFrameError, ReplyText: cause.Error()}
}

// replyCodeError is the generated per-reply-code error family referenced by
// spec.md §6 (e.g. NotFound, PreconditionFailed). All names share this one
// type: name holds the AMQP constant's name, and Unwrap exposes the embedded
// AMQPError so errors.As can reach its ReplyCode, while Error() reports the
// exact close reason the broker gave.
type replyCodeError struct {
	*AMQPError
	name string
}

func (e *replyCodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.name, e.AMQPError.Error())
}

func (e *replyCodeError) Unwrap() error { return e.AMQPError }

func newReplyError(name string, code uint16, text string, classID, methodID uint16) error {
	return &replyCodeError{
		AMQPError: &AMQPError{ReplyCode: code, ReplyText: text, ClassID: classID, MethodID: methodID},
		name:      name,
	}
}

// replyErrorNames maps the well-known reply codes to the generated error
// family's name, per spec.md §6's "family of per-reply-code errors named
// from the AMQP constants table".
var replyErrorNames = map[uint16]string{
	replyContentTooLarge:  "ContentTooLarge",
	replyNoRoute:          "NoRoute",
	replyNoConsumers:      "NoConsumers",
	replyConnectionForced: "ConnectionForced",
	replyInvalidPath:      "InvalidPath",
	replyAccessRefused:    "AccessRefused",
	replyNotFound:         "NotFound",
	replyResourceLocked:   "ResourceLocked",
	replyPreconditionFail: "PreconditionFailed",
	replyFrameError:       "FrameError",
	replySyntaxError:      "SyntaxError",
	replyCommandInvalid:   "CommandInvalid",
	replyChannelError:     "ChannelError",
	replyUnexpectedFrame:  "UnexpectedFrame",
	replyResourceError:    "ResourceError",
	replyNotAllowed:       "NotAllowed",
	replyNotImplemented:   "NotImplemented",
	replyInternalError:    "InternalError",
}

// newCloseError builds the appropriate generated error for a Channel Close
// method's reply code (spec.md §7 item 3).
func newCloseError(code uint16, text string, classID, methodID uint16) error {
	name, ok := replyErrorNames[code]
	if !ok {
		name = "AMQPError"
	}
	return newReplyError(name, code, text, classID, methodID)
}

// Library-defined errors (spec.md §6), distinct from the generated
// reply-code family.

// AlreadyClosed is the base of the "issuing commands on a closed
// Channel/Connection" family.
type AlreadyClosed struct{ reason string }

func (e *AlreadyClosed) Error() string { return e.reason }

// ErrClientConnectionClosed is returned to pending/future operations after the
// client itself closed the connection.
var ErrClientConnectionClosed = &AlreadyClosed{reason: "connection closed by client"}

// ErrServerConnectionClosed is returned after the server closed the connection.
var ErrServerConnectionClosed = &AlreadyClosed{reason: "connection closed by server"}

// ErrClientChannelClosed is returned after the client closed the channel.
var ErrClientChannelClosed = &AlreadyClosed{reason: "channel closed by client"}

// ErrConsumerCancelled is raised from a cancelled consumer's pending and
// subsequent pulls (spec.md §4.7/§8 scenario 9).
var ErrConsumerCancelled = &AlreadyClosed{reason: "consumer was cancelled"}

// ConnectionLostError carries the original cause of an unexpected transport
// loss or heartbeat timeout (spec.md §6/§7 item 6).
type ConnectionLostError struct {
	cause error
}

func newConnectionLostError(cause error) *ConnectionLostError {
	return &ConnectionLostError{cause: cause}
}

func (e *ConnectionLostError) Error() string {
	if e.cause == nil {
		return "connection lost"
	}
	return fmt.Sprintf("connection lost: %s", e.cause.Error())
}

func (e *ConnectionLostError) Unwrap() error { return e.cause }

// Cause returns the error.Cause-compatible underlying transport failure.
func (e *ConnectionLostError) Cause() error { return e.cause }

// UndeliverableMessage surfaces a mandatory/immediate publish that the
// broker returned via Basic.Return (spec.md §7 item 7).
type UndeliverableMessage struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (e *UndeliverableMessage) Error() string {
	return fmt.Sprintf("undeliverable message to exchange %q routing key %q: %d %s",
		e.Exchange, e.RoutingKey, e.ReplyCode, e.ReplyText)
}

// Deleted surfaces an operation against an entity the broker reports as
// already gone (e.g. delete on a non-existent queue), per spec.md §7 item 7.
type Deleted struct{ what string }

func (e *Deleted) Error() string { return e.what + " was deleted" }

// ErrSASL indicates no common SASL mechanism could be agreed (spec.md §1
// scopes SASL to AMQPLAIN only).
var ErrSASL = errors.New("no supported SASL mechanism offered by server")

// ErrHeartbeatTimeout is the cause wrapped into ConnectionLostError when the
// peer misses 2T seconds of heartbeats (spec.md §4.8).
var ErrHeartbeatTimeout = errors.New("missed heartbeat from peer")

package amqp

// Class ids for the classes this engine drives: Connection, Channel,
// Exchange, Queue and Basic. Tx and Confirm are out of scope (spec.md §1).
const (
	classConnection = 10
	classChannel    = 20
	classExchange   = 40
	classQueue      = 50
	classBasic      = 60
)

// Method ids, grouped by class.
const (
	methodConnectionStart    = 10
	methodConnectionStartOK  = 11
	methodConnectionSecure   = 20
	methodConnectionSecureOK = 21
	methodConnectionTune     = 30
	methodConnectionTuneOK   = 31
	methodConnectionOpen     = 40
	methodConnectionOpenOK   = 41
	methodConnectionClose    = 50
	methodConnectionCloseOK  = 51
	methodConnectionBlocked  = 60
	methodConnectionUnblocked = 61

	methodChannelOpen    = 10
	methodChannelOpenOK  = 11
	methodChannelFlow    = 20
	methodChannelFlowOK  = 21
	methodChannelClose   = 40
	methodChannelCloseOK = 41

	methodExchangeDeclare   = 10
	methodExchangeDeclareOK = 11
	methodExchangeDelete    = 20
	methodExchangeDeleteOK  = 21

	methodQueueDeclare   = 10
	methodQueueDeclareOK = 11
	methodQueueBind      = 20
	methodQueueBindOK    = 21
	methodQueuePurge     = 30
	methodQueuePurgeOK   = 31
	methodQueueDelete    = 40
	methodQueueDeleteOK  = 41
	methodQueueUnbind    = 50
	methodQueueUnbindOK  = 51

	methodBasicQos          = 10
	methodBasicQosOK        = 11
	methodBasicConsume      = 20
	methodBasicConsumeOK    = 21
	methodBasicCancel       = 30
	methodBasicCancelOK     = 31
	methodBasicPublish      = 40
	methodBasicReturn       = 50
	methodBasicDeliver      = 60
	methodBasicGet          = 70
	methodBasicGetOK        = 71
	methodBasicGetEmpty     = 72
	methodBasicAck          = 80
	methodBasicReject       = 90
	methodBasicRecoverAsync = 100
	methodBasicRecover      = 110
	methodBasicRecoverOK    = 111
	methodBasicNack         = 120
)

// Frame type octets (spec.md §4.1 / §6).
const (
	frameMethod    = 1
	frameHeader    = 2
	frameBody      = 3
	frameHeartbeat = 8
	frameEnd       = 0xCE
)

// Reply codes from the AMQP 0-9-1 constants table. Used both to build the
// generated per-reply-code error family (errors.go) and to fill in
// Connection/Channel Close methods.
const (
	replySuccess          = 200
	replyContentTooLarge  = 311
	replyNoRoute          = 312
	replyNoConsumers      = 313
	replyConnectionForced = 320
	replyInvalidPath      = 402
	replyAccessRefused    = 403
	replyNotFound         = 404
	replyResourceLocked   = 405
	replyPreconditionFail = 406
	replyFrameError       = 501
	replySyntaxError      = 502
	replyCommandInvalid   = 503
	replyChannelError     = 504
	replyUnexpectedFrame  = 505
	replyResourceError    = 506
	replyNotAllowed       = 530
	replyNotImplemented   = 540
	replyInternalError    = 541
)

// protocolHeaderBytes is the literal 8 octets a client must send before any
// frame (spec.md §6).
var protocolHeaderBytes = [8]byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}

// ClientVersion is a configurable build-time constant; the source's "0.1"
// literal may be a placeholder (spec.md §9's first Open Question), so it is
// exposed for callers that want to stamp their own value.
var ClientVersion = "0.1"

// defaultLocale is sent in Connection.StartOK (spec.md §4.5 step 2).
const defaultLocale = "en_US"

// saslMechanism is the only SASL mechanism this engine speaks (spec.md §1).
const saslMechanism = "AMQPLAIN"

package amqp

import (
	"io"
	"time"
)

// BasicProperties holds the Basic class's content-header properties, in the
// order their presence bits appear in the property-flags octet pair
// (highest bit first), per the AMQP 0-9-1 spec tables referenced by
// spec.md §6.
type BasicProperties struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       time.Time
	Type            string
	UserID          string
	AppID           string
}

const (
	flagContentType     = 1 << 15
	flagContentEncoding = 1 << 14
	flagHeaders         = 1 << 13
	flagDeliveryMode    = 1 << 12
	flagPriority        = 1 << 11
	flagCorrelationID   = 1 << 10
	flagReplyTo         = 1 << 9
	flagExpiration      = 1 << 8
	flagMessageID       = 1 << 7
	flagTimestamp       = 1 << 6
	flagType            = 1 << 5
	flagUserID          = 1 << 4
	flagAppID           = 1 << 3
)

func readBasicProperties(r io.Reader) (BasicProperties, error) {
	var p BasicProperties
	flags, err := readShortUint(r)
	if err != nil {
		return p, err
	}

	if flags&flagContentType != 0 {
		if p.ContentType, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagContentEncoding != 0 {
		if p.ContentEncoding, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagHeaders != 0 {
		if p.Headers, err = readTable(r); err != nil {
			return p, err
		}
	}
	if flags&flagDeliveryMode != 0 {
		b, err := readOctet(r)
		if err != nil {
			return p, err
		}
		p.DeliveryMode = b
	}
	if flags&flagPriority != 0 {
		b, err := readOctet(r)
		if err != nil {
			return p, err
		}
		p.Priority = b
	}
	if flags&flagCorrelationID != 0 {
		if p.CorrelationID, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagReplyTo != 0 {
		if p.ReplyTo, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagExpiration != 0 {
		if p.Expiration, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagMessageID != 0 {
		if p.MessageID, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagTimestamp != 0 {
		if p.Timestamp, err = readTimestamp(r); err != nil {
			return p, err
		}
	}
	if flags&flagType != 0 {
		if p.Type, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagUserID != 0 {
		if p.UserID, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	if flags&flagAppID != 0 {
		if p.AppID, err = readShortStr(r); err != nil {
			return p, err
		}
	}
	return p, nil
}

func writeBasicProperties(w io.Writer, p BasicProperties) error {
	var flags uint16
	if p.ContentType != "" {
		flags |= flagContentType
	}
	if p.ContentEncoding != "" {
		flags |= flagContentEncoding
	}
	if p.Headers != nil {
		flags |= flagHeaders
	}
	if p.DeliveryMode != 0 {
		flags |= flagDeliveryMode
	}
	if p.Priority != 0 {
		flags |= flagPriority
	}
	if p.CorrelationID != "" {
		flags |= flagCorrelationID
	}
	if p.ReplyTo != "" {
		flags |= flagReplyTo
	}
	if p.Expiration != "" {
		flags |= flagExpiration
	}
	if p.MessageID != "" {
		flags |= flagMessageID
	}
	if !p.Timestamp.IsZero() {
		flags |= flagTimestamp
	}
	if p.Type != "" {
		flags |= flagType
	}
	if p.UserID != "" {
		flags |= flagUserID
	}
	if p.AppID != "" {
		flags |= flagAppID
	}

	if err := writeShortUint(w, flags); err != nil {
		return err
	}
	if flags&flagContentType != 0 {
		if err := writeShortStr(w, p.ContentType); err != nil {
			return err
		}
	}
	if flags&flagContentEncoding != 0 {
		if err := writeShortStr(w, p.ContentEncoding); err != nil {
			return err
		}
	}
	if flags&flagHeaders != 0 {
		if _, err := w.Write(packTable(p.Headers)); err != nil {
			return err
		}
	}
	if flags&flagDeliveryMode != 0 {
		if err := writeOctet(w, p.DeliveryMode); err != nil {
			return err
		}
	}
	if flags&flagPriority != 0 {
		if err := writeOctet(w, p.Priority); err != nil {
			return err
		}
	}
	if flags&flagCorrelationID != 0 {
		if err := writeShortStr(w, p.CorrelationID); err != nil {
			return err
		}
	}
	if flags&flagReplyTo != 0 {
		if err := writeShortStr(w, p.ReplyTo); err != nil {
			return err
		}
	}
	if flags&flagExpiration != 0 {
		if err := writeShortStr(w, p.Expiration); err != nil {
			return err
		}
	}
	if flags&flagMessageID != 0 {
		if err := writeShortStr(w, p.MessageID); err != nil {
			return err
		}
	}
	if flags&flagTimestamp != 0 {
		if err := writeTimestamp(w, p.Timestamp); err != nil {
			return err
		}
	}
	if flags&flagType != 0 {
		if err := writeShortStr(w, p.Type); err != nil {
			return err
		}
	}
	if flags&flagUserID != 0 {
		if err := writeShortStr(w, p.UserID); err != nil {
			return err
		}
	}
	if flags&flagAppID != 0 {
		if err := writeShortStr(w, p.AppID); err != nil {
			return err
		}
	}
	return nil
}

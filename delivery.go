package amqp

// Delivery is an inbound message handed to a consumer or returned from
// Basic.Get: the assembled body plus the properties and routing metadata
// carried in the header and deliver/get-ok frames (spec.md §4.6/§4.7).
type Delivery struct {
	Body       []byte
	Properties BasicProperties

	Exchange    string
	RoutingKey  string
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool

	channel *Channel
	noAck   bool
}

// Ack acknowledges a single delivery. A no-op when the consumer that
// produced this delivery was declared with no_ack=true, since the broker
// never expects (and will reject) an ack for it (spec.md §4.7).
func (d Delivery) Ack() error {
	if d.noAck {
		return nil
	}
	return d.channel.ack(d.DeliveryTag, false)
}

// Nack negatively acknowledges a single delivery, requeuing it when requeue
// is true.
func (d Delivery) Nack(requeue bool) error {
	if d.noAck {
		return nil
	}
	return d.channel.nack(d.DeliveryTag, false, requeue)
}

// Reject is the Basic.Reject equivalent of Nack for brokers that predate
// Basic.Nack.
func (d Delivery) Reject(requeue bool) error {
	if d.noAck {
		return nil
	}
	return d.channel.reject(d.DeliveryTag, requeue)
}

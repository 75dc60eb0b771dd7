package amqp

// sender serialises outbound methods for a given channel and hands them to
// the Protocol Engine (spec.md §4.5 `ConnectionMethodSender` / §4.6).
type sender struct {
	channelID uint16
	engine    *engine
}

func newSender(channelID uint16, e *engine) *sender {
	return &sender{channelID: channelID, engine: e}
}

func (s *sender) sendMethod(m Method) error {
	return s.engine.writeFrame(&MethodFrame{ChannelID: s.channelID, Method: m})
}

// sendContent emits Publish + ContentHeader + ContentBody frames
// contiguously (spec.md §5's ordering guarantee for one message), splitting
// the body into chunks no larger than frame_max-8 bytes (spec.md §4.6/§9).
func (s *sender) sendContent(method Method, props BasicProperties, body []byte) error {
	s.engine.writeLock.Lock()
	defer s.engine.writeLock.Unlock()

	if err := s.engine.writeFrameLocked(&MethodFrame{ChannelID: s.channelID, Method: method}); err != nil {
		return err
	}
	if err := s.engine.writeFrameLocked(&HeaderFrame{
		ChannelID:  s.channelID,
		ClassID:    classBasic,
		BodySize:   uint64(len(body)),
		Properties: props,
	}); err != nil {
		return err
	}

	maxChunk := int(s.engine.frameMax) - 8
	if maxChunk <= 0 {
		maxChunk = len(body)
	}
	for offset := 0; offset < len(body); {
		end := offset + maxChunk
		if end > len(body) {
			end = len(body)
		}
		if err := s.engine.writeFrameLocked(&BodyFrame{ChannelID: s.channelID, Payload: body[offset:end]}); err != nil {
			return err
		}
		offset = end
	}
	return nil
}

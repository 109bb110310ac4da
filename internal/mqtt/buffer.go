package mqtt

import "log"

// queuedMsg is a serialized MQTT message waiting for the connection to return.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while disconnected, oldest first, up to a
// fixed capacity. When full the oldest message is discarded. A retained
// message replaces any earlier retained message on the same topic, since the
// broker would only keep the last one anyway.
// Not safe for concurrent use; the publisher holds its mutex around it.
type outbox struct {
	msgs     []queuedMsg
	capacity int
	dropped  int
	warned   bool
}

func newOutbox(capacity int) *outbox {
	return &outbox{capacity: capacity}
}

func (o *outbox) push(msg queuedMsg) {
	if msg.retained {
		for i := range o.msgs {
			if o.msgs[i].retained && o.msgs[i].topic == msg.topic {
				o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
				break
			}
		}
	}
	if len(o.msgs) == o.capacity {
		if !o.warned {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.capacity)
			o.warned = true
		}
		o.msgs = o.msgs[1:]
		o.dropped++
	}
	o.msgs = append(o.msgs, msg)
}

// take returns the queued messages in publish order and empties the outbox.
func (o *outbox) take() []queuedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	out := o.msgs
	o.msgs = nil
	o.warned = false
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}

package domain

// MessageBus carries inbound message envelopes from the session controller
// to the dispatcher.
type MessageBus interface {
	Publish(msg InboundMessage)
	Subscribe() <-chan InboundMessage
	Close()
}

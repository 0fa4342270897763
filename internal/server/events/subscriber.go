package events

// Subscriber consumes the event stream. Send must not block.
type Subscriber interface {
	Send(Event) error
	Close() error
}

package bus

import "time"

// Lifecycle event types published by systems.
const (
	EntityCreated   = "entity.created"
	EntityDestroyed = "entity.destroyed"
	SubtreeLoaded   = "system.loaded"
	SystemClosed    = "system.closed"
)

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Delivery is synchronous: Publish calls every handler subscribed to the
// event type in the caller goroutine, without holding the bus lock, and
// joins the errors they return. Handlers must not block.
type EventBus interface {
	Publish(event Event) error
	// PublishAsync delivers in a separate goroutine and sends the joined
	// error (or nil) on the returned channel before closing it.
	PublishAsync(event Event) <-chan error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error
	// Subscribers returns the number of active subscriptions for eventType.
	Subscribers(eventType string) int
}

// Event is an immutable notification.
type Event struct {
	Type      string
	Source    string
	Timestamp time.Time
	// UUID is the entity the event is about, if any.
	UUID uint32
	Data any
}

type EventHandler func(event Event) error

// Subscription is a registered handler. Cancel may be called repeatedly.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	Cancel() error
}

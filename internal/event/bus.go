// Package event is the in-process notification bus that fans data changes
// out to the views and the insights coordinator. Dispatch is synchronous and
// payloads carry the mutated record plus the resulting full list, so
// listeners never have to re-query the store to act.
package event

import "sync"

// Topic identifies a class of notification.
type Topic string

const (
	TopicSessionCompleted Topic = "session-completed"
	TopicTaskChanged      Topic = "task-changed"
	TopicDeadlineChanged  Topic = "deadline-changed"
	TopicReflectionAdded  Topic = "reflection-added"
	TopicFeedUpdated      Topic = "feed-updated"
)

// Reason says what happened to the record a change event carries.
type Reason string

const (
	ReasonAdded     Reason = "added"
	ReasonCompleted Reason = "completed"
	ReasonReopened  Reason = "reopened"
	ReasonDeleted   Reason = "deleted"
)

// Event is implemented by every payload type in this package.
type Event interface {
	Topic() Topic
}

type subscriber struct {
	id int
	fn func(Event)
}

// Bus is a synchronous in-process pub/sub dispatcher. Subscribers are invoked
// inline on Publish; the Bus is safe for use from the Bubble Tea update loop
// and from the coordinator's poll goroutine.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers fn for a topic and returns an unsubscribe func. Each
// component unsubscribes when it goes away; there are no ambient listeners.
func (b *Bus) Subscribe(topic Topic, fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish dispatches the event to every subscriber of its topic, in
// subscription order.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs[e.Topic()]))
	copy(subs, b.subs[e.Topic()])
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}

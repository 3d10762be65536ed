// Package bus is the in-process publish/subscribe channel that lets the
// cart ledger, notification feed and product catalog announce state changes
// to any number of observers without referencing them. Delivery is
// synchronous and in subscription order relative to a single publish; a
// publish with no subscribers is a no-op. Topics bind a name to a payload
// type at compile time.
package bus

import (
	"sync"
)

// Topic binds a channel name to its payload type. Producing packages
// declare their topics as package-level values.
type Topic[T any] struct {
	name string
}

// NewTopic declares a topic carrying payloads of type T.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the wire name of the topic.
func (t Topic[T]) Name() string {
	return t.name
}

// Options configures optional bus hooks.
type Options struct {
	// OnPublish is invoked once per publish with the topic name.
	OnPublish func(topic string)
}

type handlerEntry struct {
	id uint64
	fn func(any)
}

// Bus fans published payloads out to subscribed handlers.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]handlerEntry
	nextID uint64
	opts   Options
}

func New(opts Options) *Bus {
	return &Bus{
		subs: make(map[string][]handlerEntry),
		opts: opts,
	}
}

// Subscribe registers a handler for the topic and returns an unsubscribe
// function that is idempotent and safe to call multiple times.
func Subscribe[T any](b *Bus, topic Topic[T], handler func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic.name] = append(b.subs[topic.name], handlerEntry{
		id: id,
		fn: func(payload any) {
			typed, ok := payload.(T)
			if !ok {
				return
			}
			handler(typed)
		},
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(topic.name, id)
		})
	}
}

// Publish delivers the payload to every current subscriber of the topic, in
// subscription order, before returning. Handlers registered or removed
// while a publish is in flight do not affect that publish.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	b.mu.Lock()
	entries := make([]handlerEntry, len(b.subs[topic.name]))
	copy(entries, b.subs[topic.name])
	b.mu.Unlock()

	if b.opts.OnPublish != nil {
		b.opts.OnPublish(topic.name)
	}

	for _, entry := range entries {
		entry.fn(payload)
	}
}

func (b *Bus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.subs[topic]
	for i, entry := range entries {
		if entry.id == id {
			b.subs[topic] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

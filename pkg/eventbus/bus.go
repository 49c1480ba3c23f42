// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
)

type Topic string
type Event = any

// Bus is an in-memory pub/sub that keeps only the most recent event,
// both per topic and per subscriber.
type Bus struct {
	mu        sync.RWMutex
	subs      map[Topic]map[uint64]chan Event
	last      map[Topic]Event
	idCounter atomic.Uint64
	closed    atomic.Bool

	published atomic.Int64
	delivered atomic.Int64
	replaced  atomic.Int64
	dropped   atomic.Int64
}

// Stats counts what the bus has done since it was created.
type Stats struct {
	Published int64 `json:"published"`
	Delivered int64 `json:"delivered"`
	Replaced  int64 `json:"replaced"`
	Dropped   int64 `json:"dropped"`
}

func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Replaced:  b.replaced.Load(),
		Dropped:   b.dropped.Load(),
	}
}

func New() *Bus {
	return &Bus{
		subs: make(map[Topic]map[uint64]chan Event),
		last: make(map[Topic]Event),
	}
}

// Publish stores ev as the last event for topic and hands it to every
// subscriber, replacing whatever the subscriber has not read yet.
func (b *Bus) Publish(topic Topic, ev Event) {
	if b.closed.Load() {
		return
	}
	b.published.Add(1)

	// deliver never blocks; holding the lock keeps unsubscribe from
	// closing a channel mid-send
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[topic] = ev
	for _, ch := range b.subs[topic] {
		b.deliver(ch, ev)
	}
}

// deliver never blocks: a full channel has its stale value dropped first.
func (b *Bus) deliver(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		b.delivered.Add(1)
		return
	default:
	}

	select {
	case <-ch:
		b.replaced.Add(1)
	default:
	}
	select {
	case ch <- ev:
		b.delivered.Add(1)
	default:
		// another publisher won the race for the slot
		b.dropped.Add(1)
	}
}

// Subscribe returns a channel carrying the latest events on topic. With
// withLast the stored event, if any, is delivered straight away. The
// channel is closed when ctx ends or unsubscribe is called.
func (b *Bus) Subscribe(ctx context.Context, topic Topic, withLast bool) (<-chan Event, func()) {
	if b.closed.Load() {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	ch := make(chan Event, 1)
	id := b.idCounter.Add(1)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]chan Event)
	}
	b.subs[topic][id] = ch
	// under the lock so a concurrent Publish cannot be overwritten by an older value
	if last, ok := b.last[topic]; withLast && ok {
		b.deliver(ch, last)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	unsub := func() { once.Do(func() { close(done) }) }

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if m, ok := b.subs[topic]; ok {
			if _, mine := m[id]; mine {
				delete(m, id)
				if len(m) == 0 {
					delete(b.subs, topic)
				}
				close(ch)
			}
		}
	}()

	return ch, unsub
}

// GetLast returns the last published event for a topic (if any).
func (b *Bus) GetLast(topic Topic) (Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.last[topic]
	return v, ok
}

// Last is GetLast with the type assertion done.
func Last[T any](b *Bus, topic Topic) (T, bool) {
	var zero T
	ev, ok := b.GetLast(topic)
	if !ok {
		return zero, false
	}
	v, ok := ev.(T)
	return v, ok
}

// Close closes every subscriber channel. Publish is a no-op afterwards
// and Subscribe returns a closed channel.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.mu.Lock()
	for _, m := range b.subs {
		for _, ch := range m {
			close(ch)
		}
	}
	b.subs = make(map[Topic]map[uint64]chan Event)
	b.last = make(map[Topic]Event)
	b.mu.Unlock()
}

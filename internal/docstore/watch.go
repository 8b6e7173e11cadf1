package docstore

import (
	"context"

	"github.com/google/uuid"
)

// Snapshot is one delivery on a watch channel: the complete current document
// set for the collection, or a terminal error. After an error snapshot the
// channel is closed and no further snapshots arrive.
type Snapshot struct {
	Docs []Document
	Err  error
}

type Subscription struct {
	C <-chan Snapshot

	id         string
	collection string
	orderField string
	ch         chan Snapshot
	store      *Store
	closed     bool // guarded by store.mu
}

// Watch subscribes to a collection ordered by the given field, newest first.
// The current snapshot is already buffered on the returned channel; every
// subsequent write to the collection pushes a fresh full snapshot. A slow
// consumer only ever misses intermediate snapshots, never the latest one.
func (s *Store) Watch(ctx context.Context, collection, orderField string) (*Subscription, error) {
	docs, err := s.List(ctx, collection, orderField)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		id:         uuid.New().String(),
		collection: collection,
		orderField: orderField,
		ch:         make(chan Snapshot, 8),
		store:      s,
	}
	sub.C = sub.ch

	s.mu.Lock()
	if s.watchers[collection] == nil {
		s.watchers[collection] = make(map[string]*Subscription)
	}
	s.watchers[collection][sub.id] = sub
	sub.push(Snapshot{Docs: docs})
	s.mu.Unlock()

	return sub, nil
}

// Close tears the subscription down. No snapshot is delivered after Close
// returns; the channel is closed so range loops terminate. Safe to call more
// than once.
func (sub *Subscription) Close() {
	sub.store.mu.Lock()
	sub.closeLocked()
	sub.store.mu.Unlock()
}

// closeLocked requires store.mu to be held.
func (sub *Subscription) closeLocked() {
	if sub.closed {
		return
	}
	sub.closed = true
	delete(sub.store.watchers[sub.collection], sub.id)
	close(sub.ch)
}

// broadcast recomputes the snapshot for every watcher of the collection and
// delivers it. A listing failure is delivered in-band and ends that watcher's
// stream.
func (s *Store) broadcast(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.watchers[collection] {
		docs, err := s.List(context.Background(), collection, sub.orderField)
		if err != nil {
			sub.push(Snapshot{Err: err})
			sub.closeLocked()
			continue
		}
		sub.push(Snapshot{Docs: docs})
	}
}

// push delivers without ever blocking the store: when the buffer is full the
// oldest pending snapshot is dropped to make room for the newest.
func (sub *Subscription) push(snap Snapshot) {
	for {
		select {
		case sub.ch <- snap:
			return
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
	}
}

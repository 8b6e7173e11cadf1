package content

import (
	"context"

	"portfolio/internal/docstore"
	"portfolio/internal/retry"
)

// RecordSet is one delivery to a consumer: the complete current typed record
// set, or a terminal error. Consumers replace their cached list wholesale on
// every delivery; there are no deltas.
type RecordSet[T Record] struct {
	Records []T
	Err     error
}

// Adapter wraps the document store for one content kind: it lists and
// watches the kind's collection and republishes snapshots as typed, defaulted
// records. The retry policy applies to establishing reads, not to live
// delivery.
type Adapter[T Record] struct {
	store     *docstore.Store
	kind      Kind
	normalize func(docstore.Document) T
	retry     retry.Policy
}

func NewAdapter[T Record](store *docstore.Store, kind Kind, normalize func(docstore.Document) T, policy retry.Policy) *Adapter[T] {
	return &Adapter[T]{store: store, kind: kind, normalize: normalize, retry: policy}
}

func (a *Adapter[T]) Kind() Kind {
	return a.kind
}

// Fetch returns the current full record set, ordered newest first.
func (a *Adapter[T]) Fetch(ctx context.Context) ([]T, error) {
	var docs []docstore.Document
	err := a.retry.Do(ctx, func() error {
		var err error
		docs, err = a.store.List(ctx, a.kind.Name, a.kind.OrderField)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a.normalizeAll(docs), nil
}

// Stream opens a live subscription. The current record set is already
// buffered on the channel; each write to the collection delivers a fresh full
// set. A store failure is delivered as RecordSet.Err, after which the channel
// closes and no further sets arrive; the consumer decides whether to redial.
func (a *Adapter[T]) Stream(ctx context.Context) (*Stream[T], error) {
	var sub *docstore.Subscription
	err := a.retry.Do(ctx, func() error {
		var err error
		sub, err = a.store.Watch(ctx, a.kind.Name, a.kind.OrderField)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make(chan RecordSet[T], 8)
	s := &Stream[T]{C: out, sub: sub}
	go func() {
		defer close(out)
		for snap := range sub.C {
			if snap.Err != nil {
				push(out, RecordSet[T]{Err: snap.Err})
				return
			}
			push(out, RecordSet[T]{Records: a.normalizeAll(snap.Docs)})
		}
	}()
	return s, nil
}

func (a *Adapter[T]) normalizeAll(docs []docstore.Document) []T {
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		records = append(records, a.normalize(doc))
	}
	return records
}

type Stream[T Record] struct {
	C <-chan RecordSet[T]

	sub *docstore.Subscription
}

// Close releases the underlying subscription. Unconditional and idempotent;
// the stream channel closes shortly after.
func (s *Stream[T]) Close() {
	s.sub.Close()
}

// push mirrors the store's delivery rule: never block, drop the oldest
// pending set when the buffer is full.
func push[T Record](ch chan RecordSet[T], set RecordSet[T]) {
	for {
		select {
		case ch <- set:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

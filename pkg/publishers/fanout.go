package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentDeliveries bounds how many sinks receive one event at a time.
const maxConcurrentDeliveries = 4

// Fanout delivers each status change event to every configured sink.
type Fanout struct {
	sinks []Publisher
}

// NewFanout drops nil entries and keeps the remaining sinks in order.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range pubs {
		if p != nil {
			f.sinks = append(f.sinks, p)
		}
	}
	return f
}

// Publish delivers evt to all sinks concurrently and waits for every one.
// It reports how many sinks accepted the event; failures are joined.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f.Size() == 0 {
		return 0, nil
	}

	failures := make([]error, len(f.sinks))
	var g errgroup.Group
	g.SetLimit(maxConcurrentDeliveries)
	for i, sink := range f.sinks {
		g.Go(func() error {
			if err := sink.Publish(ctx, evt); err != nil {
				failures[i] = fmt.Errorf("%s publisher[%s] event %s: %w", sink.Type(), sink.ID(), evt.ID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	delivered := 0
	for _, err := range failures {
		if err == nil {
			delivered++
		}
	}
	return delivered, errors.Join(failures...)
}

// Size returns the number of sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close releases sinks that hold client connections, such as Pub/Sub.
func (f *Fanout) Close() error {
	var errs []error
	for i := 0; i < f.Size(); i++ {
		sink := f.sinks[i]
		closer, ok := sink.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s] close: %w", sink.Type(), sink.ID(), err))
		}
	}
	return errors.Join(errs...)
}

package computer

import (
	"context"
	"errors"

	"github.com/vk/calcgrid/internal/ctxlog"
	"github.com/vk/calcgrid/internal/graph"
)

// QueueItem is one insertion request for AddQueue. Strict items validate
// their references at insertion time, which is what makes forward
// references among queue items retryable.
type QueueItem struct {
	Key    any
	Node   graph.Node
	Strict bool
}

// FailPolicy selects what AddQueue does with an item that has exhausted its
// retries or failed for a non-retryable reason.
type FailPolicy int

const (
	// FailRaise propagates the item's original error immediately.
	FailRaise FailPolicy = iota
	// FailSkip logs the failure, records it in the result, and continues.
	FailSkip
)

// QueueOption configures AddQueue.
type QueueOption func(*queueOptions)

type queueOptions struct {
	maxTries int
	fail     FailPolicy
}

// MaxTries sets how many attempts each item gets before its failure is
// final. The default of 1 means no retry.
func MaxTries(n int) QueueOption {
	return func(o *queueOptions) {
		if n > 0 {
			o.maxTries = n
		}
	}
}

// OnFail sets the policy for items whose failure is final.
func OnFail(p FailPolicy) QueueOption {
	return func(o *queueOptions) { o.fail = p }
}

// FailedItem records an item AddQueue gave up on under FailSkip.
type FailedItem struct {
	Item  QueueItem
	Err   error
	Tries int
}

// QueueResult reports what AddQueue accomplished.
type QueueResult struct {
	// Added holds the identifiers successfully inserted, in insertion
	// order.
	Added []any
	// Failed holds the items abandoned under FailSkip.
	Failed []FailedItem
}

// queueEntry tracks one in-flight item with its attempt count.
type queueEntry struct {
	item    QueueItem
	tries   int
	lastErr error
}

// retryable reports whether an insertion failure may succeed on a later
// pass: only a strict insertion that referenced a not-yet-present
// identifier qualifies.
func retryable(err error) bool {
	return errors.Is(err, graph.ErrMissingKey)
}

// AddQueue applies an ordered sequence of insertion requests, tolerating
// forward references among them. Items whose strict validation fails on a
// missing identifier are re-queued and retried up to MaxTries attempts.
// Insertion order among items that never fail is preserved; a
// forward-referencing item is only inserted after its dependency appears.
//
// The loop terminates when the queue is empty or when a full pass over the
// remaining items inserts nothing — at that point every still-failing item
// is resolved through the fail policy rather than retried further, since no
// amount of additional passes could help.
func (c *Computer) AddQueue(ctx context.Context, items []QueueItem, opts ...QueueOption) (*QueueResult, error) {
	logger := ctxlog.FromContext(ctx)
	o := queueOptions{maxTries: 1, fail: FailRaise}
	for _, opt := range opts {
		opt(&o)
	}

	result := &QueueResult{}
	queue := make([]*queueEntry, 0, len(items))
	for _, item := range items {
		queue = append(queue, &queueEntry{item: item})
	}

	fail := func(e *queueEntry, err error) error {
		if o.fail == FailRaise {
			return err
		}
		logger.Error("Queue item discarded.",
			"key", graph.DisplayID(e.item.Key), "tries", e.tries, "error", err)
		result.Failed = append(result.Failed, FailedItem{Item: e.item, Err: err, Tries: e.tries})
		return nil
	}

	for len(queue) > 0 {
		// One pass over the current queue contents. Items re-queued
		// during the pass belong to the next pass.
		sweep := len(queue)
		progressed := false

		for i := 0; i < sweep; i++ {
			e := queue[0]
			queue = queue[1:]
			e.tries++

			var opts []AddOption
			if e.item.Strict {
				opts = append(opts, Strict())
			}
			id, err := c.AddSingle(e.item.Key, e.item.Node, opts...)
			if err == nil {
				logger.Debug("Queue item inserted.",
					"key", graph.DisplayID(id), "tries", e.tries)
				result.Added = append(result.Added, id)
				progressed = true
				continue
			}

			if retryable(err) && e.tries < o.maxTries {
				logger.Debug("Queue item failed, will retry.",
					"key", graph.DisplayID(e.item.Key), "tries", e.tries, "error", err)
				e.lastErr = err
				queue = append(queue, e)
				continue
			}

			if failErr := fail(e, err); failErr != nil {
				return nil, failErr
			}
		}

		if !progressed {
			// Nothing succeeded in a full pass; the remaining items can
			// never resolve (for example, mutual forward references).
			for _, e := range queue {
				err := e.lastErr
				if err == nil {
					err = &graph.MissingKeyError{IDs: []string{graph.DisplayID(e.item.Key)}}
				}
				if failErr := fail(e, err); failErr != nil {
					return nil, failErr
				}
			}
			break
		}
	}

	return result, nil
}

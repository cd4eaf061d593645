package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of operations dispatched together
const DefaultBatchSize = 50

// Operation is a unit of filesystem work submitted to a Queue
type Operation func(ctx context.Context) error

// Outcome reports the result of one queued operation
type Outcome struct {
	// Seq is the sequence number returned by Enqueue
	Seq int
	Err error
}

// QueueStats summarizes the work a Queue has dispatched
type QueueStats struct {
	Batches    int
	Dispatched int
	Succeeded  int
	Failed     int
}

type pendingOperation struct {
	seq int
	op  Operation
}

// Queue buffers operations and runs them in concurrent batches.
// A batch is dispatched when it reaches the batch size or on Flush.
// Outcomes are delivered to the handler on the caller's goroutine, in
// sequence order, after the whole batch has settled. A failing operation
// never cancels its siblings.
//
// Queue is not safe for concurrent use.
type Queue struct {
	batchSize int
	onOutcome func(Outcome)
	pending   []pendingOperation
	nextSeq   int
	stats     QueueStats
}

// NewQueue creates a queue. A batchSize below 1 selects DefaultBatchSize.
func NewQueue(batchSize int, onOutcome func(Outcome)) *Queue {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Queue{
		batchSize: batchSize,
		onOutcome: onOutcome,
		pending:   make([]pendingOperation, 0, batchSize),
	}
}

// Enqueue adds an operation and returns its sequence number. When the
// pending batch becomes full it is dispatched before Enqueue returns.
func (q *Queue) Enqueue(ctx context.Context, op Operation) int {
	seq := q.nextSeq
	q.nextSeq++

	q.pending = append(q.pending, pendingOperation{seq: seq, op: op})
	if len(q.pending) >= q.batchSize {
		q.dispatch(ctx)
	}
	return seq
}

// Flush dispatches any pending operations and waits for them to settle
func (q *Queue) Flush(ctx context.Context) {
	if len(q.pending) > 0 {
		q.dispatch(ctx)
	}
}

// Pending returns the number of operations not yet dispatched
func (q *Queue) Pending() int {
	return len(q.pending)
}

// BatchSize returns the dispatch threshold
func (q *Queue) BatchSize() int {
	return q.batchSize
}

// Stats returns the cumulative dispatch statistics
func (q *Queue) Stats() QueueStats {
	return q.stats
}

func (q *Queue) dispatch(ctx context.Context) {
	batch := q.pending
	q.pending = make([]pendingOperation, 0, q.batchSize)

	outcomes := make([]Outcome, len(batch))

	// Every operation runs to completion; errors are collected per slot
	// instead of being returned to the group.
	var g errgroup.Group
	for i, p := range batch {
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = Outcome{Seq: p.seq, Err: runOperation(ctx, p.op)}
			return nil
		})
	}
	_ = g.Wait()

	q.stats.Batches++
	for _, o := range outcomes {
		q.stats.Dispatched++
		if o.Err != nil {
			q.stats.Failed++
		} else {
			q.stats.Succeeded++
		}
		if q.onOutcome != nil {
			q.onOutcome(o)
		}
	}
}

func runOperation(ctx context.Context, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return op(ctx)
}

// Package worklist implements the FIFO scheduler that drives the abstract
// compiler's emitted per-block functions to completion, in the style of
// the partitioner/compiler's own block-index loop.
package worklist

import "fmt"

// ErrBudgetExceeded is returned by Run when a step budget is supplied and
// exhausted before the queue drains. Loop termination is otherwise left
// unenforced, so tests that exercise a non-terminating program should
// supply a budget rather than rely on the driver to detect divergence.
var ErrBudgetExceeded = fmt.Errorf("worklist: step budget exceeded")

// BlockFunc is one compiled block: it receives the driver so it can
// enqueue its successors, and returns an error to abort the run.
type BlockFunc func(d *Driver) error

// Driver is a single-threaded FIFO scheduler. Blocks are never re-entered
// mid-body; a block only ever enqueues successor block indices and
// returns. A loop is expressed as repeated enqueueing of its body block,
// so "convergence" is the concern of the program being run, not the
// driver.
type Driver struct {
	queue  []int
	budget int // <= 0 means unlimited
	steps  int
}

// NewDriver returns a driver with an optional step budget. A non-positive
// budget means unlimited steps.
func NewDriver(budget int) *Driver {
	return &Driver{budget: budget}
}

// Push enqueues block index idx to run after every block currently queued.
func (d *Driver) Push(idx int) {
	d.queue = append(d.queue, idx)
}

// Run seeds the queue with the entry block (index 0) and drains it,
// invoking blocks[idx] for each queued index in FIFO order until the
// queue is empty or the step budget (if any) is exceeded.
func (d *Driver) Run(blocks []BlockFunc) error {
	d.Push(0)
	for len(d.queue) > 0 {
		if d.budget > 0 && d.steps >= d.budget {
			return ErrBudgetExceeded
		}
		idx := d.queue[0]
		d.queue = d.queue[1:]
		if idx < 0 || idx >= len(blocks) {
			return fmt.Errorf("worklist: block index %d out of range (have %d blocks)", idx, len(blocks))
		}
		d.steps++
		if err := blocks[idx](d); err != nil {
			return err
		}
	}
	return nil
}

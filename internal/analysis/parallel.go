package analysis

import (
	"context"
	"runtime"
	"sync"

	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// WorkItem holds a variant waiting to be evaluated.
type WorkItem struct {
	Seq     int
	Variant *variant.Evaluation
}

// WorkResult holds the evaluated variant.
type WorkResult struct {
	Seq        int
	Variant    *variant.Evaluation
	Reassigned bool
	KnownGene  bool
}

// Submit feeds variants into a channel in order, stopping early when ctx is
// cancelled. The returned channel is closed once submission ends.
func Submit(ctx context.Context, variants []*variant.Evaluation) <-chan WorkItem {
	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, v := range variants {
			select {
			case <-ctx.Done():
				return
			case items <- WorkItem{Seq: i, Variant: v}:
			}
		}
	}()
	return items
}

// ParallelEvaluate runs variant filters and reassignment on work items using
// a pool of workers. Each variant is handled by exactly one worker.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (r *Runner) ParallelEvaluate(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				reassigned, known := r.evaluate(item.Variant)
				results <- WorkResult{
					Seq:        item.Seq,
					Variant:    item.Variant,
					Reassigned: reassigned,
					KnownGene:  known,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for res := range results {
		pending[res.Seq] = res

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

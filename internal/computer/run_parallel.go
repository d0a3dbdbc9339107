package computer

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vk/calcgrid/internal/ctxlog"
)

// runParallel executes independent plan branches concurrently on a bounded
// worker pool. Each step becomes ready when its dependency count reaches
// zero, so an identifier is computed exactly once and every consumer sees
// the same resolved value. The first failing step cancels the run; results
// from completed siblings are discarded by the caller.
func (c *Computer) runParallel(ctx context.Context, p *plan, values *valueStore) error {
	logger := ctxlog.FromContext(ctx)

	type slot struct {
		step       *planStep
		depCount   atomic.Int32
		dependents []*slot
	}

	slots := make(map[string]*slot, len(p.steps))
	for _, step := range p.steps {
		slots[step.canon] = &slot{step: step}
	}
	for _, step := range p.steps {
		s := slots[step.canon]
		s.depCount.Store(int32(len(step.deps)))
		for _, dep := range step.deps {
			slots[dep].dependents = append(slots[dep].dependents, s)
		}
	}

	ready := make(chan *slot, len(p.steps))
	var remaining atomic.Int32
	remaining.Store(int32(len(p.steps)))

	rootCount := 0
	for _, step := range p.steps {
		s := slots[step.canon]
		if s.depCount.Load() == 0 {
			ready <- s
			rootCount++
		}
	}
	logger.Debug("Starting parallel run.", "workers", c.workers, "roots", rootCount)

	g, runCtx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-runCtx.Done():
					return runCtx.Err()
				case s, ok := <-ready:
					if !ok {
						return nil
					}
					v, err := c.evalNode(runCtx, s.step.id, s.step.node, values)
					if err != nil {
						return err
					}
					values.put(s.step.canon, v)
					for _, dep := range s.dependents {
						if dep.depCount.Add(-1) == 0 {
							ready <- dep
						}
					}
					if remaining.Add(-1) == 0 {
						close(ready)
					}
				}
			}
		})
	}

	return g.Wait()
}

package memmesh

import "sync"

// A barrier synchronizes a fixed number of rank goroutines. Await blocks
// until every party has arrived; the last arriver runs the action, if any,
// before releasing the others. The barrier is cyclic and can be reused for
// every collective call.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int

	count      int
	generation int
}

func newBarrier(parties int) *barrier {
	b := &barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *barrier) Await(action func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation

	b.count++
	if b.count == b.parties {
		if action != nil {
			action()
		}

		b.count = 0
		b.generation++
		b.cond.Broadcast()
		return
	}

	for gen == b.generation {
		b.cond.Wait()
	}
}

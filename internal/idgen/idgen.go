// Package idgen assigns record ids. Ids are strictly increasing int64s
// seeded from the wall clock in milliseconds, so they stay unique under
// rapid sequential creation and across process restarts, and an id is
// never reused once observed.
package idgen

import (
	"sync/atomic"
	"time"
)

type Generator struct {
	last int64
}

func New() *Generator {
	return &Generator{last: time.Now().UnixMilli()}
}

// Next returns a fresh id greater than every id this generator has
// produced or observed.
func (g *Generator) Next() int64 {
	return atomic.AddInt64(&g.last, 1)
}

// Observe raises the floor past an id found in persisted state, so
// restarts never hand out an id that already exists.
func (g *Generator) Observe(id int64) {
	for {
		cur := atomic.LoadInt64(&g.last)
		if id <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&g.last, cur, id) {
			return
		}
	}
}

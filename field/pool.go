/*
NAME
  pool.go

DESCRIPTION
  pool.go implements the field cache that backs the worker pool: fields
  are read from the Source in strictly increasing order, cached under
  reference counts while any worker still needs them for lookbehind or
  lookahead, and evicted once no worker can reach them any more.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package field

import (
	"fmt"
	"io"
	"sync"

	"github.com/ausocean/utils/logging"
)

// Pool caches decoded-ready Field values by sequence number and tracks
// how many outstanding Acquire calls still reference each one, so it can
// evict safely once every worker that could need it has moved past it.
//
// Safe for concurrent use: the dispatch loop and every decode worker
// call into the same Pool instance.
type Pool struct {
	log logging.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	src     *Source
	cache   map[int]*Field
	refs    map[int]int
	cursor  int // Next sequence number not yet read from src.
	eof     bool
	err     error

	lookbehind, lookahead, batch, workers int
}

// NewPool returns a Pool reading from src. lookbehind/lookahead/batch
// mirror the worker configuration (decoder.Config): lookbehind is how
// many fields behind the current one a 3D comb may need, lookahead is
// how many fields ahead a worker may prefetch, batch is the number of
// fields dispatched to a worker at once, and workers is the configured
// worker count. These bound the cache size per spec.md section 5:
// max(workers*(lookbehind+lookahead+batch), 2*workers).
func NewPool(log logging.Logger, src *Source, lookbehind, lookahead, batch, workers int) *Pool {
	p := &Pool{
		log:        log,
		src:        src,
		cache:      make(map[int]*Field),
		refs:       make(map[int]int),
		lookbehind: lookbehind,
		lookahead:  lookahead,
		batch:      batch,
		workers:    workers,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// bound returns the maximum number of fields the cache may hold at once.
func (p *Pool) bound() int {
	b := p.workers * (p.lookbehind + p.lookahead + p.batch)
	if min := 2 * p.workers; b < min {
		return min
	}
	return b
}

// Acquire returns the field with the given sequence number, reading
// ahead from the source as needed, and blocking if the cache is at
// capacity until an older field is released. Returns io.EOF once seq is
// past the end of the stream.
func (p *Pool) Acquire(seq int) (*Field, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if f, ok := p.cache[seq]; ok {
			p.refs[seq]++
			return f, nil
		}
		if p.eof && seq >= p.cursor {
			return nil, io.EOF
		}
		if p.err != nil {
			return nil, p.err
		}
		if seq < p.cursor {
			return nil, fmt.Errorf("field: pool: sequence %d already evicted", seq)
		}
		p.evict() // Drop skipped fields nobody acquired while reading ahead.
		if len(p.cache) >= p.bound() {
			p.cond.Wait()
			continue
		}
		p.ensureLoaded()
	}
}

// ensureLoaded reads the next field from src into the cache. Caller must
// hold p.mu.
func (p *Pool) ensureLoaded() {
	f, err := p.src.ReadField()
	if err == io.EOF {
		p.eof = true
		return
	}
	if err != nil {
		p.err = fmt.Errorf("field: pool: read failed: %w", err)
		p.log.Error(p.err)
		return
	}
	p.cache[f.Seq] = f
	p.refs[f.Seq] = 0
	p.cursor = f.Seq + 1
}

// Release drops one reference to seq. Once its reference count reaches
// zero and it falls more than lookbehind fields behind the read cursor,
// it is evicted and any blocked Acquire callers are woken to retry.
func (p *Pool) Release(seq int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refs[seq] > 0 {
		p.refs[seq]--
	}
	p.evict()
	p.cond.Broadcast()
}

// evict sweeps fields with a zero reference count that are older than
// the retained lookbehind window. Caller must hold p.mu.
func (p *Pool) evict() {
	low := p.cursor - p.lookbehind
	for seq, n := range p.refs {
		if n == 0 && seq < low {
			delete(p.cache, seq)
			delete(p.refs, seq)
		}
	}
}

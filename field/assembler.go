/*
NAME
  assembler.go

DESCRIPTION
  assembler.go reorders completed frames back into strictly increasing
  output order: decode workers may finish frames out of order, but the
  output sink must see them as index 0, 1, 2, ... with no gaps.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package field

import "sync"

// FrameSink consumes frames in strictly increasing Index order.
type FrameSink interface {
	WriteFrame(f *Frame) error
}

// Assembler buffers out-of-order frames from the worker pool and flushes
// contiguous runs to a FrameSink in order. Submit blocks once the
// pending set reaches maxPending, applying backpressure to the worker
// pool per spec.md section 4.5.
type Assembler struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending map[int]*Frame
	nextOut int
	maxPending int
	sink    FrameSink
	err     error
	closed  bool
}

// NewAssembler returns an Assembler that flushes in-order frames to
// sink, buffering up to maxPending out-of-order frames at once.
// maxPending is conventionally 2*workers (spec.md section 4.5).
func NewAssembler(sink FrameSink, maxPending int) *Assembler {
	a := &Assembler{
		pending:    make(map[int]*Frame),
		maxPending: maxPending,
		sink:       sink,
	}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// Submit hands a completed frame to the assembler. It blocks if the
// pending set is full and f.Index is not the next one due for output.
// Once f.Index (and any already-buffered successors) can be flushed in
// order, Submit writes them to the sink before returning.
func (a *Assembler) Submit(f *Frame) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for len(a.pending) >= a.maxPending && f.Index != a.nextOut {
		a.cond.Wait()
	}
	if a.err != nil {
		return a.err
	}

	a.pending[f.Index] = f
	if err := a.flushLocked(); err != nil {
		a.err = err
		return err
	}
	a.cond.Broadcast()
	return nil
}

// flushLocked writes every contiguous frame starting at nextOut to the
// sink. Caller must hold a.mu.
func (a *Assembler) flushLocked() error {
	for {
		f, ok := a.pending[a.nextOut]
		if !ok {
			return nil
		}
		if err := a.sink.WriteFrame(f); err != nil {
			return err
		}
		delete(a.pending, a.nextOut)
		a.nextOut++
	}
}

// Close marks the assembler closed; any frame still buffered past this
// point without its predecessors arriving is a dropped-frame condition
// the caller should already have reported, not a condition Close itself
// diagnoses.
func (a *Assembler) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.cond.Broadcast()
}

// Pending reports how many frames are currently buffered awaiting their
// predecessors.
func (a *Assembler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

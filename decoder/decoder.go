/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements Decoder, the top-level orchestrator: it wires
  the metadata-driven field source, the field pool, a worker pool of
  per-field decoders, the frame assembler and the motion-guided 3D comb
  into one pipeline, exposing Start/Stop the way revid.Revid does.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

// Package decoder wires the dsp/tbc/chroma/field packages into one
// runnable NTSC TBC-to-RGB decode pipeline.
package decoder

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ldvision/lddecode/chroma"
	"github.com/ldvision/lddecode/field"
	"github.com/ldvision/lddecode/metadata"
	"github.com/ldvision/lddecode/tbc"
)

// lookbehind and lookahead bound how many fields either side of the
// current one a worker may need: two fields (one frame) of lookbehind for
// the 3D comb's previous-frame reference, none ahead since fields are only
// ever paired with their immediate successor.
const (
	lookbehind = 2
	lookahead  = 0
	batchSize  = 2
)

// Decoder runs one full TBC-to-RGB decode from r, using the fields
// described by meta, writing completed frames to sink.
type Decoder struct {
	cfg  Config
	meta *metadata.Metadata

	src       *field.Source
	pool      *field.Pool
	assembler *field.Assembler
	sink      field.FrameSink

	motion chroma.MotionEstimator

	running bool
	wg      sync.WaitGroup
	err     chan error
	abort   chan struct{}

	// prevPlane is only ever touched from WriteFrame, which Assembler
	// calls while holding its own lock, so frames arrive here strictly
	// serialized; no separate mutex is needed.
	prevPlane *chroma.Plane
}

// New returns a Decoder ready to Start. r supplies the raw TBC sample
// stream; meta is the parsed metadata document; sink receives completed
// frames in strictly increasing Index order.
func New(cfg Config, r io.Reader, meta *metadata.Metadata, sink field.FrameSink) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &DecodeError{Kind: ConfigErr, Seq: -1, Err: err}
	}
	if err := meta.Validate(); err != nil {
		return nil, &DecodeError{Kind: ConfigErr, Seq: -1, Err: err}
	}

	src := field.NewSource(r, meta)
	pool := field.NewPool(cfg.Logger, src, lookbehind, lookahead, batchSize, cfg.Threads)

	d := &Decoder{
		cfg:    cfg,
		meta:   meta,
		src:    src,
		pool:   pool,
		sink:   sink,
		motion: chroma.NewMotionEstimator(),
		err:    make(chan error, 1),
		abort:  make(chan struct{}),
	}
	d.assembler = field.NewAssembler(d, 2*cfg.Threads)
	return d, nil
}

// WriteFrame implements field.FrameSink: it applies the motion-guided 3D
// comb (when enabled) against the previous frame's plane, then forwards
// to the configured output sink. Called only by Assembler, so frames
// always arrive here in strictly increasing Index order, which is what
// lets the 3D comb carry state safely without its own lock.
func (d *Decoder) WriteFrame(f *field.Frame) error {
	if d.cfg.Use3D && d.prevPlane != nil {
		combined, metric, err := chroma.CombineTemporal(d.cfg.Logger, d.motion, f.Planes, d.prevPlane, f.First.MedianBurstIRE)
		if err != nil {
			d.cfg.Logger.Warning("decoder: 3D comb failed, falling back to 2D result", "frame", f.Index, "error", err)
		} else {
			f.Planes = combined
			if d.cfg.ShowOpticalFlowMap {
				f.MotionMap = metric
			}
		}
	}
	d.prevPlane = f.Planes
	return d.sink.WriteFrame(f)
}

// Start launches the dispatch and worker-pool goroutines. It returns
// immediately; decode errors surface through the channel returned by
// Errors, and Wait blocks until the run completes.
func (d *Decoder) Start() error {
	if d.running {
		d.cfg.Logger.Warning("decoder: Start called but already running")
		return nil
	}
	d.running = true

	d.wg.Add(1)
	go d.run()
	return nil
}

// Errors returns the channel on which the first fatal error (if any) is
// delivered once the run finishes.
func (d *Decoder) Errors() <-chan error { return d.err }

// Stop aborts an in-progress decode and waits for it to unwind.
func (d *Decoder) Stop() {
	if !d.running {
		return
	}
	close(d.abort)
	d.wg.Wait()
	d.motion.Close()
	d.running = false
}

// Wait blocks until the run launched by Start completes normally.
func (d *Decoder) Wait() {
	d.wg.Wait()
}

func (d *Decoder) run() {
	defer d.wg.Done()

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(d.cfg.Threads)

	// Output frames are numbered from 0 whatever Start is, since the
	// Assembler flushes strictly from Index 0 upwards.
	frameIdx := 0
	seq := d.cfg.Start * 2

dispatch:
	for {
		select {
		case <-d.abort:
			break dispatch
		case <-ctx.Done():
			break dispatch
		default:
		}
		if d.cfg.Length > 0 && frameIdx >= d.cfg.Length {
			break
		}

		first, err := d.pool.Acquire(seq)
		if err == io.EOF {
			break
		}
		if err != nil {
			d.reportFatal(err)
			break
		}
		second, err := d.pool.Acquire(seq + 1)
		if err == io.EOF {
			d.pool.Release(seq)
			d.cfg.Logger.Warning("decoder: trailing unpaired field discarded", "seq", seq)
			break
		}
		if err != nil {
			d.pool.Release(seq)
			d.reportFatal(err)
			break
		}

		idx := frameIdx
		fSeq := seq
		g.Go(func() error {
			defer d.pool.Release(fSeq)
			defer d.pool.Release(fSeq + 1)
			return d.decodeFrame(idx, first, second)
		})

		frameIdx++
		seq += 2
	}

	if err := g.Wait(); err != nil {
		d.reportFatal(err)
		return
	}
	d.err <- nil
}

// decodeFrame decodes one field pair into a Frame and submits it to the
// assembler, which reorders and forwards it to WriteFrame.
func (d *Decoder) decodeFrame(idx int, first, second *field.Field) error {
	vp := d.meta.VideoParameters
	ire := tbcIRE(vp)
	params := field.DecodeParams{
		IRE:         ire,
		ActiveStart: vp.ActiveVideoStart,
		ActiveEnd:   vp.ActiveVideoEnd,
		Comb2D:      d.cfg.Mode != ModeMono,
		PLLMode:     tbc.ModeHSYNC,
	}

	w, err := field.NewWorker(d.cfg.Logger, params)
	if err != nil {
		return fmt.Errorf("decoder: frame %d: %w", idx, err)
	}

	firstPlane, err := w.Decode(first)
	if err != nil {
		return fmt.Errorf("decoder: frame %d: first field: %w", idx, err)
	}
	secondPlane, err := w.Decode(second)
	if err != nil {
		return fmt.Errorf("decoder: frame %d: second field: %w", idx, err)
	}
	if d.cfg.Mode == ModeMono {
		for _, p := range []*chroma.Plane{firstPlane, secondPlane} {
			for k := range p.I {
				p.I[k], p.Q[k] = 0, 0
			}
		}
	}

	frame := &field.Frame{
		Index:            idx,
		First:            first,
		Second:           second,
		FirstActiveLine:  0,
		LastActiveLine:   vp.FieldHeight - 1,
		ActiveVideoStart: vp.ActiveVideoStart,
		ActiveVideoEnd:   vp.ActiveVideoEnd,
		Black16bIre:      vp.Black16bIre,
		White16bIre:      vp.WhitePoint(d.cfg.WhitePoint100),
		Planes:           interlace(firstPlane, secondPlane),
		LowConfidence:    first.LowConfidence || second.LowConfidence,
	}
	return d.assembler.Submit(frame)
}

// tbcIRE derives the black/white normalization levels used by every
// per-field decode worker from the metadata document.
func tbcIRE(vp metadata.VideoParameters) tbc.IRELevel {
	return tbc.IRELevel{Black: vp.Black16bIre, White: vp.White16bIre}
}

// interlace weaves two field planes of identical width into one
// double-height frame plane, first field on even rows, second field on
// odd rows, matching standard NTSC field order.
func interlace(first, second *chroma.Plane) *chroma.Plane {
	width := first.Width
	height := first.Height + second.Height
	out := &chroma.Plane{
		Width:  width,
		Height: height,
		Y:      make([]float64, width*height),
		I:      make([]float64, width*height),
		Q:      make([]float64, width*height),
	}
	for row := 0; row < first.Height; row++ {
		copy(out.Y[2*row*width:], first.Y[row*width:(row+1)*width])
		copy(out.I[2*row*width:], first.I[row*width:(row+1)*width])
		copy(out.Q[2*row*width:], first.Q[row*width:(row+1)*width])
	}
	for row := 0; row < second.Height; row++ {
		dst := (2*row + 1) * width
		copy(out.Y[dst:], second.Y[row*width:(row+1)*width])
		copy(out.I[dst:], second.I[row*width:(row+1)*width])
		copy(out.Q[dst:], second.Q[row*width:(row+1)*width])
	}
	return out
}

func (d *Decoder) reportFatal(err error) {
	select {
	case d.err <- err:
	default:
	}
}

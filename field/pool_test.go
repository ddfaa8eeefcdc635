package field

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/ldvision/lddecode/metadata"
)

func poolTestLogger() logging.Logger {
	return logging.New(logging.Debug, &bytes.Buffer{}, true)
}

// syntheticStream builds a raw little-endian sample stream for n fields
// of the given width*height, each field's samples set to its own
// sequence number so tests can tell fields apart.
func syntheticStream(n, width, height int) io.Reader {
	buf := new(bytes.Buffer)
	for seq := 0; seq < n; seq++ {
		for i := 0; i < width*height; i++ {
			binary.Write(buf, binary.LittleEndian, uint16(seq))
		}
	}
	return buf
}

func newTestSource(n, width, height int) *Source {
	meta := &metadata.Metadata{
		VideoParameters: metadata.VideoParameters{FieldWidth: width, FieldHeight: height},
	}
	return NewSource(syntheticStream(n, width, height), meta)
}

func TestPoolAcquireReturnsCorrectField(t *testing.T) {
	src := newTestSource(5, 4, 4)
	p := NewPool(poolTestLogger(), src, 1, 1, 1, 2)

	f, err := p.Acquire(0)
	if err != nil {
		t.Fatal(err)
	}
	if f.Samples[0] != 0 {
		t.Fatalf("field 0 sample = %d, want 0", f.Samples[0])
	}

	f2, err := p.Acquire(2)
	if err != nil {
		t.Fatal(err)
	}
	if f2.Samples[0] != 2 {
		t.Fatalf("field 2 sample = %d, want 2", f2.Samples[0])
	}
}

func TestPoolAcquirePastEndReturnsEOF(t *testing.T) {
	src := newTestSource(2, 4, 4)
	p := NewPool(poolTestLogger(), src, 1, 1, 1, 1)

	for seq := 0; seq < 2; seq++ {
		if _, err := p.Acquire(seq); err != nil {
			t.Fatalf("Acquire(%d): %v", seq, err)
		}
	}
	if _, err := p.Acquire(2); err != io.EOF {
		t.Fatalf("Acquire(2) error = %v, want io.EOF", err)
	}
}

func TestPoolEvictsReleasedFieldsBehindLookbehind(t *testing.T) {
	src := newTestSource(10, 4, 4)
	// lookbehind=1, lookahead=0, batch=1, workers=1 => bound = max(1*2, 2) = 2.
	p := NewPool(poolTestLogger(), src, 1, 0, 1, 1)

	for seq := 0; seq < 4; seq++ {
		f, err := p.Acquire(seq)
		if err != nil {
			t.Fatalf("Acquire(%d): %v", seq, err)
		}
		p.Release(f.Seq)
	}

	p.mu.Lock()
	cacheLen := len(p.cache)
	p.mu.Unlock()
	if cacheLen > p.bound() {
		t.Fatalf("cache grew to %d entries, bound is %d", cacheLen, p.bound())
	}
}

// Package bsdiff is the public library surface of the codec: a Differ that
// compares a source and a target buffer into a BSDIFF40 patch, and a Patch
// that applies one back against a source to reconstruct the target.
package bsdiff

import (
	"fmt"
	"io"

	"github.com/unbasical/qbsdiff/internal/pkg/bsdifferr"
	"github.com/unbasical/qbsdiff/internal/pkg/bzstream"
	"github.com/unbasical/qbsdiff/internal/pkg/planner"
	"github.com/unbasical/qbsdiff/internal/pkg/suffixindex"
)

// Re-exported so callers can match on error kinds without importing the
// internal package directly.
var (
	ErrBadMagic         = bsdifferr.ErrBadMagic
	ErrMalformedHeader  = bsdifferr.ErrMalformedHeader
	ErrDecompress       = bsdifferr.ErrDecompress
	ErrTruncatedControl = bsdifferr.ErrTruncatedControl
	ErrTruncatedDiff    = bsdifferr.ErrTruncatedDiff
	ErrTruncatedExtra   = bsdifferr.ErrTruncatedExtra
	ErrTrailingData     = bsdifferr.ErrTrailingData
	ErrSourceOutOfRange = bsdifferr.ErrSourceOutOfRange
	ErrPatchOverflow    = bsdifferr.ErrPatchOverflow
)

const (
	// MinCompressionLevel and MaxCompressionLevel bound the CompressionLevel option.
	MinCompressionLevel = 1
	MaxCompressionLevel = 9

	defaultCompressionLevel = int(bzstream.DefaultCompressionLevel)
)

type options struct {
	smallMatchThreshold int
	bufferSize          int
	compressionLevel    int
	parallelism         int
}

// Option configures a Differ.
type Option func(*options)

// WithSmallMatchThreshold overrides the "+8" dismatch margin (spec §4.2,
// §6): a candidate match only commits once it beats the score of
// continuing the previous one by more than this many bytes. Must be >= 1.
func WithSmallMatchThreshold(n int) Option {
	return func(o *options) { o.smallMatchThreshold = n }
}

// WithBufferSize sets the chunk size used when streaming compressed output
// to the sink passed to Compare.
func WithBufferSize(n int) Option {
	return func(o *options) { o.bufferSize = n }
}

// WithCompressionLevel sets the bzip2 block-size level (1..=9) used for all
// three sub-streams.
func WithCompressionLevel(level int) Option {
	return func(o *options) { o.compressionLevel = level }
}

// WithParallelism bounds the number of worker goroutines used to compress
// the three sub-streams; 0 or 1 means single-threaded.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// Differ compares a source and target buffer, both held fully in memory,
// into a BSDIFF40 patch (spec §6, "diff producer").
type Differ struct {
	source, target []byte
	opts           options
}

// NewDiffer constructs a Differ over source and target with the given
// options applied over sane defaults.
func NewDiffer(source, target []byte, opts ...Option) *Differ {
	o := options{
		smallMatchThreshold: planner.DefaultSmallMatch,
		bufferSize:          32 * 1024,
		compressionLevel:    defaultCompressionLevel,
		parallelism:         1,
	}
	for _, apply := range opts {
		apply(&o)
	}
	if o.smallMatchThreshold < 1 {
		o.smallMatchThreshold = 1
	}
	if o.compressionLevel < MinCompressionLevel || o.compressionLevel > MaxCompressionLevel {
		o.compressionLevel = defaultCompressionLevel
	}
	return &Differ{source: source, target: target, opts: o}
}

// Compare plans the match chain and writes the framed patch to sink. Any
// error returned by sink is returned to the caller wrapped with %w, so
// errors.Is and errors.As still match it.
func (d *Differ) Compare(sink io.Writer) error {
	idx := suffixindex.Build(d.source)

	w, err := bzstream.NewWriter(bzstream.CompressionLevel(d.opts.compressionLevel))
	if err != nil {
		return fmt.Errorf("bsdiff: open patch streams: %w", err)
	}

	if err := planner.Plan(idx, d.source, d.target, d.opts.smallMatchThreshold, w); err != nil {
		return fmt.Errorf("bsdiff: plan match chain: %w", err)
	}

	bw := bufferedSink{sink: sink, bufferSize: d.opts.bufferSize}
	if err := w.Finish(&bw, int64(len(d.target)), d.opts.parallelism); err != nil {
		return err
	}
	return bw.Flush()
}

// bufferedSink coalesces small writes from bzstream.Writer.Finish into
// chunks of at most bufferSize bytes before handing them to sink, per the
// buffer_size option (spec §6).
type bufferedSink struct {
	sink       io.Writer
	bufferSize int
	buf        []byte
}

func (b *bufferedSink) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		room := b.bufferSize - len(b.buf)
		if room <= 0 {
			if err := b.Flush(); err != nil {
				return total - len(p), err
			}
			room = b.bufferSize
		}
		n := len(p)
		if n > room {
			n = room
		}
		b.buf = append(b.buf, p[:n]...)
		p = p[n:]
	}
	return total, nil
}

func (b *bufferedSink) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	if _, err := b.sink.Write(b.buf); err != nil {
		return fmt.Errorf("bsdiff: write patch: %w", err)
	}
	b.buf = b.buf[:0]
	return nil
}

// Patch is a parsed BSDIFF40 patch ready to apply against a source buffer
// (spec §6, "patch consumer").
type Patch struct {
	r *bzstream.Reader
}

// NewPatch parses the header of patch (whose total size is size) and opens
// its three sub-streams. patch must support random access (*bytes.Reader
// and *os.File both satisfy io.ReaderAt).
func NewPatch(patch io.ReaderAt, size int64) (*Patch, error) {
	r, err := bzstream.NewReader(patch, size)
	if err != nil {
		return nil, err
	}
	return &Patch{r: r}, nil
}

// HintTargetSize returns the target length declared in the patch header, so
// callers can pre-allocate before Apply.
func (p *Patch) HintTargetSize() int64 {
	return p.r.TargetLen
}

// Apply reconstructs the target from source and writes it to sink,
// following the control instruction chain (spec §4.4).
func (p *Patch) Apply(source []byte, sink io.Writer) error {
	n := int64(len(source))
	m := p.r.TargetLen
	var srcCursor, written int64

	for written < m {
		t, err := p.r.Next()
		if err == io.EOF {
			return fmt.Errorf("%w: expected more instructions", bsdifferr.ErrTruncatedControl)
		}
		if err != nil {
			return err
		}
		if t.AddLen < 0 || t.ExtraLen < 0 || written+t.AddLen+t.ExtraLen > m {
			return bsdifferr.ErrPatchOverflow
		}
		if srcCursor < 0 || srcCursor+t.AddLen > n {
			return bsdifferr.ErrSourceOutOfRange
		}

		add := make([]byte, t.AddLen)
		if err := p.r.ReadAdd(add); err != nil {
			return err
		}
		for i := range add {
			add[i] += source[srcCursor+int64(i)]
		}
		if _, err := sink.Write(add); err != nil {
			return fmt.Errorf("bsdiff: write target: %w", err)
		}
		written += t.AddLen

		if t.ExtraLen > 0 {
			extra := make([]byte, t.ExtraLen)
			if err := p.r.ReadExtra(extra); err != nil {
				return err
			}
			if _, err := sink.Write(extra); err != nil {
				return fmt.Errorf("bsdiff: write target: %w", err)
			}
			written += t.ExtraLen
		}

		srcCursor += t.AddLen + t.Seek
	}

	return p.r.Done()
}

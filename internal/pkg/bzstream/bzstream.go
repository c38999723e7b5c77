// Package bzstream frames the three-substream BSDIFF40 container described
// in spec §3 and §4.3/§4.4: a 32-byte header naming the compressed length of
// the control and diff streams and the plaintext target length, followed by
// the control, diff and extra streams, each its own independent bzip2
// stream. The standard library only decompresses bzip2, so both directions
// here go through github.com/dsnet/compress/bzip2.
package bzstream

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/dsnet/compress/bzip2"

	"github.com/unbasical/qbsdiff/internal/pkg/bsdifferr"
	"github.com/unbasical/qbsdiff/internal/pkg/control"
)

// Magic is the fixed 8-byte header tag of every BSDIFF40 patch.
const Magic = "BSDIFF40"

// HeaderSize is the size in bytes of the fixed patch header.
const HeaderSize = 32

// CompressionLevel mirrors github.com/dsnet/compress/bzip2's block-size
// scale: 1 (fastest, smallest blocks) through 9 (best compression).
type CompressionLevel int

// DefaultCompressionLevel is github.com/dsnet/compress/bzip2's own default
// level.
const DefaultCompressionLevel CompressionLevel = CompressionLevel(bzip2.DefaultCompression)

// Writer accumulates a plan's control instructions and add/extra payload
// bytes into three plaintext buffers, and bzip2-compresses and assembles
// them into a BSDIFF40 container on Finish. A zero Writer is not usable;
// construct with NewWriter. Writer implements planner.Sink.
type Writer struct {
	level                      CompressionLevel
	ctrlRaw, diffRaw, extraRaw bytes.Buffer
}

// NewWriter prepares a Writer whose sub-streams will be compressed at the
// given level once Finish is called.
func NewWriter(level CompressionLevel) (*Writer, error) {
	return &Writer{level: level}, nil
}

// Instruction writes one control triple to the control stream.
func (w *Writer) Instruction(t control.Triple) error {
	var buf [3 * control.Size]byte
	control.EncodeTriple(t, buf[:])
	w.ctrlRaw.Write(buf[:])
	return nil
}

// Add writes additive bytes to the diff stream.
func (w *Writer) Add(b []byte) error {
	w.diffRaw.Write(b)
	return nil
}

// Extra writes literal bytes to the extra stream.
func (w *Writer) Extra(b []byte) error {
	w.extraRaw.Write(b)
	return nil
}

// Finish bzip2-compresses the three accumulated sub-streams and writes the
// complete BSDIFF40 container to dst: header, then control, diff, and extra
// streams back to back. When parallelism > 1, the three independent
// sub-streams are compressed on separate workers (spec §5); the patch
// layout is identical either way.
func (w *Writer) Finish(dst io.Writer, targetLen int64, parallelism int) error {
	raws := [3][]byte{w.ctrlRaw.Bytes(), w.diffRaw.Bytes(), w.extraRaw.Bytes()}
	names := [3]string{"control", "diff", "extra"}
	var compressed [3][]byte
	var errs [3]error

	if parallelism > 1 {
		workers := parallelism
		if workers > len(raws) {
			workers = len(raws)
		}
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i, raw := range raws {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, raw []byte) {
				defer wg.Done()
				defer func() { <-sem }()
				compressed[i], errs[i] = w.compress(raw)
			}(i, raw)
		}
		wg.Wait()
	} else {
		for i, raw := range raws {
			compressed[i], errs[i] = w.compress(raw)
		}
	}
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("bzstream: compress %s stream: %w", names[i], err)
		}
	}

	header := make([]byte, HeaderSize)
	copy(header, Magic)
	control.Encode(int64(len(compressed[0])), header[8:16])
	control.Encode(int64(len(compressed[1])), header[16:24])
	control.Encode(targetLen, header[24:32])

	for _, chunk := range [][]byte{header, compressed[0], compressed[1], compressed[2]} {
		if _, err := dst.Write(chunk); err != nil {
			return fmt.Errorf("bzstream: write patch: %w", err)
		}
	}
	return nil
}

// compress runs raw through a fresh bzip2 encoder, always flushing a
// genuine bzip2 stream even when raw is empty (spec §9(ii)).
func (w *Writer) compress(raw []byte) ([]byte, error) {
	var out bytes.Buffer
	bw, err := bzip2.NewWriter(&out, &bzip2.WriterConfig{Level: int(w.level)})
	if err != nil {
		return nil, err
	}
	if _, err := bw.Write(raw); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Reader parses a BSDIFF40 header and exposes its three sub-streams for
// sequential reading. Construct with NewReader.
type Reader struct {
	TargetLen int64

	ctrlR, diffR, extraR *bzip2.Reader
}

// NewReader validates the header of patch (of the given total size) and
// opens its three sub-streams. patch must support random access since the
// diff and extra streams start at offsets only known after the header and
// the control stream's declared length are read.
func NewReader(patch io.ReaderAt, size int64) (*Reader, error) {
	if size < HeaderSize {
		return nil, bsdifferr.ErrMalformedHeader
	}
	header := make([]byte, HeaderSize)
	if _, err := patch.ReadAt(header, 0); err != nil {
		return nil, fmt.Errorf("bzstream: read header: %w", err)
	}
	if string(header[:8]) != Magic {
		return nil, bsdifferr.ErrBadMagic
	}

	ctrlLen := control.Decode(header[8:16])
	diffLen := control.Decode(header[16:24])
	targetLen := control.Decode(header[24:32])
	if ctrlLen < 0 || diffLen < 0 || targetLen < 0 {
		return nil, bsdifferr.ErrMalformedHeader
	}

	ctrlStart := int64(HeaderSize)
	diffStart := ctrlStart + ctrlLen
	extraStart := diffStart + diffLen
	if diffStart < ctrlStart || extraStart < diffStart || extraStart > size {
		return nil, bsdifferr.ErrMalformedHeader
	}

	ctrlR, err := bzip2.NewReader(io.NewSectionReader(patch, ctrlStart, ctrlLen), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: control stream: %v", bsdifferr.ErrDecompress, err) //nolint:errorlint
	}
	diffR, err := bzip2.NewReader(io.NewSectionReader(patch, diffStart, diffLen), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: diff stream: %v", bsdifferr.ErrDecompress, err) //nolint:errorlint
	}
	extraR, err := bzip2.NewReader(io.NewSectionReader(patch, extraStart, size-extraStart), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: extra stream: %v", bsdifferr.ErrDecompress, err) //nolint:errorlint
	}

	return &Reader{TargetLen: targetLen, ctrlR: ctrlR, diffR: diffR, extraR: extraR}, nil
}

// Next reads the next control triple, returning io.EOF once the control
// stream is exhausted on an instruction boundary.
func (r *Reader) Next() (control.Triple, error) {
	var buf [3 * control.Size]byte
	if _, err := io.ReadFull(r.ctrlR, buf[:]); err != nil {
		if err == io.EOF {
			return control.Triple{}, io.EOF
		}
		return control.Triple{}, fmt.Errorf("%w: %v", bsdifferr.ErrTruncatedControl, err) //nolint:errorlint
	}
	return control.DecodeTriple(buf[:]), nil
}

// ReadAdd fills buf entirely from the diff stream.
func (r *Reader) ReadAdd(buf []byte) error {
	if _, err := io.ReadFull(r.diffR, buf); err != nil {
		return fmt.Errorf("%w: %v", bsdifferr.ErrTruncatedDiff, err) //nolint:errorlint
	}
	return nil
}

// ReadExtra fills buf entirely from the extra stream.
func (r *Reader) ReadExtra(buf []byte) error {
	if _, err := io.ReadFull(r.extraR, buf); err != nil {
		return fmt.Errorf("%w: %v", bsdifferr.ErrTruncatedExtra, err) //nolint:errorlint
	}
	return nil
}

// Done confirms every sub-stream is exactly exhausted, catching any
// trailing bytes a conforming patch must not have (spec §7).
func (r *Reader) Done() error {
	for _, rdr := range []io.Reader{r.ctrlR, r.diffR, r.extraR} {
		var b [1]byte
		if _, err := rdr.Read(b[:]); err != io.EOF {
			return bsdifferr.ErrTrailingData
		}
	}
	return nil
}

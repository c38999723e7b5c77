// Package bsdifferr declares the sentinel error kinds of the BSDIFF40
// codec (spec §7). Callers match these with errors.Is; call sites wrap
// them with fmt.Errorf("...: %w", ...) to attach positional context.
package bsdifferr

import "errors"

//nolint:golint,gochecknoglobals // errors.New() is not const
var (
	// ErrBadMagic means the patch header does not start with "BSDIFF40".
	ErrBadMagic = errors.New("bsdiff: bad magic")
	// ErrMalformedHeader means a header length field is negative or the
	// declared lengths exceed the patch size.
	ErrMalformedHeader = errors.New("bsdiff: malformed header")
	// ErrDecompress means a bzip2 sub-stream was rejected by the decompressor.
	ErrDecompress = errors.New("bsdiff: decompress error")
	// ErrTruncatedControl means the control stream ended before an instruction
	// was fully read.
	ErrTruncatedControl = errors.New("bsdiff: truncated control stream")
	// ErrTruncatedDiff means the diff stream ended before an instruction's
	// add bytes were fully read.
	ErrTruncatedDiff = errors.New("bsdiff: truncated diff stream")
	// ErrTruncatedExtra means the extra stream ended before an instruction's
	// extra bytes were fully read.
	ErrTruncatedExtra = errors.New("bsdiff: truncated extra stream")
	// ErrTrailingData means a sub-stream had unread bytes once the
	// instruction list completed.
	ErrTrailingData = errors.New("bsdiff: trailing data in patch")
	// ErrSourceOutOfRange means an instruction reads outside the source or
	// leaves the source cursor negative.
	ErrSourceOutOfRange = errors.New("bsdiff: source cursor out of range")
	// ErrPatchOverflow means the cumulative output would exceed the
	// declared target length.
	ErrPatchOverflow = errors.New("bsdiff: patch output overflow")
)

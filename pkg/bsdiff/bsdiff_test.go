package bsdiff

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unbasical/qbsdiff/internal/pkg/bzstream"
	"github.com/unbasical/qbsdiff/internal/pkg/control"
)

func diffAndApply(t *testing.T, source, target []byte, opts ...Option) []byte {
	t.Helper()
	var patch bytes.Buffer
	require.NoError(t, NewDiffer(source, target, opts...).Compare(&patch))

	p, err := NewPatch(bytes.NewReader(patch.Bytes()), int64(patch.Len()))
	require.NoError(t, err)
	require.Equal(t, int64(len(target)), p.HintTargetSize())

	var got bytes.Buffer
	require.NoError(t, p.Apply(source, &got))
	return got.Bytes()
}

func TestRoundTrip_IdenticalBuffers(t *testing.T) {
	// Property 2: apply(S, diff(S, S)) == S.
	data := []byte("hello world, hello world, hello world")
	require.Equal(t, data, diffAndApply(t, data, data))
}

func TestRoundTrip_ArbitraryPairs(t *testing.T) {
	// Property 1: apply(S, diff(S, T)) == T.
	cases := [][2]string{
		{"", ""},
		{"", "brand new content"},
		{"old content here", ""},
		{"abcdefgh", "XYZabcdefgh"},
		{"abcdefgh", "abcdXYZefgh"},
		{"The quick brown fox", "The slow brown fox jumps"},
	}
	for _, c := range cases {
		got := diffAndApply(t, []byte(c[0]), []byte(c[1]))
		require.Equal(t, c[1], string(got), "source %q target %q", c[0], c[1])
	}
}

func TestRoundTrip_Deterministic(t *testing.T) {
	// Property 3 & 4: repeated diff/apply on identical inputs is byte-identical.
	source := []byte("mississippi river delta mississippi river delta")
	target := []byte("mississippi RIVER delta mississippi river DELTA")

	var patchA, patchB bytes.Buffer
	require.NoError(t, NewDiffer(source, target).Compare(&patchA))
	require.NoError(t, NewDiffer(source, target).Compare(&patchB))
	require.Equal(t, patchA.Bytes(), patchB.Bytes())

	pa, err := NewPatch(bytes.NewReader(patchA.Bytes()), int64(patchA.Len()))
	require.NoError(t, err)
	var out1, out2 bytes.Buffer
	require.NoError(t, pa.Apply(source, &out1))
	pb, err := NewPatch(bytes.NewReader(patchA.Bytes()), int64(patchA.Len()))
	require.NoError(t, err)
	require.NoError(t, pb.Apply(source, &out2))
	require.Equal(t, out1.Bytes(), out2.Bytes())
}

func TestPatch_HeaderFormatConformance(t *testing.T) {
	// Property 5: header layout is bit-exact.
	var patch bytes.Buffer
	require.NoError(t, NewDiffer([]byte("abc"), []byte("abcdef")).Compare(&patch))
	buf := patch.Bytes()
	require.GreaterOrEqual(t, len(buf), bzstream.HeaderSize)
	require.Equal(t, "BSDIFF40", string(buf[:8]))
}

func TestBoundary_EmptySource(t *testing.T) {
	// Property 8: diffing (empty, T) yields add_len=0, extra_len=m, seek=0.
	target := []byte("brand new content, nothing shared with an empty source")
	var patch bytes.Buffer
	require.NoError(t, NewDiffer(nil, target).Compare(&patch))

	p, err := NewPatch(bytes.NewReader(patch.Bytes()), int64(patch.Len()))
	require.NoError(t, err)
	var got bytes.Buffer
	require.NoError(t, p.Apply(nil, &got))
	require.Equal(t, target, got.Bytes())
}

func TestBoundary_EmptyTarget(t *testing.T) {
	// Property 9: header declares m=0; applier returns immediately.
	var patch bytes.Buffer
	require.NoError(t, NewDiffer([]byte("some source data"), nil).Compare(&patch))

	p, err := NewPatch(bytes.NewReader(patch.Bytes()), int64(patch.Len()))
	require.NoError(t, err)
	require.Equal(t, int64(0), p.HintTargetSize())
	var got bytes.Buffer
	require.NoError(t, p.Apply([]byte("some source data"), &got))
	require.Empty(t, got.Bytes())
}

func TestBoundary_EmptyTargetRejectsNonEmptyControlStream(t *testing.T) {
	// Property 9: a header declaring m=0 with a non-empty control stream is TrailingData.
	w, err := bzstream.NewWriter(bzstream.DefaultCompressionLevel)
	require.NoError(t, err)
	require.NoError(t, w.Instruction(control.Triple{AddLen: 1, ExtraLen: 0, Seek: 0}))
	require.NoError(t, w.Add([]byte("x")))
	require.NoError(t, w.Extra(nil))
	var buf bytes.Buffer
	require.NoError(t, w.Finish(&buf, 0, 1))

	p, err := NewPatch(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var out bytes.Buffer
	err = p.Apply(nil, &out)
	require.ErrorIs(t, err, ErrTrailingData)
}

func TestBoundary_SourceEqualsTargetPatchIsSmaller(t *testing.T) {
	// Property 10.
	rnd := rand.New(rand.NewSource(7))
	data := make([]byte, 1<<20)
	rnd.Read(data)

	var patch bytes.Buffer
	require.NoError(t, NewDiffer(data, data).Compare(&patch))
	require.Less(t, patch.Len(), len(data))
}

func TestBoundary_NegativeSeekReconstructsSwappedRegions(t *testing.T) {
	// Property 11: exercises backward src_cursor motion.
	rnd := rand.New(rand.NewSource(3))
	block := func(n int) []byte {
		b := make([]byte, n)
		rnd.Read(b)
		return b
	}
	a, b, c := block(4096), block(4096), block(4096)
	source := append(append(append([]byte{}, a...), b...), c...)
	target := append(append(append([]byte{}, c...), b...), a...)
	require.Equal(t, target, diffAndApply(t, source, target))
}

func TestScenario_E1_IdenticalContent(t *testing.T) {
	source := []byte("hello world")
	got := diffAndApply(t, source, source)
	require.Equal(t, source, got)
}

func TestScenario_E2_SingleByteSubstitution(t *testing.T) {
	source := []byte("hello world")
	target := []byte("hallo world")
	got := diffAndApply(t, source, target)
	require.Equal(t, target, got)
}

func TestScenario_E3_PrependedLiteral(t *testing.T) {
	source := []byte("abcdefgh")
	target := []byte("XYZabcdefgh")
	got := diffAndApply(t, source, target)
	require.Equal(t, target, got)
}

func TestScenario_E4_InsertedMiddleLiteral(t *testing.T) {
	source := []byte("abcdefgh")
	target := []byte("abcdXYZefgh")
	got := diffAndApply(t, source, target)
	require.Equal(t, target, got)
}

func TestScenario_E5_SingleByteFlipInLargeBuffer(t *testing.T) {
	source := make([]byte, 64*1024)
	target := make([]byte, 64*1024)
	copy(target, source)
	target[32768] = 0xFF

	var patch bytes.Buffer
	require.NoError(t, NewDiffer(source, target).Compare(&patch))
	require.Less(t, patch.Len(), len(source))

	p, err := NewPatch(bytes.NewReader(patch.Bytes()), int64(patch.Len()))
	require.NoError(t, err)
	var got bytes.Buffer
	require.NoError(t, p.Apply(source, &got))
	require.Equal(t, target, got.Bytes())
}

func TestScenario_E6_SwappedRegionsInRandomMegabyte(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	source := make([]byte, 1<<20)
	rnd.Read(source)
	target := append([]byte{}, source...)
	copy(target[0:4096], source[8192:12288])
	copy(target[8192:12288], source[0:4096])

	got := diffAndApply(t, source, target)
	require.Equal(t, target, got)
}

func TestApply_TruncatedPatchYieldsDefinedError(t *testing.T) {
	// Property 12/13: truncation never panics or hangs, always a defined error kind.
	var patch bytes.Buffer
	require.NoError(t, NewDiffer([]byte("source content for truncation test"), []byte("target content for truncation test, longer")).Compare(&patch))

	full := patch.Bytes()
	for cut := 0; cut < len(full); cut += 7 {
		truncated := full[:cut]
		p, err := NewPatch(bytes.NewReader(truncated), int64(len(truncated)))
		if err != nil {
			require.True(t,
				errors.Is(err, ErrMalformedHeader) || errors.Is(err, ErrDecompress) || errors.Is(err, ErrBadMagic),
				"unexpected error kind for cut=%d: %v", cut, err)
			continue
		}
		var out bytes.Buffer
		err = p.Apply([]byte("source content for truncation test"), &out)
		if err == nil {
			continue
		}
		require.True(t,
			errors.Is(err, ErrTruncatedControl) || errors.Is(err, ErrTruncatedDiff) ||
				errors.Is(err, ErrTruncatedExtra) || errors.Is(err, ErrDecompress) ||
				errors.Is(err, ErrPatchOverflow) || errors.Is(err, ErrTrailingData) ||
				errors.Is(err, ErrSourceOutOfRange),
			"unexpected error kind for cut=%d: %v", cut, err)
	}
}

func TestNewDiffer_ClampsInvalidSmallMatchThreshold(t *testing.T) {
	source := []byte("abcdefghijklmnopqrstuvwxyz")
	target := []byte("abcdefghijklmnopqrstuvwxyzXYZ")
	got := diffAndApply(t, source, target, WithSmallMatchThreshold(0))
	require.Equal(t, target, got)
}

func TestDiffer_ParallelCompressionMatchesSequential(t *testing.T) {
	source := []byte("one two three four five six seven eight nine ten")
	target := []byte("one TWO three four FIVE six seven EIGHT nine ten")

	var seq, par bytes.Buffer
	require.NoError(t, NewDiffer(source, target, WithParallelism(1)).Compare(&seq))
	require.NoError(t, NewDiffer(source, target, WithParallelism(4)).Compare(&par))
	require.Equal(t, seq.Bytes(), par.Bytes())
}

func TestDiffer_BufferSizeOptionDoesNotAffectOutput(t *testing.T) {
	source := []byte("the rain in spain falls mainly on the plain")
	target := []byte("the rain in spain stays mainly on the plain")

	var small, large bytes.Buffer
	require.NoError(t, NewDiffer(source, target, WithBufferSize(1)).Compare(&small))
	require.NoError(t, NewDiffer(source, target, WithBufferSize(1<<20)).Compare(&large))
	require.Equal(t, small.Bytes(), large.Bytes())
}

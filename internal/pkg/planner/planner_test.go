package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unbasical/qbsdiff/internal/pkg/control"
	"github.com/unbasical/qbsdiff/internal/pkg/suffixindex"
)

// recordingSink captures a plan's instructions and payload bytes for
// assertions, and also doubles as a reconstruction oracle: replaying its
// recorded instructions against source must reproduce target exactly.
type recordingSink struct {
	triples []control.Triple
	add     [][]byte
	extra   [][]byte
}

func (s *recordingSink) Instruction(t control.Triple) error {
	s.triples = append(s.triples, t)
	return nil
}

func (s *recordingSink) Add(b []byte) error {
	cp := append([]byte(nil), b...)
	s.add = append(s.add, cp)
	return nil
}

func (s *recordingSink) Extra(b []byte) error {
	cp := append([]byte(nil), b...)
	s.extra = append(s.extra, cp)
	return nil
}

// reconstruct replays the recorded instructions against source the way a
// patch applier (spec §4.4) would, to confirm the plan is correct.
func (s *recordingSink) reconstruct(source []byte) []byte {
	var out []byte
	srcCursor := 0
	for i, t := range s.triples {
		add := s.add[i]
		for j, b := range add {
			out = append(out, source[srcCursor+j]+b)
		}
		srcCursor += len(add)
		out = append(out, s.extra[i]...)
		srcCursor += int(t.Seek)
	}
	return out
}

func runPlan(t *testing.T, source, target []byte) *recordingSink {
	t.Helper()
	idx := suffixindex.Build(source)
	sink := &recordingSink{}
	err := Plan(idx, source, target, DefaultSmallMatch, sink)
	require.NoError(t, err)
	return sink
}

func TestPlan_IdenticalBuffersIsOneInstruction(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	sink := runPlan(t, data, data)
	require.Len(t, sink.triples, 1)
	require.Equal(t, data, sink.reconstruct(data))
}

func TestPlan_EmptyTargetEmitsNothing(t *testing.T) {
	sink := runPlan(t, []byte("source data"), []byte{})
	require.Empty(t, sink.triples)
}

func TestPlan_EmptySourceIsAllExtra(t *testing.T) {
	target := []byte("brand new content with no source overlap")
	sink := runPlan(t, []byte{}, target)
	require.Equal(t, target, sink.reconstruct([]byte{}))
}

func TestPlan_AppendedSuffixReconstructs(t *testing.T) {
	source := []byte("0123456789")
	target := append(append([]byte{}, source...), []byte("abcdefghij")...)
	sink := runPlan(t, source, target)
	require.Equal(t, target, sink.reconstruct(source))
}

func TestPlan_InsertedMiddleReconstructs(t *testing.T) {
	source := []byte("AAAAAAAAAABBBBBBBBBB")
	target := []byte("AAAAAAAAAA-----INSERTED-----BBBBBBBBBB")
	sink := runPlan(t, source, target)
	require.Equal(t, target, sink.reconstruct(source))
}

func TestPlan_ByteLevelMutationReconstructs(t *testing.T) {
	source := []byte("The quick brown fox jumps over the lazy dog, repeatedly, again and again.")
	target := []byte("The slow brown fox leaps over the lazy dog, repeatedly, again and again!!!")
	sink := runPlan(t, source, target)
	require.Equal(t, target, sink.reconstruct(source))
}

func TestPlan_ReorderedBlocksReconstructs(t *testing.T) {
	block1 := []byte("111111111111111111")
	block2 := []byte("222222222222222222")
	block3 := []byte("333333333333333333")
	source := append(append(append([]byte{}, block1...), block2...), block3...)
	target := append(append(append([]byte{}, block3...), block1...), block2...)
	sink := runPlan(t, source, target)
	require.Equal(t, target, sink.reconstruct(source))
}

func TestPlan_VariedPairsRoundTrip(t *testing.T) {
	// Property: for any (source, target) pair, replaying the emitted plan
	// against source always reproduces target exactly (spec §8).
	cases := []struct {
		source, target string
	}{
		{"", ""},
		{"a", "a"},
		{"abc", "xyz"},
		{"abcabcabcabc", "abcabcXYZabcabc"},
		{"one two three four five", "one two THREE four FIVE"},
		{"mississippi mississippi mississippi", "mississippi MISSISSIPPI mississippi"},
	}
	for _, c := range cases {
		sink := runPlan(t, []byte(c.source), []byte(c.target))
		require.Equal(t, c.target, string(sink.reconstruct([]byte(c.source))), "case %q -> %q", c.source, c.target)
	}
}

func TestPlan_SmallMatchMarginClampedToAtLeastOne(t *testing.T) {
	source := []byte("abcdefghij")
	target := []byte("abcdefghijKLMNOP")
	idx := suffixindex.Build(source)
	sink := &recordingSink{}
	err := Plan(idx, source, target, 0, sink)
	require.NoError(t, err)
	require.Equal(t, target, sink.reconstruct(source))
}

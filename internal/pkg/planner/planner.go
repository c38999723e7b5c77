// Package planner implements the match planner described in spec §4.2: it
// walks the target left-to-right, greedily extends matches against the
// source suffix index, and emits a chain of control instructions (plus the
// additive "diff" bytes and literal "extra" bytes those instructions carry)
// that reconstruct the target from the source.
package planner

import (
	"github.com/samber/lo"

	"github.com/unbasical/qbsdiff/internal/pkg/control"
	"github.com/unbasical/qbsdiff/internal/pkg/suffixindex"
)

// DefaultSmallMatch is the historical "+8" dismatch margin: an exact match
// is only committed once it beats the approximate score of continuing the
// previous match by more than this many bytes. Preserved from the
// reference algorithm; changing it changes patch size, never correctness.
const DefaultSmallMatch = 8

// Sink receives the instructions and payload bytes of a plan, in the order
// a patch writer (spec §4.3) must serialize them. One instruction is always
// followed by exactly AddLen bytes to Add and ExtraLen bytes to Extra.
type Sink interface {
	Instruction(t control.Triple) error
	Add(b []byte) error
	Extra(b []byte) error
}

// Plan decomposes target into a chain of control instructions against
// source, using idx (built over source) to find candidate matches, and
// feeds the result to sink in file order. smallMatch must be >= 1; callers
// should pass DefaultSmallMatch absent an explicit override.
func Plan(idx *suffixindex.Index, source, target []byte, smallMatch int, sink Sink) error {
	smallMatch = lo.Max([]int{smallMatch, 1})
	p := &planner{idx: idx, source: source, target: target, smallMatch: smallMatch, sink: sink}
	return p.run()
}

type planner struct {
	idx        *suffixindex.Index
	source     []byte
	target     []byte
	smallMatch int
	sink       Sink

	scan, matchLen                int
	lastScan, lastPos, lastOffset int
}

func (p *planner) run() error {
	n, m := len(p.source), len(p.target)

	for p.scan < m {
		oldscore := 0

		p.scan += p.matchLen
		scoreCursor := p.scan

		var pos int
		for p.scan < m {
			p.matchLen, pos = p.searchAt(p.scan)

			for scoreCursor < p.scan+p.matchLen {
				if scoreCursor+p.lastOffset < n && p.source[scoreCursor+p.lastOffset] == p.target[scoreCursor] {
					oldscore++
				}
				scoreCursor++
			}

			if p.matchLen == oldscore && p.matchLen != 0 {
				break
			}
			if p.matchLen > oldscore+p.smallMatch {
				break
			}
			if p.scan+p.lastOffset < n && p.source[p.scan+p.lastOffset] == p.target[p.scan] {
				oldscore--
			}
			p.scan++
		}

		if p.matchLen != oldscore || p.scan == m {
			if err := p.commit(pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *planner) searchAt(scan int) (length int, pos int) {
	pos, length = p.idx.Search(p.target[scan:])
	return length, pos
}

// commit extends the previously-scanned region forward and the newly-found
// match backward, resolves any overlap between the two extensions, and
// emits the instruction covering [lastScan, scan-lenb) before updating state to
// continue from the new match.
func (p *planner) commit(pos int) error {
	n, m := len(p.source), len(p.target)

	lenf := p.extendForward()

	lenb := 0
	if p.scan < m {
		lenb = p.extendBackward(pos)
	}

	if p.lastScan+lenf > p.scan-lenb {
		lenf, lenb = p.resolveOverlap(pos, lenf, lenb)
	}

	addLen := lenf
	extraStart := p.lastScan + lenf
	extraLen := (p.scan - lenb) - extraStart
	newPos := pos - lenb
	seek := int64(newPos) - int64(p.lastPos+lenf)

	add := make([]byte, addLen)
	for i := 0; i < addLen; i++ {
		add[i] = p.target[p.lastScan+i] - p.source[p.lastPos+i]
	}

	if err := p.sink.Instruction(control.Triple{
		AddLen:   int64(addLen),
		ExtraLen: int64(extraLen),
		Seek:     seek,
	}); err != nil {
		return err
	}
	if err := p.sink.Add(add); err != nil {
		return err
	}
	if err := p.sink.Extra(p.target[extraStart : extraStart+extraLen]); err != nil {
		return err
	}

	p.lastScan = p.scan - lenb
	p.lastPos = newPos
	p.lastOffset = pos - p.scan
	_ = n
	return nil
}

// extendForward grows the match ending the previous instruction as far
// into the gap as it keeps improving the Bentley-McIlroy score
// 2*matches - length, bounded by both buffers' ends.
func (p *planner) extendForward() int {
	n := len(p.source)
	matched, best, bestLen := 0, 0, 0
	for i := 0; p.lastScan+i < p.scan && p.lastPos+i < n; i++ {
		if p.source[p.lastPos+i] == p.target[p.lastScan+i] {
			matched++
		}
		if matched*2-(i+1) > best*2-bestLen {
			best = matched
			bestLen = i + 1
		}
	}
	return bestLen
}

// extendBackward grows the newly-found match backward from (scan, pos)
// using the same 2*matches - length maximizer, bounded by the gap since the
// previous instruction.
func (p *planner) extendBackward(pos int) int {
	matched, best, bestLen := 0, 0, 0
	for i := 1; p.scan >= p.lastScan+i && pos >= i; i++ {
		if p.source[pos-i] == p.target[p.scan-i] {
			matched++
		}
		if matched*2-i > best*2-bestLen {
			best = matched
			bestLen = i
		}
	}
	return bestLen
}

// resolveOverlap splits an overlap between the forward extension of the
// previous match and the backward extension of the new one at the point
// that maximizes the sum of matches assigned to each side.
func (p *planner) resolveOverlap(pos, lenf, lenb int) (newLenf, newLenb int) {
	overlap := (p.lastScan + lenf) - (p.scan - lenb)
	matched, best, split := 0, 0, 0
	for i := 0; i < overlap; i++ {
		if p.target[p.lastScan+lenf-overlap+i] == p.source[p.lastPos+lenf-overlap+i] {
			matched++
		}
		if p.target[p.scan-lenb+i] == p.source[pos-lenb+i] {
			matched--
		}
		if matched > best {
			best = matched
			split = i + 1
		}
	}
	return lenf + split - overlap, lenb - split
}

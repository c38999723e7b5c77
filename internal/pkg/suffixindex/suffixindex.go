// Package suffixindex builds a suffix array over a source buffer and
// answers longest-common-prefix queries against it (spec §4.1). The suffix
// array itself is the classic Larsson-Sadakane qsufsort construction used by
// bsdiff 4.x; callers only see the Build/Search contract.
package suffixindex

import "bytes"

// Index is a suffix array over an immutable source buffer, ready to answer
// LCP queries. The zero value is not usable; construct with Build.
type Index struct {
	source []byte
	sa     []int
}

// Build sorts the suffixes of source and returns an Index that can answer
// Search queries against it. source must outlive the Index.
func Build(source []byte) *Index {
	sa := make([]int, len(source)+1)
	qsufsort(sa, source)
	return &Index{source: source, sa: sa}
}

// Search returns the length of the longest common prefix between pattern
// and any suffix of the source, together with one source offset achieving
// that maximum. An empty pattern, or an empty source, returns (0, 0).
func (idx *Index) Search(pattern []byte) (pos int, length int) {
	if len(pattern) == 0 || len(idx.source) == 0 {
		return 0, 0
	}
	return search(idx.sa, idx.source, pattern, 0, len(idx.sa)-1)
}

// search performs the standard binary search over the suffix array described
// in spec §4.1: narrow [lo, hi] by lexicographic comparison of the pattern
// against the suffix named by the midpoint, until the interval collapses to
// the two candidate suffixes whose match lengths are compared directly.
func search(sa []int, source, pattern []byte, lo, hi int) (pos int, length int) {
	if hi-lo < 2 {
		xPos, yPos := sa[lo], sa[hi]
		xLen := matchLen(source[xPos:], pattern)
		yLen := matchLen(source[yPos:], pattern)
		if xLen > yLen {
			return xPos, xLen
		}
		return yPos, yLen
	}

	mid := lo + (hi-lo)/2
	midPos := sa[mid]
	if bytes.Compare(source[midPos:], pattern) < 0 {
		return search(sa, source, pattern, mid, hi)
	}
	return search(sa, source, pattern, lo, mid)
}

func matchLen(source, pattern []byte) int {
	n := min(len(source), len(pattern))
	i := 0
	for i < n && source[i] == pattern[i] {
		i++
	}
	return i
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// qsufsort builds the suffix array of buf into sa (len(sa) == len(buf)+1)
// using the Larsson-Sadakane algorithm: an initial bucket sort by single
// byte, then repeated doubling of the sorted prefix length via rank groups
// until every suffix occupies its own group.
//
// sa doubles as working storage during construction: a non-negative entry
// names a source offset still being sorted, a negative entry -k marks the
// start of a run of k already-resolved (finished) suffixes so the outer
// scan can skip over it in one step.
func qsufsort(sa []int, buf []byte) {
	n := len(buf)
	rank := make([]int, len(sa))

	var buckets [256]int
	for _, c := range buf {
		buckets[c]++
	}
	for i := 1; i < 256; i++ {
		buckets[i] += buckets[i-1]
	}
	for i := 255; i > 0; i-- {
		buckets[i] = buckets[i-1]
	}
	buckets[0] = 0

	for i, c := range buf {
		buckets[c]++
		sa[buckets[c]] = i
	}
	sa[0] = n

	for i, c := range buf {
		rank[i] = buckets[c]
	}
	rank[n] = 0

	for i := 1; i < 256; i++ {
		if buckets[i] == buckets[i-1]+1 {
			sa[buckets[i]] = -1
		}
	}
	sa[0] = -1

	for h := 1; sa[0] != -(n + 1); h += h {
		groupLen := 0
		i := 0
		for i < n+1 {
			if sa[i] < 0 {
				groupLen -= sa[i]
				i -= sa[i]
			} else {
				if groupLen != 0 {
					sa[i-groupLen] = -groupLen
				}
				groupLen = rank[sa[i]] + 1 - i
				split(sa, rank, i, groupLen, h)
				i += groupLen
				groupLen = 0
			}
		}
		if groupLen != 0 {
			sa[i-groupLen] = -groupLen
		}
	}

	for i := 0; i < n+1; i++ {
		sa[rank[i]] = i
	}
}

// split partitions the group sa[start:start+length] by rank at offset h,
// the inner step of qsufsort's doubling search.
func split(sa, rank []int, start, length, h int) {
	if length < 16 {
		insertionSplit(sa, rank, start, length, h)
		return
	}

	pivot := rank[sa[start+length/2]+h]
	lt, eq := 0, 0
	for i := start; i < start+length; i++ {
		switch {
		case rank[sa[i]+h] < pivot:
			lt++
		case rank[sa[i]+h] == pivot:
			eq++
		}
	}
	ltEnd := start + lt
	eqEnd := ltEnd + eq

	i, j, k := start, 0, 0
	for i < ltEnd {
		switch {
		case rank[sa[i]+h] < pivot:
			i++
		case rank[sa[i]+h] == pivot:
			sa[i], sa[ltEnd+j] = sa[ltEnd+j], sa[i]
			j++
		default:
			sa[i], sa[eqEnd+k] = sa[eqEnd+k], sa[i]
			k++
		}
	}
	for ltEnd+j < eqEnd {
		if rank[sa[ltEnd+j]+h] == pivot {
			j++
		} else {
			sa[ltEnd+j], sa[eqEnd+k] = sa[eqEnd+k], sa[ltEnd+j]
			k++
		}
	}

	if ltEnd > start {
		split(sa, rank, start, ltEnd-start, h)
	}
	for i := 0; i < eqEnd-ltEnd; i++ {
		rank[sa[ltEnd+i]] = eqEnd - 1
	}
	if ltEnd == eqEnd-1 {
		sa[ltEnd] = -1
	}
	if start+length > eqEnd {
		split(sa, rank, eqEnd, start+length-eqEnd, h)
	}
}

// insertionSplit handles small groups (<16 elements) with a selection-sort
// style pass, matching the classic qsufsort's cutoff for doubling overhead.
func insertionSplit(sa, rank []int, start, length, h int) {
	for k := start; k < start+length; {
		j := 1
		pivot := rank[sa[k]+h]
		for i := 1; k+i < start+length; i++ {
			if rank[sa[k+i]+h] < pivot {
				pivot = rank[sa[k+i]+h]
				j = 0
			}
			if rank[sa[k+i]+h] == pivot {
				sa[k+j], sa[k+i] = sa[k+i], sa[k+j]
				j++
			}
		}
		for i := 0; i < j; i++ {
			rank[sa[k+i]] = k + j - 1
		}
		if j == 1 {
			sa[k] = -1
		}
		k += j
	}
}

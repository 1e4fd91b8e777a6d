// Package diffscope implements the diff interval engine: turning a
// sequence of unified-diff hunk descriptors into the two integer sets a
// file's lines fall into relative to a patch — present only on base, or
// present only on head.
package diffscope

import "sort"

// Hunk is one unified-diff hunk: the base/head starting line numbers and an
// ordered sequence of single-character markers ("+" / "-" / " "). Lengths
// are accepted for fidelity to the wire format but are not required for
// correctness and are unused here.
type Hunk struct {
	BaseStart int32
	BaseLen   int32
	HeadStart int32
	HeadLen   int32
	Markers   []byte
}

// Scope is the result of walking a file's hunks: the line numbers that
// exist only on the base side, and only on the head side.
type Scope struct {
	OnlyOnBase map[int32]struct{}
	OnlyOnHead map[int32]struct{}
}

// NewScope walks every hunk's markers with independent base/head cursors,
// "+" advances only the head cursor and records it,
// "-" advances only the base cursor and records it, anything else advances
// both without recording.
func NewScope(hunks []Hunk) Scope {
	s := Scope{
		OnlyOnBase: make(map[int32]struct{}),
		OnlyOnHead: make(map[int32]struct{}),
	}
	for _, h := range hunks {
		b, head := h.BaseStart, h.HeadStart
		for _, m := range h.Markers {
			switch m {
			case '+':
				s.OnlyOnHead[head] = struct{}{}
				head++
			case '-':
				s.OnlyOnBase[b] = struct{}{}
				b++
			default:
				b++
				head++
			}
		}
	}
	return s
}

// SortedOnlyOnBase returns OnlyOnBase's keys in ascending order.
func (s Scope) SortedOnlyOnBase() []int32 { return sortedKeys(s.OnlyOnBase) }

// SortedOnlyOnHead returns OnlyOnHead's keys in ascending order.
func (s Scope) SortedOnlyOnHead() []int32 { return sortedKeys(s.OnlyOnHead) }

func sortedKeys(m map[int32]struct{}) []int32 {
	out := make([]int32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Package differ computes minimal single-region replacements between two
// text snapshots so a live view can be patched without a full re-render.
//
// All positions and lengths are UTF-16 code units, matching the document
// engine's index space. The functions here are pure and total: they never
// fail, and any apparently impossible input is a sign the caller diffed
// against a stale snapshot.
package differ

import (
	"unicode"

	"github.com/xonecas/composer/internal/projection"
)

// Patch is a single contiguous replacement: substitute Text for the
// region [Location, Location+Length) of the old string.
//
// HasMore reports that the true difference is made of two or more disjoint
// edits: applying this patch moves the string closer to the target but does
// not finish the job. Callers re-invoke Replacement on the patched string
// until it returns HasMore == false or nil. Iteration shrinks the remaining
// difference every round, but callers should still cap the rounds and fall
// back to a full-range replace (see compose.Controller).
type Patch struct {
	Location int
	Length   int
	Text     string
	HasMore  bool
}

// Replacement computes the patch that turns old into new, or nil when the
// two are already equivalent.
//
// Equivalence is looser than equality: any Unicode whitespace code point
// matches any other, so a view that substituted NBSP for a plain space is
// not treated as edited. Whitespace inside an actual replacement region is
// still emitted literally.
func Replacement(old, new string) *Patch {
	if old == new {
		return nil
	}
	a := projection.UTF16Units(old)
	b := projection.UTF16Units(new)
	if whitespaceEquivalent(a, b) {
		return nil
	}

	p := commonPrefix(a, b)
	// Never split a surrogate pair: the patch text must round-trip
	// through a Go string.
	if p > 0 && isHighSurrogate(a[p-1]) {
		p--
	}
	s := commonSuffix(a, b)
	if s > 0 && isLowSurrogate(a[len(a)-s]) {
		s--
	}
	// The middle regions must not overlap the prefix; shrink the suffix
	// until they don't.
	shortest := min(len(a), len(b))
	if p+s > shortest {
		s = shortest - p
	}
	if s > 0 && isLowSurrogate(a[len(a)-s]) {
		s--
	}

	mid, midNew := a[p:len(a)-s], b[p:len(b)-s]

	// A shared core inside both middles means the difference is at least
	// two disjoint edits (e.g. "text" -> "fexf"). Emit only the leading
	// edit and let the caller come back for the rest.
	if ai, bi, n := longestCommonRun(mid, midNew); n > 0 {
		// Pull pair halves out of the shared core so both edit regions
		// stay pair-aligned.
		for n > 0 && isLowSurrogate(mid[ai]) {
			ai, bi, n = ai+1, bi+1, n-1
		}
		for n > 0 && isHighSurrogate(mid[ai+n-1]) {
			n--
		}
		if n > 0 {
			return &Patch{
				Location: p,
				Length:   ai,
				Text:     projection.FromUTF16(midNew[:bi]),
				HasMore:  true,
			}
		}
	}

	// Single contiguous edit. This also covers auto-punctuation, where two
	// spaces in old collapse to a "." in new: with no shared core it is an
	// ordinary replacement, not an error.
	return &Patch{
		Location: p,
		Length:   len(mid),
		Text:     projection.FromUTF16(midNew),
	}
}

// Apply replaces the patch region of s with the patch text, in UTF-16
// code-unit space. Out-of-range patches are clamped rather than rejected.
func Apply(s string, p *Patch) string {
	if p == nil {
		return s
	}
	n := projection.UTF16Length(s)
	loc := max(min(p.Location, n), 0)
	end := max(min(p.Location+p.Length, n), loc)
	return projection.UTF16Slice(s, 0, loc) + p.Text + projection.UTF16Slice(s, end, n)
}

func commonPrefix(a, b []uint16) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffix(a, b []uint16) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

// whitespaceEquivalent reports whether a and b are equal when every
// whitespace code unit is treated as interchangeable with any other.
func whitespaceEquivalent(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if !isSpaceUnit(a[i]) || !isSpaceUnit(b[i]) {
			return false
		}
	}
	return true
}

// isSpaceUnit reports whether a single code unit is Unicode whitespace.
// Surrogate halves are never whitespace, so scanning unit-by-unit is safe.
func isSpaceUnit(u uint16) bool {
	return unicode.IsSpace(rune(u))
}

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }
func isLowSurrogate(u uint16) bool  { return u >= 0xDC00 && u <= 0xDFFF }

// longestCommonRun finds the longest run of code units present in both a
// and b, returning its start in each and its length. Zero length means the
// two share nothing. Quadratic, but it only ever sees the (typically tiny)
// trimmed middle of a diff.
func longestCommonRun(a, b []uint16) (ai, bi, n int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > n {
					n = cur[j]
					ai = i - n
					bi = j - n
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, n
}

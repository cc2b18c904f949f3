package projection

import "unicode/utf16"

// UTF16Length returns the length of s in UTF-16 code units.
func UTF16Length(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++ // surrogate pair
		}
	}
	return n
}

// UTF16Units encodes s as UTF-16 code units.
func UTF16Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// FromUTF16 decodes UTF-16 code units back to a string. Unpaired surrogates
// become U+FFFD, matching the stdlib decoder.
func FromUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// UTF16Slice returns s[start:end] sliced in UTF-16 code-unit space.
// Bounds are clamped to [0, len]; a slice boundary inside a surrogate pair
// yields U+FFFD at that edge rather than panicking.
func UTF16Slice(s string, start, end int) string {
	units := UTF16Units(s)
	if start < 0 {
		start = 0
	}
	if end > len(units) {
		end = len(units)
	}
	if start >= end {
		return ""
	}
	return FromUTF16(units[start:end])
}

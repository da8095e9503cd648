package utils

// Ellipsis is appended to any string shortened by Truncate.
const Ellipsis = "…"

// Truncate returns s unchanged when it fits within max characters,
// otherwise the first max characters followed by a single ellipsis.
// Lengths are counted in runes so multi-byte text is not cut mid-character.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + Ellipsis
}

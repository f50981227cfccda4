package enrich

import "unicode/utf16"

// NameHash derives a stable non-negative integer from an agent name.
//
// The accumulator is a 32-bit signed integer updated as h = h*31 + unit
// for each UTF-16 code unit of the name, wrapping on overflow exactly
// as 32-bit arithmetic does. The absolute value of the final
// accumulator is returned. Every derived attribute (rating, services,
// tags) keys off this value, so neither the width nor the unit may
// change: widening the accumulator or hashing runes instead of UTF-16
// units (a non-BMP character contributes its two surrogates) would
// silently shift generated ratings across the directory.
//
// Distinct names may collide; that is acceptable, the hash only has to
// be deterministic. An empty name hashes to 0.
func NameHash(name string) int {
	var h int32
	for _, u := range utf16.Encode([]rune(name)) {
		h = h*31 + int32(u)
	}
	// abs in 64-bit space so MinInt32 does not overflow back to itself
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v)
}

// Package bitgrid implements fixed-capacity occupancy grids packed into
// unsigned machine words, with one-cell shift operators in the four cardinal
// directions.
//
// Column c of a row lives in word c/B at bit c%B, where B is the word width.
// Bit 0 is therefore the leftmost column of its word, which is why a logical
// shift to the right is a mechanical rotate to the left.
package bitgrid

import "math/bits"

// Word is the set of unsigned integer types a Grid can be packed into.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Bits returns the width of W in bits.
func Bits[W Word]() int {
	var zero W
	return bits.OnesCount64(uint64(^zero))
}

// LowBit returns a word with only its lowest bit set.
func LowBit[W Word]() W { return 1 }

// HighBit returns a word with only its highest bit set.
func HighBit[W Word]() W { return W(1) << uint(Bits[W]()-1) }

// RotateLeft rotates w one bit towards the most significant end.
func RotateLeft[W Word](w W) W {
	return w<<1 | w>>uint(Bits[W]()-1)
}

// RotateRight rotates w one bit towards the least significant end.
func RotateRight[W Word](w W) W {
	return w>>1 | w<<uint(Bits[W]()-1)
}

// onesCount counts set bits in w.
func onesCount[W Word](w W) int { return bits.OnesCount64(uint64(w)) }

// lowestSet returns the index of the lowest set bit; w must be non-zero.
func lowestSet[W Word](w W) int { return bits.TrailingZeros64(uint64(w)) }

// highestSet returns the index of the highest set bit; w must be non-zero.
func highestSet[W Word](w W) int { return bits.Len64(uint64(w)) - 1 }

package deniable

import "encoding/binary"

// placement maps the last 8 bytes of the scrypt output to a body offset.
// Modulo bias is at most bodyLen/2^64.
func placement(derived []byte, bodyLen int) int {
	v := binary.BigEndian.Uint64(derived[len(derived)-placeLen:])
	return int(v % uint64(bodyLen))
}

// overlaps reports whether the ring intervals [a, a+aLen) and [b, b+bLen)
// share any byte of a ring of size n.
func overlaps(a, aLen, b, bLen, n int) bool {
	if (b-a+n)%n < aLen {
		return true
	}
	return (a-b+n)%n < bLen
}

func writeRing(ring []byte, offset int, data []byte) {
	n := len(ring)
	for i, v := range data {
		ring[(offset+i)%n] = v
	}
}

func readRing(ring []byte, offset, length int) []byte {
	n := len(ring)
	out := make([]byte, length)
	for i := range out {
		out[i] = ring[(offset+i)%n]
	}
	return out
}

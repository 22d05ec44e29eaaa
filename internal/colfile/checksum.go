package colfile

import (
	"fmt"
	"hash/crc32"
	"math"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// checksum is the CRC32-Castagnoli of a file body.
func checksum(body []byte) uint32 {
	return crc32.Checksum(body, castagnoli)
}

// toWire converts a length or count to a fixed-width field, refusing values
// that would wrap.
func toWire[T uint16 | uint32 | uint64](n int) (T, error) {
	if n < 0 || uint64(n) > uint64(^T(0)) {
		return 0, fmt.Errorf("colfile: %d does not fit in %T", n, T(0))
	}
	return T(n), nil
}

// fromWire converts an untrusted count read from a file to an int.
func fromWire(n uint64) (int, error) {
	if n > math.MaxInt {
		return 0, fmt.Errorf("colfile: %d overflows int", n)
	}
	return int(n), nil
}

package catalog

import (
	"encoding/binary"
	"math"
)

const vectorField = "__vector"

// vectorToBytes serializes []float32 into the little-endian binary blob
// RediSearch expects in hash vector fields.
func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

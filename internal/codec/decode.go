// internal/codec/decode.go
package codec

import (
	"fmt"
	"math"
)

// Decode turns raw registers into a sample value according to kind.
//
// Callers must pass exactly kind.RegisterCount() registers. A mismatch is an
// engine defect, not a device fault, and panics.
func Decode(kind Kind, regs []uint16) float64 {
	want := int(kind.RegisterCount())
	if len(regs) != want {
		panic(fmt.Sprintf("codec: %s needs %d registers, got %d", kind, want, len(regs)))
	}

	switch kind {
	case KindIntHolding, KindIntInput:
		return float64(regs[0])
	case KindRealHolding, KindRealInput:
		return float64(Float32(regs[0], regs[1]))
	case KindCoil:
		if regs[0] != 0 {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("codec: decode %s", kind))
	}
}

// Float32 reinterprets hi<<16 | lo bit-for-bit as an IEEE-754 single.
// The first register carries the high word; devices rely on this order.
func Float32(hi, lo uint16) float32 {
	return math.Float32frombits(uint32(hi)<<16 | uint32(lo))
}

// CoilWord maps a coil bit onto the single-register form Decode expects.
func CoilWord(bit bool) uint16 {
	if bit {
		return 1
	}
	return 0
}

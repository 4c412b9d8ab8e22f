// internal/codec/decode_test.go
package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloat32_HighWordFirst(t *testing.T) {
	got := Float32(0x4049, 0x0FDB)
	if math.Abs(float64(got)-3.14159) > 1e-5 {
		t.Fatalf("expected ~3.14159, got %v", got)
	}

	require.Equal(t, float32(1.0), Float32(0x3F80, 0x0000))
	require.Equal(t, float32(2.0), Float32(0x4000, 0x0000))
	require.Equal(t, float32(-2.0), Float32(0xC000, 0x0000))
}

func TestFloat32_BitPatternPreserved(t *testing.T) {
	pairs := [][2]uint16{
		{0x0000, 0x0001}, // smallest subnormal
		{0x7F7F, 0xFFFF}, // max float
		{0x8000, 0x0000}, // negative zero
		{0x1234, 0xABCD},
	}
	for _, p := range pairs {
		got := math.Float32bits(Float32(p[0], p[1]))
		want := uint32(p[0])<<16 | uint32(p[1])
		if got != want {
			t.Fatalf("hi=%#04x lo=%#04x: bits=%#08x want %#08x", p[0], p[1], got, want)
		}
	}

	nan := Float32(0x7FC0, 0x0001)
	require.Equal(t, uint32(0x7FC00001), math.Float32bits(nan))
}

func TestDecode_IntegerIsUnsigned(t *testing.T) {
	require.Equal(t, 65535.0, Decode(KindIntHolding, []uint16{0xFFFF}))
	require.Equal(t, 32768.0, Decode(KindIntInput, []uint16{0x8000}))
	require.Equal(t, 0.0, Decode(KindIntHolding, []uint16{0}))
}

func TestDecode_Float(t *testing.T) {
	require.Equal(t, 1.0, Decode(KindRealHolding, []uint16{0x3F80, 0x0000}))
	require.Equal(t, 2.0, Decode(KindRealInput, []uint16{0x4000, 0x0000}))
}

func TestDecode_Coil(t *testing.T) {
	require.Equal(t, 1.0, Decode(KindCoil, []uint16{CoilWord(true)}))
	require.Equal(t, 0.0, Decode(KindCoil, []uint16{CoilWord(false)}))
}

func TestDecode_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		require.Equal(t, Decode(KindRealHolding, []uint16{0x4049, 0x0FDB}), Decode(KindRealHolding, []uint16{0x4049, 0x0FDB}))
	}
}

func TestDecode_WrongCountPanics(t *testing.T) {
	require.Panics(t, func() { Decode(KindRealHolding, []uint16{1}) })
	require.Panics(t, func() { Decode(KindIntHolding, []uint16{1, 2}) })
	require.Panics(t, func() { Decode(KindCoil, nil) })
	require.Panics(t, func() { Decode(KindUnknown, []uint16{1}) })
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"int_holding":  KindIntHolding,
		"RealHolding":  KindRealHolding,
		"IntInput":     KindIntInput,
		"real_input":   KindRealInput,
		"Coil":         KindCoil,
		" coil ":       KindCoil,
		"REAL_HOLDING": KindRealHolding,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseKind("string")
	require.Error(t, err)
}

func TestKind_TextRoundTrip(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("RealInput")))
	out, err := k.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "real_input", string(out))

	_, err = KindUnknown.MarshalText()
	require.Error(t, err)
}

func TestKind_TableAndCount(t *testing.T) {
	require.Equal(t, TableHolding, KindRealHolding.Table())
	require.Equal(t, TableInput, KindIntInput.Table())
	require.Equal(t, TableCoil, KindCoil.Table())
	require.Equal(t, uint16(2), KindRealInput.RegisterCount())
	require.Equal(t, uint16(1), KindCoil.RegisterCount())
}

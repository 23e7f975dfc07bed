package wire_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusproto/dynwire/wire"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 150, 16384, math.MaxUint32, math.MaxInt64, math.MaxUint64,
	}
	for _, v := range values {
		encoded := wire.EncodeVarint(v)
		r := wire.NewReader(encoded)
		got, err := r.DecodeVarint()
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.True(t, r.EOF())
	}
}

func TestVarintTruncated(t *testing.T) {
	// A continuation byte with nothing after it.
	r := wire.NewReader([]byte{0x96})
	_, err := r.DecodeVarint()
	require.ErrorIs(t, err, wire.ErrTruncated)
}

func TestVarintOverflow(t *testing.T) {
	// Nine continuation bytes and a tenth byte carrying seven more bits:
	// more than a 64-bit value can carry.
	r := wire.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f})
	_, err := r.DecodeVarint()
	require.ErrorIs(t, err, wire.ErrOverflow)
}

func TestZigZagBijection32(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		got := wire.DecodeZigZag32(wire.EncodeZigZag32(v))
		require.Equal(t, v, got)
	}
}

func TestZigZagBijection64(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		got := wire.DecodeZigZag64(wire.EncodeZigZag64(v))
		require.Equal(t, v, got)
	}
}

func TestZigZagMonotoneOnMagnitude(t *testing.T) {
	// Encoded codes for 0,-1,1,-2,2,-3,3,... increase monotonically.
	var prev uint64
	for i, v := range []int64{0, -1, 1, -2, 2, -3, 3, -4, 4} {
		code := wire.EncodeZigZag64(v)
		if i > 0 {
			require.Greater(t, code, prev)
		}
		prev = code
	}
}

func TestDecodeTagAndWireType(t *testing.T) {
	// field 1, wire type 0 (varint): tag = 1<<3 | 0 = 8 -> 0x08
	r := wire.NewReader([]byte{0x08})
	fieldNum, wireType, err := r.DecodeTagAndWireType()
	require.NoError(t, err)
	require.Equal(t, int32(1), fieldNum)
	require.Equal(t, wire.Varint, wireType)
}

func TestFixed32AndFixed64(t *testing.T) {
	r := wire.NewReader([]byte{0x00, 0x00, 0x90, 0x3f})
	v, err := r.DecodeFixed32()
	require.NoError(t, err)
	require.Equal(t, float32(1.125), math.Float32frombits(uint32(v)))

	r = wire.NewReader([]byte{1, 0, 0, 0, 0, 0, 0, 0})
	v, err = r.DecodeFixed64()
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
}

func TestDecodeBytesDefaultCopiesNotAlias(t *testing.T) {
	buf := []byte{3, 'a', 'b', 'c'}
	r := wire.NewReader(buf)
	got, err := r.DecodeBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
	buf[1] = 'z'
	require.Equal(t, []byte("abc"), got, "default behavior copies, so mutating the source buffer must not affect the result")
}

func TestDecodeBytesAliasing(t *testing.T) {
	buf := []byte{3, 'a', 'b', 'c'}
	r := wire.NewReader(buf)
	r.SetBytesAliasing(true)
	got, err := r.DecodeBytes()
	require.NoError(t, err)
	buf[1] = 'z'
	require.Equal(t, []byte("azc"), got, "aliasing must share storage with the source buffer")
}

func TestSkipVariants(t *testing.T) {
	tests := []struct {
		name     string
		wireType wire.Type
		data     []byte
	}{
		{"varint", wire.Varint, []byte{0x96, 0x01}},
		{"fixed64", wire.Fixed64, make([]byte, 8)},
		{"length-delimited", wire.LengthDelimited, []byte{3, 'x', 'y', 'z'}},
		{"fixed32", wire.Fixed32, make([]byte, 4)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := wire.NewReader(tc.data)
			require.NoError(t, r.Skip(tc.wireType))
			require.True(t, r.EOF())
		})
	}
}

func TestSkipUnsupportedWireType(t *testing.T) {
	r := wire.NewReader(nil)
	err := r.Skip(3)
	require.ErrorIs(t, err, wire.ErrUnsupportedWireType)
}

func TestSkipLengthDelimitedTruncated(t *testing.T) {
	r := wire.NewReader([]byte{5, 'a', 'b'})
	err := r.Skip(wire.LengthDelimited)
	require.ErrorIs(t, err, wire.ErrTruncated)
}

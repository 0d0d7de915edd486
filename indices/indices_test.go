package indices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitsPerIndex(t *testing.T) {
	r := require.New(t)

	r.Equal(uint(1), BitsPerIndex(0))
	r.Equal(uint(1), BitsPerIndex(1))
	r.Equal(uint(1), BitsPerIndex(2))
	r.Equal(uint(2), BitsPerIndex(3))
	r.Equal(uint(8), BitsPerIndex(256))
	r.Equal(uint(9), BitsPerIndex(257))
}

func TestEncodeDecode(t *testing.T) {
	r := require.New(t)

	for _, numItems := range []uint64{2, 3, 100, 256, 1 << 20, 1<<40 + 3} {
		var idx []uint64
		for i := uint64(0); i < 37 && i < numItems; i++ {
			idx = append(idx, (i*7919)%numItems)
		}

		data, err := Encode(idx, numItems)
		r.NoError(err)
		r.Len(data, int(Size(BitsPerIndex(numItems), uint(len(idx)))))

		got, err := Decode(data, numItems, uint(len(idx)))
		r.NoError(err)
		r.Equal(idx, got, "numItems %d", numItems)
	}
}

func TestEncode_OutOfRange(t *testing.T) {
	_, err := Encode([]uint64{1, 10}, 10)
	require.ErrorContains(t, err, "index out of range")
}

func TestDecode_Invalid(t *testing.T) {
	r := require.New(t)

	data, err := Encode([]uint64{3, 5}, 8)
	r.NoError(err)

	_, err = Decode(data, 8, 3)
	r.ErrorContains(err, "invalid indices set size")

	dup, err := Encode([]uint64{5, 5}, 8)
	r.NoError(err)
	_, err = Decode(dup, 8, 2)
	r.ErrorContains(err, "non-unique index: 5")

	// 3 bits can hold 6, which is out of range for 6 items.
	big, err := Encode([]uint64{6}, 7)
	r.NoError(err)
	_, err = Decode(big, 6, 1)
	r.ErrorContains(err, "index out of range")
}

func TestDecode_HugeCount(t *testing.T) {
	r := require.New(t)

	// 8*2^61 bits wrap around to a zero size.
	r.NotPanics(func() {
		_, err := Decode(nil, 256, 1<<61)
		r.ErrorContains(err, "invalid indices set size")
	})

	data, err := Encode([]uint64{1, 2}, 256)
	r.NoError(err)
	_, err = Decode(data, 256, ^uint(0)/4+1)
	r.ErrorContains(err, "invalid indices set size")
}

func TestEncode_LSBFirst(t *testing.T) {
	data, err := Encode([]uint64{0b101, 0b011}, 8)
	require.NoError(t, err)
	require.Equal(t, []byte{0b011_101}, data)
}

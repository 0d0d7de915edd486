// Package indices packs sets of unique indices using the minimal number of bits per index.
package indices

import (
	"bytes"
	"fmt"

	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/shared"
)

// BitsPerIndex returns the number of bits needed to represent any index below numItems.
func BitsPerIndex(numItems uint64) uint {
	if numItems <= 1 {
		return 1
	}
	return uint(shared.NumBits(numItems - 1))
}

// Size returns the number of bytes taken by count indices of bitsPerIndex bits each.
func Size(bitsPerIndex uint, count uint) uint {
	return (bitsPerIndex*count + 7) / 8
}

// Encode packs indices, each below numItems, into BitsPerIndex(numItems) bits apiece, LSB first.
func Encode(indices []uint64, numItems uint64, opts ...bitstream.WriterOpt) ([]byte, error) {
	bitsPerIndex := BitsPerIndex(numItems)
	buf := bytes.NewBuffer(make([]byte, 0, Size(bitsPerIndex, uint(len(indices)))))
	fw, err := shared.NewFieldWriter(buf, bitsPerIndex, opts...)
	if err != nil {
		return nil, err
	}

	for _, index := range indices {
		if index >= numItems {
			return nil, fmt.Errorf("index out of range; expected: < %d, given: %d", numItems, index)
		}
		if err := fw.WriteUint(index); err != nil {
			return nil, err
		}
	}

	if err := fw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode unpacks count indices encoded by Encode, rejecting
// malformed sizes, out-of-range and non-unique indices.
func Decode(data []byte, numItems uint64, count uint, opts ...bitstream.ReaderOpt) ([]uint64, error) {
	bitsPerIndex := BitsPerIndex(numItems)
	// Bounds count before Size, which would overflow on huge counts.
	if maxCount := uint(len(data)) * 8 / bitsPerIndex; count > maxCount {
		return nil, fmt.Errorf("invalid indices set size; %d indices of %d bits do not fit in %d bytes",
			count, bitsPerIndex, len(data))
	}
	if expectedSize := Size(bitsPerIndex, count); expectedSize != uint(len(data)) {
		return nil, fmt.Errorf("invalid indices set size; expected %d, given: %d", expectedSize, len(data))
	}

	fr, err := shared.NewFieldReader(bytes.NewReader(data), bitsPerIndex, opts...)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]struct{}, count)
	indices := make([]uint64, 0, count)
	for i := uint(0); i < count; i++ {
		index, err := fr.ReadUint()
		if err != nil {
			return nil, err
		}
		if index >= numItems {
			return nil, fmt.Errorf("index out of range; expected: < %d, given: %d", numItems, index)
		}
		if _, ok := seen[index]; ok {
			return nil, fmt.Errorf("non-unique index: %d", index)
		}
		seen[index] = struct{}{}
		indices = append(indices, index)
	}
	return indices, nil
}

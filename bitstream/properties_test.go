package bitstream_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spacemeshos/bitio/bitstream"
)

type field struct {
	val   uint64
	width uint
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 200; round++ {
		fields := make([]field, 1+rng.Intn(64))
		for i := range fields {
			width := uint(1 + rng.Intn(31))
			fields[i] = field{val: rng.Uint64() & (1<<width - 1), width: width}
		}

		buf := bytes.NewBuffer(nil)
		bw := NewWriter(buf, bitstream.WriterWithLogger(zaptest.NewLogger(t)))
		for _, f := range fields {
			require.NoError(t, bw.WriteBits(f.val, f.width))
		}
		require.NoError(t, bw.Flush())

		br := NewReader(buf)
		for i, f := range fields {
			got, err := br.ReadBits(f.width)
			require.NoError(t, err)
			require.Equal(t, f.val, got, "round %d field %d", round, i)
		}
	}
}

func TestByteIdentity(t *testing.T) {
	for b := 0; b < 256; b++ {
		buf := bytes.NewBuffer(nil)
		bw := NewWriter(buf)
		require.NoError(t, bw.WriteByte(byte(b)))
		require.NoError(t, bw.Flush())
		require.Equal(t, 1, buf.Len())

		got, err := NewReader(buf).ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(b), got)
	}
}

func TestSplitEqualsWhole(t *testing.T) {
	for b := 0; b < 256; b++ {
		for k := uint(1); k < 8; k++ {
			br := NewReader(bytes.NewReader([]byte{byte(b)}))
			lo, err := br.ReadBits(k)
			require.NoError(t, err)
			hi, err := br.ReadBits(8 - k)
			require.NoError(t, err)

			whole, err := NewReader(bytes.NewReader([]byte{byte(b)})).ReadByte()
			require.NoError(t, err)
			require.Equal(t, whole, byte(lo|hi<<k), "byte %#x split at %d", b, k)
		}
	}
}

func TestFlushPadding(t *testing.T) {
	req := require.New(t)

	buf := bytes.NewBuffer(nil)
	bw := NewWriter(buf)
	req.NoError(bw.WriteBits(0b101, 3))
	req.Equal(uint(3), bw.Pending())
	req.Zero(buf.Len())

	req.NoError(bw.Flush())
	req.Equal([]byte{0b00000101}, buf.Bytes())
	req.Equal(bitstream.Empty, bw.State())

	req.NoError(bw.Flush())
	req.Equal(1, buf.Len())
}

func TestScenario_Read(t *testing.T) {
	req := require.New(t)

	br := NewReader(bytes.NewReader([]byte{0b10110010}))
	val, err := br.ReadBits(3)
	req.NoError(err)
	req.Equal(uint64(2), val)

	val, err = br.ReadBits(5)
	req.NoError(err)
	req.Equal(uint64(22), val)

	_, err = br.ReadBit()
	req.ErrorIs(err, bitstream.ErrEndOfStream)
}

func TestScenario_Write(t *testing.T) {
	req := require.New(t)

	buf := bytes.NewBuffer(nil)
	bw := NewWriter(buf)
	req.NoError(bw.WriteBits(0b101, 3))
	req.NoError(bw.WriteBits(0b11, 2))
	req.NoError(bw.Flush())
	req.Equal([]byte{0x1D}, buf.Bytes())
}

func TestReaderState(t *testing.T) {
	req := require.New(t)

	br := NewReader(bytes.NewReader([]byte{0xF0, 0x0F}))
	req.Equal(bitstream.Empty, br.State(4))

	_, err := br.ReadBits(4)
	req.NoError(err)
	req.Equal(bitstream.Ready, br.State(4))
	req.Equal(bitstream.Partial, br.State(5))

	_, err = br.ReadBits(4)
	req.NoError(err)
	req.Equal(bitstream.Empty, br.State(1))

	req.Equal("partial", bitstream.Partial.String())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	buf := bytes.NewBuffer(nil)
	bw := NewWriter(buf, bitstream.WriterWithLogger(logger))
	require.NoError(t, bw.WriteBits(0x1FF, 9))
	require.NoError(t, bw.Flush())

	br := NewReader(buf, bitstream.ReaderWithLogger(logger))
	_, err := br.ReadBits(9)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("bitstream: drained register").Len())
	assert.Equal(t, 1, logs.FilterMessage("bitstream: flushed partial byte").Len())
	assert.Equal(t, 2, logs.FilterMessage("bitstream: refilled register").Len())

	flushed := logs.FilterMessage("bitstream: flushed partial byte").All()[0]
	assert.Equal(t, uint64(7), flushed.ContextMap()["padding"])
}

package bitstream

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// maxConsecutiveEmptyReads bounds the number of (0, nil) reads a refill tolerates.
const maxConsecutiveEmptyReads = 100

// BitReader reads bits from an io.Reader.
type BitReader struct {
	stream  io.Reader
	pending [1]byte
	reg     register
	eof     bool
	logger  *zap.Logger
}

type ReaderOpt func(*BitReader)

// ReaderWithLogger sets the logger receiving refill events at debug level.
// A nil logger disables logging.
func ReaderWithLogger(logger *zap.Logger) ReaderOpt {
	return func(br *BitReader) {
		if logger == nil {
			logger = zap.NewNop()
		}
		br.logger = logger
	}
}

// NewReader returns a new instance of BitReader.
func NewReader(r io.Reader, opts ...ReaderOpt) *BitReader {
	br := &BitReader{
		stream: r,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(br)
	}
	return br
}

// ReadBits reads the next n bits from the stream and returns them as the
// n low-order bits of the result, the first stream bit being the least significant.
// n must be within 1..MaxFieldWidth: MaxFieldWidth stays one byte below
// RegisterWidth, which leaves room for a byte-sized refill over unread bits.
//
// Once the source reports io.EOF, the reader stops reading from it: buffered
// bits remain readable, and any read needing more returns ErrEndOfStream until Reset.
func (br *BitReader) ReadBits(n uint) (uint64, error) {
	if err := checkWidth("ReadBits", n); err != nil {
		return 0, err
	}
	if err := br.refill(n); err != nil {
		return 0, err
	}

	val := br.reg.peek(n)
	br.reg.consume(n)
	return val, nil
}

// ReadBit reads the next single bit from the stream, LSB first.
func (br *BitReader) ReadBit() (Bit, error) {
	val, err := br.ReadBits(1)
	if err != nil {
		return Zero, err
	}
	return val != 0, nil
}

// ReadByte reads the next 8 bits from the stream, regardless of the alignment.
func (br *BitReader) ReadByte() (byte, error) {
	val, err := br.ReadBits(8)
	if err != nil {
		return 0, err
	}
	return byte(val), nil
}

// ReadBytes reads count bytes into dst[:count]. On failure, it returns the
// number of bytes stored so far; those bytes stay in dst.
func (br *BitReader) ReadBytes(dst []byte, count int) (int, error) {
	if count < 0 || count > len(dst) {
		return 0, fmt.Errorf("%w: ReadBytes: count %d out of range for buffer of %d bytes",
			ErrInvalidArgument, count, len(dst))
	}

	for i := 0; i < count; i++ {
		b, err := br.ReadByte()
		if err != nil {
			return i, err
		}
		dst[i] = b
	}
	return count, nil
}

// Read implements io.Reader on top of ReadBytes, so a BitReader can be
// handed to byte-oriented consumers.
func (br *BitReader) Read(p []byte) (int, error) {
	return br.ReadBytes(p, len(p))
}

// ReadSlice reads the next numBits from the stream, regardless of the alignment.
// Whole bytes come first; the remaining bits fill the LS bits of the last byte.
func (br *BitReader) ReadSlice(numBits uint) ([]byte, error) {
	data := make([]byte, (numBits+7)/8)

	var idx int
	for ; numBits >= 8; numBits -= 8 {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		data[idx] = b
		idx++
	}

	if numBits > 0 {
		val, err := br.ReadBits(numBits)
		if err != nil {
			return nil, err
		}
		data[idx] = byte(val)
	}

	return data, nil
}

// ReadUint64BE reads the next numBits from the stream as uint64 in Big-Endian byte order,
// regardless of the alignment. Bits that don't form a whole byte are read MSB first.
func (br *BitReader) ReadUint64BE(numBits int) (uint64, error) {
	if numBits < 0 || numBits > 64 {
		return 0, fmt.Errorf("%w: ReadUint64BE: expected 0..64 bits, given: %d", ErrInvalidArgument, numBits)
	}

	var val uint64
	for ; numBits >= 8; numBits -= 8 {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		val = val<<8 | uint64(b)
	}

	for ; numBits > 0; numBits-- {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		val <<= 1
		if bit {
			val |= 1
		}
	}

	return val, nil
}

// Align discards the unread bits of the current byte, so the next read
// starts at a byte boundary of the source. It returns the number of skipped bits.
func (br *BitReader) Align() uint {
	skipped := br.reg.len() % 8
	if skipped > 0 {
		br.reg.consume(skipped)
	}
	return skipped
}

// Reset discards buffered bits and the end-of-stream mark, and makes r the new source.
func (br *BitReader) Reset(r io.Reader) {
	br.stream = r
	br.reg.reset()
	br.eof = false
}

// Buffered returns the number of bits that can be read without touching the source.
func (br *BitReader) Buffered() uint {
	return br.reg.len()
}

// State reports whether a read of n bits can be served from buffered bits.
func (br *BitReader) State(n uint) State {
	return br.reg.state(n)
}

// refill pulls bytes from the source, one at a time, until n bits are buffered.
// Bytes that arrived before a failure stay buffered.
func (br *BitReader) refill(n uint) error {
	if br.reg.len() >= n {
		return nil
	}
	if br.reg.start > 0 {
		br.reg.compact()
	}

	for br.reg.len() < n {
		b, err := br.readSourceByte()
		if err != nil {
			return err
		}
		br.reg.push(uint64(b), 8)
		br.logger.Debug("bitstream: refilled register",
			zap.Uint("buffered", br.reg.len()),
			zap.Uint("requested", n),
		)
	}
	return nil
}

func (br *BitReader) readSourceByte() (byte, error) {
	if br.eof {
		return 0, ErrEndOfStream
	}

	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := br.stream.Read(br.pending[:])
		if err == io.EOF {
			br.eof = true
		}
		if n == 1 {
			// Other errors accompanying the last byte show up again on the next read.
			return br.pending[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
	return 0, io.ErrNoProgress
}

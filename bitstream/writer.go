package bitstream

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// BitWriter writes bits to an io.Writer.
// Pending bits that don't form a whole byte are held until Flush or Close.
type BitWriter struct {
	stream  io.Writer
	scratch [RegisterWidth / 8]byte
	reg     register
	logger  *zap.Logger
}

type WriterOpt func(*BitWriter)

// WriterWithLogger sets the logger receiving drain and flush events at debug level.
// A nil logger disables logging.
func WriterWithLogger(logger *zap.Logger) WriterOpt {
	return func(bw *BitWriter) {
		if logger == nil {
			logger = zap.NewNop()
		}
		bw.logger = logger
	}
}

// NewWriter returns a new instance of BitWriter.
func NewWriter(w io.Writer, opts ...WriterOpt) *BitWriter {
	bw := &BitWriter{
		stream: w,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(bw)
	}
	return bw
}

// WithWriter calls fn with a BitWriter over w, and flushes it when fn returns or panics.
// The error of fn takes precedence over the flush error.
func WithWriter(w io.Writer, fn func(bw *BitWriter) error, opts ...WriterOpt) (err error) {
	bw := NewWriter(w, opts...)
	defer func() {
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
	}()

	return fn(bw)
}

// WriteBits writes the n low-order bits of value, LS bit first.
// n must be within 1..MaxFieldWidth and value must fit in n bits; MaxFieldWidth
// stays one byte below RegisterWidth so staging a field never overflows the register.
// Complete bytes are emitted to the stream right away.
//
// If the stream fails before taking any byte, the field is discarded and the
// writer is left as it was. If it fails after taking some bytes, the field
// is staged: the error is returned, and the bytes not yet emitted go out on
// the next write or flush.
func (bw *BitWriter) WriteBits(value uint64, n uint) error {
	_, err := bw.writeBits(value, n)
	return err
}

// writeBits reports whether the field was staged, even when it returns an error.
func (bw *BitWriter) writeBits(value uint64, n uint) (bool, error) {
	if err := checkWidth("WriteBits", n); err != nil {
		return false, err
	}
	if value&^mask(n) != 0 {
		return false, &ArgumentError{Op: "WriteBits", Width: n, Value: value}
	}

	// Bytes left over by a failed write go out first.
	if _, err := bw.drain(); err != nil {
		return false, err
	}

	prev := bw.reg
	bw.reg.push(value, n)
	written, err := bw.drain()
	if err != nil && written == 0 {
		bw.reg = prev
		return false, err
	}
	return true, err
}

// WriteBit writes a single bit to the stream, LSB first.
func (bw *BitWriter) WriteBit(bit Bit) error {
	var val uint64
	if bit {
		val = 1
	}
	return bw.WriteBits(val, 1)
}

// WriteByte writes a single byte to the stream, regardless of the alignment.
func (bw *BitWriter) WriteByte(b byte) error {
	return bw.WriteBits(uint64(b), 8)
}

// WriteBytes writes every byte of src and stops at the first stream error.
// It returns the number of bytes accepted, including a byte that was
// staged by the failing write.
func (bw *BitWriter) WriteBytes(src []byte) (int, error) {
	for i, b := range src {
		if staged, err := bw.writeBits(uint64(b), 8); err != nil {
			if staged {
				return i + 1, err
			}
			return i, err
		}
	}
	return len(src), nil
}

// Write implements io.Writer on top of WriteBytes.
func (bw *BitWriter) Write(p []byte) (int, error) {
	return bw.WriteBytes(p)
}

// WriteSlice writes numBits of data to the stream, regardless of the alignment.
// Whole bytes go first; the remaining bits are taken from the LS bits of the last byte.
func (bw *BitWriter) WriteSlice(data []byte, numBits int) error {
	if numBits < 0 || numBits > len(data)*8 {
		return fmt.Errorf("%w: WriteSlice: %d bits out of range for %d bytes",
			ErrInvalidArgument, numBits, len(data))
	}

	var idx int
	for ; numBits >= 8; numBits -= 8 {
		if err := bw.WriteByte(data[idx]); err != nil {
			return err
		}
		idx++
	}

	if numBits > 0 {
		n := uint(numBits)
		return bw.WriteBits(uint64(data[idx])&mask(n), n)
	}

	return nil
}

// WriteUint64BE writes the next numBits LS bits of val, in Big-Endian byte order, regardless of the alignment.
// Bits that don't form a whole byte are written MSB first.
func (bw *BitWriter) WriteUint64BE(val uint64, numBits int) error {
	if numBits < 0 || numBits > 64 {
		return fmt.Errorf("%w: WriteUint64BE: expected 0..64 bits, given: %d", ErrInvalidArgument, numBits)
	}

	// Eliminate unnecessary MS bits.
	val <<= 64 - uint(numBits)

	for ; numBits >= 8; numBits -= 8 {
		if err := bw.WriteByte(byte(val >> 56)); err != nil {
			return err
		}
		val <<= 8
	}

	for ; numBits > 0; numBits-- {
		if err := bw.WriteBit(val>>63 == 1); err != nil {
			return err
		}
		val <<= 1
	}

	return nil
}

// Flush pads the pending bits with zeros up to a byte boundary and writes that byte.
// It is a no-op when nothing is pending.
func (bw *BitWriter) Flush() error {
	return bw.FlushWith(Zero)
}

// FlushWith pads the pending bits with fill up to a byte boundary and writes that byte.
func (bw *BitWriter) FlushWith(fill Bit) error {
	if _, err := bw.drain(); err != nil {
		return err
	}

	pending := bw.reg.len()
	if pending == 0 {
		return nil
	}

	b := byte(bw.reg.peek(pending))
	if fill {
		b |= ^byte(0) << pending
	}

	bw.scratch[0] = b
	if err := bw.emit(bw.scratch[:1]); err != nil {
		return err
	}
	bw.reg.reset()

	bw.logger.Debug("bitstream: flushed partial byte",
		zap.Uint("bits", pending),
		zap.Uint("padding", 8-pending),
	)
	return nil
}

// Close implements io.Closer. It flushes pending bits, but does not close the underlying writer.
func (bw *BitWriter) Close() error {
	return bw.Flush()
}

// Pending returns the number of bits waiting to be emitted.
func (bw *BitWriter) Pending() uint {
	return bw.reg.len()
}

// State reports Empty when nothing is pending, Partial when less than a
// byte is pending, and Ready when a failed write left whole bytes behind.
func (bw *BitWriter) State() State {
	return bw.reg.state(8)
}

// drain emits all whole bytes held in the register with a single stream write.
func (bw *BitWriter) drain() (int, error) {
	count := bw.reg.len() / 8
	if count == 0 {
		return 0, nil
	}

	for i := uint(0); i < count; i++ {
		bw.scratch[i] = bw.reg.byteAt(i)
	}

	n, err := bw.stream.Write(bw.scratch[:count])
	if n < 0 {
		n = 0
	} else if uint(n) > count {
		n = int(count)
	}
	if n > 0 {
		bw.reg.consume(uint(n) * 8)
	}
	if err == nil && uint(n) < count {
		err = io.ErrShortWrite
	}
	if err != nil {
		return n, err
	}

	bw.logger.Debug("bitstream: drained register",
		zap.Int("bytes", n),
		zap.Uint("pending", bw.reg.len()),
	)
	return n, nil
}

func (bw *BitWriter) emit(p []byte) error {
	n, err := bw.stream.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

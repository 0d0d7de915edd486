package shared

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/spacemeshos/bitio/bitstream"
)

// chunkBits is the widest byte-aligned field that fits in a single bitstream call.
const chunkBits = bitstream.MaxFieldWidth / 8 * 8

// splitBits is where integers wider than bitstream.MaxFieldWidth are split.
const splitBits = 32

// FieldReader reads a stream of fixed-width items laid out LSB first.
// Byte-granular widths bypass the bit register and read the source directly;
// both paths see the same wire format.
type FieldReader struct {
	width uint
	rd    io.Reader
	br    *bitstream.BitReader
	buf   [8]byte
}

func NewFieldReader(rd io.Reader, width uint, opts ...bitstream.ReaderOpt) (*FieldReader, error) {
	if width == 0 {
		return nil, fmt.Errorf("%w: field width must be positive", bitstream.ErrInvalidArgument)
	}

	fr := &FieldReader{width: width, rd: rd}
	if width%8 != 0 {
		fr.br = bitstream.NewReader(rd, opts...)
	}
	return fr, nil
}

// Width returns the item width in bits.
func (fr *FieldReader) Width() uint {
	return fr.width
}

// ReadUint reads the next item as an unsigned integer. The width must not exceed 64 bits.
func (fr *FieldReader) ReadUint() (uint64, error) {
	if fr.width > 64 {
		return 0, fmt.Errorf("%w: ReadUint: %d bits do not fit in uint64", bitstream.ErrInvalidArgument, fr.width)
	}

	if fr.br == nil {
		fr.buf = [8]byte{}
		if _, err := io.ReadFull(fr.rd, fr.buf[:fr.width/8]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(fr.buf[:]), nil
	}

	if fr.width <= bitstream.MaxFieldWidth {
		return fr.br.ReadBits(fr.width)
	}
	lo, err := fr.br.ReadBits(splitBits)
	if err != nil {
		return 0, err
	}
	hi, err := fr.br.ReadBits(fr.width - splitBits)
	if err != nil {
		return 0, err
	}
	return lo | hi<<splitBits, nil
}

// ReadNext reads the next item into (width+7)/8 bytes, in little-endian order.
// The unused MS bits of the last byte are zero.
func (fr *FieldReader) ReadNext() ([]byte, error) {
	item := make([]byte, (fr.width+7)/8)
	if fr.br == nil {
		if _, err := io.ReadFull(fr.rd, item); err != nil {
			return nil, err
		}
		return item, nil
	}

	var off uint
	for remaining := fr.width; remaining > 0; {
		n := min(remaining, chunkBits)
		v, err := fr.br.ReadBits(n)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(fr.buf[:], v)
		off += uint(copy(item[off:], fr.buf[:(n+7)/8]))
		remaining -= n
	}
	return item, nil
}

// FieldWriter writes a stream of fixed-width items, LSB first.
// Call Flush once done, to emit the trailing partial byte.
type FieldWriter struct {
	width uint
	w     io.Writer
	bw    *bitstream.BitWriter
	buf   [8]byte
}

func NewFieldWriter(w io.Writer, width uint, opts ...bitstream.WriterOpt) (*FieldWriter, error) {
	if width == 0 {
		return nil, fmt.Errorf("%w: field width must be positive", bitstream.ErrInvalidArgument)
	}

	fw := &FieldWriter{width: width, w: w}
	if width%8 != 0 {
		fw.bw = bitstream.NewWriter(w, opts...)
	}
	return fw, nil
}

// Width returns the item width in bits.
func (fw *FieldWriter) Width() uint {
	return fw.width
}

// WriteUint writes v as the next item. v must fit in the item width, which must not exceed 64 bits.
func (fw *FieldWriter) WriteUint(v uint64) error {
	if fw.width > 64 {
		return fmt.Errorf("%w: WriteUint: %d bits do not fit in uint64", bitstream.ErrInvalidArgument, fw.width)
	}
	if fw.width < 64 && v>>fw.width != 0 {
		return fmt.Errorf("%w: WriteUint: value %#x does not fit in %d bits", bitstream.ErrInvalidArgument, v, fw.width)
	}

	if fw.bw == nil {
		binary.LittleEndian.PutUint64(fw.buf[:], v)
		return fw.emit(fw.buf[:fw.width/8])
	}

	if fw.width <= bitstream.MaxFieldWidth {
		return fw.bw.WriteBits(v, fw.width)
	}
	if err := fw.bw.WriteBits(v&(1<<splitBits-1), splitBits); err != nil {
		return err
	}
	return fw.bw.WriteBits(v>>splitBits, fw.width-splitBits)
}

// Write writes item as the next item. item holds (width+7)/8 bytes in little-endian
// order; the unused MS bits of its last byte are ignored.
func (fw *FieldWriter) Write(item []byte) error {
	if uint(len(item)) != (fw.width+7)/8 {
		return fmt.Errorf("%w: Write: expected %d bytes, given: %d",
			bitstream.ErrInvalidArgument, (fw.width+7)/8, len(item))
	}

	if fw.bw == nil {
		return fw.emit(item)
	}

	var off uint
	for remaining := fw.width; remaining > 0; {
		n := min(remaining, chunkBits)
		fw.buf = [8]byte{}
		off += uint(copy(fw.buf[:], item[off:off+(n+7)/8]))
		v := binary.LittleEndian.Uint64(fw.buf[:])
		if n < 64 {
			v &= 1<<n - 1
		}
		if err := fw.bw.WriteBits(v, n); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// Flush pads the trailing partial byte with zeros and writes it.
func (fw *FieldWriter) Flush() error {
	if fw.bw == nil {
		return nil
	}
	return fw.bw.Flush()
}

func (fw *FieldWriter) emit(p []byte) error {
	n, err := fw.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

// Package bitstream provides wrappers for io.Writer and io.Reader to allow
// bit-granularity access to the stream, following the LSB pattern, where
// least-significant bits are written/read first.
//
// Both BitReader and BitWriter buffer bits in a 64-bit accumulator register.
// A field of up to MaxFieldWidth bits is read or written as a unit, and its
// low-order bit is the first bit in the stream. For example, reading the
// single byte 0b10110010 as a 3-bit field followed by a 5-bit field yields
// 0b010 and then 0b10110.
//
// A BitWriter holds sub-byte leftovers until it is flushed. Use Close (or
// WithWriter) so that trailing bits are emitted on every exit path.
package bitstream

type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)

const (
	// RegisterWidth is the width of the bit accumulator, in bits.
	RegisterWidth = 64

	// MaxFieldWidth is the widest field ReadBits and WriteBits accept.
	// One byte of slack is kept free so a refill never overflows the register.
	MaxFieldWidth = RegisterWidth - 8
)

// State describes how many bits an accumulator holds relative to a request.
type State int

const (
	// Empty means no bits are buffered.
	Empty State = iota
	// Partial means some bits are buffered, but not enough for a full operation.
	Partial
	// Ready means the buffered bits satisfy the requested operation.
	Ready
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Partial:
		return "partial"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

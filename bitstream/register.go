package bitstream

// register is the bit accumulator shared by BitReader and BitWriter.
// Bits [start, end) are live; bits below start were already consumed
// (or emitted) and bits at end and above are always zero.
type register struct {
	bits  uint64
	start uint
	end   uint
}

// len returns the number of live bits.
func (r *register) len() uint {
	return r.end - r.start
}

// push appends the n low-order bits of v above the live bits.
func (r *register) push(v uint64, n uint) {
	r.bits |= (v & mask(n)) << r.end
	r.end += n
}

// peek returns the next n live bits without consuming them.
func (r *register) peek(n uint) uint64 {
	return (r.bits >> r.start) & mask(n)
}

// consume marks the next n live bits as spent.
func (r *register) consume(n uint) {
	r.start += n
	r.normalize()
}

// normalize drops spent bits once the register is fully spent,
// or once at least a whole byte of it is.
func (r *register) normalize() {
	switch {
	case r.start == r.end:
		r.reset()
	case r.start >= 8:
		r.compact()
	}
}

// compact shifts out all spent bits.
func (r *register) compact() {
	r.bits >>= r.start
	r.end -= r.start
	r.start = 0
}

func (r *register) reset() {
	r.bits, r.start, r.end = 0, 0, 0
}

func (r *register) state(n uint) State {
	switch l := r.len(); {
	case l == 0:
		return Empty
	case l < n:
		return Partial
	default:
		return Ready
	}
}

func mask(n uint) uint64 {
	if n >= RegisterWidth {
		return ^uint64(0)
	}
	return 1<<n - 1
}

// byteAt returns the i-th whole byte above start.
func (r *register) byteAt(i uint) byte {
	return byte(r.bits >> (r.start + 8*i))
}

package engine

import (
	"fmt"
	"math"
)

// Value is a single machine word holding exactly one of: double, int32,
// bool, undefined, null, deleted, or a reference to a heap object.
//
// Construction and bit layout follow shifted-NaN-boxing: see tag.go.
// Value is deliberately comparable (a plain uint64 under the hood) so it
// can be copied freely, used as a map key, and compared with ==. Raw-bit
// equality is correct except for strings, where two distinct String
// objects with identical content must also compare equal; that exception
// is implemented by Engine.ValuesEqual, not by Go's == operator.
type Value struct {
	raw uint64
}

// Handle is a stable reference to a live heap object. Handle 0 is never valid.
type Handle uint64

func (v Value) tag() int64 {
	return int64(v.raw) >> tagBitShift
}

// Raw returns the bit pattern backing v. Two Values with equal Raw are
// always equal under Engine.ValuesEqual; the converse does not hold for strings.
func (v Value) Raw() uint64 { return v.raw }

// Hash returns a hash derived purely from the raw bits, matching the
// original runtime's std::hash<Val> (hash of raw()). It does not fold
// content-equal strings to the same bucket; see Engine.ValuesEqual.
func (v Value) Hash() uint64 {
	h := v.raw
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// IsHeap reports whether the word's low 48 bits address a heap object.
func (v Value) IsHeap() bool {
	return v.tag() == tagBitsPointer
}

// IsInt32 reports whether the word holds an unboxed int32.
func (v Value) IsInt32() bool {
	return v.tag() == tagBitsInt32
}

// IsDouble reports whether the word holds an unboxed double. The doubles
// whose biased bits collide with the pointer or int32 tag (-Infinity,
// negative NaNs, finite doubles at or below about -1.74e308) are
// represented as boxed heap doubles instead; IsDouble is false for them
// (see Engine.IsNumber / Engine.ToNumber, which also look at the heap).
func (v Value) IsDouble() bool {
	t := v.tag()
	return t != tagBitsPointer && t != tagBitsInt32
}

// Handle returns the heap handle encoded in v. Only meaningful when IsHeap.
func (v Value) Handle() Handle {
	return Handle(v.raw & handleMask)
}

// AsInt32 returns the unboxed int32 payload. Only meaningful when IsInt32.
func (v Value) AsInt32() int32 {
	return int32(uint32(v.raw))
}

// AsDouble returns the unboxed double payload. Only meaningful when IsDouble.
func (v Value) AsDouble() float64 {
	bits := uint64(int64(v.raw) - tagShift)
	return math.Float64frombits(bits)
}

// valueFromHandle packs a heap handle into a Value. Handles are always
// small enough to fit the low 48 bits, so the pointer tag falls out for free.
func valueFromHandle(h Handle) Value {
	if h == 0 {
		panic("engine: valueFromHandle(0)")
	}
	return Value{raw: uint64(h) & handleMask}
}

// NewInt32 returns a Value for n. int32 always fits the NaN-boxing int
// payload, so this never allocates.
func NewInt32(n int32) Value {
	return Value{raw: uint64(uint32(n)) | uint64(uint16(tagBitsInt32&0xFFFF))<<tagBitShift}
}

func isNegativeInfinity(d float64) bool {
	return math.IsInf(d, -1)
}

// tagDoubleBits biases d's IEEE-754 bit pattern into the NaN-box double
// range. For -Infinity, negative NaNs and finite doubles at or below
// about -1.74e308 the result carries the pointer or int32 tag instead;
// Engine.NewDouble checks for that and heap-boxes those doubles.
func tagDoubleBits(d float64) uint64 {
	return uint64(int64(math.Float64bits(d)) + tagShift)
}

func (v Value) String() string {
	switch {
	case v.IsInt32():
		return fmt.Sprintf("%d", v.AsInt32())
	case v.IsDouble():
		return fmt.Sprintf("%v", v.AsDouble())
	case v.IsHeap():
		return fmt.Sprintf("<heap#%d>", v.Handle())
	default:
		return "<invalid>"
	}
}

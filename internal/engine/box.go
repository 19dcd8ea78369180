package engine

import "fmt"

// sigilTag identifies which of the five process-wide singletons a
// Box[sigil] represents. Only used by the zero-field sigil kinds;
// Box[bool]/Box[int32]/Box[double] carry their payload directly.
type sigilTag uint8

const (
	sigilUndefined sigilTag = iota
	sigilNull
	sigilDeleted
)

// boxSigil is the heap object backing the undefined/null/deleted
// singletons. It carries no payload beyond which sigil it is.
type boxSigil struct {
	header
	tag sigilTag
}

func (b *boxSigil) Kind() ObjectKind {
	switch b.tag {
	case sigilUndefined:
		return KindBoxUndefined
	case sigilNull:
		return KindBoxNull
	default:
		return KindBoxDeleted
	}
}

func (b *boxSigil) TraceOutgoing(func(Value)) {}

func (b *boxSigil) TypeOfTag() string {
	if b.tag == sigilUndefined {
		return "undefined"
	}
	return "object"
}

func (b *boxSigil) Dump() string {
	switch b.tag {
	case sigilUndefined:
		return "undefined"
	case sigilNull:
		return "null"
	default:
		return "<deleted>"
	}
}

// boxBool is the heap object backing the true/false singletons.
type boxBool struct {
	header
	val bool
}

func (b *boxBool) Kind() ObjectKind            { return KindBoxBool }
func (b *boxBool) TraceOutgoing(func(Value))   {}
func (b *boxBool) TypeOfTag() string           { return "boolean" }
func (b *boxBool) Dump() string                { return fmt.Sprintf("%t", b.val) }

// boxInt32 heap-boxes an int32. Under shifted-NaN-boxing Value always
// unboxes int32 (see NewInt32), so no allocation path in this package
// creates one; the kind is kept for parity with the original runtime's
// Box<int32_t>, and IsNumber/ToNumber/snapshots still recognize it.
type boxInt32 struct {
	header
	val int32
}

func (b *boxInt32) Kind() ObjectKind          { return KindBoxInt32 }
func (b *boxInt32) TraceOutgoing(func(Value)) {}
func (b *boxInt32) TypeOfTag() string         { return "number" }
func (b *boxInt32) Dump() string              { return fmt.Sprintf("%d", b.val) }

// boxDouble heap-boxes a double. Value construction boxes only the
// doubles whose biased bits collide with the pointer or int32 tag:
// -Infinity, negative NaNs, and finite doubles at or below about
// -1.74e308 (see tag.go, value.go).
type boxDouble struct {
	header
	val float64
}

func (b *boxDouble) Kind() ObjectKind          { return KindBoxDouble }
func (b *boxDouble) TraceOutgoing(func(Value)) {}
func (b *boxDouble) TypeOfTag() string         { return "number" }
func (b *boxDouble) Dump() string              { return fmt.Sprintf("%v", b.val) }

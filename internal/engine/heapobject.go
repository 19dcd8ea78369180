package engine

// ObjectKind identifies the concrete kind of a heap object without a
// type switch or virtual call.
type ObjectKind uint8

const (
	KindBoxUndefined ObjectKind = iota
	KindBoxNull
	KindBoxDeleted
	KindBoxBool
	KindBoxInt32
	KindBoxDouble
	KindString
	KindSymbol
	KindCell
	KindLegacyScope
	KindObject
	KindFunction
	KindFrame
)

func (k ObjectKind) String() string {
	switch k {
	case KindBoxUndefined:
		return "box(undefined)"
	case KindBoxNull:
		return "box(null)"
	case KindBoxDeleted:
		return "box(deleted)"
	case KindBoxBool:
		return "box(bool)"
	case KindBoxInt32:
		return "box(int32)"
	case KindBoxDouble:
		return "box(double)"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindCell:
		return "cell"
	case KindLegacyScope:
		return "legacy-scope"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// HeapObject is the common interface every GC-managed allocation
// implements. It carries the GC mark bit and the "mark my outgoing
// references" hook; subtype-specific state lives in the concrete type.
type HeapObject interface {
	Kind() ObjectKind
	// TraceOutgoing invokes mark on every Value this object directly holds.
	TraceOutgoing(mark func(Value))
	// TypeOfTag returns the typeof() string for this object's kind, used
	// by Value/Engine type predicates for heap-resident values.
	TypeOfTag() string
	// Dump renders a short human-readable description for diagnostics.
	Dump() string

	isMarked() bool
	setMarked(bool)
}

// header is embedded by every concrete HeapObject to provide the mark
// bit. It is never exposed outside this package.
type header struct {
	marked bool
}

func (h *header) isMarked() bool    { return h.marked }
func (h *header) setMarked(m bool)  { h.marked = m }

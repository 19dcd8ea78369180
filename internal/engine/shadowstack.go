package engine

// shadowStack is a fixed-capacity array of Value slots that the GC scans
// as roots. Generated code cannot rely on the host's native call stack
// being scannable (especially under a Wasm target), so every
// heap-referencing local it creates must be deposited here instead.
//
// The backing array is allocated once at its final capacity and never
// grows, so a slot's address stays valid for as long as the slot itself
// is logically on the stack (between its push and the matching PopTo).
type shadowStack struct {
	slots []Value
	top   int
}

func newShadowStack(capacity int) *shadowStack {
	return &shadowStack{slots: make([]Value, capacity)}
}

// push appends v and returns a pointer to its slot. The pointer is
// stable until the slot is popped by PopTo.
func (s *shadowStack) push(v Value) *Value {
	if s.top >= len(s.slots) {
		panic("engine: shadow stack overflow")
	}
	s.slots[s.top] = v
	p := &s.slots[s.top]
	s.top++
	return p
}

// popTo resets top to base; slots above base are invalid from that instant.
// base must lie within [0, top]: anything else means a Scope/ReturnScope/
// ArgList was closed out of order or twice.
func (s *shadowStack) popTo(base int) (ok bool) {
	if base < 0 || base > s.top {
		return false
	}
	s.top = base
	return true
}

// roots returns the live region of the stack for GC marking.
func (s *shadowStack) roots() []Value {
	return s.slots[:s.top]
}

// Local is an owning reference to a shadow-stack slot. Reads and writes
// go through the slot itself, so any intervening GC sees the latest
// value. A Local must never outlive the Scope that produced its push,
// must never be heap-allocated by caller code, and must never be
// returned across a Scope exit except via ReturnScope.Escape.
type Local struct {
	slot *Value
}

// Get returns the slot's current value.
func (l Local) Get() Value {
	return *l.slot
}

// Set overwrites the slot's value.
func (l Local) Set(v Value) {
	*l.slot = v
}

// PushLocal appends v to the shadow stack and returns a Local bound to
// its slot.
func (e *Engine) PushLocal(v Value) Local {
	return Local{slot: e.stack.push(v)}
}

// PopTo resets the shadow stack to base. Scope/ReturnScope/ArgList call
// this on exit; generated code should not call it directly. base coming
// from anywhere other than a prior Top() is a misuse bug, so an
// out-of-range base aborts rather than silently clamping.
func (e *Engine) PopTo(base int) {
	if !e.stack.popTo(base) {
		e.abort(FaultNegativeStackBase, "PopTo given a base outside the live shadow stack range")
	}
}

// Top returns the current shadow-stack top, to be handed to a later PopTo.
func (e *Engine) Top() int {
	return e.stack.top
}

// Retained is a Local known to hold a pointer to a heap object of
// concrete kind T (a *jsString, *jsObject, and so on), with Deref giving
// back that concrete type instead of the opaque Value/HeapObject
// interface. It exists for engine-internal code (Function bodies using
// TypedReturnScope) that wants typed access without repeating type
// assertions at every use site.
type Retained[T HeapObject] struct {
	local Local
}

func newRetained[T HeapObject](l Local) Retained[T] {
	return Retained[T]{local: l}
}

// Value returns the underlying Value, usable anywhere a plain Local would be.
func (r Retained[T]) Value() Value {
	return r.local.Get()
}

// Deref resolves the retained handle back to its concrete heap object.
// It aborts (FaultInvalidHandle/FaultWrongKind) if the handle is stale
// or was never of kind T; both indicate a bug in this package, not in
// caller code, since Retained is only ever constructed internally.
func (r Retained[T]) Deref(e *Engine) T {
	v := r.local.Get()
	if !v.IsHeap() {
		e.abort(FaultWrongKind, "retained value is not heap-resident")
	}
	obj, ok := e.heap.get(v.Handle())
	if !ok {
		e.abort(FaultInvalidHandle, "retained handle is not live")
	}
	t, ok := obj.(T)
	if !ok {
		e.abort(FaultWrongKind, "retained value is not of the expected kind")
	}
	return t
}

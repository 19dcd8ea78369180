package engine

// Scope is the RAII-like guard for any function that allocates locals:
// it records the shadow-stack top at construction, and Close resets the
// stack back to that point, reclaiming every Local pushed while the
// Scope was open. Go has no destructors, so callers must `defer
// scope.Close()` immediately after NewScope.
type Scope struct {
	e    *Engine
	base int
}

// NewScope opens a scope rooted at the current shadow-stack top.
func (e *Engine) NewScope() *Scope {
	return &Scope{e: e, base: e.Top()}
}

// Close pops the shadow stack back to the scope's entry point.
func (s *Scope) Close() {
	s.e.PopTo(s.base)
}

// ReturnScope is used by any function that returns a Value. Construction
// order matters: one slot is reserved on the *parent* stack region
// first, then an inner Scope is opened. Escape writes the function's
// result into the reserved slot; Close (deferred by the caller, run
// after Escape's return statement evaluates its argument) then pops only
// the inner scope, leaving the reserved slot alive in the parent's region.
type ReturnScope struct {
	ret   Local
	inner *Scope
}

// NewReturnScope reserves a parent-stack return slot and opens an inner scope.
func (e *Engine) NewReturnScope() *ReturnScope {
	ret := e.PushLocal(e.Undefined())
	return &ReturnScope{ret: ret, inner: e.NewScope()}
}

// Escape copies v into the reserved parent slot and returns a handle to it.
func (r *ReturnScope) Escape(v Value) Local {
	r.ret.Set(v)
	return r.ret
}

// Close pops the inner scope only; the reserved return slot survives.
func (r *ReturnScope) Close() {
	r.inner.Close()
}

// TypedReturnScope is a ReturnScope whose Escape hands back a Retained[T]
// instead of a bare Local, for callers that want type-directed access to
// the escaped value without a separate assertion.
type TypedReturnScope[T HeapObject] struct {
	rs *ReturnScope
}

// NewTypedReturnScope opens a TypedReturnScope. It cannot be an Engine
// method: Go does not allow a method to introduce its own type
// parameters beyond its receiver's.
func NewTypedReturnScope[T HeapObject](e *Engine) *TypedReturnScope[T] {
	return &TypedReturnScope[T]{rs: e.NewReturnScope()}
}

// Escape copies v into the reserved parent slot and returns it typed as T.
func (r *TypedReturnScope[T]) Escape(v Value) Retained[T] {
	return newRetained[T](r.rs.Escape(v))
}

// Close pops the inner scope only; the reserved return slot survives.
func (r *TypedReturnScope[T]) Close() {
	r.rs.Close()
}

// ArgList is the callee-owned view of a contiguous run of argument
// Values the caller pushed onto the shadow stack, padded with undefined
// up to the callee's declared arity. Argument i is addressed by index
// directly on the stack; Close pops the whole run.
type ArgList struct {
	e      *Engine
	base   int
	n      int // arguments actually supplied by the caller
	padded int // n, or arity if arity is larger
}

// pushArgs pushes values as a contiguous run, padded with undefined up
// to arity, and returns the ArgList token the callee will own. Called by
// Engine.Call on the caller's behalf with the callee's declared arity.
func (e *Engine) pushArgs(values []Value, arity int) *ArgList {
	base := e.Top()
	for _, v := range values {
		e.PushLocal(v)
	}
	padded := len(values)
	for padded < arity {
		e.PushLocal(e.undefinedVal)
		padded++
	}
	return &ArgList{e: e, base: base, n: len(values), padded: padded}
}

// Size returns the number of arguments actually supplied by the caller
// (which may be less than the callee's declared arity).
func (a *ArgList) Size() int {
	return a.n
}

// At returns argument i. Indices below the supplied count return the
// caller's value; indices at or beyond it, up to the declared arity,
// return undefined. Only an index outside [0, max(supplied, arity)) is a
// misuse fault.
func (a *ArgList) At(i int) Value {
	if i < 0 || i >= a.padded {
		a.e.abort(FaultArityMismatch, "argument index out of range")
	}
	return a.e.stack.slots[a.base+i]
}

// paddedSlice returns the whole padded argument run, supplied values
// followed by any undefined padding, for Call to copy into the Frame.
func (a *ArgList) paddedSlice() []Value {
	return a.e.stack.slots[a.base : a.base+a.padded]
}

// Close pops the argument run from the shadow stack.
func (a *ArgList) Close() {
	a.e.PopTo(a.base)
}

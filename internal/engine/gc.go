package engine

// GC runs a synchronous, non-moving mark-and-sweep cycle. Roots are the
// five sigil singletons, the global root object, the current frame chain,
// and every Value slot currently live on the shadow stack.
func (e *Engine) GC() {
	e.mark()
	e.sweep()
}

func (e *Engine) mark() {
	e.markValue(e.undefinedVal)
	e.markValue(e.nullVal)
	e.markValue(e.deletedVal)
	e.markValue(e.trueVal)
	e.markValue(e.falseVal)

	if e.rootHandle != 0 {
		e.markValue(valueFromHandle(e.rootHandle))
	}

	if e.currentFrame != 0 {
		e.markValue(valueFromHandle(e.currentFrame))
	}

	for _, v := range e.stack.roots() {
		e.markValue(v)
	}
}

// markValue marks v's referent (a no-op for non-heap values) and, the
// first time an object is marked, recurses into its outgoing references.
// This is depth-first and stack-recursive; cycles in the object graph
// (property maps and prototype chains both form them routinely)
// terminate correctly because the mark bit check happens before recursing.
func (e *Engine) markValue(v Value) {
	if !v.IsHeap() {
		return
	}
	h := v.Handle()
	if h == 0 {
		// Handle 0 is never valid (value.go); a zero-valued Value slot
		// (an unset struct field, never an allocated object) reads as a
		// heap tag with handle 0 and must trace as nothing.
		return
	}
	obj, ok := e.heap.get(h)
	if !ok {
		// A root pointing outside the live set is a bug in this package,
		// not a recoverable condition.
		e.abort(FaultInvalidHandle, "GC root references a handle with no live object")
		return
	}
	if obj.isMarked() {
		return
	}
	obj.setMarked(true)
	obj.TraceOutgoing(e.markValue)
}

// sweep removes every unmarked object from the live set and clears the
// mark bit on survivors. Dead handles are collected into a temporary
// slice first so the live set can be mutated safely while iterating it.
func (e *Engine) sweep() {
	dead := make([]Handle, 0)
	for h, obj := range e.heap.objs {
		if obj.isMarked() {
			obj.setMarked(false)
		} else {
			dead = append(dead, h)
		}
	}
	for _, h := range dead {
		delete(e.heap.objs, h)
	}
}

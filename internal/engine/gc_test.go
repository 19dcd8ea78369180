package engine

import "testing"

func TestGCCollectsUnreachableObject(t *testing.T) {
	e := newTestEngine(t)
	before := e.heap.count()

	// Allocate an object with nothing on the shadow stack referencing it.
	e.NewObject(e.Undefined())
	duringAlloc := e.heap.count()
	if duringAlloc != before+1 {
		t.Fatalf("allocation did not grow the heap: before=%d after=%d", before, duringAlloc)
	}

	e.GC()
	after := e.heap.count()
	if after != before {
		t.Fatalf("GC did not collect the unreachable object: before=%d after=%d", before, after)
	}
}

func TestGCKeepsShadowStackRoots(t *testing.T) {
	e := newTestEngine(t)
	scope := e.NewScope()
	defer scope.Close()

	local := e.PushLocal(e.NewObject(e.Undefined()))
	e.GC()

	v := local.Get()
	if !v.IsHeap() {
		t.Fatalf("rooted local lost its value across GC")
	}
	if _, ok := e.heap.get(v.Handle()); !ok {
		t.Fatalf("rooted local's object was collected")
	}
}

func TestGCKeepsPrototypeChainOfARoot(t *testing.T) {
	e := newTestEngine(t)
	scope := e.NewScope()
	defer scope.Close()

	parent := e.NewObject(e.Undefined())
	key := e.NewString("marker")
	e.SetProperty(parent, key, NewInt32(55))

	// Only the child is rooted; the parent is reachable solely through
	// the child's prototype link, which TraceOutgoing must walk.
	child := e.PushLocal(e.NewObject(parent))

	e.GC()

	got := e.GetProperty(child.Get(), key)
	if got.AsInt32() != 55 {
		t.Fatalf("prototype reachable only through a rooted child was collected: %v", e.DumpValue(got))
	}
}

func TestGCKeepsCellCapturedByRootedFunction(t *testing.T) {
	e := newTestEngine(t)
	scope := e.NewScope()
	defer scope.Close()

	cellVal := e.NewCell(NewInt32(1))
	fn := e.PushLocal(e.NewFunction("readCell", 0, []Handle{cellVal.Handle()}, func(e *Engine, self *Value, this Value, args *ArgList) Local {
		rs := e.NewReturnScope()
		defer rs.Close()
		obj, _ := e.heap.get(self.Handle())
		captured := obj.(*jsFunction).captures[0]
		return rs.Escape(e.CellGet(valueFromHandle(captured)))
	}))

	// cellVal was never pushed onto the shadow stack; only the Function's
	// capture list keeps the Cell alive from here on.
	e.GC()

	result := e.Call(fn.Get(), e.Undefined(), nil)
	if got := result.Get(); got.AsInt32() != 1 {
		t.Fatalf("captured Cell was collected despite being reachable from a rooted Function: %v", e.DumpValue(got))
	}
}

func TestForceGCStressesEveryAllocation(t *testing.T) {
	e := NewEngine(Options{ShadowStackSize: 256, ForceGC: true})
	e.OnAbort = func(f *Fault) { t.Fatalf("unexpected abort: %v", f) }

	scope := e.NewScope()
	defer scope.Close()

	obj := e.PushLocal(e.NewObject(e.Undefined()))
	for i := 0; i < 50; i++ {
		// Every SetProperty value allocation (the String key) triggers a
		// GC under ForceGC; obj must survive all of them via the shadow stack.
		e.SetProperty(obj.Get(), e.NewString("k"), NewInt32(int32(i)))
	}
	if got := e.GetProperty(obj.Get(), e.NewString("k")); got.AsInt32() != 49 {
		t.Fatalf("object did not survive repeated forced GC: %v", e.DumpValue(got))
	}
}

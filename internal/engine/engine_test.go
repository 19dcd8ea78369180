package engine

import "testing"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(Options{ShadowStackSize: 256, GCThreshold: 1 << 30})
	e.OnAbort = func(f *Fault) {
		t.Fatalf("unexpected abort: %v", f)
	}
	return e
}

func TestSigilsAreDistinctAndStable(t *testing.T) {
	e := newTestEngine(t)
	if e.Undefined().Raw() == e.Null().Raw() {
		t.Fatalf("Undefined and Null collide")
	}
	if !e.IsUndefined(e.Undefined()) {
		t.Fatalf("IsUndefined(Undefined()) is false")
	}
	if !e.IsNull(e.Null()) {
		t.Fatalf("IsNull(Null()) is false")
	}
	if !e.IsDeleted(e.Deleted()) {
		t.Fatalf("IsDeleted(Deleted()) is false")
	}
	if !e.IsBool(e.True()) || !e.IsBool(e.False()) {
		t.Fatalf("IsBool sigils not recognized")
	}
	if e.ToNumber(e.True()) != 1 || e.ToNumber(e.False()) != 0 {
		t.Fatalf("bool ToNumber coercion wrong")
	}
}

func TestStringContentEquality(t *testing.T) {
	e := newTestEngine(t)
	a := e.NewString("hello")
	b := e.NewString("hello")
	if a.Raw() == b.Raw() {
		t.Fatalf("two distinct NewString calls produced the same handle")
	}
	if !e.ValuesEqual(a, b) {
		t.Fatalf("content-equal strings should compare equal under ValuesEqual")
	}
	c := e.NewString("world")
	if e.ValuesEqual(a, c) {
		t.Fatalf("content-different strings compared equal")
	}
}

func TestObjectPropertyRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	obj := e.NewObject(e.Undefined())
	key := e.NewString("x")
	if got := e.GetProperty(obj, key); !e.IsUndefined(got) {
		t.Fatalf("missing property should read as undefined, got %v", e.DumpValue(got))
	}
	e.SetProperty(obj, key, NewInt32(7))
	if got := e.GetProperty(obj, key); got.AsInt32() != 7 {
		t.Fatalf("GetProperty after SetProperty = %v", e.DumpValue(got))
	}
	// A second String with the same content must address the same slot.
	if got := e.GetProperty(obj, e.NewString("x")); got.AsInt32() != 7 {
		t.Fatalf("content-equal key did not find the same property")
	}
	if !e.DeleteProperty(obj, key) {
		t.Fatalf("DeleteProperty reported false for a property that existed")
	}
	if got := e.GetProperty(obj, key); !e.IsUndefined(got) {
		t.Fatalf("property should read undefined after delete, got %v", e.DumpValue(got))
	}
}

func TestPrototypeChainLookup(t *testing.T) {
	e := newTestEngine(t)
	depth := 5
	proto := e.Undefined()
	var chain []Value
	for i := 0; i < depth; i++ {
		o := e.NewObject(proto)
		chain = append(chain, o)
		proto = o
	}
	// Set a property only on the root-most ancestor.
	rootKey := e.NewString("ancestor")
	e.SetProperty(chain[0], rootKey, NewInt32(123))

	leaf := chain[depth-1]
	if got := e.GetProperty(leaf, rootKey); got.AsInt32() != 123 {
		t.Fatalf("deep prototype lookup failed: got %v", e.DumpValue(got))
	}

	// Shadowing: set the same key on the leaf; it must not affect the ancestor.
	e.SetProperty(leaf, rootKey, NewInt32(999))
	if got := e.GetProperty(leaf, rootKey); got.AsInt32() != 999 {
		t.Fatalf("own property did not shadow the inherited one")
	}
	if got := e.GetProperty(chain[0], rootKey); got.AsInt32() != 123 {
		t.Fatalf("shadowing on the leaf mutated the ancestor: got %v", e.DumpValue(got))
	}
}

func TestSymbolKeysAreIdentityNotContent(t *testing.T) {
	e := newTestEngine(t)
	obj := e.NewObject(e.Undefined())
	s1 := e.NewSymbol("tag")
	s2 := e.NewSymbol("tag")
	e.SetProperty(obj, s1, NewInt32(1))
	e.SetProperty(obj, s2, NewInt32(2))
	if got := e.GetProperty(obj, s1); got.AsInt32() != 1 {
		t.Fatalf("s1 lookup returned %v", e.DumpValue(got))
	}
	if got := e.GetProperty(obj, s2); got.AsInt32() != 2 {
		t.Fatalf("s2 lookup returned %v", e.DumpValue(got))
	}
}

func TestConcatStrings(t *testing.T) {
	e := newTestEngine(t)
	a := e.NewString("work")
	b := e.NewString("play")
	got := e.ConcatStrings(a, b)
	if e.ToString(got) != "workplay" {
		t.Fatalf("ConcatStrings = %q, want %q", e.ToString(got), "workplay")
	}
}

func TestCallWithArityPadding(t *testing.T) {
	e := newTestEngine(t)
	var sawSize int
	var sawThird Value
	fn := e.NewFunction("describeArgs", 3, nil, func(e *Engine, self *Value, this Value, args *ArgList) Local {
		rs := e.NewReturnScope()
		defer rs.Close()
		sawSize = args.Size()
		sawThird = args.At(2)
		return rs.Escape(NewInt32(args.At(0).AsInt32() + args.At(1).AsInt32()))
	})

	result := e.Call(fn, e.Undefined(), []Value{NewInt32(3), NewInt32(4)})
	if got := result.Get(); got.AsInt32() != 7 {
		t.Fatalf("under-supplied call = %v, want 7", e.DumpValue(got))
	}
	if sawSize != 2 {
		t.Fatalf("args.Size() = %d, want 2 (the supplied count, not the declared arity)", sawSize)
	}
	if !e.IsUndefined(sawThird) {
		t.Fatalf("args.At(2) = %v, want undefined (padded up to the declared arity of 3)", e.DumpValue(sawThird))
	}
}

func TestArgListAtAbortsBeyondDeclaredArity(t *testing.T) {
	e := newTestEngine(t)
	var fault *Fault
	e.OnAbort = func(f *Fault) { fault = f; panic(f) }

	fn := e.NewFunction("unary", 1, nil, func(e *Engine, self *Value, this Value, args *ArgList) Local {
		rs := e.NewReturnScope()
		defer rs.Close()
		return rs.Escape(args.At(1)) // one past the declared arity
	})

	func() {
		defer func() { recover() }()
		e.Call(fn, e.Undefined(), []Value{NewInt32(1)})
	}()
	if fault == nil || fault.Code != FaultArityMismatch {
		t.Fatalf("expected FaultArityMismatch, got %v", fault)
	}
}

func TestPopToOutOfRangeBaseAborts(t *testing.T) {
	e := newTestEngine(t)
	var fault *Fault
	e.OnAbort = func(f *Fault) { fault = f; panic(f) }

	base := e.Top()
	e.PushLocal(NewInt32(1))

	func() {
		defer func() { recover() }()
		e.PopTo(base + 5) // above top: double-close or out-of-order Scope
	}()
	if fault == nil || fault.Code != FaultNegativeStackBase {
		t.Fatalf("expected FaultNegativeStackBase, got %v", fault)
	}
}

func TestAllocOnUnreadyEngineAborts(t *testing.T) {
	var e Engine
	var fault *Fault
	e.OnAbort = func(f *Fault) { fault = f; panic(f) }

	func() {
		defer func() { recover() }()
		e.NewString("never gets here")
	}()
	if fault == nil || fault.Code != FaultEngineNotReady {
		t.Fatalf("expected FaultEngineNotReady, got %v", fault)
	}
}

func TestCallOnNonFunctionAborts(t *testing.T) {
	e := NewEngine(Options{ShadowStackSize: 64})
	var caught *Fault
	e.OnAbort = func(f *Fault) { caught = f; panic(f) }

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected abort to panic")
		}
		if caught == nil || caught.Code != FaultNotCallable {
			t.Fatalf("expected FaultNotCallable, got %v", caught)
		}
	}()
	e.Call(NewInt32(5), e.Undefined(), nil)
}

func TestTypeOfAndPredicates(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		v    Value
		want string
	}{
		{NewInt32(1), "number"},
		{e.NewDouble(1.5), "number"},
		{e.NewString("s"), "string"},
		{e.NewSymbol("s"), "symbol"},
		{e.Undefined(), "undefined"},
		{e.NewObject(e.Undefined()), "object"},
	}
	for _, c := range cases {
		if got := e.TypeOf(c.v); got != c.want {
			t.Fatalf("TypeOf(%v) = %q, want %q", e.DumpValue(c.v), got, c.want)
		}
	}
}

package engine

import "testing"

func TestScopeClosePopsExactlyItsOwnLocals(t *testing.T) {
	e := newTestEngine(t)
	base := e.Top()

	outer := e.NewScope()
	e.PushLocal(NewInt32(1))

	inner := e.NewScope()
	e.PushLocal(NewInt32(2))
	e.PushLocal(NewInt32(3))
	if got := e.Top(); got != base+3 {
		t.Fatalf("Top() after two pushes in inner scope = %d, want %d", got, base+3)
	}

	inner.Close()
	if got := e.Top(); got != base+1 {
		t.Fatalf("Top() after inner.Close() = %d, want %d", got, base+1)
	}

	outer.Close()
	if got := e.Top(); got != base {
		t.Fatalf("Top() after outer.Close() = %d, want %d", got, base)
	}
}

func TestReturnScopeSurvivesInnerScopeClose(t *testing.T) {
	e := newTestEngine(t)
	base := e.Top()

	rs := e.NewReturnScope()
	local := e.PushLocal(NewInt32(10))
	escaped := rs.Escape(local.Get())
	rs.Close()

	if got := e.Top(); got != base+1 {
		t.Fatalf("Top() after ReturnScope.Close() = %d, want %d (only the reserved slot survives)", got, base+1)
	}
	if got := escaped.Get(); got.AsInt32() != 10 {
		t.Fatalf("escaped value = %v, want 10", e.DumpValue(got))
	}
}

func TestArgListSizeAndCloseRestoresTop(t *testing.T) {
	e := newTestEngine(t)
	base := e.Top()

	args := e.pushArgs([]Value{NewInt32(1), NewInt32(2), NewInt32(3)}, 3)
	if got := args.Size(); got != 3 {
		t.Fatalf("ArgList.Size() = %d, want 3", got)
	}
	if got := args.At(1); got.AsInt32() != 2 {
		t.Fatalf("ArgList.At(1) = %v, want 2", e.DumpValue(got))
	}
	args.Close()
	if got := e.Top(); got != base {
		t.Fatalf("Top() after ArgList.Close() = %d, want %d", got, base)
	}
}

func TestArgListOutOfRangeAborts(t *testing.T) {
	e := NewEngine(Options{ShadowStackSize: 64})
	var caught *Fault
	e.OnAbort = func(f *Fault) { caught = f; panic(f) }

	args := e.pushArgs([]Value{NewInt32(1)}, 1)
	defer args.Close()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected abort to panic")
		}
		if caught == nil || caught.Code != FaultArityMismatch {
			t.Fatalf("expected FaultArityMismatch, got %v", caught)
		}
	}()
	args.At(5)
}

func TestTypedReturnScopeEscapeAndDeref(t *testing.T) {
	e := newTestEngine(t)
	base := e.Top()

	trs := NewTypedReturnScope[*jsString](e)
	retained := trs.Escape(e.NewString("escaped"))
	trs.Close()

	if got := e.Top(); got != base+1 {
		t.Fatalf("Top() after TypedReturnScope.Close() = %d, want %d (only the reserved slot survives)", got, base+1)
	}
	if got := retained.Deref(e).data; got != "escaped" {
		t.Fatalf("TypedReturnScope.Escape().Deref().data = %q, want %q", got, "escaped")
	}
}

func TestRetainedDerefRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	scope := e.NewScope()
	defer scope.Close()

	local := e.PushLocal(e.NewString("typed"))
	retained := newRetained[*jsString](local)

	if got := retained.Deref(e).data; got != "typed" {
		t.Fatalf("Retained[*jsString].Deref().data = %q, want %q", got, "typed")
	}
}

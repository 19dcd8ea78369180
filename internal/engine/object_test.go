package engine

import "testing"

func TestLegacyScopeIsRepresentableButUnused(t *testing.T) {
	e := newTestEngine(t)
	scope := e.NewScope()
	defer scope.Close()

	legacy := e.PushLocal(e.NewLegacyScope(0, []Value{NewInt32(1), NewInt32(2)}))

	kind, obj, ok := e.kindOf(legacy.Get())
	if !ok || kind != KindLegacyScope {
		t.Fatalf("NewLegacyScope did not produce a KindLegacyScope object")
	}
	ls := obj.(*legacyScope)
	if len(ls.locals) != 2 || ls.locals[1].AsInt32() != 2 {
		t.Fatalf("legacyScope.locals mismatch: %+v", ls.locals)
	}
}

func TestPropertyOrderIsInsertionOrder(t *testing.T) {
	e := newTestEngine(t)
	obj := e.NewObject(e.Undefined())
	keys := []string{"z", "a", "m"}
	for i, k := range keys {
		e.SetProperty(obj, e.NewString(k), NewInt32(int32(i)))
	}
	kind, ho, ok := e.kindOf(obj)
	if !ok || kind != KindObject {
		t.Fatalf("expected KindObject")
	}
	jo := ho.(*jsObject)
	if len(jo.entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(jo.entries))
	}
	for i, k := range keys {
		if jo.entries[i].content != k {
			t.Fatalf("entries[%d].content = %q, want %q (insertion order not preserved)", i, jo.entries[i].content, k)
		}
	}
}

func TestOverwritingAPropertyKeepsItsSlot(t *testing.T) {
	e := newTestEngine(t)
	obj := e.NewObject(e.Undefined())
	e.SetProperty(obj, e.NewString("a"), NewInt32(1))
	e.SetProperty(obj, e.NewString("b"), NewInt32(2))
	e.SetProperty(obj, e.NewString("a"), NewInt32(100))

	_, ho, _ := e.kindOf(obj)
	jo := ho.(*jsObject)
	if len(jo.entries) != 2 {
		t.Fatalf("overwrite should not grow the entry count, got %d entries", len(jo.entries))
	}
	if jo.entries[0].content != "a" {
		t.Fatalf("overwrite should keep the original slot position")
	}
	if got := e.GetProperty(obj, e.NewString("a")); got.AsInt32() != 100 {
		t.Fatalf("overwritten value = %v, want 100", e.DumpValue(got))
	}
}

func TestDeleteOwnReindexesRemainingEntries(t *testing.T) {
	e := newTestEngine(t)
	obj := e.NewObject(e.Undefined())
	e.SetProperty(obj, e.NewString("a"), NewInt32(1))
	e.SetProperty(obj, e.NewString("b"), NewInt32(2))
	e.SetProperty(obj, e.NewString("c"), NewInt32(3))

	if !e.DeleteProperty(obj, e.NewString("b")) {
		t.Fatalf("DeleteProperty(b) should report true")
	}
	if got := e.GetProperty(obj, e.NewString("a")); got.AsInt32() != 1 {
		t.Fatalf("a lookup broke after deleting b: %v", e.DumpValue(got))
	}
	if got := e.GetProperty(obj, e.NewString("c")); got.AsInt32() != 3 {
		t.Fatalf("c lookup broke after deleting b: %v", e.DumpValue(got))
	}
	if got := e.GetProperty(obj, e.NewString("b")); !e.IsUndefined(got) {
		t.Fatalf("b should read undefined after delete")
	}
}

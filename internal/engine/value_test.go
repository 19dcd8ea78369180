package engine

import (
	"math"
	"testing"
)

func TestInt32RoundTrip(t *testing.T) {
	for _, n := range []int32{0, 1, -1, 42, -42, 1 << 20, -(1 << 20)} {
		v := NewInt32(n)
		if !v.IsInt32() {
			t.Fatalf("NewInt32(%d) is not IsInt32", n)
		}
		if got := v.AsInt32(); got != n {
			t.Fatalf("NewInt32(%d).AsInt32() = %d", n, got)
		}
	}
}

func TestDoubleRoundTripViaEngine(t *testing.T) {
	e := NewEngine(Options{})
	for _, d := range []float64{0, 1.5, -1.5, 3.1415926535, 1e300, -1e300} {
		v := e.NewDouble(d)
		if v.IsInt32() {
			t.Fatalf("NewDouble(%v) reported IsInt32", d)
		}
		if !v.IsDouble() {
			t.Fatalf("NewDouble(%v) is not IsDouble", d)
		}
		if got := v.AsDouble(); got != d {
			t.Fatalf("NewDouble(%v).AsDouble() = %v", d, got)
		}
	}
}

func TestNegativeInfinityIsHeapBoxed(t *testing.T) {
	e := NewEngine(Options{})
	negInfVal := e.NewDouble(math.Inf(-1))
	if !negInfVal.IsHeap() {
		t.Fatalf("-Infinity should be heap-boxed, got tag %d", negInfVal.tag())
	}
	if negInfVal.IsDouble() {
		t.Fatalf("-Infinity should report IsDouble()==false (it collides with the pointer tag)")
	}
	if !e.IsNumber(negInfVal) {
		t.Fatalf("-Infinity should still report as a number via Engine.IsNumber")
	}
	if got := e.ToNumber(negInfVal); got != math.Inf(-1) {
		t.Fatalf("ToNumber(-Infinity) = %v", got)
	}
}

func TestHandleValueRoundTrip(t *testing.T) {
	v := valueFromHandle(Handle(7))
	if !v.IsHeap() {
		t.Fatalf("valueFromHandle result is not IsHeap")
	}
	if got := v.Handle(); got != 7 {
		t.Fatalf("Handle() = %d, want 7", got)
	}
}

func TestValueHashStable(t *testing.T) {
	v := NewInt32(99)
	if v.Hash() != v.Hash() {
		t.Fatalf("Hash() is not stable across calls")
	}
}

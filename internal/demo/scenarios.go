package demo

import (
	"fmt"

	"github.com/redchew/aotjs/internal/engine"
)

// Scenario is one self-contained demonstration: it builds its own Engine
// from the Options it is given and reports whether the behavior it
// exists to show off actually held.
type Scenario struct {
	Name  string
	Stage Stage
	Run   func(engine.Options) error
}

// Scenarios returns the fixed set this CLI demonstrates, in the order
// the original runtime's sample programs introduce the same ideas:
// a plain value round trip, GC reclaiming an unrooted object, closures
// sharing mutable state through a Cell, a value escaping nested scopes,
// prototype-chain lookup, arity padding on Call, and a number that
// outgrows the int32 immediate and becomes a double.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "value-round-trip", Stage: StageAlloc, Run: roundTripScenario},
		{Name: "gc-reclaims-unrooted", Stage: StageGC, Run: gcReclaimsScenario},
		{Name: "closure-shared-cell", Stage: StageClosure, Run: closureMutationScenario},
		{Name: "return-across-scope", Stage: StageCall, Run: returnAcrossScopeScenario},
		{Name: "deep-prototype-lookup", Stage: StageMutate, Run: deepPrototypeScenario},
		{Name: "argument-padding", Stage: StageCall, Run: argumentPaddingScenario},
		{Name: "number-overflows-to-double", Stage: StageAlloc, Run: numberOverflowScenario},
	}
}

func roundTripScenario(opts engine.Options) error {
	e := engine.NewEngine(opts)
	e.OnAbort = func(f *engine.Fault) { panic(f) }

	v := engine.NewInt32(41)
	if got := v.AsInt32(); got != 41 {
		return fmt.Errorf("int32 round trip: got %d, want 41", got)
	}
	s := e.NewString("aotjs")
	if got := e.ToString(s); got != "aotjs" {
		return fmt.Errorf("string round trip: got %q, want %q", got, "aotjs")
	}
	return nil
}

func gcReclaimsScenario(opts engine.Options) error {
	e := engine.NewEngine(opts)
	e.OnAbort = func(f *engine.Fault) { panic(f) }

	before := e.LiveObjectCount()
	e.NewObject(e.Undefined()) // nothing roots this
	e.GC()
	after := e.LiveObjectCount()
	if after != before {
		return fmt.Errorf("unrooted object survived GC: before=%d after=%d", before, after)
	}
	return nil
}

func closureMutationScenario(opts engine.Options) error {
	e := engine.NewEngine(opts)
	e.OnAbort = func(f *engine.Fault) { panic(f) }

	scope := e.NewScope()
	defer scope.Close()

	counter := e.PushLocal(e.NewCell(engine.NewInt32(0)))
	captures := []engine.Handle{counter.Get().Handle()}
	incr := e.PushLocal(e.NewFunction("incr", 0, captures, func(e *engine.Engine, self *engine.Value, this engine.Value, args *engine.ArgList) engine.Local {
		rs := e.NewReturnScope()
		defer rs.Close()
		cellHandle := captureHandle(e, self, 0)
		next := engine.NewInt32(e.CellGet(cellHandle).AsInt32() + 1)
		e.CellSet(cellHandle, next)
		return rs.Escape(next)
	}))

	e.Call(incr.Get(), e.Undefined(), nil)
	result := e.Call(incr.Get(), e.Undefined(), nil)
	if got := result.Get().AsInt32(); got != 2 {
		return fmt.Errorf("closure-shared cell: got %d, want 2", got)
	}
	return nil
}

func returnAcrossScopeScenario(opts engine.Options) error {
	e := engine.NewEngine(opts)
	e.OnAbort = func(f *engine.Fault) { panic(f) }

	scope := e.NewScope()
	defer scope.Close()

	concat := e.PushLocal(e.NewFunction("concat", 2, nil, func(e *engine.Engine, self *engine.Value, this engine.Value, args *engine.ArgList) engine.Local {
		rs := e.NewReturnScope()
		defer rs.Close()
		inner := e.NewScope()
		joined := e.ConcatStrings(args.At(0), args.At(1))
		inner.Close()
		return rs.Escape(joined)
	}))
	work := e.PushLocal(e.NewString("work"))
	play := e.PushLocal(e.NewString("play"))
	result := e.Call(concat.Get(), e.Undefined(), []engine.Value{work.Get(), play.Get()})
	if got := e.ToString(result.Get()); got != "workplay" {
		return fmt.Errorf("return-across-scope: got %q, want %q", got, "workplay")
	}
	return nil
}

func deepPrototypeScenario(opts engine.Options) error {
	e := engine.NewEngine(opts)
	e.OnAbort = func(f *engine.Fault) { panic(f) }

	scope := e.NewScope()
	defer scope.Close()

	root := e.PushLocal(e.NewObject(e.Undefined()))
	key := e.NewString("depth")
	e.SetProperty(root.Get(), key, engine.NewInt32(0))

	leaf := e.PushLocal(root.Get())
	for i := 1; i <= 4; i++ {
		leaf.Set(e.NewObject(leaf.Get()))
	}
	if got := e.GetProperty(leaf.Get(), key); got.AsInt32() != 0 {
		return fmt.Errorf("deep prototype lookup: got %v, want 0", e.DumpValue(got))
	}
	return nil
}

func argumentPaddingScenario(opts engine.Options) error {
	e := engine.NewEngine(opts)
	e.OnAbort = func(f *engine.Fault) { panic(f) }

	var sawUndefinedThirdArg bool
	var sawSize int
	fn := e.NewFunction("describeArgs", 3, nil, func(e *engine.Engine, self *engine.Value, this engine.Value, args *engine.ArgList) engine.Local {
		rs := e.NewReturnScope()
		defer rs.Close()
		sawSize = args.Size()
		sawUndefinedThirdArg = e.IsUndefined(args.At(2))
		return rs.Escape(engine.NewInt32(args.At(0).AsInt32() + args.At(1).AsInt32()))
	})
	result := e.Call(fn, e.Undefined(), []engine.Value{engine.NewInt32(4), engine.NewInt32(5)})
	if got := result.Get().AsInt32(); got != 9 {
		return fmt.Errorf("argument padding: got %d, want 9", got)
	}
	if sawSize != 2 {
		return fmt.Errorf("argument padding: args.Size() was %d, want 2", sawSize)
	}
	if !sawUndefinedThirdArg {
		return fmt.Errorf("argument padding: args.At(2) should read as undefined when only 2 of 3 arguments are supplied")
	}
	return nil
}

func numberOverflowScenario(opts engine.Options) error {
	e := engine.NewEngine(opts)
	e.OnAbort = func(f *engine.Fault) { panic(f) }

	small := e.NewNumberFromInt(41)
	if !small.IsInt32() {
		return fmt.Errorf("number-overflows-to-double: 41 should stay an int32 immediate")
	}
	huge := e.NewNumberFromInt(1 << 40)
	if !e.IsNumber(huge) || huge.IsInt32() {
		return fmt.Errorf("number-overflows-to-double: 2^40 should become a double, not an int32")
	}
	if got := e.ToNumber(huge); got != float64(int64(1)<<40) {
		return fmt.Errorf("number-overflows-to-double: got %v, want 2^40", got)
	}
	return nil
}

// captureHandle returns the i-th captured Cell of a Function's own
// value, the same lookup a real embedder's native body would perform.
func captureHandle(e *engine.Engine, self *engine.Value, i int) engine.Value {
	return engine.CaptureAt(e, *self, i)
}

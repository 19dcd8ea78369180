package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"fortio.org/safecast"
)

// Engine owns every live heap object, the shadow stack, the current call
// frame, and the five sigil singletons. There is no package-level shared
// state: every value produced by one Engine is meaningless to another,
// and nothing in this package makes an Engine safe for concurrent use
// from more than one goroutine at a time.
type Engine struct {
	heap  *heap
	stack *shadowStack

	rootHandle   Handle
	currentFrame Handle

	undefinedVal Value
	nullVal      Value
	deletedVal   Value
	trueVal      Value
	falseVal     Value

	ready       bool
	allocCount  int
	gcThreshold int
	forceGC     bool

	// OnAbort, when set, is called instead of os.Exit when Engine.abort
	// fires. Tests install one that panics with the Fault so they can
	// recover and assert on it without killing the test binary.
	OnAbort func(*Fault)
}

// NewEngine constructs a ready-to-use Engine: shadow stack and heap
// allocated, the five sigils and the root object and frame registered.
// GC never runs before this returns (the "ready" flag gates it), since
// the mark phase assumes the sigils already exist.
func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		heap:        newHeap(),
		stack:       newShadowStack(opts.ShadowStackSize),
		gcThreshold: opts.GCThreshold,
		forceGC:     opts.ForceGC,
	}

	e.undefinedVal = valueFromHandle(e.heap.register(&boxSigil{tag: sigilUndefined}))
	e.nullVal = valueFromHandle(e.heap.register(&boxSigil{tag: sigilNull}))
	e.deletedVal = valueFromHandle(e.heap.register(&boxSigil{tag: sigilDeleted}))
	e.trueVal = valueFromHandle(e.heap.register(&boxBool{val: true}))
	e.falseVal = valueFromHandle(e.heap.register(&boxBool{val: false}))

	root := newJSObject(0)
	e.rootHandle = e.heap.register(&root)

	e.currentFrame = e.heap.register(&frame{this: e.undefinedVal})

	e.ready = true
	return e
}

// Sigil accessors.

func (e *Engine) Undefined() Value { return e.undefinedVal }
func (e *Engine) Null() Value      { return e.nullVal }
func (e *Engine) Deleted() Value   { return e.deletedVal }
func (e *Engine) True() Value      { return e.trueVal }
func (e *Engine) False() Value     { return e.falseVal }

// Bool boxes a Go bool as one of the two sigil bool Values.
func (e *Engine) Bool(b bool) Value {
	if b {
		return e.trueVal
	}
	return e.falseVal
}

// Root returns the Engine's global root Object, the implicit top of the
// program's object graph and one of the GC's permanent roots.
func (e *Engine) Root() Value {
	return valueFromHandle(e.rootHandle)
}

func (e *Engine) kindOf(v Value) (ObjectKind, HeapObject, bool) {
	if !v.IsHeap() {
		return 0, nil, false
	}
	obj, ok := e.heap.get(v.Handle())
	if !ok {
		return 0, nil, false
	}
	return obj.Kind(), obj, true
}

func (e *Engine) alloc(obj HeapObject) Handle {
	if !e.ready {
		e.abort(FaultEngineNotReady, "heap allocation attempted on an Engine not constructed by NewEngine")
	}
	e.maybeGC()
	h := e.heap.register(obj)
	e.allocCount++
	return h
}

// maybeGC runs a collection if the Engine is configured to collect on
// every allocation, or has crossed its allocation threshold. alloc calls
// this only after confirming the Engine is ready, so the sigils always
// exist by the time a mark phase can run.
func (e *Engine) maybeGC() {
	if e.forceGC || e.allocCount >= e.gcThreshold {
		e.GC()
		e.allocCount = 0
	}
}

// Allocation entrypoints.

// NewObject allocates an Object whose prototype is proto (Undefined/Null
// for none, or another heap Object/Function).
func (e *Engine) NewObject(proto Value) Value {
	var protoHandle Handle
	switch {
	case e.IsUndefined(proto) || e.IsNull(proto):
		// protoHandle stays 0: "no prototype".
	default:
		kind, _, ok := e.kindOf(proto)
		if !ok || (kind != KindObject && kind != KindFunction) {
			e.abort(FaultWrongKind, "NewObject prototype is not an object")
			return e.undefinedVal
		}
		protoHandle = proto.Handle()
	}
	obj := newJSObject(protoHandle)
	return valueFromHandle(e.alloc(&obj))
}

// NewString allocates an immutable String wrapping s.
func (e *Engine) NewString(s string) Value {
	return valueFromHandle(e.alloc(&jsString{data: s}))
}

// NewSymbol allocates a fresh Symbol; identity, not description, is what
// distinguishes it from every other Symbol, including ones with the same
// description.
func (e *Engine) NewSymbol(description string) Value {
	return valueFromHandle(e.alloc(&jsSymbol{description: description}))
}

// NewDouble returns a Value for d. Most doubles fit directly in the
// NaN-boxed immediate range; the few whose biased bit pattern lands in a
// reserved tag (-Infinity and negative NaNs in the pointer tag, finite
// doubles at or below about -1.74e308 in the int32 tag) are heap-boxed
// instead (see tag.go, value.go).
func (e *Engine) NewDouble(d float64) Value {
	v := Value{raw: tagDoubleBits(d)}
	if v.IsHeap() || v.IsInt32() {
		return valueFromHandle(e.alloc(&boxDouble{val: d}))
	}
	return v
}

// NewNumberFromInt returns a Value for n, following the usual JS rule
// that integers stay exact only up to what their representation can
// hold: n fits the unboxed int32 immediate when it does, and becomes a
// double (through NewDouble) otherwise rather than silently wrapping.
func (e *Engine) NewNumberFromInt(n int) Value {
	if n32, err := safecast.Conv[int32](n); err == nil {
		return NewInt32(n32)
	}
	return e.NewDouble(float64(n))
}

// NewCell allocates a Cell holding initial as its binding.
func (e *Engine) NewCell(initial Value) Value {
	return valueFromHandle(e.alloc(&cell{binding: initial}))
}

// NewFunction allocates a Function. captures are the Cell handles it
// closes over, in the order its body expects to find them.
func (e *Engine) NewFunction(name string, arity int, captures []Handle, body NativeBody) Value {
	fn := &jsFunction{
		jsObject: newJSObject(0),
		name:     name,
		arity:    arity,
		captures: append([]Handle(nil), captures...),
		body:     body,
	}
	return valueFromHandle(e.alloc(fn))
}

// NewLegacyScope allocates a LegacyScope. No operational code path in
// this package calls it; it exists so the older scope-chain design
// stays representable and testable.
func (e *Engine) NewLegacyScope(parent Handle, locals []Value) Value {
	s := &legacyScope{parent: parent, locals: append([]Value(nil), locals...)}
	return valueFromHandle(e.alloc(s))
}

// CellGet/CellSet read and write a Cell's binding directly, bypassing the
// property-map machinery entirely (a Cell is never itself an Object).
func (e *Engine) CellGet(v Value) Value {
	kind, obj, ok := e.kindOf(v)
	if !ok || kind != KindCell {
		e.abort(FaultWrongKind, "CellGet on a non-Cell value")
		return e.undefinedVal
	}
	return obj.(*cell).binding
}

func (e *Engine) CellSet(v Value, newVal Value) {
	kind, obj, ok := e.kindOf(v)
	if !ok || kind != KindCell {
		e.abort(FaultWrongKind, "CellSet on a non-Cell value")
		return
	}
	obj.(*cell).binding = newVal
}

// asObjectLike returns the jsObject embedded in obj if obj is itself an
// Object or Function (both carry a property map); ok is false for every
// other HeapObject kind.
func asObjectLike(obj HeapObject) (*jsObject, bool) {
	switch t := obj.(type) {
	case *jsObject:
		return t, true
	case *jsFunction:
		return &t.jsObject, true
	default:
		return nil, false
	}
}

// normalizePropertyKey resolves key to the form the property map indexes
// by: resolved string content for a String key, or the key's own handle
// for a Symbol key. Any other kind of key is a misuse fault; properties
// are only ever keyed on String or Symbol.
func (e *Engine) normalizePropertyKey(key Value) (content string, handle Handle, isSymbol bool, ok bool) {
	kind, obj, isHeap := e.kindOf(key)
	if !isHeap {
		return "", 0, false, false
	}
	switch kind {
	case KindString:
		return obj.(*jsString).data, key.Handle(), false, true
	case KindSymbol:
		return "", key.Handle(), true, true
	default:
		return "", 0, false, false
	}
}

// GetProperty walks obj's prototype chain looking for key, stopping at
// the first match; a miss anywhere along the chain (including a chain
// that bottoms out without finding key) returns undefined, never a fault.
func (e *Engine) GetProperty(obj, key Value) Value {
	content, handle, isSymbol, ok := e.normalizePropertyKey(key)
	if !ok {
		e.abort(FaultInvalidPropertyKey, "property key is not a String or Symbol")
		return e.undefinedVal
	}
	cur := obj
	for cur.IsHeap() {
		ho, ok := e.heap.get(cur.Handle())
		if !ok {
			e.abort(FaultInvalidHandle, "GetProperty walked into a dead handle")
			return e.undefinedVal
		}
		jo, ok := asObjectLike(ho)
		if !ok {
			break
		}
		if isSymbol {
			if idx, ok := jo.indexForSymbol(handle); ok {
				return jo.entries[idx].val
			}
		} else if idx, ok := jo.indexForString(content); ok {
			return jo.entries[idx].val
		}
		if jo.prototype == 0 {
			break
		}
		cur = valueFromHandle(jo.prototype)
	}
	return e.undefinedVal
}

// SetProperty always writes an own property on obj; it never walks the
// prototype chain looking for a setter. Properties here are plain data
// properties, with no getter/setter distinction.
func (e *Engine) SetProperty(obj, key, val Value) {
	content, handle, isSymbol, ok := e.normalizePropertyKey(key)
	if !ok {
		e.abort(FaultInvalidPropertyKey, "property key is not a String or Symbol")
		return
	}
	if !obj.IsHeap() {
		e.abort(FaultWrongKind, "SetProperty target is not an Object or Function")
		return
	}
	ho, ok := e.heap.get(obj.Handle())
	if !ok {
		e.abort(FaultInvalidHandle, "SetProperty target is not live")
		return
	}
	jo, ok := asObjectLike(ho)
	if !ok {
		e.abort(FaultWrongKind, "SetProperty target is not an Object or Function")
		return
	}
	jo.setOwn(key, val, content, handle, isSymbol)
}

// DeleteProperty removes an own property from obj and reports whether it was present.
func (e *Engine) DeleteProperty(obj, key Value) bool {
	content, handle, isSymbol, ok := e.normalizePropertyKey(key)
	if !ok {
		e.abort(FaultInvalidPropertyKey, "property key is not a String or Symbol")
		return false
	}
	if !obj.IsHeap() {
		e.abort(FaultWrongKind, "DeleteProperty target is not an Object or Function")
		return false
	}
	ho, ok := e.heap.get(obj.Handle())
	if !ok {
		e.abort(FaultInvalidHandle, "DeleteProperty target is not live")
		return false
	}
	jo, ok := asObjectLike(ho)
	if !ok {
		e.abort(FaultWrongKind, "DeleteProperty target is not an Object or Function")
		return false
	}
	return jo.deleteOwn(content, handle, isSymbol)
}

// Call invokes fn with the given `this` and positional args, returning a
// Local owned by the caller's current scope. Declared arity beyond the
// supplied arguments is padded with undefined by pushArgs, so ArgList.At
// returns undefined for any index between what was supplied and the
// callee's declared arity; ArgList.Size still reports the supplied count.
func (e *Engine) Call(fn Value, this Value, args []Value) Local {
	kind, obj, ok := e.kindOf(fn)
	if !ok || kind != KindFunction {
		e.abort(FaultNotCallable, "Call target is not a Function")
		return e.PushLocal(e.undefinedVal)
	}
	jsFn := obj.(*jsFunction)

	// rs reserves its return slot below where the argument run and the
	// callee's own locals will live, so that closing those scopes on the
	// way out never touches the slot this Call ultimately returns.
	rs := e.NewReturnScope()
	defer rs.Close()

	argList := e.pushArgs(args, jsFn.arity)
	defer argList.Close()

	f := &frame{
		parent: e.currentFrame,
		callee: fn.Handle(),
		this:   this,
		args:   append([]Value(nil), argList.paddedSlice()...),
	}
	frameHandle := e.alloc(f)
	prevFrame := e.currentFrame
	e.currentFrame = frameHandle
	defer func() { e.currentFrame = prevFrame }()

	result := jsFn.body(e, &fn, this, argList)
	return rs.Escape(result.Get())
}

// Type predicates. Unlike Value's own IsHeap/IsInt32/IsDouble, these need
// the heap to tell a boxed sigil/bool/double apart from an Object, so
// they live on Engine rather than Value.

func (e *Engine) IsUndefined(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && kind == KindBoxUndefined
}

func (e *Engine) IsNull(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && kind == KindBoxNull
}

func (e *Engine) IsDeleted(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && kind == KindBoxDeleted
}

func (e *Engine) IsBool(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && kind == KindBoxBool
}

func (e *Engine) IsNumber(v Value) bool {
	if v.IsInt32() || v.IsDouble() {
		return true
	}
	kind, _, ok := e.kindOf(v)
	return ok && (kind == KindBoxInt32 || kind == KindBoxDouble)
}

func (e *Engine) IsString(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && kind == KindString
}

func (e *Engine) IsSymbol(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && kind == KindSymbol
}

func (e *Engine) IsObject(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && (kind == KindObject || kind == KindFunction)
}

func (e *Engine) IsFunction(v Value) bool {
	kind, _, ok := e.kindOf(v)
	return ok && kind == KindFunction
}

// TypeOf renders the typeof() string for any Value.
func (e *Engine) TypeOf(v Value) string {
	if v.IsInt32() || v.IsDouble() {
		return "number"
	}
	if v.IsHeap() {
		obj, ok := e.heap.get(v.Handle())
		if !ok {
			e.abort(FaultInvalidHandle, "TypeOf on a dead handle")
			return "undefined"
		}
		return obj.TypeOfTag()
	}
	return "number"
}

// ToNumber coerces v to a float64 following the usual small rule set:
// numbers pass through, booleans become 0/1, null becomes 0, and
// undefined/everything else becomes NaN.
func (e *Engine) ToNumber(v Value) float64 {
	switch {
	case v.IsInt32():
		return float64(v.AsInt32())
	case v.IsDouble():
		return v.AsDouble()
	case e.IsBool(v):
		if v.Raw() == e.trueVal.Raw() {
			return 1
		}
		return 0
	case e.IsNull(v):
		return 0
	case e.IsNumber(v):
		obj, _ := e.heap.get(v.Handle())
		if bd, ok := obj.(*boxDouble); ok {
			return bd.val
		}
		if bi, ok := obj.(*boxInt32); ok {
			return float64(bi.val)
		}
	}
	return nan()
}

// ToInt32 coerces v the way a 32-bit bitwise operator would: through
// ToNumber, then truncated and wrapped into int32 range.
func (e *Engine) ToInt32(v Value) int32 {
	if v.IsInt32() {
		return v.AsInt32()
	}
	n := e.ToNumber(v)
	if n != n { // NaN
		return 0
	}
	return int32(int64(n))
}

// ToString renders v the way string concatenation would, except for
// numbers: integral values in int64 range print without a fraction and
// every other number uses Go's %v formatting, so infinities render as
// "+Inf"/"-Inf" and exponents as "1e-07" rather than JavaScript's forms.
func (e *Engine) ToString(v Value) string {
	switch {
	case v.IsInt32():
		return fmt.Sprintf("%d", v.AsInt32())
	case v.IsDouble():
		return formatNumber(v.AsDouble())
	case e.IsString(v):
		obj, _ := e.heap.get(v.Handle())
		return obj.(*jsString).data
	case e.IsSymbol(v):
		obj, _ := e.heap.get(v.Handle())
		return "Symbol(" + obj.(*jsSymbol).description + ")"
	case e.IsUndefined(v):
		return "undefined"
	case e.IsNull(v):
		return "null"
	case e.IsDeleted(v):
		return "<deleted>"
	case e.IsBool(v):
		return fmt.Sprintf("%t", v.Raw() == e.trueVal.Raw())
	case e.IsFunction(v):
		obj, _ := e.heap.get(v.Handle())
		return "[Function: " + obj.(*jsFunction).name + "]"
	case e.IsObject(v):
		return "[object Object]"
	case e.IsNumber(v):
		return formatNumber(e.ToNumber(v))
	default:
		return "<invalid>"
	}
}

func formatNumber(d float64) string {
	if d == float64(int64(d)) && !isNegativeInfinity(d) {
		return fmt.Sprintf("%d", int64(d))
	}
	return fmt.Sprintf("%v", d)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

// ValuesEqual is raw-bit equality with one content-aware exception: two
// distinct String objects holding equal bytes compare equal.
func (e *Engine) ValuesEqual(a, b Value) bool {
	if a.Raw() == b.Raw() {
		return true
	}
	if e.IsString(a) && e.IsString(b) {
		oa, _ := e.heap.get(a.Handle())
		ob, _ := e.heap.get(b.Handle())
		return oa.(*jsString).data == ob.(*jsString).data
	}
	return false
}

// ConcatStrings allocates a new String holding a's content followed by
// b's, the one string operation the runtime needs built in.
func (e *Engine) ConcatStrings(a, b Value) Value {
	if !e.IsString(a) || !e.IsString(b) {
		e.abort(FaultWrongKind, "ConcatStrings on a non-String operand")
		return e.undefinedVal
	}
	oa, _ := e.heap.get(a.Handle())
	ob, _ := e.heap.get(b.Handle())
	return e.NewString(oa.(*jsString).data + ob.(*jsString).data)
}

// Now returns milliseconds since the Unix epoch, the one piece of host
// environment generated code is allowed to observe directly.
func (e *Engine) Now() float64 {
	return float64(time.Now().UnixMilli())
}

// LiveObjectCount returns the number of objects currently on the heap,
// for callers that want to observe GC effects without parsing Dump.
func (e *Engine) LiveObjectCount() int {
	return e.heap.count()
}

// CaptureAt returns the i-th Cell a Function closed over, as a Value to
// hand to CellGet/CellSet. It exists for code outside this package
// (native Function bodies defined by embedders) that needs to reach its
// own captures without a package-internal type assertion.
func CaptureAt(e *Engine, fn Value, i int) Value {
	kind, obj, ok := e.kindOf(fn)
	if !ok || kind != KindFunction {
		e.abort(FaultWrongKind, "CaptureAt on a non-Function value")
		return e.undefinedVal
	}
	captures := obj.(*jsFunction).captures
	if i < 0 || i >= len(captures) {
		e.abort(FaultArityMismatch, "CaptureAt index out of range")
		return e.undefinedVal
	}
	return valueFromHandle(captures[i])
}

// Dump renders the whole live heap for diagnostics, one object per line,
// in handle order. The CLI layer is responsible for any ANSI styling;
// this stays plain text so it is also useful from a debugger or a test
// failure message.
func (e *Engine) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "engine: %d live objects, shadow stack %d/%d\n",
		e.heap.count(), e.stack.top, len(e.stack.slots))
	for h := Handle(1); h < e.heap.next; h++ {
		obj, ok := e.heap.get(h)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  #%d %s: %s\n", h, obj.Kind(), obj.Dump())
	}
	return b.String()
}

// DumpValue renders a single Value the way ToString's switch would
// introspect it, but without coercing numbers/objects to strings.
func (e *Engine) DumpValue(v Value) string {
	if !v.IsHeap() {
		return v.String()
	}
	obj, ok := e.heap.get(v.Handle())
	if !ok {
		return "<dead handle>"
	}
	return obj.Dump()
}

// defaultAbort is the fallback Abort hook: print the fault to stderr and
// terminate the process. There is no recoverable error path for misuse.
func defaultAbort(f *Fault) {
	fmt.Fprintln(os.Stderr, f.Error())
	os.Exit(2)
}

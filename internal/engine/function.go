package engine

// NativeBody is the Go implementation of a Function's code. It receives
// the Function being invoked, the `this` value, and the caller's
// ArgList, and returns a Local produced inside its own ReturnScope.
type NativeBody func(e *Engine, fn *Value, this Value, args *ArgList) Local

// jsFunction is-a Object (it embeds jsObject, so properties and a
// prototype chain work the same way) plus a name, declared arity, its
// captured Cells, and the native body that implements it.
type jsFunction struct {
	jsObject
	name     string
	arity    int
	captures []Handle // Cell handles
	body     NativeBody
}

func (f *jsFunction) Kind() ObjectKind { return KindFunction }

func (f *jsFunction) TraceOutgoing(mark func(Value)) {
	f.jsObject.TraceOutgoing(mark)
	for _, h := range f.captures {
		mark(valueFromHandle(h))
	}
}

func (f *jsFunction) TypeOfTag() string { return "function" }
func (f *jsFunction) Dump() string      { return "Function(\"" + f.name + "\")" }

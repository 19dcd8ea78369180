package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotSchema is bumped whenever a field is added, removed, or
// reinterpreted below; a decoder that sees a different schema refuses
// the payload rather than guessing at a layout it was never built for.
const snapshotSchema uint16 = 1

// SnapshotValue is the wire form of a Value. Heap-resident values carry
// Handle; everything else carries whichever of the other fields its Kind
// calls for.
type SnapshotValue struct {
	Kind   string  `msgpack:"kind"`
	Handle uint32  `msgpack:"handle,omitempty"`
	Int32  int32   `msgpack:"int32,omitempty"`
	Double float64 `msgpack:"double,omitempty"`
}

// SnapshotProperty is one entry of an Object or Function's property map.
type SnapshotProperty struct {
	KeyIsSymbol bool          `msgpack:"key_is_symbol"`
	KeyContent  string        `msgpack:"key_content,omitempty"`
	KeyHandle   uint32        `msgpack:"key_handle,omitempty"`
	Value       SnapshotValue `msgpack:"value"`
}

// SnapshotObject is the wire form of one live heap object. Only the
// fields relevant to its Kind are populated; the rest are left zero.
type SnapshotObject struct {
	Handle uint32 `msgpack:"handle"`
	Kind   string `msgpack:"kind"`

	// boxSigil / boxBool / boxInt32 / boxDouble
	BoolVal   bool    `msgpack:"bool_val,omitempty"`
	Int32Val  int32   `msgpack:"int32_val,omitempty"`
	DoubleVal float64 `msgpack:"double_val,omitempty"`

	// jsString / jsSymbol
	Text string `msgpack:"text,omitempty"`

	// jsObject / jsFunction
	Prototype  uint32             `msgpack:"prototype,omitempty"`
	Properties []SnapshotProperty `msgpack:"properties,omitempty"`

	// jsFunction only
	FunctionName  string   `msgpack:"function_name,omitempty"`
	FunctionArity int      `msgpack:"function_arity,omitempty"`
	Captures      []uint32 `msgpack:"captures,omitempty"`

	// cell
	CellBinding SnapshotValue `msgpack:"cell_binding"`

	// legacyScope
	LegacyParent uint32          `msgpack:"legacy_parent,omitempty"`
	LegacyLocals []SnapshotValue `msgpack:"legacy_locals,omitempty"`
}

// Snapshot is the top-level exported payload: every live object plus the
// handles the GC treats as permanent roots. It has no facility for
// rebuilding a runnable Engine from a Snapshot (a Function's body is a
// native Go closure, not data), so this is a one-way export for external
// tooling (heap inspectors, regression fixtures), not a save format.
type Snapshot struct {
	Schema       uint16           `msgpack:"schema"`
	Objects      []SnapshotObject `msgpack:"objects"`
	RootHandle   uint32           `msgpack:"root_handle"`
	CurrentFrame uint32           `msgpack:"current_frame"`
	ShadowStack  []SnapshotValue  `msgpack:"shadow_stack"`
}

func snapshotHandle(h Handle) uint32 {
	n, err := safecast.Conv[uint32](uint64(h))
	if err != nil {
		// A real run would need over four billion live handles to get
		// here; treat it the same as any other internal invariant break.
		panic(fmt.Sprintf("engine: handle %d does not fit a snapshot", h))
	}
	return n
}

func snapshotValue(v Value) SnapshotValue {
	switch {
	case v.IsInt32():
		return SnapshotValue{Kind: "int32", Int32: v.AsInt32()}
	case v.IsDouble():
		return SnapshotValue{Kind: "double", Double: v.AsDouble()}
	case v.IsHeap():
		return SnapshotValue{Kind: "heap", Handle: snapshotHandle(v.Handle())}
	default:
		return SnapshotValue{Kind: "invalid"}
	}
}

func snapshotProperties(o *jsObject) []SnapshotProperty {
	if len(o.entries) == 0 {
		return nil
	}
	props := make([]SnapshotProperty, len(o.entries))
	for i, e := range o.entries {
		props[i] = SnapshotProperty{
			KeyIsSymbol: e.isSymbol,
			KeyContent:  e.content,
			Value:       snapshotValue(e.val),
		}
		if e.isSymbol {
			props[i].KeyHandle = snapshotHandle(e.key.Handle())
		}
	}
	return props
}

// snapshotOne converts a single live heap object into its wire form.
func snapshotOne(h Handle, obj HeapObject) SnapshotObject {
	so := SnapshotObject{Handle: snapshotHandle(h), Kind: obj.Kind().String()}
	switch t := obj.(type) {
	case *boxSigil:
		// Sigil identity is recovered from Kind alone on decode.
	case *boxBool:
		so.BoolVal = t.val
	case *boxInt32:
		so.Int32Val = t.val
	case *boxDouble:
		so.DoubleVal = t.val
	case *jsString:
		so.Text = t.data
	case *jsSymbol:
		so.Text = t.description
	case *cell:
		so.CellBinding = snapshotValue(t.binding)
	case *jsObject:
		if t.prototype != 0 {
			so.Prototype = snapshotHandle(t.prototype)
		}
		so.Properties = snapshotProperties(t)
	case *jsFunction:
		if t.prototype != 0 {
			so.Prototype = snapshotHandle(t.prototype)
		}
		so.Properties = snapshotProperties(&t.jsObject)
		so.FunctionName = t.name
		so.FunctionArity = t.arity
		if len(t.captures) > 0 {
			so.Captures = make([]uint32, len(t.captures))
			for i, c := range t.captures {
				so.Captures[i] = snapshotHandle(c)
			}
		}
	case *legacyScope:
		if t.parent != 0 {
			so.LegacyParent = snapshotHandle(t.parent)
		}
		if len(t.locals) > 0 {
			so.LegacyLocals = make([]SnapshotValue, len(t.locals))
			for i, v := range t.locals {
				so.LegacyLocals[i] = snapshotValue(v)
			}
		}
	case *frame:
		// Frames are call-stack internals, not part of the object graph
		// generated code can observe; only their handle and kind are
		// exported, not their contents.
	}
	return so
}

// Snapshot walks the entire live heap in handle order and renders it as
// a Snapshot value, ready to be handed to msgpack.Marshal or SaveSnapshot.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Schema:       snapshotSchema,
		RootHandle:   snapshotHandle(e.rootHandle),
		CurrentFrame: snapshotHandle(e.currentFrame),
	}
	for h := Handle(1); h < e.heap.next; h++ {
		obj, ok := e.heap.get(h)
		if !ok {
			continue
		}
		snap.Objects = append(snap.Objects, snapshotOne(h, obj))
	}
	for _, v := range e.stack.roots() {
		snap.ShadowStack = append(snap.ShadowStack, snapshotValue(v))
	}
	return snap
}

// SaveSnapshot encodes e's current heap to path as msgpack, writing
// through a temp file and renaming into place so a crash mid-write never
// leaves a truncated file at path.
func (e *Engine) SaveSnapshot(path string) error {
	data, err := msgpack.Marshal(e.Snapshot())
	if err != nil {
		return fmt.Errorf("engine: encoding snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "snapshot-*.mp.tmp")
	if err != nil {
		return fmt.Errorf("engine: creating snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("engine: writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("engine: closing snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("engine: renaming snapshot into place: %w", err)
	}
	return nil
}

// LoadSnapshotFile decodes a msgpack snapshot written by SaveSnapshot.
// It is read-only tooling support (diff two snapshots, inspect a heap
// dump offline); it never feeds back into a live Engine.
func LoadSnapshotFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("engine: reading snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("engine: decoding snapshot %s: %w", path, err)
	}
	if snap.Schema != snapshotSchema {
		return Snapshot{}, fmt.Errorf("engine: snapshot %s has schema %d, want %d", path, snap.Schema, snapshotSchema)
	}
	return snap, nil
}

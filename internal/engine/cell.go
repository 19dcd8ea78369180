package engine

// cell is the storage for one captured variable: a single Value binding
// that lives independently of any particular Frame or Function, so an
// inner function can keep mutating it after the outer activation that
// declared it has returned.
type cell struct {
	header
	binding Value
}

func (c *cell) Kind() ObjectKind { return KindCell }

func (c *cell) TraceOutgoing(mark func(Value)) {
	mark(c.binding)
}

func (c *cell) TypeOfTag() string { return "object" }

func (c *cell) Dump() string {
	return "Cell(" + c.binding.String() + ")"
}

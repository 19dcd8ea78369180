package engine

// jsString is the heap object backing VKString-ish values: an immutable
// byte sequence, compared and hashed by content rather than identity.
type jsString struct {
	header
	data string
}

func (s *jsString) Kind() ObjectKind          { return KindString }
func (s *jsString) TraceOutgoing(func(Value)) {}
func (s *jsString) TypeOfTag() string         { return "string" }
func (s *jsString) Dump() string              { return `"` + s.data + `"` }

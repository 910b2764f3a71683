package graph

import "fmt"

// TypeKind classifies a source type descriptor. The numeric values match
// the container format's type kinds.
type TypeKind uint8

const (
	KindQubit         TypeKind = 0x01
	KindInt           TypeKind = 0x02
	KindFloat         TypeKind = 0x03
	KindQubitRegister TypeKind = 0x04
	KindIntArray      TypeKind = 0x05
	KindFloatArray    TypeKind = 0x06
)

// TypeDesc is a source type descriptor, carried through the graph exactly
// as declared. Param holds the bit width for integer kinds and the
// precision (32 or 64) for float kinds; it is zero otherwise.
type TypeDesc struct {
	Kind  TypeKind
	Param uint8
}

// Linear reports whether values of this type admit at most one consumer.
func (t TypeDesc) Linear() bool {
	return t.Kind == KindQubit || t.Kind == KindQubitRegister
}

func (t TypeDesc) String() string {
	switch t.Kind {
	case KindQubit:
		return "qubit"
	case KindInt:
		return fmt.Sprintf("int%d", t.Param)
	case KindFloat:
		return fmt.Sprintf("float%d", t.Param)
	case KindQubitRegister:
		return "qureg"
	case KindIntArray:
		return fmt.Sprintf("int%d[]", t.Param)
	case KindFloatArray:
		return fmt.Sprintf("float%d[]", t.Param)
	}
	return fmt.Sprintf("type(0x%02x)", uint8(t.Kind))
}

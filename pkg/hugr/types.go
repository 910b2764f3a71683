package hugr

import (
	"fmt"
	"math/bits"

	"github.com/hugrlab/jeffc/pkg/graph"
)

// typeRec is one entry in the envelope's type table.
type typeRec struct {
	kind  uint8
	param uint8
}

// mapType translates a source type descriptor to its envelope entry.
// One-bit integers become bool; wider integers round up to the next
// power of two and are stored as a log-width. Floats widen to float64.
// Register element widths are preserved verbatim.
func mapType(t graph.TypeDesc) (typeRec, error) {
	switch t.Kind {
	case graph.KindQubit:
		return typeRec{kind: TypeQubit}, nil
	case graph.KindInt:
		switch {
		case t.Param == 0:
			return typeRec{}, fmt.Errorf("zero-width integer has no target type")
		case t.Param == 1:
			return typeRec{kind: TypeBool}, nil
		case t.Param > 64:
			return typeRec{}, fmt.Errorf("int%d exceeds the 64-bit target limit", t.Param)
		default:
			return typeRec{kind: TypeInt, param: logWidth(t.Param)}, nil
		}
	case graph.KindFloat:
		return typeRec{kind: TypeFloat64}, nil
	case graph.KindQubitRegister:
		return typeRec{kind: TypeQureg}, nil
	case graph.KindIntArray:
		if t.Param == 0 || t.Param > 64 {
			return typeRec{}, fmt.Errorf("%s has no target type", t)
		}
		return typeRec{kind: TypeIntReg, param: t.Param}, nil
	case graph.KindFloatArray:
		if t.Param != 32 && t.Param != 64 {
			return typeRec{}, fmt.Errorf("%s has no target type", t)
		}
		return typeRec{kind: TypeFloatReg, param: t.Param}, nil
	}
	return typeRec{}, fmt.Errorf("%s has no target type", t)
}

// logWidth returns the log2 of the smallest power of two holding width
// bits. Callers ensure 2 <= width <= 64.
func logWidth(width uint8) uint8 {
	return uint8(bits.Len8(width - 1))
}

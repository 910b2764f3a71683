package hugr

import (
	"testing"

	"github.com/hugrlab/jeffc/pkg/graph"
)

func TestMapType(t *testing.T) {
	cases := []struct {
		in   graph.TypeDesc
		want typeRec
	}{
		{graph.TypeDesc{Kind: graph.KindQubit}, typeRec{kind: TypeQubit}},
		{graph.TypeDesc{Kind: graph.KindInt, Param: 1}, typeRec{kind: TypeBool}},
		{graph.TypeDesc{Kind: graph.KindInt, Param: 2}, typeRec{kind: TypeInt, param: 1}},
		{graph.TypeDesc{Kind: graph.KindInt, Param: 8}, typeRec{kind: TypeInt, param: 3}},
		{graph.TypeDesc{Kind: graph.KindInt, Param: 9}, typeRec{kind: TypeInt, param: 4}},
		{graph.TypeDesc{Kind: graph.KindInt, Param: 33}, typeRec{kind: TypeInt, param: 6}},
		{graph.TypeDesc{Kind: graph.KindInt, Param: 64}, typeRec{kind: TypeInt, param: 6}},
		{graph.TypeDesc{Kind: graph.KindFloat, Param: 32}, typeRec{kind: TypeFloat64}},
		{graph.TypeDesc{Kind: graph.KindFloat, Param: 64}, typeRec{kind: TypeFloat64}},
		{graph.TypeDesc{Kind: graph.KindQubitRegister}, typeRec{kind: TypeQureg}},
		{graph.TypeDesc{Kind: graph.KindIntArray, Param: 16}, typeRec{kind: TypeIntReg, param: 16}},
		{graph.TypeDesc{Kind: graph.KindIntArray, Param: 5}, typeRec{kind: TypeIntReg, param: 5}},
		{graph.TypeDesc{Kind: graph.KindFloatArray, Param: 32}, typeRec{kind: TypeFloatReg, param: 32}},
		{graph.TypeDesc{Kind: graph.KindFloatArray, Param: 64}, typeRec{kind: TypeFloatReg, param: 64}},
	}
	for _, tt := range cases {
		got, err := mapType(tt.in)
		if err != nil {
			t.Errorf("mapType(%s) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("mapType(%s) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMapTypeRejects(t *testing.T) {
	cases := []graph.TypeDesc{
		{Kind: graph.KindInt, Param: 0},
		{Kind: graph.KindInt, Param: 65},
		{Kind: graph.KindIntArray, Param: 0},
		{Kind: graph.KindIntArray, Param: 65},
		{Kind: graph.KindFloatArray, Param: 16},
		{Kind: 0x7F},
	}
	for _, tt := range cases {
		if _, err := mapType(tt); err == nil {
			t.Errorf("mapType(%s) succeeded, want error", tt)
		}
	}
}

package dot

import (
	"strings"
	"testing"

	"github.com/hugrlab/jeffc/pkg/graph"
)

func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	root := g.AddRegion(graph.NoNode, 0)
	i32 := g.AddType(graph.TypeDesc{Kind: graph.KindInt, Param: 32})
	a := g.AddNode(root, graph.OpIntConst, "A")
	out := g.AddOutput(a, i32, false)
	b := g.AddNode(root, graph.OpIntAdd, "B")
	in := g.AddInput(b, i32, false)
	g.AddEdge(root, out, in)
	return g
}

func TestToDOTLinearChain(t *testing.T) {
	got := ToDOT(chainGraph(t), Options{})
	for _, want := range []string{
		"digraph jeff {",
		"rankdir=TB;",
		"\"n0\" [label=\"A\"];",
		"\"n1\" [label=\"B\"];",
		"\"n0\" -> \"n1\";",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestToDOTDirection(t *testing.T) {
	got := ToDOT(chainGraph(t), Options{Direction: "LR"})
	if !strings.Contains(got, "rankdir=LR;") {
		t.Errorf("output missing LR rankdir:\n%s", got)
	}
}

func TestToDOTTypeLabels(t *testing.T) {
	got := ToDOT(chainGraph(t), Options{Types: true})
	if want := "\"n0\" -> \"n1\" [label=\"int32\"];"; !strings.Contains(got, want) {
		t.Errorf("output missing %q:\n%s", want, got)
	}
}

func TestToDOTClusters(t *testing.T) {
	g := graph.New()
	root := g.AddRegion(graph.NoNode, 0)
	qb := g.AddType(graph.TypeDesc{Kind: graph.KindQubit})
	i1 := g.AddType(graph.TypeDesc{Kind: graph.KindInt, Param: 1})

	fn := g.AddNode(root, graph.OpFuncDefn, "main")
	g.AddInput(fn, qb, true)
	g.AddOutput(fn, i1, false)
	body := g.AddRegion(fn, 0)
	src := g.AddSource(body, qb, true)
	res := g.AddResult(body, i1, false)
	m := g.AddNode(body, graph.OpQubitMeasure, "")
	mIn := g.AddInput(m, qb, true)
	mOut := g.AddOutput(m, i1, false)
	g.AddEdge(body, src, mIn)
	g.AddEdge(body, mOut, res)

	got := ToDOT(g, Options{})
	for _, want := range []string{
		"subgraph cluster_1 {",
		"label=\"main\";",
		"\"r1_in\" [label=\"in\", shape=ellipse",
		"\"r1_out\" [label=\"out\", shape=ellipse",
		"\"r1_in\" -> \"n1\";",
		"\"n1\" -> \"r1_out\";",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestToDOTMultiRegionClusterLabels(t *testing.T) {
	g := graph.New()
	root := g.AddRegion(graph.NoNode, 0)
	i32 := g.AddType(graph.TypeDesc{Kind: graph.KindInt, Param: 32})

	sw := g.AddNode(root, graph.OpSwitch, "route")
	g.AddInput(sw, i32, false)
	g.AddInput(sw, i32, false)
	g.AddOutput(sw, i32, false)
	for slot := 0; slot < 2; slot++ {
		r := g.AddRegion(sw, slot)
		s := g.AddSource(r, i32, false)
		d := g.AddResult(r, i32, false)
		g.AddEdge(r, s, d)
	}

	got := ToDOT(g, Options{})
	for _, want := range []string{
		"\"n0\" [label=\"route\", style=\"rounded,filled,dashed\"",
		"label=\"route: case 0\";",
		"label=\"route: case 1\";",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestToDOTEmptyGraph(t *testing.T) {
	got := ToDOT(graph.New(), Options{})
	if !strings.HasPrefix(got, "digraph jeff {\n") || !strings.HasSuffix(got, "}\n") {
		t.Errorf("empty graph rendered:\n%s", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := `<svg width="216pt" height="116pt" viewBox="0.00 0.00 216.00 116.00" xmlns="http://www.w3.org/2000/svg"><g></g></svg>`
	got := string(normalizeViewBox([]byte(in)))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 216.00 116.00" width="216" height="116"><g></g></svg>`
	if got != want {
		t.Errorf("normalizeViewBox:\n%s\nwant:\n%s", got, want)
	}

	plain := `<svg><g></g></svg>`
	if got := string(normalizeViewBox([]byte(plain))); got != plain {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

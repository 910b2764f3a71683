package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hugrlab/jeffc/pkg/graph"
	"github.com/hugrlab/jeffc/pkg/jeff"
)

// writeContainer writes a valid container (a one-qubit function with a
// Hadamard and a measurement) to dir and returns its path.
func writeContainer(t *testing.T, dir, name string) string {
	t.Helper()
	w := jeff.NewWriter()
	tQubit := w.Type(jeff.TypeQubit, 0)
	tBit := w.Type(jeff.TypeInt, 1)

	root := w.Root()
	fn := w.Node(root, uint16(graph.OpFuncDefn), "main")
	w.Input(fn, tQubit)
	w.Output(fn, tBit)

	body := w.Region(fn, 0)
	src := w.Source(body, tQubit)
	res := w.Result(body, tBit)

	h := w.Node(body, uint16(graph.OpGate), "h", w.GateAttrs("h", 1, 0, 0, false, 1)...)
	hIn := w.Input(h, tQubit)
	hOut := w.Output(h, tQubit)
	m := w.Node(body, uint16(graph.OpQubitMeasure), "m")
	mIn := w.Input(m, tQubit)
	mOut := w.Output(m, tBit)

	w.Edge(body, src, hIn)
	w.Edge(body, hOut, mIn)
	w.Edge(body, mOut, res)

	return writeFixture(t, dir, name, w.Encode())
}

// writeAliasedContainer writes a container whose linear qubit output
// feeds two consumers, so it builds but fails validation.
func writeAliasedContainer(t *testing.T, dir, name string) string {
	t.Helper()
	w := jeff.NewWriter()
	tQubit := w.Type(jeff.TypeQubit, 0)
	root := w.Root()
	alloc := w.Node(root, uint16(graph.OpQubitAlloc), "q")
	out := w.Output(alloc, tQubit)
	f1 := w.Node(root, uint16(graph.OpQubitFree), "f1")
	f2 := w.Node(root, uint16(graph.OpQubitFree), "f2")
	w.Edge(root, out, w.Input(f1, tQubit))
	w.Edge(root, out, w.Input(f2, tQubit))
	return writeFixture(t, dir, name, w.Encode())
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// runRoot executes the command tree with args, isolating the cache in
// its own temp directory.
func runRoot(t *testing.T, args ...string) error {
	t.Helper()
	return runRootWithCache(t, t.TempDir(), args...)
}

// runRootWithCache executes the command tree with the file cache rooted
// at cacheDir, so tests can share a cache across invocations.
func runRootWithCache(t *testing.T, cacheDir string, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(append(args, "--cache-dir", cacheDir))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// Package hugr encodes validated program graphs into the Hugr envelope,
// the binary form consumed by downstream Hugr tooling.
//
// # Envelope Layout
//
// An envelope is a twelve-byte header followed by one payload:
//
//	magic   [4]byte  "HUGR"
//	version uint16   currently 1
//	flags   uint16   bit 0 set when the payload is zstd-compressed
//	paylen  uint32   stored byte length of the payload
//
// The payload carries five tables in a fixed order: strings, types,
// nodes, edges, links. Nodes are implicitly indexed by emission order and
// name their operation by string-table reference ("core.FuncDefn",
// "tket.H", "arith.fadd", ...). Links record static relations that are
// not dataflow: constant loads and function calls.
//
// # Encoding
//
// [Encode] walks a graph once in arena order and emits the envelope.
// The walk is deterministic: the same graph and options produce
// byte-identical output on every run. Hierarchy is made explicit the way
// the target expects it - the root region becomes a core.Module node,
// regions with boundary ports grow core.Input and core.Output children,
// conditional branches are wrapped in core.Case, loop bodies in core.DFG,
// and constants split into a core.Const definition with a
// core.LoadConstant use.
//
// Constructs with no target equivalent (unknown opcodes, unsupported
// float operations, unmappable types) fail with an [*EncodeError] naming
// the offending node and operation. Structural problems are not detected
// here; callers validate first.
package hugr

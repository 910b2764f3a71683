// Package graph holds the hierarchical program graph shared by every
// conversion stage: the builder produces it from decoded records, the
// validator checks it, and the encoder and renderers consume it.
//
// # Shape
//
// A [Graph] is a set of arenas (nodes, ports, edges, regions, types)
// addressed by small integer IDs that stay stable for the life of the
// graph. Child-to-parent links are plain IDs, never pointers, so the
// whole structure is freely indexable without ownership cycles.
//
// Nodes live in exactly one [Region] and carry ordered, typed ports.
// Hierarchical operations (function definitions, conditionals, loops)
// own one or more child regions; region membership forms a tree rooted
// at the module region. A region's boundary is a pair of port lists:
// sources face the interior as outputs (values entering) and results
// face it as inputs (values leaving). Every [Edge] lives in one region
// and connects an output port to an input port visible there - a port
// of a node in that region, or a boundary port of the region itself.
// Values cross region boundaries only through boundary ports.
//
// # Construction
//
// [Build] assembles a graph from flat [jeff.Records] in two passes:
// the first instantiates regions, nodes, ports, and types and records
// every key-to-ID mapping, the second resolves cross-references (port
// owners, edge endpoints, region ownership) through those maps. A key
// that resolves nowhere fails the build with a [BuildError] naming it;
// so does a key declared twice. Explicit position fields order nodes,
// ports, and sibling regions; declaration order only breaks ties.
//
// Graphs can also be assembled directly through the Add methods, which
// is how tests produce deliberately broken graphs for the validator.
//
// # Validation
//
// [Validate] never mutates and never stops early: it returns every
// structural violation it can find as a [ValidationError] list in
// deterministic arena order. A graph that validates cleanly is safe
// to hand to any consumer in this module.
//
// # Concurrency
//
// A Graph is built single-threaded and read-only afterwards; nothing
// in this module mutates a graph once its build returns. Concurrent
// readers are safe on that contract. Distinct conversions never share
// a graph.
package graph

// Package mermaid renders a program graph as Mermaid flowchart text.
//
// # Output Shape
//
// The output is a single flowchart document. Plain nodes become one
// declaration line each, hierarchical nodes become subgraph blocks with
// their regions nested inside, and every dataflow edge becomes one
// arrow line inside the region it belongs to. Regions with boundary
// ports get stadium-shaped "in" and "out" terminals so edges crossing
// the boundary have something to attach to.
//
// Node identifiers are derived from node names where those are present
// and unique after sanitizing; everything else falls back to the arena
// index. The walk follows arena order throughout, so the same graph
// always renders to the same text.
//
// [Lines] exposes the document line by line as a restartable iterator;
// [Render] joins it into a string.
package mermaid

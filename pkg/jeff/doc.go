// Package jeff reads and writes the jeff container format, the binary
// interchange encoding for hybrid quantum/classical program graphs.
//
// # Container Layout
//
// A container is a fixed eight-byte header followed by tagged segments:
//
//	magic    [4]byte  "JEFF"
//	version  uint16   currently 1
//	reserved uint16   must be zero
//	segments repeated { tag uint8, length uint32, payload [length]byte }
//
// All integers are little-endian. Each segment appears at most once, in
// strictly ascending tag order: strings, types, regions, nodes, ports,
// edges, metadata. The strings segment is a positional table; every other
// segment may reference it by index.
//
// # Decoding
//
// [Decode] turns a byte slice into flat [Records]: one slice per record
// kind, in file order, with every cross-reference (node keys, port keys,
// region keys, type indices) left as the raw integer found on the wire.
// Decoding validates framing only - magic, version, segment order and
// bounds, record field ranges, string-table references. It never checks
// whether a referenced key exists; that is the graph builder's job.
// Framing violations fail with a [DecodeError] carrying the byte offset
// of the offending field.
//
// # Encoding
//
// [Records.Encode] is the inverse: it serializes records back to canonical
// container bytes (segments in tag order, empty segments omitted). For
// records produced by [Decode] from a canonical container, Encode returns
// byte-identical output. [Writer] builds records programmatically, handing
// out keys and string-table indices so callers never manage either.
package jeff

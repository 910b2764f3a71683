package jeff

import (
	"encoding/binary"
	"fmt"
)

// DecodeError reports a framing violation found while decoding a container.
// Offset is the byte position of the offending field in the input.
type DecodeError struct {
	Offset int64
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("jeff: %s at byte %d", e.Msg, e.Offset)
}

func decodeErrf(at int, format string, args ...any) *DecodeError {
	return &DecodeError{Offset: int64(at), Msg: fmt.Sprintf(format, args...)}
}

const (
	headerSize        = 8
	segmentHeaderSize = 5
)

// Decode parses a jeff container into flat records. It validates framing
// only: header fields, segment order and bounds, per-record field ranges,
// and string-table references. Keys that cross-reference other records are
// returned raw and unchecked. The input slice is not retained; string
// payloads are copied.
func Decode(data []byte) (*Records, error) {
	if len(data) < headerSize {
		return nil, decodeErrf(len(data), "truncated header: need %d bytes, have %d", headerSize, len(data))
	}
	if string(data[:4]) != Magic {
		return nil, decodeErrf(0, "bad magic %q, want %q", data[:4], Magic)
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != Version {
		return nil, decodeErrf(4, "unsupported version %d, want %d", v, Version)
	}
	if rsv := binary.LittleEndian.Uint16(data[6:8]); rsv != 0 {
		return nil, decodeErrf(6, "reserved field is %#x, want 0", rsv)
	}

	rec := &Records{}
	r := &reader{data: data, off: headerSize, limit: len(data)}
	lastTag := 0
	for r.off < len(data) {
		if len(data)-r.off < segmentHeaderSize {
			return nil, decodeErrf(r.off, "truncated segment header: %d trailing bytes", len(data)-r.off)
		}
		tagAt := r.off
		tag := r.u8("segment tag")
		length := r.u32("segment length")
		end := r.off + int(length)
		if end > len(data) {
			return nil, decodeErrf(tagAt+1, "segment 0x%02x length %d overruns input (%d bytes remain)", tag, length, len(data)-r.off)
		}
		if int(tag) <= lastTag {
			return nil, decodeErrf(tagAt, "segment 0x%02x duplicated or out of order", tag)
		}
		lastTag = int(tag)
		r.limit = end

		var err error
		switch tag {
		case SegStrings:
			err = r.strings(rec)
		case SegTypes:
			err = r.types(rec)
		case SegRegions:
			err = r.regions(rec)
		case SegNodes:
			err = r.nodes(rec)
		case SegPorts:
			err = r.ports(rec)
		case SegEdges:
			err = r.edges(rec)
		case SegMeta:
			err = r.meta(rec)
		default:
			return nil, decodeErrf(tagAt, "unknown segment tag 0x%02x", tag)
		}
		if err != nil {
			return nil, err
		}
		if r.off != end {
			return nil, decodeErrf(r.off, "segment 0x%02x has %d unread payload bytes", tag, end-r.off)
		}
		r.limit = len(data)
	}
	return rec, nil
}

// =============================================================================
// SEGMENT PARSERS
// =============================================================================

func (r *reader) strings(rec *Records) error {
	n := r.count("string")
	for i := 0; i < n && r.err == nil; i++ {
		rec.Strings = append(rec.Strings, r.str("string entry"))
	}
	return r.err
}

func (r *reader) types(rec *Records) error {
	n := r.count("type")
	for i := 0; i < n && r.err == nil; i++ {
		var t TypeRecord
		at := r.off
		t.Kind = r.u8("type kind")
		if r.err == nil && (t.Kind < TypeQubit || t.Kind > TypeFloatArray) {
			return decodeErrf(at, "unknown type kind 0x%02x", t.Kind)
		}
		t.Param = r.u8("type param")
		if r.err == nil {
			rec.Types = append(rec.Types, t)
		}
	}
	return r.err
}

func (r *reader) regions(rec *Records) error {
	n := r.count("region")
	for i := 0; i < n && r.err == nil; i++ {
		var rr RegionRecord
		rr.Key = r.u32("region key")
		rr.OwnerNode = r.u32("region owner")
		rr.Slot = r.u32("region slot")
		if r.err == nil {
			rec.Regions = append(rec.Regions, rr)
		}
	}
	return r.err
}

func (r *reader) nodes(rec *Records) error {
	n := r.count("node")
	for i := 0; i < n && r.err == nil; i++ {
		var nr NodeRecord
		nr.Key = r.u32("node key")
		nr.Opcode = r.u16("node opcode")
		nr.NameRef = r.strRef("node name ref", rec, true)
		nr.RegionKey = r.u32("node region key")
		nr.Position = r.u32("node position")
		attrs := int(r.u16("node attr count"))
		for j := 0; j < attrs && r.err == nil; j++ {
			var a Attr
			a.Tag = r.u8("attr tag")
			a.Data = r.bytes(int(r.u32("attr length")), "attr payload")
			if r.err == nil {
				nr.Attrs = append(nr.Attrs, a)
			}
		}
		if r.err == nil {
			rec.Nodes = append(rec.Nodes, nr)
		}
	}
	return r.err
}

func (r *reader) ports(rec *Records) error {
	n := r.count("port")
	for i := 0; i < n && r.err == nil; i++ {
		var pr PortRecord
		pr.Key = r.u32("port key")
		pr.OwnerKind = r.enum("port owner kind", OwnerRegion)
		pr.OwnerKey = r.u32("port owner key")
		pr.Dir = r.enum("port direction", DirOut)
		pr.Index = r.u16("port index")
		pr.TypeRef = r.typeRef("port type ref", rec)
		at := r.off
		pr.Flags = r.u8("port flags")
		if r.err == nil && pr.Flags&^FlagLinear != 0 {
			return decodeErrf(at, "unknown port flag bits 0x%02x", pr.Flags&^FlagLinear)
		}
		if r.err == nil {
			rec.Ports = append(rec.Ports, pr)
		}
	}
	return r.err
}

func (r *reader) edges(rec *Records) error {
	n := r.count("edge")
	for i := 0; i < n && r.err == nil; i++ {
		var er EdgeRecord
		er.Key = r.u32("edge key")
		er.RegionKey = r.u32("edge region key")
		er.SrcPort = r.u32("edge source port")
		er.DstPort = r.u32("edge target port")
		if r.err == nil {
			rec.Edges = append(rec.Edges, er)
		}
	}
	return r.err
}

func (r *reader) meta(rec *Records) error {
	n := r.count("meta")
	for i := 0; i < n && r.err == nil; i++ {
		var mr MetaRecord
		mr.KeyRef = r.strRef("meta key ref", rec, false)
		mr.ValueRef = r.strRef("meta value ref", rec, false)
		if r.err == nil {
			rec.Meta = append(rec.Meta, mr)
		}
	}
	return r.err
}

// =============================================================================
// PRIMITIVE READER
// =============================================================================

// reader walks the input with a sticky error. limit fences reads to the
// current segment so a corrupt count cannot silently consume the next one.
type reader struct {
	data  []byte
	off   int
	limit int
	err   error
}

func (r *reader) need(n int, what string) bool {
	if r.err != nil {
		return false
	}
	if r.limit-r.off < n {
		r.err = decodeErrf(r.off, "truncated %s: need %d bytes, have %d", what, n, r.limit-r.off)
		return false
	}
	return true
}

func (r *reader) u8(what string) uint8 {
	if !r.need(1, what) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *reader) u16(what string) uint16 {
	if !r.need(2, what) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) u32(what string) uint32 {
	if !r.need(4, what) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) bytes(n int, what string) []byte {
	if n < 0 || !r.need(n, what) {
		return nil
	}
	v := make([]byte, n)
	copy(v, r.data[r.off:])
	r.off += n
	return v
}

func (r *reader) str(what string) string {
	n := int(r.u32(what + " length"))
	if !r.need(n, what) {
		return ""
	}
	v := string(r.data[r.off : r.off+n])
	r.off += n
	return v
}

func (r *reader) count(what string) int {
	return int(r.u32(what + " count"))
}

// enum reads a byte and rejects values above max.
func (r *reader) enum(what string, max uint8) uint8 {
	at := r.off
	v := r.u8(what)
	if r.err == nil && v > max {
		r.err = decodeErrf(at, "invalid %s %d", what, v)
	}
	return v
}

// strRef reads a string-table reference and bounds-checks it. NoKey passes
// when allowNone is set.
func (r *reader) strRef(what string, rec *Records, allowNone bool) uint32 {
	at := r.off
	ref := r.u32(what)
	if r.err != nil {
		return ref
	}
	if ref == NoKey {
		if !allowNone {
			r.err = decodeErrf(at, "%s must not be empty", what)
		}
		return ref
	}
	if int(ref) >= len(rec.Strings) {
		r.err = decodeErrf(at, "%s %d outside string table (%d entries)", what, ref, len(rec.Strings))
	}
	return ref
}

// typeRef reads a type-table index and bounds-checks it.
func (r *reader) typeRef(what string, rec *Records) uint32 {
	at := r.off
	ref := r.u32(what)
	if r.err == nil && int(ref) >= len(rec.Types) {
		r.err = decodeErrf(at, "%s %d outside type table (%d entries)", what, ref, len(rec.Types))
	}
	return ref
}

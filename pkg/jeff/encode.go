package jeff

import "encoding/binary"

// Encode serializes the records to canonical container bytes: header, then
// non-empty segments in tag order, entries in slice order. Encode does not
// validate cross-references; it writes whatever the records carry, so
// Decode(r.Encode()) reproduces r exactly whenever r itself decodes.
func (r *Records) Encode() []byte {
	c := &coder{}
	c.raw([]byte(Magic))
	c.u16(Version)
	c.u16(0)

	if len(r.Strings) > 0 {
		p := &coder{}
		p.u32(uint32(len(r.Strings)))
		for _, s := range r.Strings {
			p.str(s)
		}
		c.segment(SegStrings, p.buf)
	}
	if len(r.Types) > 0 {
		p := &coder{}
		p.u32(uint32(len(r.Types)))
		for _, t := range r.Types {
			p.u8(t.Kind)
			p.u8(t.Param)
		}
		c.segment(SegTypes, p.buf)
	}
	if len(r.Regions) > 0 {
		p := &coder{}
		p.u32(uint32(len(r.Regions)))
		for _, rr := range r.Regions {
			p.u32(rr.Key)
			p.u32(rr.OwnerNode)
			p.u32(rr.Slot)
		}
		c.segment(SegRegions, p.buf)
	}
	if len(r.Nodes) > 0 {
		p := &coder{}
		p.u32(uint32(len(r.Nodes)))
		for _, nr := range r.Nodes {
			p.u32(nr.Key)
			p.u16(nr.Opcode)
			p.u32(nr.NameRef)
			p.u32(nr.RegionKey)
			p.u32(nr.Position)
			p.u16(uint16(len(nr.Attrs)))
			for _, a := range nr.Attrs {
				p.u8(a.Tag)
				p.u32(uint32(len(a.Data)))
				p.raw(a.Data)
			}
		}
		c.segment(SegNodes, p.buf)
	}
	if len(r.Ports) > 0 {
		p := &coder{}
		p.u32(uint32(len(r.Ports)))
		for _, pr := range r.Ports {
			p.u32(pr.Key)
			p.u8(pr.OwnerKind)
			p.u32(pr.OwnerKey)
			p.u8(pr.Dir)
			p.u16(pr.Index)
			p.u32(pr.TypeRef)
			p.u8(pr.Flags)
		}
		c.segment(SegPorts, p.buf)
	}
	if len(r.Edges) > 0 {
		p := &coder{}
		p.u32(uint32(len(r.Edges)))
		for _, er := range r.Edges {
			p.u32(er.Key)
			p.u32(er.RegionKey)
			p.u32(er.SrcPort)
			p.u32(er.DstPort)
		}
		c.segment(SegEdges, p.buf)
	}
	if len(r.Meta) > 0 {
		p := &coder{}
		p.u32(uint32(len(r.Meta)))
		for _, mr := range r.Meta {
			p.u32(mr.KeyRef)
			p.u32(mr.ValueRef)
		}
		c.segment(SegMeta, p.buf)
	}
	return c.buf
}

// coder appends little-endian fields to a growing buffer.
type coder struct {
	buf []byte
}

func (c *coder) u8(v uint8)   { c.buf = append(c.buf, v) }
func (c *coder) u16(v uint16) { c.buf = binary.LittleEndian.AppendUint16(c.buf, v) }
func (c *coder) u32(v uint32) { c.buf = binary.LittleEndian.AppendUint32(c.buf, v) }
func (c *coder) raw(p []byte) { c.buf = append(c.buf, p...) }

func (c *coder) str(s string) {
	c.u32(uint32(len(s)))
	c.buf = append(c.buf, s...)
}

func (c *coder) segment(tag uint8, payload []byte) {
	c.u8(tag)
	c.u32(uint32(len(payload)))
	c.raw(payload)
}

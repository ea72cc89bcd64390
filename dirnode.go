package zkfs

import "github.com/maco144/zkfs-go/internal/wire"

// EncodeDirNode serializes a DirNode into an envelope tagged TagDirNode.
//
// Payload: smt_root(32) | has_group(1) | [group_id(32) if has_group=1] |
// created(6 BE) | modified(6 BE).
func EncodeDirNode(n DirNode) []byte {
	hint := 32 + 1 + 6 + 6
	if n.GroupID != nil {
		hint += 32
	}
	w := newWriter(hint)
	w.hash(n.SMTRoot)
	if n.GroupID != nil {
		w.byte(1)
		w.hash(*n.GroupID)
	} else {
		w.byte(0)
	}
	w.timestamp(n.Created)
	w.timestamp(n.Modified)
	return wire.Encode(wire.TagDirNode, w.bytes())
}

// DecodeDirNode parses an envelope, verifying its tag is TagDirNode, and
// decodes the payload into a DirNode.
func DecodeDirNode(b []byte) (DirNode, error) {
	var n DirNode
	env, err := decodeEnvelope(b, wire.TagDirNode)
	if err != nil {
		return n, err
	}
	r := newReader(env.Payload)

	if n.SMTRoot, err = r.hash(); err != nil {
		return n, err
	}
	hasGroup, err := r.byte()
	if err != nil {
		return n, err
	}
	switch hasGroup {
	case 0:
		n.GroupID = nil
	case 1:
		g, err := r.hash()
		if err != nil {
			return n, err
		}
		n.GroupID = &g
	default:
		return n, ErrMalformed
	}
	if n.Created, err = r.timestamp(); err != nil {
		return n, err
	}
	if n.Modified, err = r.timestamp(); err != nil {
		return n, err
	}
	if !r.atEnd() {
		return n, ErrTruncated
	}
	return n, nil
}

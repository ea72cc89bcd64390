package zkfs

import "github.com/maco144/zkfs-go/internal/wire"

// EncodeFileNode serializes a FileNode into an envelope tagged TagFileNode.
//
// Payload: content_hash(32) | created(6 BE) | modified(6 BE) | size(varint) |
// chunk_count(varint) | chunk_refs, where each ChunkRef is
// index(varint) | hash(32) | blob_address(32) | nonce(24).
func EncodeFileNode(n FileNode) []byte {
	w := newWriter(32 + 6 + 6 + 10 + 10 + len(n.Chunks)*(10+32+32+24))
	w.hash(n.ContentHash)
	w.timestamp(n.Created)
	w.timestamp(n.Modified)
	w.varint(n.Size)
	w.varint(uint64(len(n.Chunks)))
	for _, c := range n.Chunks {
		w.varint(c.Index)
		w.hash(c.Hash)
		w.hash(c.BlobAddress)
		w.nonce(c.Nonce)
	}
	return wire.Encode(wire.TagFileNode, w.bytes())
}

// DecodeFileNode parses an envelope, verifying its tag is TagFileNode, and
// decodes the payload into a FileNode. Chunk order is preserved.
func DecodeFileNode(b []byte) (FileNode, error) {
	var n FileNode
	env, err := decodeEnvelope(b, wire.TagFileNode)
	if err != nil {
		return n, err
	}
	r := newReader(env.Payload)

	if n.ContentHash, err = r.hash(); err != nil {
		return n, err
	}
	if n.Created, err = r.timestamp(); err != nil {
		return n, err
	}
	if n.Modified, err = r.timestamp(); err != nil {
		return n, err
	}
	if n.Size, err = r.varint(); err != nil {
		return n, err
	}
	count, err := r.varint()
	if err != nil {
		return n, err
	}
	n.Chunks = make([]ChunkRef, 0, count)
	for i := uint64(0); i < count; i++ {
		var c ChunkRef
		if c.Index, err = r.varint(); err != nil {
			return n, err
		}
		if c.Hash, err = r.hash(); err != nil {
			return n, err
		}
		if c.BlobAddress, err = r.hash(); err != nil {
			return n, err
		}
		if c.Nonce, err = r.nonce(); err != nil {
			return n, err
		}
		n.Chunks = append(n.Chunks, c)
	}
	if !r.atEnd() {
		return n, ErrTruncated
	}
	return n, nil
}

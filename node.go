package zkfs

import (
	"github.com/maco144/zkfs-go/internal/legacy"
	"github.com/maco144/zkfs-go/internal/wire"
)

// Node is the closed sum type over the two node kinds a directory entry can
// point to.
type Node struct {
	File *FileNode
	Dir  *DirNode
}

// EncodeNode always writes the binary envelope form, regardless of how the
// input might once have been represented.
func EncodeNode(n Node) ([]byte, error) {
	switch {
	case n.File != nil:
		return EncodeFileNode(*n.File), nil
	case n.Dir != nil:
		return EncodeDirNode(*n.Dir), nil
	default:
		return nil, ErrMalformed
	}
}

// DecodeNode auto-detects binary envelopes versus the legacy textual form by
// leading magic bytes and decodes accordingly.
func DecodeNode(b []byte) (Node, error) {
	if !wire.HasMagic(b) {
		return decodeLegacyNode(b)
	}
	env, err := wire.Decode(b)
	if err != nil {
		return Node{}, translateWireErr(err)
	}
	switch env.Tag {
	case wire.TagFileNode:
		fn, err := DecodeFileNode(b)
		if err != nil {
			return Node{}, err
		}
		return Node{File: &fn}, nil
	case wire.TagDirNode:
		dn, err := DecodeDirNode(b)
		if err != nil {
			return Node{}, err
		}
		return Node{Dir: &dn}, nil
	default:
		return Node{}, ErrBadTag
	}
}

// decodeLegacyNode parses the pre-existing textual representation, which
// encodes byte arrays as {"__uint8array": [...]}.
func decodeLegacyNode(b []byte) (Node, error) {
	rec, err := legacy.Parse(b)
	if err != nil {
		return Node{}, ErrMalformed
	}
	switch rec.Type {
	case legacy.TypeFile:
		fn := FileNode{
			ContentHash: Hash(rec.Bytes("contentHash", HashSize)),
			Size:        rec.Uint("size"),
			Created:     Timestamp(rec.Uint("created")),
			Modified:    Timestamp(rec.Uint("modified")),
		}
		for _, c := range rec.Array("chunks") {
			fn.Chunks = append(fn.Chunks, ChunkRef{
				Index:       c.Uint("index"),
				Hash:        Hash(c.Bytes("hash", HashSize)),
				BlobAddress: Hash(c.Bytes("blobAddress", HashSize)),
				Nonce:       Nonce(c.Bytes("nonce", NonceSize)),
			})
		}
		return Node{File: &fn}, nil
	case legacy.TypeDir:
		dn := DirNode{
			SMTRoot:  Hash(rec.Bytes("smtRoot", HashSize)),
			Created:  Timestamp(rec.Uint("created")),
			Modified: Timestamp(rec.Uint("modified")),
		}
		if rec.Has("groupId") {
			g := Hash(rec.Bytes("groupId", HashSize))
			dn.GroupID = &g
		}
		return Node{Dir: &dn}, nil
	default:
		return Node{}, ErrMalformed
	}
}

package compress

import (
	zkfs "github.com/maco144/zkfs-go"
	"github.com/maco144/zkfs-go/internal/varint"
	"github.com/maco144/zkfs-go/internal/wire"
)

// Method names the strategy recorded in a CompressedBlob's method byte.
type Method byte

const (
	MethodNone               Method = 0x00
	MethodExternal           Method = 0x01
	MethodDictionary         Method = 0x02
	MethodDictionaryExternal Method = 0x03
)

// ContentType classifies the plaintext a CompressedBlob was built from. It
// is persisted for diagnostic purposes and never affects decompression.
type ContentType byte

const (
	ContentBinary ContentType = 0x00
	ContentJSON   ContentType = 0x01
	ContentText   ContentType = 0x02
)

// CompressedBlob is the envelope's fifth record kind: a negotiated
// compression result plus enough bookkeeping to reverse it.
type CompressedBlob struct {
	Method        Method
	ContentType   ContentType
	OriginalSize  uint64
	CompressedLen uint64
	Data          []byte
}

// EncodeCompressedBlob serializes b into an envelope tagged
// TagCompressedBlob.
//
// Payload: method(1) | content_type(1) | original_size(varint) |
// compressed_len(varint) | data(compressed_len bytes).
func EncodeCompressedBlob(b CompressedBlob) []byte {
	payload := make([]byte, 0, 2+20+len(b.Data))
	payload = append(payload, byte(b.Method), byte(b.ContentType))
	payload = varint.Encode(payload, b.OriginalSize)
	payload = varint.Encode(payload, b.CompressedLen)
	payload = append(payload, b.Data...)
	return wire.Encode(wire.TagCompressedBlob, payload)
}

// DecodeCompressedBlob parses an envelope, verifying its tag is
// TagCompressedBlob, and decodes the payload into a CompressedBlob.
func DecodeCompressedBlob(b []byte) (CompressedBlob, error) {
	var cb CompressedBlob
	env, err := wire.Decode(b)
	if err != nil {
		return cb, translateWireErr(err)
	}
	if env.Tag != wire.TagCompressedBlob {
		return cb, zkfs.ErrBadTag
	}
	p := env.Payload
	if len(p) < 2 {
		return cb, zkfs.ErrTruncated
	}
	cb.Method = Method(p[0])
	cb.ContentType = ContentType(p[1])
	off := 2

	size, n, err := varint.Decode(p, off)
	if err != nil {
		return cb, translateVarintErr(err)
	}
	cb.OriginalSize = size
	off += n

	clen, n, err := varint.Decode(p, off)
	if err != nil {
		return cb, translateVarintErr(err)
	}
	cb.CompressedLen = clen
	off += n

	if off+int(clen) > len(p) {
		return cb, zkfs.ErrTruncated
	}
	cb.Data = append([]byte(nil), p[off:off+int(clen)]...)
	return cb, nil
}

func translateWireErr(err error) error {
	switch err {
	case wire.ErrTooShort:
		return zkfs.ErrTruncated
	case wire.ErrBadMagic:
		return zkfs.ErrBadMagic
	case wire.ErrBadVersion:
		return zkfs.ErrBadVersion
	case wire.ErrBadCrc:
		return zkfs.ErrBadCrc
	default:
		return err
	}
}

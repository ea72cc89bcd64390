package codec

import (
	zkfscompress "github.com/maco144/zkfs-go/compress"
)

// Envelope adapts a zkfs Encode*/Decode* pair into a Codec[T], so a cache
// built on it stores exactly the bytes zkfs would write to the blob store.
//
// The zero value is NOT ready to use. Construct with NewEnvelope.
type Envelope[T any] struct {
	encode func(T) []byte
	decode func([]byte) (T, error)
}

var _ Codec[struct{}] = Envelope[struct{}]{}

// NewEnvelope builds an Envelope[T] codec from a zkfs Encode*/Decode* pair,
// e.g. NewEnvelope(zkfs.EncodeFileNode, zkfs.DecodeFileNode).
func NewEnvelope[T any](encode func(T) []byte, decode func([]byte) (T, error)) Envelope[T] {
	return Envelope[T]{encode: encode, decode: decode}
}

// Encode writes v's zkfs envelope bytes. Always succeeds: zkfs's Encode*
// functions have no error return.
func (e Envelope[T]) Encode(v T) ([]byte, error) { return e.encode(v), nil }

// Decode parses a zkfs envelope into a T.
func (e Envelope[T]) Decode(b []byte) (T, error) { return e.decode(b) }

// CompressedEnvelope wraps an Envelope[T] and runs its output through the
// blob compression pipeline before storage and back through it on read, so
// a byte-budgeted provider (bigcache, ristretto) stores a compressed
// zkfs envelope rather than a raw one.
//
// The zero value is NOT ready to use. Construct with NewCompressedEnvelope.
type CompressedEnvelope[T any] struct {
	inner Envelope[T]
	opts  zkfscompress.Options
}

var _ Codec[struct{}] = CompressedEnvelope[struct{}]{}

// NewCompressedEnvelope builds a CompressedEnvelope[T] codec. dict and the
// two fallback functions are forwarded to the compression pipeline
// verbatim; any of them may be nil, in which case the pipeline methods
// that depend on it are simply unreachable on encode and fail with
// ErrMissingCollaborator on decode, per the pipeline's own contract.
func NewCompressedEnvelope[T any](
	encode func(T) []byte,
	decode func([]byte) (T, error),
	dict *zkfscompress.Dictionary,
	fallbackCompress func([]byte) ([]byte, error),
	fallbackDecompress func([]byte, int) ([]byte, error),
) CompressedEnvelope[T] {
	return CompressedEnvelope[T]{
		inner: NewEnvelope(encode, decode),
		opts: zkfscompress.Options{
			Dictionary:         dict,
			FallbackCompress:   fallbackCompress,
			FallbackDecompress: fallbackDecompress,
		},
	}
}

// Encode runs v's zkfs envelope bytes through the negotiated compression
// pipeline and returns the resulting CompressedBlob envelope.
func (c CompressedEnvelope[T]) Encode(v T) ([]byte, error) {
	raw, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return zkfscompress.CompressBlob(raw, c.opts)
}

// Decode reverses Encode: it decompresses the CompressedBlob envelope and
// parses the recovered bytes as a zkfs envelope.
func (c CompressedEnvelope[T]) Decode(b []byte) (T, error) {
	var zero T
	raw, err := zkfscompress.DecompressBlob(b, c.opts)
	if err != nil {
		return zero, err
	}
	return c.inner.Decode(raw)
}

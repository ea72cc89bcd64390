package zkfs

import (
	"bytes"

	"github.com/maco144/zkfs-go/internal/varint"
)

// reader walks a byte slice left to right, bounds-checking every field a
// record codec pulls off the wire. It never copies; callers that need to
// retain a field past the buffer's lifetime must copy it themselves.
type reader struct {
	b   []byte
	off int
}

func newReader(b []byte) *reader { return &reader{b: b} }

func (r *reader) fixed(n int) ([]byte, error) {
	if r.off+n > len(r.b) {
		return nil, ErrTruncated
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.fixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) hash() (Hash, error) {
	var h Hash
	b, err := r.fixed(HashSize)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (r *reader) nonce() (Nonce, error) {
	var n Nonce
	b, err := r.fixed(NonceSize)
	if err != nil {
		return n, err
	}
	copy(n[:], b)
	return n, nil
}

// timestamp reads a 6-byte (48-bit) big-endian timestamp.
func (r *reader) timestamp() (Timestamp, error) {
	b, err := r.fixed(6)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return Timestamp(v), nil
}

func (r *reader) varint() (uint64, error) {
	v, n, err := varint.Decode(r.b, r.off)
	if err != nil {
		if err == varint.ErrTooLarge {
			return 0, ErrTooLarge
		}
		return 0, ErrTruncated
	}
	r.off += n
	return v, nil
}

// atEnd reports whether every byte of the buffer has been consumed.
func (r *reader) atEnd() bool { return r.off == len(r.b) }

// writer accumulates a record payload in the teacher's fixed-buffer style:
// pre-sized where the caller can estimate capacity, fixed-width helpers for
// the wire's fixed-width fields.
type writer struct {
	buf bytes.Buffer
}

func newWriter(hint int) *writer {
	w := &writer{}
	w.buf.Grow(hint)
	return w
}

func (w *writer) raw(b []byte) { w.buf.Write(b) }

func (w *writer) byte(b byte) { w.buf.WriteByte(b) }

func (w *writer) hash(h Hash) { w.buf.Write(h[:]) }

func (w *writer) nonce(n Nonce) { w.buf.Write(n[:]) }

// timestamp writes t as a 6-byte (48-bit) big-endian value.
func (w *writer) timestamp(t Timestamp) {
	var b [6]byte
	v := uint64(t)
	for i := 5; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	w.buf.Write(b[:])
}

func (w *writer) varint(v uint64) {
	var tmp [10]byte
	w.buf.Write(varint.Encode(tmp[:0], v))
}

func (w *writer) bytes() []byte { return w.buf.Bytes() }

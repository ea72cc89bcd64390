package zkfs

import "github.com/maco144/zkfs-go/internal/wire"

// EncodeSMT serializes SMTData into an envelope tagged TagSMT.
//
// Payload: root(32) | entry_count(varint) | entries, where each entry is
// bit_len(varint) | path_bits(ceil(bit_len/8)) | value(32). Path bits pack
// most-significant-bit-first: logical bit 0 goes to bit 7 of byte 0.
func EncodeSMT(d SMTData) []byte {
	hint := 32 + 10
	for _, e := range d.Entries {
		hint += 10 + (len(e.Path)+7)/8 + 32
	}
	w := newWriter(hint)
	w.hash(d.Root)
	w.varint(uint64(len(d.Entries)))
	for _, e := range d.Entries {
		w.varint(uint64(len(e.Path)))
		w.raw(packBits(e.Path))
		w.hash(e.Value)
	}
	return wire.Encode(wire.TagSMT, w.bytes())
}

// DecodeSMT parses an envelope, verifying its tag is TagSMT, and decodes the
// payload into SMTData. Entry order is preserved.
func DecodeSMT(b []byte) (SMTData, error) {
	var d SMTData
	env, err := decodeEnvelope(b, wire.TagSMT)
	if err != nil {
		return d, err
	}
	r := newReader(env.Payload)

	if d.Root, err = r.hash(); err != nil {
		return d, err
	}
	count, err := r.varint()
	if err != nil {
		return d, err
	}
	d.Entries = make([]SMTEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		var e SMTEntry
		bitLen, err := r.varint()
		if err != nil {
			return d, err
		}
		packed, err := r.fixed(int((bitLen + 7) / 8))
		if err != nil {
			return d, err
		}
		e.Path = unpackBits(packed, int(bitLen))
		if e.Value, err = r.hash(); err != nil {
			return d, err
		}
		d.Entries = append(d.Entries, e)
	}
	if !r.atEnd() {
		return d, ErrTruncated
	}
	return d, nil
}

// packBits packs path into ceil(len(path)/8) bytes, MSB-first: path[0]
// becomes bit 7 of byte 0. Trailing unused bits in the final byte are left
// zero (the spec leaves their value on write unspecified).
func packBits(path []bool) []byte {
	out := make([]byte, (len(path)+7)/8)
	for i, bit := range path {
		if bit {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// unpackBits reverses packBits, reading exactly n bits and ignoring any
// trailing padding bits in the final byte.
func unpackBits(packed []byte, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = packed[i/8]&(1<<(7-uint(i%8))) != 0
	}
	return out
}

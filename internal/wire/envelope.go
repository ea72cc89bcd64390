// Package wire implements the envelope framing shared by every zkfs record
// kind: a short magic-tagged header, a tag-opaque payload, and a CRC-32
// trailer over everything that precedes it.
//
// Layout (big-endian):
//
//	magic(2="ZK") | version(1) | tag(1) | payload(n) | crc32(4)
//
// Decoders are written for bounds safety: every slice operation is
// preceded by a length check, and a mismatched field fails closed with a
// specific sentinel error rather than panicking. Decode returns a
// zero-copy subslice of the input as the payload; callers that need to
// retain it past the lifetime of the input buffer must copy it themselves.
//
package wire

import (
	"errors"

	"github.com/maco144/zkfs-go/internal/crc"
)

// Tag identifies the record kind carried by an envelope's payload.
type Tag byte

const (
	TagFileNode       Tag = 0x01
	TagDirNode        Tag = 0x02
	TagGroup          Tag = 0x03
	TagSMT            Tag = 0x04
	TagCompressedBlob Tag = 0x10
)

const (
	version byte = 0x01

	headerLen  = 4 // magic(2) + version(1) + tag(1)
	trailerLen = 4 // crc32
	minFrame   = headerLen + trailerLen
)

var magic = [2]byte{0x5A, 0x4B} // "ZK"

var (
	ErrTooShort   = errors.New("wire: envelope shorter than minimum frame")
	ErrBadMagic   = errors.New("wire: bad magic")
	ErrBadVersion = errors.New("wire: unsupported version")
	ErrBadCrc     = errors.New("wire: crc mismatch")
)

// HasMagic reports whether b starts with the envelope's magic bytes.
func HasMagic(b []byte) bool {
	return len(b) >= 2 && b[0] == magic[0] && b[1] == magic[1]
}

// Envelope is the result of a successful Decode: the tag byte and a borrow
// over the payload bytes (header and trailer excluded).
type Envelope struct {
	Tag     Tag
	Payload []byte
}

// Encode writes tag and payload into a single contiguous envelope buffer.
func Encode(tag Tag, payload []byte) []byte {
	out := make([]byte, 0, headerLen+len(payload)+trailerLen)
	out = append(out, magic[0], magic[1], version, byte(tag))
	out = append(out, payload...)
	return crc.AppendBE(out, out)
}

// Decode parses an envelope occupying the entirety of b. It fails with
// ErrTooShort if fewer than 8 bytes are available, ErrBadMagic on a magic
// mismatch, ErrBadVersion if the version byte is not the one supported
// value, and ErrBadCrc if the stored checksum does not match
// header+payload.
func Decode(b []byte) (Envelope, error) {
	if len(b) < minFrame {
		return Envelope{}, ErrTooShort
	}
	if !HasMagic(b) {
		return Envelope{}, ErrBadMagic
	}
	if b[2] != version {
		return Envelope{}, ErrBadVersion
	}
	if !crc.VerifyBE(b) {
		return Envelope{}, ErrBadCrc
	}
	tag := Tag(b[3])
	payload := b[headerLen : len(b)-trailerLen]
	return Envelope{Tag: tag, Payload: payload}, nil
}

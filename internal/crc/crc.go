// Package crc computes the IEEE 802.3 CRC-32 checksum used as the
// envelope's framing trailer. It is a thin wrapper over the standard
// library's hash/crc32 with the IEEE polynomial table (0xEDB88320,
// reflected) — the same table the spec's checksum is defined against, so
// there is nothing to hand-roll here. See DESIGN.md for why this is one of
// the rare places zkfs reaches for the standard library instead of a
// third-party dependency.
package crc

import "hash/crc32"

var table = crc32.MakeTable(crc32.IEEE)

// Sum32 returns the CRC-32/IEEE checksum of b.
func Sum32(b []byte) uint32 {
	return crc32.Checksum(b, table)
}

// AppendBE appends the big-endian CRC-32/IEEE checksum of b to dst.
func AppendBE(dst, b []byte) []byte {
	sum := Sum32(b)
	return append(dst, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
}

// VerifyBE reports whether the last 4 bytes of buf are the big-endian
// CRC-32/IEEE checksum of the preceding bytes. buf must be at least 4
// bytes long.
func VerifyBE(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	body := buf[:len(buf)-4]
	trailer := buf[len(buf)-4:]
	sum := Sum32(body)
	return trailer[0] == byte(sum>>24) &&
		trailer[1] == byte(sum>>16) &&
		trailer[2] == byte(sum>>8) &&
		trailer[3] == byte(sum)
}

package compress

import (
	"sort"

	zkfs "github.com/maco144/zkfs-go"
	"github.com/maco144/zkfs-go/internal/varint"
)

const dictVersion byte = 0x01

var trainWindowSizes = [...]int{4, 8, 16, 32}

// Dictionary pairs a trained substitution table with a canonical prefix
// code over the post-substitution byte stream.
type Dictionary struct {
	Strings [][]byte // 0-255 entries, each 2-32 bytes, in training-priority order
	Tree    SymbolTree
}

// Train builds a Dictionary from sample byte sequences: the 255
// highest-scoring repeated windows become the substitution table, and a
// SymbolTree is derived from the byte frequencies of the substituted
// corpus. Zero samples yields an empty dictionary.
func Train(samples [][]byte) Dictionary {
	if len(samples) == 0 {
		return Dictionary{}
	}

	counts := make(map[string]int)
	for _, size := range trainWindowSizes {
		for _, sample := range samples {
			for i := 0; i+size <= len(sample); i++ {
				counts[string(sample[i:i+size])]++
			}
		}
	}

	type candidate struct {
		s     string
		score int
	}
	var candidates []candidate
	for s, c := range counts {
		if c >= 2 {
			candidates = append(candidates, candidate{s, c * len(s)})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		// Map iteration order is random; break ties deterministically so
		// training is reproducible across runs on identical input.
		return candidates[i].s < candidates[j].s
	})
	if len(candidates) > 255 {
		candidates = candidates[:255]
	}

	strs := make([][]byte, len(candidates))
	for i, c := range candidates {
		strs[i] = []byte(c.s)
	}
	d := Dictionary{Strings: strs}

	var freq [numSymbols]uint64
	for _, sample := range samples {
		for _, b := range d.substituteEncode(sample) {
			freq[b]++
		}
	}
	d.Tree = FromFrequencies(freq)
	return d
}

// substituteEncode scans the substitution list in priority (insertion)
// order and accepts the first match at each position — not longest-match,
// to stay bit-compatible with a dictionary trained this way.
func (d Dictionary) substituteEncode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if idx, ok := d.matchAt(data, i); ok {
			out = append(out, 0x00, byte(idx+1))
			i += len(d.Strings[idx])
			continue
		}
		if data[i] == 0x00 {
			out = append(out, 0x00, 0x00)
			i++
			continue
		}
		out = append(out, data[i])
		i++
	}
	return out
}

func (d Dictionary) matchAt(data []byte, pos int) (int, bool) {
	for idx, s := range d.Strings {
		if len(s) == 0 || pos+len(s) > len(data) {
			continue
		}
		if string(data[pos:pos+len(s)]) == string(s) {
			return idx, true
		}
	}
	return 0, false
}

// substituteDecode reverses substituteEncode.
func (d Dictionary) substituteDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] != 0x00 {
			out = append(out, data[i])
			i++
			continue
		}
		if i+1 >= len(data) {
			return nil, zkfs.ErrTruncated
		}
		marker := data[i+1]
		if marker == 0x00 {
			out = append(out, 0x00)
		} else {
			idx := int(marker) - 1
			if idx < 0 || idx >= len(d.Strings) {
				return nil, zkfs.ErrMalformed
			}
			out = append(out, d.Strings[idx]...)
		}
		i += 2
	}
	return out, nil
}

// Compress applies substitution, encodes the result with the dictionary's
// prefix code, and frames it as substituted_len(varint) | bit_count(varint)
// | bits.
func (d Dictionary) Compress(data []byte) ([]byte, error) {
	sub := d.substituteEncode(data)
	bits, bitCount, err := d.Tree.Encode(sub)
	if err != nil {
		return nil, err
	}
	out := varint.Encode(nil, uint64(len(sub)))
	out = varint.Encode(out, uint64(bitCount))
	out = append(out, bits...)
	return out, nil
}

// Decompress reverses Compress. originalSize is accepted for interface
// symmetry but not required: the substituted length and bit count stored
// in the frame are sufficient to bound the prefix-code decoder.
func (d Dictionary) Decompress(buf []byte, originalSize int) ([]byte, error) {
	_ = originalSize
	subLen, n, err := varint.Decode(buf, 0)
	if err != nil {
		return nil, translateVarintErr(err)
	}
	off := n
	bitCount, n, err := varint.Decode(buf, off)
	if err != nil {
		return nil, translateVarintErr(err)
	}
	off += n
	byteLen := (int(bitCount) + 7) / 8
	if off+byteLen > len(buf) {
		return nil, zkfs.ErrTruncated
	}
	sub, err := d.Tree.Decode(buf[off:off+byteLen], int(bitCount), int(subLen))
	if err != nil {
		return nil, err
	}
	return d.substituteDecode(sub)
}

// Serialize writes version(1) | tree(256) | string_count(varint) |
// [string_len(varint) | string_bytes]*.
func (d Dictionary) Serialize() []byte {
	out := make([]byte, 0, 1+numSymbols+10+len(d.Strings)*8)
	out = append(out, dictVersion)
	out = append(out, d.Tree.Serialize()...)
	out = varint.Encode(out, uint64(len(d.Strings)))
	for _, s := range d.Strings {
		out = varint.Encode(out, uint64(len(s)))
		out = append(out, s...)
	}
	return out
}

// DeserializeDictionary parses the format written by Serialize, rejecting
// unknown version bytes with ErrBadVersion.
func DeserializeDictionary(b []byte) (Dictionary, error) {
	var d Dictionary
	if len(b) < 1 {
		return d, zkfs.ErrTruncated
	}
	if b[0] != dictVersion {
		return d, zkfs.ErrBadVersion
	}
	off := 1
	if len(b) < off+numSymbols {
		return d, zkfs.ErrTruncated
	}
	tree, err := DeserializeSymbolTree(b[off : off+numSymbols])
	if err != nil {
		return d, err
	}
	off += numSymbols

	count, n, err := varint.Decode(b, off)
	if err != nil {
		return d, translateVarintErr(err)
	}
	off += n

	strs := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		slen, n, err := varint.Decode(b, off)
		if err != nil {
			return d, translateVarintErr(err)
		}
		off += n
		if off+int(slen) > len(b) {
			return d, zkfs.ErrTruncated
		}
		strs = append(strs, append([]byte(nil), b[off:off+int(slen)]...))
		off += int(slen)
	}
	return Dictionary{Strings: strs, Tree: tree}, nil
}

func translateVarintErr(err error) error {
	switch err {
	case varint.ErrTooLarge:
		return zkfs.ErrTooLarge
	default:
		return zkfs.ErrTruncated
	}
}

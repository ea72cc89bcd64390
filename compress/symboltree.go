// Package compress implements the trainable dictionary and canonical
// length-limited prefix code that make up zkfs's blob compression pipeline,
// grounded on the canonical-code conventions of dsnet/compress's internal
// prefix codec: codes are a pure function of a sorted length vector, so only
// the lengths are ever serialized.
package compress

import (
	"sort"

	"github.com/maco144/zkfs-go"
)

const (
	numSymbols = 256
	maxCodeLen = 15
)

// SymbolTree is a canonical length-limited prefix code over the 256-value
// byte alphabet: for each symbol, a code length in 0..15, where 0 means the
// symbol is absent from the code. The codes themselves are never stored —
// canonicalCodes derives them from the length vector alone.
type SymbolTree struct {
	Lengths [numSymbols]uint8
}

// FromFrequencies builds a SymbolTree by merging the two lowest-weight
// nodes of a Huffman forest (ties broken by insertion order: leaves are
// considered before any internal node of equal weight), clamping the
// resulting depths to 15 bits and repairing Kraft's inequality by
// lengthening the shortest non-maximal codes.
func FromFrequencies(freq [numSymbols]uint64) SymbolTree {
	var t SymbolTree

	type node struct {
		weight      uint64
		sym         int // -1 for internal nodes
		left, right *node
	}

	var leaves []*node
	for s, w := range freq {
		if w > 0 {
			leaves = append(leaves, &node{weight: w, sym: s})
		}
	}
	switch len(leaves) {
	case 0:
		return t
	case 1:
		t.Lengths[leaves[0].sym] = 1
		return t
	}

	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].weight < leaves[j].weight })

	queue1 := leaves // front = queue1[0], weight-ascending, leaves only
	var queue2 []*node // front = queue2[0], internal nodes, FIFO by creation

	pop := func() *node {
		switch {
		case len(queue1) == 0:
			n := queue2[0]
			queue2 = queue2[1:]
			return n
		case len(queue2) == 0:
			n := queue1[0]
			queue1 = queue1[1:]
			return n
		case queue1[0].weight <= queue2[0].weight:
			n := queue1[0]
			queue1 = queue1[1:]
			return n
		default:
			n := queue2[0]
			queue2 = queue2[1:]
			return n
		}
	}

	for len(queue1)+len(queue2) > 1 {
		a := pop()
		b := pop()
		queue2 = append(queue2, &node{weight: a.weight + b.weight, sym: -1, left: a, right: b})
	}
	root := queue2[0]

	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if n.sym >= 0 {
			t.Lengths[n.sym] = clampDepth(depth)
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(root, 0)

	repairKraft(&t)
	return t
}

func clampDepth(depth int) uint8 {
	if depth > maxCodeLen {
		return maxCodeLen
	}
	return uint8(depth)
}

// repairKraft restores Sum(2^-len) <= 1 after length clamping by repeatedly
// lengthening the shortest non-maximal active code by one bit.
func repairKraft(t *SymbolTree) {
	const scale = uint64(1) << maxCodeLen // represents Kraft sum of exactly 1
	for kraftScaled(t) > scale {
		shortest := -1
		for s := 0; s < numSymbols; s++ {
			l := t.Lengths[s]
			if l == 0 || l >= maxCodeLen {
				continue
			}
			if shortest == -1 || l < t.Lengths[shortest] {
				shortest = s
			}
		}
		if shortest == -1 {
			return // every active code already at max length; cannot repair further
		}
		t.Lengths[shortest]++
	}
}

func kraftScaled(t *SymbolTree) uint64 {
	var sum uint64
	for _, l := range t.Lengths {
		if l == 0 {
			continue
		}
		sum += uint64(1) << uint(maxCodeLen-int(l))
	}
	return sum
}

// codeEntry is a canonical code: the bit length and the code value,
// right-justified in the low `length` bits.
type codeEntry struct {
	length uint8
	code   uint32
}

// canonicalCodes derives the canonical code for every active symbol from
// the length vector alone, per the standard algorithm: sort active symbols
// by (length, symbol) ascending, increment the code by one within a length
// group, and left-shift on every length increase.
func canonicalCodes(lengths [numSymbols]uint8) map[byte]codeEntry {
	type sl struct {
		sym byte
		len uint8
	}
	var active []sl
	for s := 0; s < numSymbols; s++ {
		if lengths[s] > 0 {
			active = append(active, sl{byte(s), lengths[s]})
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].len != active[j].len {
			return active[i].len < active[j].len
		}
		return active[i].sym < active[j].sym
	})

	codes := make(map[byte]codeEntry, len(active))
	var code uint32
	var prevLen uint8
	for i, a := range active {
		if i == 0 {
			code = 0
		} else {
			code++
			if a.len > prevLen {
				code <<= uint(a.len - prevLen)
			}
		}
		prevLen = a.len
		codes[a.sym] = codeEntry{length: a.len, code: code}
	}
	return codes
}

// Encode writes the canonical code for each input byte, MSB-first, into a
// packed bit stream. It fails with ErrUncodedSymbol if any input byte has
// no assigned code (length 0).
func (t SymbolTree) Encode(data []byte) (bits []byte, bitCount int, err error) {
	codes := canonicalCodes(t.Lengths)
	var w bitWriter
	for _, b := range data {
		c, ok := codes[b]
		if !ok {
			return nil, 0, zkfs.ErrUncodedSymbol
		}
		w.writeBits(c.code, c.length)
	}
	return w.bytes(), w.bitCount(), nil
}

// Decode walks bits, accumulating (length, code) pairs until one matches an
// active symbol, until exactly expectedLen symbols have been emitted.
func (t SymbolTree) Decode(bits []byte, bitCount, expectedLen int) ([]byte, error) {
	codes := canonicalCodes(t.Lengths)
	decodeMap := make(map[uint32]byte, len(codes))
	for sym, c := range codes {
		decodeMap[uint32(c.length)<<16|c.code] = sym
	}

	out := make([]byte, 0, expectedLen)
	var cur uint32
	var curLen uint8
	for pos := 0; pos < bitCount && len(out) < expectedLen; pos++ {
		cur = cur<<1 | bitAt(bits, pos)
		curLen++
		if sym, ok := decodeMap[uint32(curLen)<<16|cur]; ok {
			out = append(out, sym)
			cur, curLen = 0, 0
			continue
		}
		if curLen > maxCodeLen {
			return nil, zkfs.ErrBadCode
		}
	}
	if len(out) != expectedLen {
		return nil, zkfs.ErrLengthMismatch
	}
	return out, nil
}

// Serialize writes the tree as exactly 256 bytes, one per symbol.
func (t SymbolTree) Serialize() []byte {
	out := make([]byte, numSymbols)
	copy(out, t.Lengths[:])
	return out
}

// DeserializeSymbolTree parses a 256-byte length vector produced by Serialize.
func DeserializeSymbolTree(b []byte) (SymbolTree, error) {
	var t SymbolTree
	if len(b) != numSymbols {
		return t, zkfs.ErrTruncated
	}
	for _, l := range b {
		if l > maxCodeLen {
			return t, zkfs.ErrMalformed
		}
	}
	copy(t.Lengths[:], b)
	return t, nil
}

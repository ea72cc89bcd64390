package compress

import (
	"testing"

	"github.com/maco144/zkfs-go"
)

func freqOf(data []byte) [numSymbols]uint64 {
	var f [numSymbols]uint64
	for _, b := range data {
		f[b]++
	}
	return f
}

func TestSymbolTreeZeroFrequenciesAllLengthsZero(t *testing.T) {
	var freq [numSymbols]uint64
	tree := FromFrequencies(freq)
	for s, l := range tree.Lengths {
		if l != 0 {
			t.Fatalf("symbol %d: length = %d, want 0", s, l)
		}
	}
	if _, _, err := tree.Encode([]byte{0}); err != zkfs.ErrUncodedSymbol {
		t.Fatalf("got %v, want ErrUncodedSymbol", err)
	}
}

func TestSymbolTreeSingleSymbolLengthOne(t *testing.T) {
	var freq [numSymbols]uint64
	freq['a'] = 10
	tree := FromFrequencies(freq)
	for s, l := range tree.Lengths {
		if byte(s) == 'a' {
			if l != 1 {
				t.Fatalf("active symbol length = %d, want 1", l)
			}
		} else if l != 0 {
			t.Fatalf("symbol %d: length = %d, want 0", s, l)
		}
	}
	data := []byte("aaaaa")
	bits, n, err := tree.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n != len(data) {
		t.Fatalf("bit count = %d, want %d (one bit per byte)", n, len(data))
	}
	got, err := tree.Decode(bits, n, len(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestSymbolTreeRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog the quick brown fox")
	tree := FromFrequencies(freqOf(data))

	maxLen := uint8(0)
	var scaled uint64
	for _, l := range tree.Lengths {
		if l > maxLen {
			maxLen = l
		}
		if l > 0 {
			scaled += uint64(1) << uint(maxCodeLen-int(l))
		}
	}
	if maxLen > maxCodeLen {
		t.Fatalf("max length = %d, want <= %d", maxLen, maxCodeLen)
	}
	if scaled > uint64(1)<<maxCodeLen {
		t.Fatalf("kraft sum exceeds 1: scaled=%d", scaled)
	}

	bits, n, err := tree.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := tree.Decode(bits, n, len(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestSymbolTreeSerializeDeserialize(t *testing.T) {
	data := []byte("aaaabbbc")
	tree := FromFrequencies(freqOf(data))
	b := tree.Serialize()
	if len(b) != numSymbols {
		t.Fatalf("serialized length = %d, want %d", len(b), numSymbols)
	}
	got, err := DeserializeSymbolTree(b)
	if err != nil {
		t.Fatalf("DeserializeSymbolTree: %v", err)
	}
	if got != tree {
		t.Fatalf("round trip mismatch")
	}
}

func TestDeserializeSymbolTreeWrongLength(t *testing.T) {
	if _, err := DeserializeSymbolTree(make([]byte, 255)); err != zkfs.ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestDeserializeSymbolTreeBadLength(t *testing.T) {
	b := make([]byte, numSymbols)
	b[0] = 16
	if _, err := DeserializeSymbolTree(b); err != zkfs.ErrMalformed {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func TestSymbolTreeDecodeLengthMismatch(t *testing.T) {
	data := []byte("abcabcabc")
	tree := FromFrequencies(freqOf(data))
	bits, n, err := tree.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := tree.Decode(bits, n, len(data)+1); err != zkfs.ErrLengthMismatch {
		t.Fatalf("got %v, want ErrLengthMismatch", err)
	}
}

func TestSymbolTreeDecodeBadCode(t *testing.T) {
	// A single length-2 code ("00") leaves every other bit pattern
	// undecodable; an all-ones stream never matches it.
	var tree SymbolTree
	tree.Lengths['a'] = 2
	junk := []byte{0xFF, 0xFF}
	if _, err := tree.Decode(junk, 16, 1); err != zkfs.ErrBadCode {
		t.Fatalf("got %v, want ErrBadCode", err)
	}
}

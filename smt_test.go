package zkfs

import "testing"

func TestSMTRoundTrip(t *testing.T) {
	d := SMTData{
		Root: Hash{1},
		Entries: []SMTEntry{
			{Path: []bool{true, false, true, true, false, false, false, false, true}, Value: Hash{2}},
			{Path: nil, Value: Hash{3}},
			{Path: []bool{true}, Value: Hash{4}},
		},
	}
	enc := EncodeSMT(d)
	got, err := DecodeSMT(enc)
	if err != nil {
		t.Fatalf("DecodeSMT: %v", err)
	}
	if got.Root != d.Root || len(got.Entries) != len(d.Entries) {
		t.Fatalf("got %+v, want %+v", got, d)
	}
	for i := range d.Entries {
		a, b := got.Entries[i], d.Entries[i]
		if a.Value != b.Value || !boolSlicesEqual(a.Path, b.Path) {
			t.Fatalf("entry %d mismatch: %+v vs %+v", i, a, b)
		}
	}
}

func TestSMTZeroEntries(t *testing.T) {
	d := SMTData{Root: Hash{5}}
	enc := EncodeSMT(d)
	got, err := DecodeSMT(enc)
	if err != nil {
		t.Fatalf("DecodeSMT: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Fatalf("expected zero entries, got %d", len(got.Entries))
	}
}

func TestSMTSingleBitPathPacksToOneByte(t *testing.T) {
	packed := packBits([]bool{true})
	if len(packed) != 1 {
		t.Fatalf("packed length = %d, want 1", len(packed))
	}
	if packed[0] != 0x80 {
		t.Fatalf("packed byte = %#x, want 0x80 (bit 7 set)", packed[0])
	}
}

func TestPackUnpackBitsMSBFirst(t *testing.T) {
	bits := []bool{true, true, false, false, true, false, true, false, true}
	packed := packBits(bits)
	if len(packed) != 2 {
		t.Fatalf("packed length = %d, want 2", len(packed))
	}
	// bits[0..7] -> byte 0: 1 1 0 0 1 0 1 0 = 0xCA
	if packed[0] != 0xCA {
		t.Fatalf("byte 0 = %#x, want 0xCA", packed[0])
	}
	got := unpackBits(packed, len(bits))
	if !boolSlicesEqual(got, bits) {
		t.Fatalf("unpacked %v, want %v", got, bits)
	}
}

func boolSlicesEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package codec

import (
	"bytes"
	"testing"

	zkfs "github.com/maco144/zkfs-go"
	zkfscompress "github.com/maco144/zkfs-go/compress"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	c := NewEnvelope(zkfs.EncodeFileNode, zkfs.DecodeFileNode)
	want := zkfs.FileNode{Size: 42}

	enc, err := c.Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Size != want.Size {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestEnvelopeDecodeWrongTag(t *testing.T) {
	c := NewEnvelope(zkfs.EncodeFileNode, zkfs.DecodeFileNode)
	enc := zkfs.EncodeGroup(zkfs.Group{})
	if _, err := c.Decode(enc); err != zkfs.ErrBadTag {
		t.Fatalf("got %v, want ErrBadTag", err)
	}
}

func TestCompressedEnvelopeRoundTrip(t *testing.T) {
	c := NewCompressedEnvelope(zkfs.EncodeFileNode, zkfs.DecodeFileNode, nil, nil, nil)
	want := zkfs.FileNode{Size: 1024}

	enc, err := c.Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(enc, []byte{0x5A, 0x4B}) {
		t.Fatalf("encoded bytes do not start with the envelope magic")
	}
	got, err := c.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Size != want.Size {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCompressedEnvelopeWithDictionary(t *testing.T) {
	sample := bytes.Repeat([]byte("group-root-label-"), 40)
	dict := zkfscompress.Train([][]byte{sample})
	c := NewCompressedEnvelope(zkfs.EncodeGroup, zkfs.DecodeGroup, &dict, nil, nil)

	want := zkfs.Group{}
	enc, err := c.Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ID != want.ID || len(got.Members) != len(want.Members) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

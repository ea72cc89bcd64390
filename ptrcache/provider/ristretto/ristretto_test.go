package ristretto_test

import (
	"context"
	"testing"
	"time"

	zkfs "github.com/maco144/zkfs-go"
	"github.com/maco144/zkfs-go/ptrcache"
	"github.com/maco144/zkfs-go/ptrcache/codec"
	"github.com/maco144/zkfs-go/ptrcache/provider/ristretto"
)

// TestRistrettoBackedDirNodeCache exercises the ristretto provider through a
// full ptrcache.New[zkfs.DirNode] assembly, including the bulk path.
func TestRistrettoBackedDirNodeCache(t *testing.T) {
	ctx := context.Background()

	provider, err := ristretto.New(ristretto.Config{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		t.Fatalf("ristretto.New: %v", err)
	}

	cc, err := ptrcache.New[zkfs.DirNode](ptrcache.Options[zkfs.DirNode]{
		Namespace: "dir",
		Provider:  provider,
		Codec:     codec.NewEnvelope(zkfs.EncodeDirNode, zkfs.DecodeDirNode),
	})
	if err != nil {
		t.Fatalf("ptrcache.New: %v", err)
	}
	defer cc.Close(ctx)

	keys := []string{"root", "home"}
	items := map[string]zkfs.DirNode{
		"root": {SMTRoot: zkfs.Hash{0xAA}, Created: 1},
		"home": {SMTRoot: zkfs.Hash{0xBB}, Created: 2},
	}
	snap := cc.SnapshotGens(keys)
	if err := cc.SetBulkWithGens(ctx, items, snap, time.Minute); err != nil {
		t.Fatalf("SetBulkWithGens: %v", err)
	}

	// Ristretto's Set is async internally; poll until the bulk write lands.
	deadline := time.Now().Add(2 * time.Second)
	var got map[string]zkfs.DirNode
	var missing []string
	for time.Now().Before(deadline) {
		got, missing, err = cc.GetBulk(ctx, keys)
		if err != nil {
			t.Fatalf("GetBulk: %v", err)
		}
		if len(missing) == 0 && len(got) == len(items) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(missing) != 0 || len(got) != len(items) {
		t.Fatalf("GetBulk: missing=%v got=%v", missing, got)
	}
	if got["root"].SMTRoot != items["root"].SMTRoot {
		t.Fatalf("got %+v, want %+v", got["root"], items["root"])
	}
}

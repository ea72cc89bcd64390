package ptrcache_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	zkfs "github.com/maco144/zkfs-go"
	"github.com/maco144/zkfs-go/ptrcache"
	"github.com/maco144/zkfs-go/ptrcache/codec"
	asynchook "github.com/maco144/zkfs-go/ptrcache/hooks/async"
	"github.com/maco144/zkfs-go/ptrcache/provider/bigcache"
	"github.com/maco144/zkfs-go/ptrcache/sloghooks"
)

// signalOnBulkReject is a minimal ptrcache.Hooks that only reports
// BulkRejected, fanned out alongside sloghooks.Hooks via ptrcache.Multi so
// the test can detect when the async worker has drained the event without
// racing on the slog buffer.
type signalOnBulkReject struct{ ch chan string }

func (signalOnBulkReject) SelfHealSingle(string, string) {}
func (s signalOnBulkReject) BulkRejected(_ string, _ int, reason string) {
	s.ch <- reason
}
func (signalOnBulkReject) ProviderSetRejected(string, bool)      {}
func (signalOnBulkReject) GenSnapshotError(int, error)           {}
func (signalOnBulkReject) GenBumpError(string, error)            {}
func (signalOnBulkReject) InvalidateOutage(string, error, error) {}
func (signalOnBulkReject) LocalGenWithBulk()                     {}

// TestAsyncSlogHooksObserveBulkRejection builds a real ptrcache.New[zkfs.FileNode]
// cache with Hooks wired as asynchook.New(ptrcache.Multi(sloghooks, signal)),
// the exact composition ptrcache/hooks.go's own Multi doc comment describes,
// and drives it through an exported-API-only bulk rejection.
func TestAsyncSlogHooksObserveBulkRejection(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slogHooks := sloghooks.New(logger, sloghooks.Options{})

	sig := make(chan string, 1)
	mh := ptrcache.Multi(slogHooks, signalOnBulkReject{ch: sig})
	hooks := asynchook.New(mh, 1, 16)
	defer hooks.Close()

	provider, err := bigcache.New(bigcache.Config{LifeWindow: time.Minute})
	if err != nil {
		t.Fatalf("bigcache.New: %v", err)
	}

	cc, err := ptrcache.New[zkfs.FileNode](ptrcache.Options[zkfs.FileNode]{
		Namespace: "file-hooks",
		Provider:  provider,
		Codec:     codec.NewEnvelope(zkfs.EncodeFileNode, zkfs.DecodeFileNode),
		Hooks:     hooks,
	})
	if err != nil {
		t.Fatalf("ptrcache.New: %v", err)
	}
	defer cc.Close(ctx)

	keys := []string{"a", "b"}
	items := map[string]zkfs.FileNode{
		"a": {Size: 1},
		"b": {Size: 2},
	}
	snap := cc.SnapshotGens(keys)
	if err := cc.SetBulkWithGens(ctx, items, snap, time.Minute); err != nil {
		t.Fatalf("SetBulkWithGens: %v", err)
	}
	// Seed singles so the later rejection can be detected via the bulk path.
	if _, _, err := cc.GetBulk(ctx, keys); err != nil {
		t.Fatalf("GetBulk (seed): %v", err)
	}
	if err := cc.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, _, err := cc.GetBulk(ctx, keys); err != nil {
		t.Fatalf("GetBulk (after invalidate): %v", err)
	}

	select {
	case reason := <-sig:
		if reason == "" {
			t.Fatalf("expected a non-empty bulk rejection reason")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the async hook to observe the bulk rejection")
	}

	if !strings.Contains(buf.String(), "ptrcache.bulk_rejected") {
		t.Fatalf("expected slog output to contain the bulk rejection event, got %q", buf.String())
	}
}

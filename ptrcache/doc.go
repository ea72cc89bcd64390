// Package ptrcache caches decoded zkfs values behind a mutable pointer, with
// compare-and-swap (CAS) safety via per-key generations.
//
// zkfs's codec layer is content-addressed: the same hash always decodes to
// the same FileNode/DirNode/Group/SMTData, so a decoded value is never
// stale for its hash. What does go stale is a *pointer* — "the current
// root of group G", "the current entry at path P" — which moves every
// time something under it changes. ptrcache caches the decoded value
// behind such a pointer and uses a generation counter, bumped by
// Invalidate whenever the pointer moves, so a read can never return a
// value that's older than the last known move. Single-key reads never
// return stale values; bulk results are validated per member on read and
// rejected wholesale if any member disagrees with the live generation.
//
// Components:
//   - Provider: byte store with TTL (e.g. Ristretto, BigCache, Redis).
//   - Codec[V]: (de)serializes V <-> []byte. codec.Envelope adapts zkfs's
//     own Encode*/Decode* pairs so the cache stores exactly the bytes that
//     would otherwise go to the blob store.
//   - GenStore: generation counter per logical key. Local (in-process) by
//     default, optional Redis implementation for multi-replica / restart
//     persistence.
//
// Keys:
//
//	single:<ns>:<key>  - single entries
//	bulk:<ns>:<hash>   - set-shaped entries (hash over sorted keys)
//
// CAS pattern:
//
//	obs := cache.SnapshotGen(k)       // before resolving the pointer
//	v   := resolvePointer(k)          // e.g. decode the blob the pointer names
//	_   = cache.SetWithGen(ctx, k, v, obs, 0) // write iff current gen == obs
package ptrcache

package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
)

// currentCacheVersion defines the version of the cached snapshot encoding
const currentCacheVersion = 1

// CachedFetch returns the snapshot for cfg.Target, serving it from the
// snapshot cache when a fresh entry exists for the source's current revision.
// The second return reports whether the snapshot came from the cache.
func CachedFetch(ctx context.Context, cfg *contract.Config, src contract.SnapshotSource, mgr contract.CacheManager) (*schema.RepoSnapshot, bool, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetSnapshotStore()
	}
	if store == nil || cfg.CacheTTL <= 0 {
		// Fallback to direct fetching
		snap, err := src.Fetch(ctx, cfg.Target)
		return snap, false, err
	}

	revision := src.Revision(ctx, cfg.Target)
	if revision == "" {
		// Without a fingerprint a cached entry could be arbitrarily stale
		snap, err := src.Fetch(ctx, cfg.Target)
		return snap, false, err
	}
	key := generateCacheKey(src.Kind(), cfg.Target, revision)

	// Check for cache hit
	if snap := checkCacheHit(store, key, cfg.CacheTTL); snap != nil {
		return snap, true, nil
	}

	// Cache miss: fetch and store
	snap, err := computeAndStore(ctx, cfg.Target, src, store, key)
	return snap, false, err
}

// checkCacheHit attempts to retrieve and validate a cached snapshot
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration) *schema.RepoSnapshot {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > ttl {
		return nil
	}
	var snap schema.RepoSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	return &snap
}

// computeAndStore fetches the snapshot and stores it in cache
func computeAndStore(ctx context.Context, target contract.RepoTarget, src contract.SnapshotSource, store contract.CacheStore, key string) (*schema.RepoSnapshot, error) {
	snap, err := src.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	if snap.Partial {
		// The revision does not change once the missing payload is ready
		return snap, nil
	}

	data, err := json.Marshal(snap)
	if err == nil {
		err = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	if err != nil {
		contract.LogWarn("Failed to cache snapshot", err)
	}
	return snap, nil
}

// generateCacheKey creates a unique key from the source, target and revision
func generateCacheKey(kind schema.SourceKind, target contract.RepoTarget, revision string) string {
	key := fmt.Sprintf("%s|%s|%s", kind, target, revision)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

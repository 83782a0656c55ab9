// Package iocache caches fetched repository snapshots across runs.
package iocache

import (
	"sync"

	"github.com/huangsam/repohealth/internal/contract"
)

// CacheStoreManager manages the snapshot CacheStore instance.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	snapshots    contract.CacheStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetSnapshotStore returns the snapshot CacheStore.
func (mgr *CacheStoreManager) GetSnapshotStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}

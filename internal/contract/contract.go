// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/repohealth/schema"
)

// GitClient defines the git operations needed to build a snapshot from a local clone.
// This allows the snapshot logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the commit hash that ref resolves to.
	GetRepoHash(ctx context.Context, repoPath string, ref string) (string, error)

	// GetCurrentBranch returns the branch checked out at HEAD.
	GetCurrentBranch(ctx context.Context, repoPath string) (string, error)

	// ListTreeAtRef returns every blob and tree in the repository at ref.
	ListTreeAtRef(ctx context.Context, repoPath string, ref string) ([]schema.TreeEntry, error)

	// GetContributorTotals returns per-author commit totals reachable from ref.
	GetContributorTotals(ctx context.Context, repoPath string, ref string) ([]schema.ContributorStats, error)

	// ShowFile returns the content of path at ref.
	ShowFile(ctx context.Context, repoPath string, ref string, path string) ([]byte, error)
}

// SnapshotSource fetches repository snapshots from a backing system.
type SnapshotSource interface {
	// Kind identifies the source.
	Kind() schema.SourceKind

	// Fetch builds a fully populated snapshot for target.
	Fetch(ctx context.Context, target RepoTarget) (*schema.RepoSnapshot, error)

	// Revision returns a cheap fingerprint of the target's current state, or
	// an empty string when the source cannot provide one.
	Revision(ctx context.Context, target RepoTarget) string
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSnapshotStore() CacheStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// Package source fetches repository snapshots from GitHub or a local clone.
package source

import (
	"errors"
	"fmt"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
)

// Sentinel errors returned by snapshot sources.
var (
	ErrInvalidRepo = contract.ErrInvalidRepo
	ErrNotFound    = errors.New("repository not found")
	ErrRateLimited = errors.New("GitHub API rate limit exceeded")
	ErrAuth        = errors.New("GitHub authentication failed")
)

// New returns the snapshot source matching the configured target.
func New(cfg *contract.Config, client contract.GitClient) (contract.SnapshotSource, error) {
	switch cfg.Target.Source {
	case schema.GitHubSource:
		return NewGitHubSource(cfg), nil
	case schema.LocalSource:
		return NewLocalSource(client), nil
	default:
		return nil, fmt.Errorf("unsupported source %q", cfg.Target.Source)
	}
}

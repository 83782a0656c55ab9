package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
)

// DefaultWatchDebounce collapses bursts of ref updates from a single git operation.
const DefaultWatchDebounce = 500 * time.Millisecond

// ExecuteWatch scores a local clone, then re-scores it whenever HEAD or a
// branch ref changes. It runs until ctx is cancelled.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.Target.Source != schema.LocalSource {
		return fmt.Errorf("watch requires a local repository (received %s source)", cfg.Target.Source)
	}

	if err := ExecuteHealthScore(ctx, cfg, mgr); err != nil {
		return err
	}

	contract.LogWatchHeader(cfg)
	return WatchRepository(ctx, cfg.Target.Path, DefaultWatchDebounce, func(ctx context.Context, path string) error {
		contract.LogChangeDetected(cfg, path)
		if err := ExecuteHealthScore(ctx, cfg, mgr); err != nil {
			contract.LogWarn("Re-scoring failed", err)
		}
		return nil
	})
}

// WatchRepository calls onChange once per burst of changes to HEAD, packed-refs
// or a branch ref of the repository at repoRoot. A non-nil error from
// onChange stops the watch. It returns nil when ctx is cancelled.
func WatchRepository(ctx context.Context, repoRoot string, debounce time.Duration, onChange func(ctx context.Context, path string) error) error {
	gitDir := filepath.Join(repoRoot, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a git working tree", repoRoot)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(gitDir); err != nil {
		return fmt.Errorf("watching %s: %w", gitDir, err)
	}
	headsDir := filepath.Join(gitDir, "refs", "heads")
	if err := watcher.Add(headsDir); err != nil {
		contract.LogWarn("Cannot watch branch refs", err)
	}

	// The timer only starts on the first relevant event.
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	var pending string
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRefChange(gitDir, event) {
				continue
			}
			if pending == "" {
				timer.Reset(debounce)
			}
			pending = event.Name

		case <-timer.C:
			path := pending
			pending = ""
			if err := onChange(ctx, path); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			contract.LogWarn("Watcher error", err)
		}
	}
}

// isRefChange reports whether event moves HEAD or a branch.
// Lock files written by git while updating a ref are ignored.
func isRefChange(gitDir string, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if strings.HasSuffix(event.Name, ".lock") {
		return false
	}
	rel, err := filepath.Rel(gitDir, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "HEAD" || rel == "packed-refs" || strings.HasPrefix(rel, "refs/heads/")
}

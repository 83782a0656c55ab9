package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/huangsam/repohealth/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string, ref string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCurrentBranch implements the GitClient interface.
func (c *LocalGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListTreeAtRef implements the GitClient interface.
func (c *LocalGitClient) ListTreeAtRef(ctx context.Context, repoPath string, ref string) ([]schema.TreeEntry, error) {
	out, err := c.Run(ctx, repoPath, "ls-tree", "-r", "-t", "-z", ref)
	if err != nil {
		return nil, err
	}
	return ParseLsTree(out), nil
}

// GetContributorTotals implements the GitClient interface.
func (c *LocalGitClient) GetContributorTotals(ctx context.Context, repoPath string, ref string) ([]schema.ContributorStats, error) {
	out, err := c.Run(ctx, repoPath, "shortlog", "-s", "-n", "--no-merges", ref)
	if err != nil {
		return nil, err
	}
	return ParseShortlog(out), nil
}

// ShowFile implements the GitClient interface.
func (c *LocalGitClient) ShowFile(ctx context.Context, repoPath string, ref string, path string) ([]byte, error) {
	return c.Run(ctx, repoPath, "show", ref+":"+path)
}

// ParseLsTree parses NUL-separated "git ls-tree -r -t -z" output.
// Each record looks like "<mode> <type> <object>\t<path>". Submodules
// (type "commit") are skipped.
func ParseLsTree(out []byte) []schema.TreeEntry {
	var entries []schema.TreeEntry
	for record := range bytes.SplitSeq(out, []byte{0}) {
		meta, path, ok := strings.Cut(string(record), "\t")
		if !ok || path == "" {
			continue
		}
		fields := strings.Fields(meta)
		if len(fields) < 2 {
			continue
		}
		switch schema.EntryKind(fields[1]) {
		case schema.BlobEntry:
			entries = append(entries, schema.TreeEntry{Path: path, Kind: schema.BlobEntry})
		case schema.TreeKind:
			entries = append(entries, schema.TreeEntry{Path: path, Kind: schema.TreeKind})
		}
	}
	return entries
}

// ParseShortlog parses "git shortlog -s -n" output ("  <count>\t<author>" per line).
func ParseShortlog(out []byte) []schema.ContributorStats {
	var stats []schema.ContributorStats
	for line := range strings.SplitSeq(string(out), "\n") {
		countStr, author, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			continue
		}
		stats = append(stats, schema.ContributorStats{Login: strings.TrimSpace(author), Total: count})
	}
	return stats
}

package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"golang.org/x/sync/errgroup"
)

// localRef is the revision every local snapshot is taken at.
const localRef = "HEAD"

// readmeNames lists README file names in lookup order.
var readmeNames = []string{"README.md", "README", "README.markdown", "README.rst", "README.txt", "readme.md"}

// licensePrefixes are the root file name prefixes that count as a license.
var licensePrefixes = []string{"license", "licence", "copying"}

// LocalSource builds snapshots from a local clone using git plumbing commands.
type LocalSource struct {
	client contract.GitClient
}

var _ contract.SnapshotSource = &LocalSource{} // Compile-time check

// NewLocalSource creates a local source backed by client.
func NewLocalSource(client contract.GitClient) *LocalSource {
	return &LocalSource{client: client}
}

// Kind implements the SnapshotSource interface.
func (l *LocalSource) Kind() schema.SourceKind {
	return schema.LocalSource
}

// Revision implements the SnapshotSource interface.
func (l *LocalSource) Revision(ctx context.Context, target contract.RepoTarget) string {
	hash, err := l.client.GetRepoHash(ctx, target.Path, localRef)
	if err != nil {
		return ""
	}
	return hash
}

// Fetch implements the SnapshotSource interface.
func (l *LocalSource) Fetch(ctx context.Context, target contract.RepoTarget) (*schema.RepoSnapshot, error) {
	snap := &schema.RepoSnapshot{
		Repository: schema.RepoMeta{
			Name:     target.Name,
			FullName: target.FullName(),
		},
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		tree, err := l.client.ListTreeAtRef(gctx, target.Path, localRef)
		if err != nil {
			return fmt.Errorf("listing tree: %w", err)
		}
		snap.Tree = tree
		snap.HasLicense = hasLicenseFile(tree)

		readme, err := l.readReadme(gctx, target.Path, tree)
		if err != nil {
			return fmt.Errorf("reading README: %w", err)
		}
		snap.Readme = readme
		return nil
	})
	eg.Go(func() error {
		contributors, err := l.client.GetContributorTotals(gctx, target.Path, localRef)
		if err != nil {
			return fmt.Errorf("reading contributors: %w", err)
		}
		snap.Contributors = contributors
		return nil
	})
	eg.Go(func() error {
		branch, err := l.client.GetCurrentBranch(gctx, target.Path)
		if err != nil {
			return fmt.Errorf("reading branch: %w", err)
		}
		snap.Repository.DefaultBranch = branch
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	snap.FetchedAt = time.Now()
	return snap, nil
}

// readReadme returns the root README content, or nil when there is none.
func (l *LocalSource) readReadme(ctx context.Context, repoPath string, tree []schema.TreeEntry) (*string, error) {
	path, ok := findReadme(tree)
	if !ok {
		return nil, nil
	}
	content, err := l.client.ShowFile(ctx, repoPath, localRef, path)
	if err != nil {
		return nil, err
	}
	text := string(content)
	return &text, nil
}

// findReadme picks the root README, preferring the names in readmeNames.
func findReadme(tree []schema.TreeEntry) (string, bool) {
	root := make(map[string]string)
	for _, e := range tree {
		if e.IsBlob() && !strings.Contains(e.Path, "/") {
			root[strings.ToLower(e.Path)] = e.Path
		}
	}
	for _, name := range readmeNames {
		if path, ok := root[strings.ToLower(name)]; ok {
			return path, true
		}
	}
	return "", false
}

// hasLicenseFile reports whether a root file looks like a license.
func hasLicenseFile(tree []schema.TreeEntry) bool {
	for _, e := range tree {
		if !e.IsBlob() || strings.Contains(e.Path, "/") {
			continue
		}
		name := strings.ToLower(e.Path)
		for _, prefix := range licensePrefixes {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}
	return false
}

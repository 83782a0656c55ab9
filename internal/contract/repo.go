package contract

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/huangsam/repohealth/schema"
)

// ErrInvalidRepo is returned when a repository argument cannot be parsed.
var ErrInvalidRepo = errors.New("invalid repository format")

// RepoTarget identifies the repository to score.
type RepoTarget struct {
	Source schema.SourceKind
	Owner  string // GitHub owner; empty for local clones
	Name   string
	Path   string // Absolute repository root for local clones
}

// FullName returns "owner/name" for remote targets and the directory name for local ones.
func (t RepoTarget) FullName() string {
	if t.Owner == "" {
		return t.Name
	}
	return t.Owner + "/" + t.Name
}

// String implements fmt.Stringer.
func (t RepoTarget) String() string {
	if t.Source == schema.LocalSource {
		return t.Path
	}
	return t.FullName()
}

// ParseRepoInput parses "owner/repo" or a github.com URL into owner and repo.
// A trailing ".git" is removed from URLs.
func ParseRepoInput(input string) (string, string, error) {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "github.com") {
		raw := input
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidRepo, input)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidRepo, input)
		}
		return segments[0], strings.TrimSuffix(segments[1], ".git"), nil
	}

	parts := strings.Split(input, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: expected format owner/repo, got %q", ErrInvalidRepo, input)
	}
	return parts[0], parts[1], nil
}

// NewLocalTarget builds a target for a local clone rooted at repoRoot.
func NewLocalTarget(repoRoot string) RepoTarget {
	return RepoTarget{
		Source: schema.LocalSource,
		Name:   filepath.Base(repoRoot),
		Path:   repoRoot,
	}
}

package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// userAgent identifies requests made against the GitHub API.
const userAgent = "repohealth/1.0"

// errStatsPending is returned while GitHub is still computing contributor stats.
var errStatsPending = errors.New("contributor statistics are still being computed")

// repoResponse is the subset of GET /repos/{owner}/{repo} that is needed.
type repoResponse struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	DefaultBranch string    `json:"default_branch"`
	Archived      bool      `json:"archived"`
	PushedAt      time.Time `json:"pushed_at"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// treeResponse is the body of GET /repos/{owner}/{repo}/git/trees/{branch}.
type treeResponse struct {
	Tree      []schema.TreeEntry `json:"tree"`
	Truncated bool               `json:"truncated"`
}

// contributorResponse is one element of GET /repos/{owner}/{repo}/stats/contributors.
type contributorResponse struct {
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
	Total int `json:"total"`
}

// readmeResponse is the body of GET /repos/{owner}/{repo}/readme.
type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// GitHubSource fetches snapshots from the GitHub REST API.
type GitHubSource struct {
	baseURL         string
	token           string
	client          *http.Client
	limiter         *rate.Limiter
	maxTries        uint
	initialInterval time.Duration

	// revisions holds the metadata read by Revision until the next Fetch of the same target
	revisions sync.Map
}

var _ contract.SnapshotSource = &GitHubSource{} // Compile-time check

// NewGitHubSource creates a GitHub source from the validated config.
func NewGitHubSource(cfg *contract.Config) *GitHubSource {
	burst := max(int(cfg.RateLimit), 1)
	return &GitHubSource{
		baseURL:         cfg.APIURL,
		token:           cfg.Token,
		client:          &http.Client{Timeout: cfg.Timeout},
		limiter:         rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		maxTries:        uint(cfg.Retries) + 1,
		initialInterval: time.Second,
	}
}

// Kind implements the SnapshotSource interface.
func (g *GitHubSource) Kind() schema.SourceKind {
	return schema.GitHubSource
}

// Revision implements the SnapshotSource interface.
// The last push time changes whenever any branch receives commits.
func (g *GitHubSource) Revision(ctx context.Context, target contract.RepoTarget) string {
	repo, err := g.fetchRepository(ctx, target)
	if err != nil {
		return ""
	}
	g.revisions.Store(target.FullName(), repo)
	return repo.DefaultBranch + "@" + repo.PushedAt.UTC().Format(time.RFC3339)
}

// Fetch implements the SnapshotSource interface. Repository metadata is read
// first for the default branch; the four remaining payloads are fetched concurrently.
func (g *GitHubSource) Fetch(ctx context.Context, target contract.RepoTarget) (*schema.RepoSnapshot, error) {
	repo, err := g.takeRepository(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetching repository %s: %w", target.FullName(), err)
	}

	branch := repo.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	snap := &schema.RepoSnapshot{
		Repository: schema.RepoMeta{
			Owner:         repo.Owner.Login,
			Name:          repo.Name,
			FullName:      repo.FullName,
			DefaultBranch: branch,
			Archived:      repo.Archived,
		},
	}
	if snap.Repository.Owner == "" {
		snap.Repository.Owner = target.Owner
	}
	if snap.Repository.Name == "" {
		snap.Repository.Name = target.Name
	}
	if snap.Repository.FullName == "" {
		snap.Repository.FullName = target.FullName()
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		tree, err := g.fetchTree(gctx, target, branch)
		if err != nil {
			return fmt.Errorf("fetching tree: %w", err)
		}
		snap.Tree = tree
		return nil
	})
	eg.Go(func() error {
		contributors, err := g.fetchContributors(gctx, target)
		if errors.Is(err, errStatsPending) {
			contract.LogWarn("Contributor statistics unavailable for "+target.FullName(), err)
			snap.Partial = true
		} else if err != nil {
			return fmt.Errorf("fetching contributors: %w", err)
		}
		snap.Contributors = contributors
		return nil
	})
	eg.Go(func() error {
		readme, err := g.fetchReadme(gctx, target)
		if err != nil {
			return fmt.Errorf("fetching readme: %w", err)
		}
		snap.Readme = readme
		return nil
	})
	eg.Go(func() error {
		hasLicense, err := g.fetchLicense(gctx, target)
		if err != nil {
			return fmt.Errorf("fetching license: %w", err)
		}
		snap.HasLicense = hasLicense
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	snap.FetchedAt = time.Now()
	return snap, nil
}

// fetchRepository reads repository metadata.
func (g *GitHubSource) fetchRepository(ctx context.Context, target contract.RepoTarget) (*repoResponse, error) {
	var repo repoResponse
	if err := g.getJSON(ctx, repoPath(target, ""), &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// takeRepository returns the metadata left by the preceding Revision call, or
// reads it when there is none. Each Revision result is consumed once.
func (g *GitHubSource) takeRepository(ctx context.Context, target contract.RepoTarget) (*repoResponse, error) {
	if repo, ok := g.revisions.LoadAndDelete(target.FullName()); ok {
		return repo.(*repoResponse), nil
	}
	return g.fetchRepository(ctx, target)
}

// fetchTree lists every path on the branch.
func (g *GitHubSource) fetchTree(ctx context.Context, target contract.RepoTarget, branch string) ([]schema.TreeEntry, error) {
	var tree treeResponse
	if err := g.getJSON(ctx, repoPath(target, "/git/trees/"+branch+"?recursive=1"), &tree); err != nil {
		return nil, err
	}
	if tree.Truncated {
		contract.LogWarn("Tree listing truncated for "+target.FullName(), errors.New("results may undercount files"))
	}
	return tree.Tree, nil
}

// fetchContributors reads per-author commit totals. GitHub answers 202 while the
// statistics are being computed; once retries are exhausted an empty list is
// returned together with errStatsPending.
func (g *GitHubSource) fetchContributors(ctx context.Context, target contract.RepoTarget) ([]schema.ContributorStats, error) {
	var raw []contributorResponse
	err := g.getJSON(ctx, repoPath(target, "/stats/contributors"), &raw)
	if errors.Is(err, errStatsPending) {
		return []schema.ContributorStats{}, err
	}
	if err != nil {
		return nil, err
	}

	stats := make([]schema.ContributorStats, 0, len(raw))
	for _, c := range raw {
		login := ""
		if c.Author != nil {
			login = c.Author.Login
		}
		stats = append(stats, schema.ContributorStats{Login: login, Total: c.Total})
	}
	return stats, nil
}

// fetchReadme returns the decoded README, or nil when the repository has none.
func (g *GitHubSource) fetchReadme(ctx context.Context, target contract.RepoTarget) (*string, error) {
	var readme readmeResponse
	err := g.getJSON(ctx, repoPath(target, "/readme"), &readme)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(readme.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decoding README: %w", err)
	}
	text := string(decoded)
	return &text, nil
}

// fetchLicense reports whether GitHub detected a license.
func (g *GitHubSource) fetchLicense(ctx context.Context, target contract.RepoTarget) (bool, error) {
	err := g.getJSON(ctx, repoPath(target, "/license"), nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// getJSON performs a rate-limited GET with exponential backoff and decodes the
// body into out (which may be nil). Transport failures, 5xx and 202 responses
// are retried; every other failure is permanent.
func (g *GitHubSource) getJSON(ctx context.Context, path string, out any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.initialInterval

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return g.get(ctx, path)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(g.maxTries))
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// get issues a single request and classifies the response.
func (g *GitHubSource) get(ctx context.Context, path string) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := classifyResponse(resp, body); err != nil {
		return nil, err
	}
	return body, nil
}

// classifyResponse maps HTTP status codes onto sentinel errors.
func classifyResponse(resp *http.Response, body []byte) error {
	switch code := resp.StatusCode; {
	case code == http.StatusAccepted:
		return errStatsPending
	case code == http.StatusNoContent:
		return nil
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return backoff.Permanent(ErrAuth)
	case code == http.StatusNotFound:
		return backoff.Permanent(ErrNotFound)
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || code == http.StatusTooManyRequests {
			reset := resp.Header.Get("X-RateLimit-Reset")
			return backoff.Permanent(fmt.Errorf("%w (reset at %s). Set %s or use --token for higher limits", ErrRateLimited, reset, contract.TokenEnvVar))
		}
		return backoff.Permanent(fmt.Errorf("%w: forbidden: %s", ErrAuth, apiMessage(body)))
	case code >= 500:
		return fmt.Errorf("GitHub API error: status %d: %s", code, apiMessage(body))
	default:
		return backoff.Permanent(fmt.Errorf("GitHub API error: status %d: %s", code, apiMessage(body)))
	}
}

// apiMessage extracts the "message" field from an API error body.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

// repoPath builds an API path under /repos/{owner}/{name}.
func repoPath(target contract.RepoTarget, suffix string) string {
	return "/repos/" + target.Owner + "/" + target.Name + suffix
}

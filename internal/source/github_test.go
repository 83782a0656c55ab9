package source

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSource points a GitHub source at server with fast retries.
func newTestSource(t *testing.T, server *httptest.Server, retries int) *GitHubSource {
	t.Helper()
	src := NewGitHubSource(&contract.Config{
		APIURL:    server.URL,
		Token:     "test-token",
		Timeout:   5 * time.Second,
		Retries:   retries,
		RateLimit: 1000,
	})
	src.initialInterval = time.Millisecond
	return src
}

var testTarget = contract.RepoTarget{Source: schema.GitHubSource, Owner: "octo", Name: "demo"}

// healthyRepoMux serves a complete, healthy repository.
func healthyRepoMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"name":"demo","full_name":"octo/demo","default_branch":"trunk","archived":false,"pushed_at":"2024-05-01T10:00:00Z","owner":{"login":"octo"}}`))
	})
	mux.HandleFunc("/repos/octo/demo/git/trees/trunk", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		_, _ = w.Write([]byte(`{"tree":[{"path":"README.md","type":"blob"},{"path":"docs","type":"tree"},{"path":"go.mod","type":"blob"}],"truncated":false}`))
	})
	mux.HandleFunc("/repos/octo/demo/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"author":{"login":"alice"},"total":30},{"author":null,"total":5}]`))
	})
	mux.HandleFunc("/repos/octo/demo/readme", func(w http.ResponseWriter, _ *http.Request) {
		content := base64.StdEncoding.EncodeToString([]byte("# Demo\n\n## Usage\n"))
		_, _ = w.Write([]byte(`{"content":"` + content[:8] + `\n` + content[8:] + `","encoding":"base64"}`))
	})
	mux.HandleFunc("/repos/octo/demo/license", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"license":{"spdx_id":"MIT"}}`))
	})
	return mux
}

// TestGitHubSourceFetch verifies a full snapshot is assembled from the API.
func TestGitHubSourceFetch(t *testing.T) {
	server := httptest.NewServer(healthyRepoMux(t))
	defer server.Close()

	snap, err := newTestSource(t, server, 1).Fetch(context.Background(), testTarget)
	require.NoError(t, err)

	assert.Equal(t, schema.RepoMeta{Owner: "octo", Name: "demo", FullName: "octo/demo", DefaultBranch: "trunk"}, snap.Repository)
	assert.Len(t, snap.Tree, 3)
	assert.Equal(t, schema.TreeKind, snap.Tree[1].Kind)
	assert.Equal(t, []schema.ContributorStats{{Login: "alice", Total: 30}, {Login: "", Total: 5}}, snap.Contributors)
	require.True(t, snap.HasReadme())
	assert.Equal(t, "# Demo\n\n## Usage\n", snap.ReadmeText())
	assert.True(t, snap.HasLicense)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.False(t, snap.Partial)
}

// TestGitHubSourceFetchStatsPending verifies a snapshot without ready statistics is marked partial.
func TestGitHubSourceFetchStatsPending(t *testing.T) {
	mux := http.NewServeMux()
	ready := healthyRepoMux(t)
	mux.HandleFunc("/repos/octo/demo/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	mux.Handle("/", ready)
	server := httptest.NewServer(mux)
	defer server.Close()

	snap, err := newTestSource(t, server, 1).Fetch(context.Background(), testTarget)
	require.NoError(t, err)
	assert.True(t, snap.Partial)
	assert.Empty(t, snap.Contributors)
	assert.True(t, snap.HasReadme())
}

// TestGitHubSourceMissingReadmeAndLicense verifies 404s on optional payloads.
func TestGitHubSourceMissingReadmeAndLicense(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"demo","full_name":"octo/demo","default_branch":"main","archived":true,"owner":{"login":"octo"}}`))
	})
	mux.HandleFunc("/repos/octo/demo/git/trees/main", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tree":[]}`))
	})
	mux.HandleFunc("/repos/octo/demo/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/repos/octo/demo/readme", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/repos/octo/demo/license", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	snap, err := newTestSource(t, server, 1).Fetch(context.Background(), testTarget)
	require.NoError(t, err)
	assert.False(t, snap.HasReadme())
	assert.False(t, snap.HasLicense)
	assert.True(t, snap.Repository.Archived)
	assert.Empty(t, snap.Contributors)
}

// TestGitHubSourceStatsPending verifies 202 responses are retried and then give up gracefully.
func TestGitHubSourceStatsPending(t *testing.T) {
	t.Run("eventually ready", func(t *testing.T) {
		var calls atomic.Int32
		mux := healthyRepoMux(t)
		mux.HandleFunc("/repos/octo/other/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusAccepted)
				return
			}
			_, _ = w.Write([]byte(`[{"author":{"login":"bob"},"total":7}]`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		stats, err := newTestSource(t, server, 4).fetchContributors(context.Background(),
			contract.RepoTarget{Source: schema.GitHubSource, Owner: "octo", Name: "other"})
		require.NoError(t, err)
		assert.Equal(t, []schema.ContributorStats{{Login: "bob", Total: 7}}, stats)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("never ready", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		stats, err := newTestSource(t, server, 2).fetchContributors(context.Background(), testTarget)
		assert.ErrorIs(t, err, errStatsPending)
		assert.Empty(t, stats)
		assert.NotNil(t, stats)
		assert.Equal(t, int32(3), calls.Load())
	})
}

// TestGitHubSourceErrors verifies status codes map onto sentinel errors.
func TestGitHubSourceErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		header    map[string]string
		expected  error
		wantCalls int32
	}{
		{"not found", http.StatusNotFound, nil, ErrNotFound, 1},
		{"unauthorized", http.StatusUnauthorized, nil, ErrAuth, 1},
		{"rate limited", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, ErrRateLimited, 1},
		{"too many requests", http.StatusTooManyRequests, nil, ErrRateLimited, 1},
		{"forbidden", http.StatusForbidden, nil, ErrAuth, 1},
		{"server error retried", http.StatusBadGateway, nil, nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				http.Error(w, `{"message":"nope"}`, tt.status)
			}))
			defer server.Close()

			_, err := newTestSource(t, server, 2).Fetch(context.Background(), testTarget)
			require.Error(t, err)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

// TestGitHubSourceRevision verifies the revision fingerprint.
func TestGitHubSourceRevision(t *testing.T) {
	server := httptest.NewServer(healthyRepoMux(t))
	defer server.Close()

	src := newTestSource(t, server, 0)
	assert.Equal(t, "trunk@2024-05-01T10:00:00Z", src.Revision(context.Background(), testTarget))

	missing := contract.RepoTarget{Source: schema.GitHubSource, Owner: "octo", Name: "missing"}
	assert.Equal(t, "", src.Revision(context.Background(), missing))
}

// TestGitHubSourceRevisionReused verifies Fetch reuses the metadata read by Revision once.
func TestGitHubSourceRevisionReused(t *testing.T) {
	var repoCalls atomic.Int32
	mux := http.NewServeMux()
	ready := healthyRepoMux(t)
	mux.HandleFunc("/repos/octo/demo", func(w http.ResponseWriter, r *http.Request) {
		repoCalls.Add(1)
		ready.ServeHTTP(w, r)
	})
	mux.Handle("/", ready)
	server := httptest.NewServer(mux)
	defer server.Close()

	src := newTestSource(t, server, 0)
	require.NotEmpty(t, src.Revision(context.Background(), testTarget))
	snap, err := src.Fetch(context.Background(), testTarget)
	require.NoError(t, err)
	assert.Equal(t, "trunk", snap.Repository.DefaultBranch)
	assert.Equal(t, int32(1), repoCalls.Load())

	_, err = src.Fetch(context.Background(), testTarget)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repoCalls.Load())
}

// TestGitHubSourceContextCancel verifies cancellation aborts the fetch.
func TestGitHubSourceContextCancel(t *testing.T) {
	server := httptest.NewServer(healthyRepoMux(t))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestSource(t, server, 1).Fetch(ctx, testTarget)
	assert.Error(t, err)
}

package source

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var localTarget = contract.NewLocalTarget("/work/project")

// TestLocalSourceFetch verifies a snapshot is assembled from git plumbing output.
func TestLocalSourceFetch(t *testing.T) {
	client := new(contract.MockGitClient)
	tree := []schema.TreeEntry{
		{Path: "Readme.md", Kind: schema.BlobEntry},
		{Path: "LICENSE-MIT", Kind: schema.BlobEntry},
		{Path: "tests", Kind: schema.TreeKind},
		{Path: "tests/unit_test.go", Kind: schema.BlobEntry},
	}
	client.On("ListTreeAtRef", mock.Anything, "/work/project", "HEAD").Return(tree, nil)
	client.On("ShowFile", mock.Anything, "/work/project", "HEAD", "Readme.md").Return([]byte("# Project"), nil)
	client.On("GetContributorTotals", mock.Anything, "/work/project", "HEAD").
		Return([]schema.ContributorStats{{Login: "alice", Total: 3}}, nil)
	client.On("GetCurrentBranch", mock.Anything, "/work/project").Return("develop", nil)

	snap, err := NewLocalSource(client).Fetch(context.Background(), localTarget)
	require.NoError(t, err)

	assert.Equal(t, schema.RepoMeta{Name: "project", FullName: "project", DefaultBranch: "develop"}, snap.Repository)
	assert.Equal(t, tree, snap.Tree)
	assert.Equal(t, "# Project", snap.ReadmeText())
	assert.True(t, snap.HasLicense)
	assert.Equal(t, []schema.ContributorStats{{Login: "alice", Total: 3}}, snap.Contributors)
	client.AssertExpectations(t)
}

// TestLocalSourceFetchNoReadme verifies a repository without README or license.
func TestLocalSourceFetchNoReadme(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("ListTreeAtRef", mock.Anything, "/work/project", "HEAD").
		Return([]schema.TreeEntry{{Path: "docs/README.md", Kind: schema.BlobEntry}}, nil)
	client.On("GetContributorTotals", mock.Anything, "/work/project", "HEAD").Return([]schema.ContributorStats{}, nil)
	client.On("GetCurrentBranch", mock.Anything, "/work/project").Return("main", nil)

	snap, err := NewLocalSource(client).Fetch(context.Background(), localTarget)
	require.NoError(t, err)
	assert.False(t, snap.HasReadme(), "nested READMEs do not count")
	assert.False(t, snap.HasLicense)
	client.AssertNotCalled(t, "ShowFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestLocalSourceFetchError verifies git failures abort the fetch.
func TestLocalSourceFetchError(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("ListTreeAtRef", mock.Anything, "/work/project", "HEAD").Return(nil, errors.New("bad revision 'HEAD'"))
	client.On("GetContributorTotals", mock.Anything, "/work/project", "HEAD").Return([]schema.ContributorStats{}, nil).Maybe()
	client.On("GetCurrentBranch", mock.Anything, "/work/project").Return("main", nil).Maybe()

	_, err := NewLocalSource(client).Fetch(context.Background(), localTarget)
	assert.ErrorContains(t, err, "listing tree")
}

// TestLocalSourceRevision verifies the HEAD hash is used as revision.
func TestLocalSourceRevision(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("GetRepoHash", mock.Anything, "/work/project", "HEAD").Return("abc123", nil).Once()
	client.On("GetRepoHash", mock.Anything, "/work/project", "HEAD").Return("", errors.New("no commits")).Once()

	src := NewLocalSource(client)
	assert.Equal(t, "abc123", src.Revision(context.Background(), localTarget))
	assert.Equal(t, "", src.Revision(context.Background(), localTarget))
}

// TestFindReadme verifies README lookup preferences.
func TestFindReadme(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		expected string
		found    bool
	}{
		{"markdown preferred", []string{"README.txt", "README.md"}, "README.md", true},
		{"case insensitive", []string{"readme.RST"}, "readme.RST", true},
		{"plain readme", []string{"README"}, "README", true},
		{"nested ignored", []string{"pkg/README.md"}, "", false},
		{"none", []string{"main.go"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tree []schema.TreeEntry
			for _, p := range tt.paths {
				tree = append(tree, schema.TreeEntry{Path: p, Kind: schema.BlobEntry})
			}
			path, ok := findReadme(tree)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, path)
		})
	}
}

// TestHasLicenseFile verifies license detection at the repository root.
func TestHasLicenseFile(t *testing.T) {
	assert.True(t, hasLicenseFile([]schema.TreeEntry{{Path: "LICENSE", Kind: schema.BlobEntry}}))
	assert.True(t, hasLicenseFile([]schema.TreeEntry{{Path: "Licence.txt", Kind: schema.BlobEntry}}))
	assert.True(t, hasLicenseFile([]schema.TreeEntry{{Path: "COPYING", Kind: schema.BlobEntry}}))
	assert.False(t, hasLicenseFile([]schema.TreeEntry{{Path: "vendor/LICENSE", Kind: schema.BlobEntry}}))
	assert.False(t, hasLicenseFile([]schema.TreeEntry{{Path: "LICENSE", Kind: schema.TreeKind}}))
}

// TestNew verifies source selection by target kind.
func TestNew(t *testing.T) {
	src, err := New(&contract.Config{Target: localTarget}, new(contract.MockGitClient))
	require.NoError(t, err)
	assert.Equal(t, schema.LocalSource, src.Kind())

	src, err = New(&contract.Config{Target: contract.RepoTarget{Source: schema.GitHubSource}, RateLimit: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.GitHubSource, src.Kind())

	_, err = New(&contract.Config{}, nil)
	assert.Error(t, err)
}

package contract

import (
	"context"

	"github.com/huangsam/repohealth/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	callArgs := []any{ctx, repoPath}
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := m.Called(callArgs...)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string, ref string) (string, error) {
	ret := m.Called(ctx, repoPath, ref)
	return ret.String(0), ret.Error(1)
}

// GetCurrentBranch implements the GitClient interface.
func (m *MockGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// ListTreeAtRef implements the GitClient interface.
func (m *MockGitClient) ListTreeAtRef(ctx context.Context, repoPath string, ref string) ([]schema.TreeEntry, error) {
	ret := m.Called(ctx, repoPath, ref)
	entries, _ := ret.Get(0).([]schema.TreeEntry)
	return entries, ret.Error(1)
}

// GetContributorTotals implements the GitClient interface.
func (m *MockGitClient) GetContributorTotals(ctx context.Context, repoPath string, ref string) ([]schema.ContributorStats, error) {
	ret := m.Called(ctx, repoPath, ref)
	stats, _ := ret.Get(0).([]schema.ContributorStats)
	return stats, ret.Error(1)
}

// ShowFile implements the GitClient interface.
func (m *MockGitClient) ShowFile(ctx context.Context, repoPath string, ref string, path string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, ref, path)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

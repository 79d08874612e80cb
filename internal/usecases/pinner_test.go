package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// mockRepository records checkouts and fails for configured refs.
type mockRepository struct {
	checkouts   []string
	checkoutErr error
}

func (m *mockRepository) Path() string                     { return "/mock" }
func (m *mockRepository) HeadCommit() (string, error)      { return "deadbeef", nil }
func (m *mockRepository) RemoteURL(string) (string, error) { return "", domain.ErrNoRemoteOrigin }
func (m *mockRepository) ResolveAndCheckout(_ context.Context, ref string) error {
	if m.checkoutErr != nil {
		return m.checkoutErr
	}
	m.checkouts = append(m.checkouts, ref)
	return nil
}
func (m *mockRepository) StageAndDiff(context.Context) (*domain.ChangeSet, error) {
	return &domain.ChangeSet{}, nil
}
func (m *mockRepository) Commit(context.Context, string, *domain.Identity, bool) (string, error) {
	return "", domain.ErrCommitFailed
}
func (m *mockRepository) Push(context.Context, string) error     { return nil }
func (m *mockRepository) Rollback(context.Context, string) error { return nil }
func (m *mockRepository) Close() error                           { return nil }

func TestVersionPinner_Pin(t *testing.T) {
	web := &mockRepository{}
	api := &mockRepository{}
	p := NewVersionPinner(&testLogger{})

	result := p.Pin(context.Background(),
		map[string]domain.Repository{"web": web, "api": api},
		map[string]string{"web": "v2.1.0", "api": "main"},
	)

	assert.Equal(t, []string{"api", "web"}, result.Pinned)
	assert.Empty(t, result.Failed)
	assert.Equal(t, []string{"main"}, api.checkouts)
	assert.Equal(t, []string{"v2.1.0"}, web.checkouts)
}

func TestVersionPinner_Pin_FailureDoesNotAbortBatch(t *testing.T) {
	broken := &mockRepository{
		checkoutErr: fmt.Errorf("%w: %q", domain.ErrRefNotFound, "v9.9.9"),
	}
	ok := &mockRepository{}
	p := NewVersionPinner(&testLogger{})

	result := p.Pin(context.Background(),
		map[string]domain.Repository{"broken": broken, "ok": ok},
		map[string]string{"broken": "v9.9.9", "ok": "v1.0.0"},
	)

	assert.Equal(t, []string{"ok"}, result.Pinned)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed["broken"], domain.ErrRefNotFound)
	assert.Equal(t, []string{"v1.0.0"}, ok.checkouts)
}

func TestVersionPinner_Pin_SkipsUnpinnedRepositories(t *testing.T) {
	pinned := &mockRepository{}
	untouched := &mockRepository{}
	p := NewVersionPinner(&testLogger{})

	result := p.Pin(context.Background(),
		map[string]domain.Repository{"pinned": pinned, "untouched": untouched},
		map[string]string{"pinned": "v1.0.0"},
	)

	assert.Equal(t, []string{"pinned"}, result.Pinned)
	assert.Empty(t, result.Failed)
	assert.Empty(t, untouched.checkouts)
}

func TestVersionPinner_Pin_EmptyBatch(t *testing.T) {
	p := NewVersionPinner(&testLogger{})

	result := p.Pin(context.Background(), nil, nil)

	assert.Empty(t, result.Pinned)
	assert.Empty(t, result.Failed)
}

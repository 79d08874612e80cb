package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// testLogger is a minimal logger for testing that doesn't output anything.
type testLogger struct{}

func (l *testLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (l *testLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (l *testLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (l *testLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockRepo is a minimal domain.Repository for command tests.
type mockRepo struct {
	path string
	head string
}

func (m *mockRepo) Path() string                                     { return m.path }
func (m *mockRepo) HeadCommit() (string, error)                      { return m.head, nil }
func (m *mockRepo) RemoteURL(string) (string, error)                 { return "", domain.ErrNoRemoteOrigin }
func (m *mockRepo) ResolveAndCheckout(context.Context, string) error { return nil }
func (m *mockRepo) StageAndDiff(context.Context) (*domain.ChangeSet, error) {
	return &domain.ChangeSet{}, nil
}
func (m *mockRepo) Commit(context.Context, string, *domain.Identity, bool) (string, error) {
	return m.head, nil
}
func (m *mockRepo) Push(context.Context, string) error     { return nil }
func (m *mockRepo) Rollback(context.Context, string) error { return nil }
func (m *mockRepo) Close() error                           { return nil }

// mockReconciler records the input it was called with.
type mockReconciler struct {
	input  domain.ReconcileInput
	result *domain.ReconcileResult
	err    error
}

func (m *mockReconciler) Reconcile(_ context.Context, input domain.ReconcileInput) (*domain.ReconcileResult, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// bufferWriter collects written reports.
type bufferWriter struct {
	buf bytes.Buffer
}

func (w *bufferWriter) WriteReport(report string) error {
	if report == "" {
		return nil
	}
	_, err := fmt.Fprintln(&w.buf, report)
	return err
}

// testHarness bundles the mocks behind a Dependencies value.
type testHarness struct {
	deps       *Dependencies
	reconciler *mockReconciler
	pinner     *mockPinner
	writer     *bufferWriter
	identity   *domain.Identity
	remote     string
	openErr    error
}

func newTestHarness() *testHarness {
	h := &testHarness{
		reconciler: &mockReconciler{
			result: &domain.ReconcileResult{
				Report:    "Added file a.yaml",
				Changed:   true,
				CommitSHA: "abc123",
			},
		},
		pinner: &mockPinner{},
		writer: &bufferWriter{},
	}
	h.deps = &Dependencies{
		LoggerFactory: func(_, _ string) (Logger, error) { return &testLogger{}, nil },
		ConfigLoader: func() (*AppConfig, error) {
			return &AppConfig{
				RemoteName: domain.DefaultRemoteName,
				LogLevel:   "info",
				LogAppName: "catalogctl",
			}, nil
		},
		RepoOpener: func(path string, _ Logger) (domain.Repository, error) {
			if h.openErr != nil {
				return nil, h.openErr
			}
			return &mockRepo{path: path, head: "head-" + filepath.Base(path)}, nil
		},
		ReconcilerFactory: func(_ domain.Repository, identity *domain.Identity, remote string, _ Logger) domain.Reconciler {
			h.identity = identity
			h.remote = remote
			return h.reconciler
		},
		PinnerFactory:       func(_ Logger) domain.Pinner { return h.pinner },
		OutputWriterFactory: func() domain.OutputWriter { return h.writer },
		Stdout:              &bytes.Buffer{},
		Stderr:              &bytes.Buffer{},
	}
	return h
}

// resetFlags clears package-level flag state between tests.
func resetFlags() {
	push = false
	authorName = ""
	authorEmail = ""
	dependenciesDir = ""
	verbose = false
}

func runCommand(t *testing.T, deps *Dependencies, args ...string) error {
	t.Helper()
	resetFlags()
	cmd := NewRootCmdWithDeps(deps)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRootCmd_Preview(t *testing.T) {
	h := newTestHarness()

	err := runCommand(t, h.deps, "./catalog", "./compiled")

	require.NoError(t, err)
	assert.False(t, h.reconciler.input.Push)
	assert.Equal(t, "./compiled", h.reconciler.input.RenderedDir)
	assert.Equal(t, "Added file a.yaml\n", h.writer.buf.String())
	assert.Nil(t, h.identity)
	assert.Equal(t, domain.DefaultRemoteName, h.remote)
}

func TestRootCmd_Push(t *testing.T) {
	h := newTestHarness()

	err := runCommand(t, h.deps, "./catalog", "./compiled", "--push")

	require.NoError(t, err)
	assert.True(t, h.reconciler.input.Push)
}

func TestRootCmd_AuthorFlagsOverrideConfig(t *testing.T) {
	h := newTestHarness()

	err := runCommand(t, h.deps, "./catalog", "./compiled",
		"--author-name", "Catalog Bot", "--author-email", "bot@example.com")

	require.NoError(t, err)
	require.NotNil(t, h.identity)
	assert.Equal(t, "Catalog Bot", h.identity.Name)
	assert.Equal(t, "bot@example.com", h.identity.Email)
}

func TestRootCmd_DependenciesDir(t *testing.T) {
	h := newTestHarness()
	depsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(depsDir, "web"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(depsDir, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(depsDir, "README.md"), []byte("x"), 0o644))

	err := runCommand(t, h.deps, "./catalog", "./compiled", "--dependencies-dir", depsDir)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"web": "head-web",
		"api": "head-api",
	}, h.reconciler.input.Metadata.ComponentCommits)
}

func TestRootCmd_NotARepository(t *testing.T) {
	h := newTestHarness()
	h.openErr = fmt.Errorf("%w: ./catalog", domain.ErrRepositoryNotFound)

	err := runCommand(t, h.deps, "./catalog", "./compiled")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestRootCmd_PublishFailure(t *testing.T) {
	h := newTestHarness()
	h.reconciler.err = fmt.Errorf("%w: push rejected", domain.ErrPublishFailed)

	err := runCommand(t, h.deps, "./catalog", "./compiled", "--push")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPublishFailed)
	assert.Contains(t, err.Error(), "committed but not published")
}

func TestRootCmd_ConfigError(t *testing.T) {
	h := newTestHarness()
	h.deps.ConfigLoader = func() (*AppConfig, error) {
		return nil, errors.New("bad environment")
	}

	err := runCommand(t, h.deps, "./catalog", "./compiled")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestRootCmd_NilDependencies(t *testing.T) {
	err := runCommand(t, nil, "./catalog", "./compiled")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependencies not configured")
}

func TestRootCmd_WrongArgCount(t *testing.T) {
	h := newTestHarness()

	err := runCommand(t, h.deps, "./catalog")

	require.Error(t, err)
}

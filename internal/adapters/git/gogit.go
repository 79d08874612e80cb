// Package git provides adapters for driving local Git repositories.
// This package implements the domain.Repository interface using go-git/v5.
package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// GoGitRepository implements domain.Repository using go-git/v5.
// It exclusively owns the working tree and index of the repository it wraps.
type GoGitRepository struct {
	repo   *git.Repository
	wt     *git.Worktree
	path   string
	logger Logger
}

// Open opens an existing working copy at the given path.
// Returns domain.ErrRepositoryNotFound if the path is not a valid Git repository.
func Open(path string, log Logger) (*GoGitRepository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}
	return wrap(repo, path, log)
}

// Init creates a new repository with a working tree at the given path.
func Init(path string, log Logger) (*GoGitRepository, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository at %s: %w", path, err)
	}
	return wrap(repo, path, log)
}

// Clone clones the repository at url (normalized first, see NormalizeURL)
// into directory. Cloning an empty upstream degrades to initializing a fresh
// repository with the remote configured and an initial commit, so callers
// always receive a working copy with a usable head.
func Clone(ctx context.Context, url, directory string, identity *domain.Identity, log Logger) (*GoGitRepository, error) {
	normalized, err := NormalizeURL(url)
	if err != nil {
		return nil, err
	}

	log.Debug(ctx, "cloning repository", map[string]interface{}{
		"url":       normalized,
		"directory": directory,
	})

	repo, err := git.PlainCloneContext(ctx, directory, false, &git.CloneOptions{URL: normalized})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return cloneEmpty(ctx, normalized, directory, identity, log)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", normalized, err)
	}

	return wrap(repo, directory, log)
}

// cloneEmpty stands in for cloning an upstream that has no commits yet.
func cloneEmpty(ctx context.Context, url, directory string, identity *domain.Identity, log Logger) (*GoGitRepository, error) {
	log.Info(ctx, "remote repository is empty, creating initial commit", map[string]interface{}{
		"url":       url,
		"directory": directory,
	})

	r, err := Init(directory, log)
	if err != nil {
		return nil, err
	}
	if err := r.AddRemote(domain.DefaultRemoteName, url); err != nil {
		return nil, err
	}
	if _, err := r.Commit(ctx, "Initial commit", identity, true); err != nil {
		return nil, err
	}
	return r, nil
}

func wrap(repo *git.Repository, path string, log Logger) (*GoGitRepository, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree for %s: %w", path, err)
	}
	return &GoGitRepository{
		repo:   repo,
		wt:     wt,
		path:   path,
		logger: log,
	}, nil
}

// Path returns the working-tree path of the repository.
func (r *GoGitRepository) Path() string {
	return r.path
}

// HeadCommit returns the SHA of the current head commit.
// Returns domain.ErrEmptyRepository when the head is unborn.
func (r *GoGitRepository) HeadCommit() (string, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("%w: %s", domain.ErrEmptyRepository, r.path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD of %s: %w", r.path, err)
	}
	return head.Hash().String(), nil
}

// RemoteURL returns the first URL of the named remote.
func (r *GoGitRepository) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNoRemoteOrigin, r.path)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: remote %q has no URLs configured", domain.ErrNoRemoteOrigin, name)
	}
	return urls[0], nil
}

// AddRemote configures a named remote pointing at the normalized form of url.
func (r *GoGitRepository) AddRemote(name, url string) error {
	normalized, err := NormalizeURL(url)
	if err != nil {
		return err
	}
	_, err = r.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: name,
		URLs: []string{normalized},
	})
	if err != nil {
		return fmt.Errorf("failed to add remote %q to %s: %w", name, r.path, err)
	}
	return nil
}

// UpdateRemote rewrites the origin URL when it differs from url and fetches
// the remote with pruning so stale remote-tracking branches disappear.
// Reports whether the URL actually changed.
func (r *GoGitRepository) UpdateRemote(ctx context.Context, url string) (bool, error) {
	normalized, err := NormalizeURL(url)
	if err != nil {
		return false, err
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return false, fmt.Errorf("failed to read config of %s: %w", r.path, err)
	}
	rc, ok := cfg.Remotes[domain.DefaultRemoteName]
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrNoRemoteOrigin, r.path)
	}
	if len(rc.URLs) > 0 && rc.URLs[0] == normalized {
		return false, nil
	}

	rc.URLs = []string{normalized}
	if err := r.repo.SetConfig(cfg); err != nil {
		return false, fmt.Errorf("failed to update remote URL of %s: %w", r.path, err)
	}

	r.logger.Info(ctx, "remote URL changed, fetching", map[string]interface{}{
		"path": r.path,
		"url":  normalized,
	})

	err = r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: domain.DefaultRemoteName,
		Prune:      true,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return true, fmt.Errorf("failed to fetch %s after remote update: %w", r.path, err)
	}
	return true, nil
}

// Commit builds a commit from the currently staged index. An explicit
// identity is used for both author and committer; otherwise the identity is
// derived from the repository's own user.name/user.email configuration. The
// process environment is never consulted.
func (r *GoGitRepository) Commit(ctx context.Context, message string, identity *domain.Identity, allowEmpty bool) (string, error) {
	sig, err := r.signature(identity)
	if err != nil {
		return "", err
	}

	r.logger.Debug(ctx, "creating commit", map[string]interface{}{
		"path":   r.path,
		"author": fmt.Sprintf("%s <%s>", sig.Name, sig.Email),
	})

	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: allowEmpty,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrCommitFailed, r.path, err)
	}
	return hash.String(), nil
}

// signature resolves the commit identity: explicit configuration wins, else
// the repository's scoped user configuration is consulted.
func (r *GoGitRepository) signature(identity *domain.Identity) (*object.Signature, error) {
	if identity != nil && identity.Name != "" && identity.Email != "" {
		return &object.Signature{
			Name:  identity.Name,
			Email: identity.Email,
			When:  time.Now(),
		}, nil
	}

	cfg, err := r.repo.ConfigScoped(gitconfig.SystemScope)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config of %s: %w", domain.ErrCommitFailed, r.path, err)
	}
	if cfg.User.Name == "" || cfg.User.Email == "" {
		return nil, fmt.Errorf("%w: no committer identity configured for %s", domain.ErrCommitFailed, r.path)
	}
	return &object.Signature{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		When:  time.Now(),
	}, nil
}

// Push publishes the current head to the named remote. Single attempt, no
// retry; any failure is fatal to the caller.
func (r *GoGitRepository) Push(ctx context.Context, remote string) error {
	if remote == "" {
		remote = domain.DefaultRemoteName
	}

	err := r.repo.PushContext(ctx, &git.PushOptions{RemoteName: remote})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: remote %q of %s: %w", domain.ErrPublishFailed, remote, r.path, err)
	}
	return nil
}

// Rollback resets the head reference and index back to commitSHA without
// touching the working tree (mixed reset). An empty commitSHA restores the
// unborn state of a previously empty repository by deleting the branch ref
// the just-created commit landed on.
func (r *GoGitRepository) Rollback(ctx context.Context, commitSHA string) error {
	if commitSHA == "" {
		return r.rollbackUnborn(ctx)
	}

	r.logger.Debug(ctx, "rolling back head", map[string]interface{}{
		"path":   r.path,
		"commit": commitSHA,
	})

	err := r.wt.Reset(&git.ResetOptions{
		Commit: plumbing.NewHash(commitSHA),
		Mode:   git.MixedReset,
	})
	if err != nil {
		return fmt.Errorf("failed to reset %s to %s: %w", r.path, commitSHA, err)
	}
	return nil
}

func (r *GoGitRepository) rollbackUnborn(ctx context.Context) error {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return fmt.Errorf("failed to read HEAD of %s: %w", r.path, err)
	}
	if head.Type() == plumbing.SymbolicReference {
		if err := r.repo.Storer.RemoveReference(head.Target()); err != nil {
			return fmt.Errorf("failed to remove %s in %s: %w", head.Target(), r.path, err)
		}
	}

	r.logger.Debug(ctx, "restored unborn head", map[string]interface{}{"path": r.path})

	// The index still carries the staged entries; clear it so the repository
	// is back to the state a fresh init would have.
	if err := r.repo.Storer.SetIndex(&index.Index{Version: 2}); err != nil {
		return fmt.Errorf("failed to clear index of %s: %w", r.path, err)
	}
	return nil
}

// Close releases any resources held by the repository.
// For go-git, this is a no-op as the repository doesn't hold persistent resources.
func (r *GoGitRepository) Close() error {
	return nil
}

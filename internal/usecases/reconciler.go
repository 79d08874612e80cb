// Package usecases contains the application business logic for catalog
// reconciliation and component version pinning.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/otiai10/copy"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// Logger defines the logging interface for the usecases layer.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// CatalogReconciler reconciles a rendered output tree against the catalog
// repository: wholesale-replace, diff, commit, then publish or roll back.
type CatalogReconciler struct {
	repo     domain.Repository
	renderer domain.ReportRenderer
	logger   Logger
	identity *domain.Identity
	remote   string
	now      domain.Clock
}

// ReconcilerOption customizes a CatalogReconciler.
type ReconcilerOption func(*CatalogReconciler)

// WithIdentity sets the commit author/committer identity. With a nil
// identity the catalog repository's own user configuration is used.
func WithIdentity(identity *domain.Identity) ReconcilerOption {
	return func(r *CatalogReconciler) { r.identity = identity }
}

// WithRemote overrides the remote the catalog publishes to.
func WithRemote(remote string) ReconcilerOption {
	return func(r *CatalogReconciler) { r.remote = remote }
}

// WithClock injects the time source used for the compilation timestamp.
func WithClock(now domain.Clock) ReconcilerOption {
	return func(r *CatalogReconciler) { r.now = now }
}

// NewCatalogReconciler creates a CatalogReconciler for the given catalog
// repository.
func NewCatalogReconciler(repo domain.Repository, renderer domain.ReportRenderer, log Logger, opts ...ReconcilerOption) *CatalogReconciler {
	r := &CatalogReconciler{
		repo:     repo,
		renderer: renderer,
		logger:   log,
		remote:   domain.DefaultRemoteName,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile replaces the catalog working tree with the rendered output,
// stages and diffs the result, commits unconditionally, and then either
// publishes the commit (Push true) or rolls the head back so the remote is
// untouched while the working tree keeps the rendered output (preview).
//
// The diff report is rendered in both modes. A push failure leaves the
// catalog committed but unpublished for manual recovery.
func (r *CatalogReconciler) Reconcile(ctx context.Context, input domain.ReconcileInput) (*domain.ReconcileResult, error) {
	prevHead, err := r.previousHead()
	if err != nil {
		return nil, err
	}

	if err := r.replaceTree(input.RenderedDir); err != nil {
		return nil, err
	}

	cs, err := r.repo.StageAndDiff(ctx)
	if err != nil {
		return nil, err
	}
	report := r.renderer.Render(cs)

	message := renderCommitMessage(input.Metadata, r.now())
	sha, err := r.repo.Commit(ctx, message, r.identity, true)
	if err != nil {
		return nil, err
	}

	result := &domain.ReconcileResult{
		Report:    report,
		Changed:   cs.Changed(),
		CommitSHA: sha,
	}

	if input.Push {
		if err := r.repo.Push(ctx, r.remote); err != nil {
			return nil, err
		}
		result.Published = true
		r.logger.Info(ctx, "catalog published", map[string]interface{}{
			"commit":  sha,
			"changed": result.Changed,
			"remote":  r.remote,
		})
		return result, nil
	}

	if err := r.repo.Rollback(ctx, prevHead); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "catalog previewed, commit discarded", map[string]interface{}{
		"commit":  sha,
		"changed": result.Changed,
	})
	return result, nil
}

// previousHead records the pre-reconciliation head. An unborn catalog reads
// as the empty SHA, which Rollback understands as "restore unborn state".
func (r *CatalogReconciler) previousHead() (string, error) {
	head, err := r.repo.HeadCommit()
	if errors.Is(err, domain.ErrEmptyRepository) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return head, nil
}

// replaceTree deletes the catalog working-tree contents except the .git
// directory and copies the rendered output in.
func (r *CatalogReconciler) replaceTree(renderedDir string) error {
	root := r.repo.Path()

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read catalog tree %s: %w", root, err)
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return fmt.Errorf("failed to clear catalog tree %s: %w", root, err)
		}
	}

	if err := copy.Copy(renderedDir, root); err != nil {
		return fmt.Errorf("failed to copy rendered output %s into %s: %w", renderedDir, root, err)
	}
	return nil
}

// renderCommitMessage builds the deterministic catalog commit message:
// banner, sorted component and configuration commit pins, and the
// millisecond-precision compilation timestamp.
func renderCommitMessage(meta domain.ReconcileMetadata, now time.Time) string {
	var b strings.Builder
	b.WriteString("Automated catalog update\n")

	writeCommitLines(&b, "Component commit(s)", meta.ComponentCommits)
	writeCommitLines(&b, "Configuration commit(s)", meta.ConfigCommits)

	b.WriteString("\nCompilation timestamp: ")
	b.WriteString(now.Format(domain.CompilationTimestampLayout))
	b.WriteString("\n")
	return b.String()
}

func writeCommitLines(b *strings.Builder, heading string, commits map[string]string) {
	if len(commits) == 0 {
		return
	}
	names := make([]string, 0, len(commits))
	for name := range commits {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("\n")
	b.WriteString(heading)
	b.WriteString(":\n")
	for _, name := range names {
		fmt.Fprintf(b, " * %s: %s\n", name, commits[name])
	}
}

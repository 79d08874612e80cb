package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// ResolveAndCheckout resolves ref (tag, branch or commit-like identifier) to
// a commit and checks it out in detached form, discarding any uncommitted
// local changes. A ref that does not resolve locally is retried as the
// origin/<ref> remote-tracking branch.
//
// The checkout is always detached: callers pin many independent component
// repositories to arbitrary, possibly moving, refs, and never advancing a
// local branch pointer keeps local state from diverging from the remote.
func (r *GoGitRepository) ResolveAndCheckout(ctx context.Context, ref string) error {
	hash, found := r.resolve(ref)
	if !found {
		hash, found = r.resolve(domain.DefaultRemoteName + "/" + ref)
	}
	if !found {
		return fmt.Errorf("%w: %q in %s", domain.ErrRefNotFound, ref, r.path)
	}

	r.logger.Debug(ctx, "resolved revision", map[string]interface{}{
		"path":   r.path,
		"ref":    ref,
		"commit": hash.String(),
	})

	err := r.wt.Checkout(&git.CheckoutOptions{
		Hash:  hash,
		Force: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %q in %s: %w", domain.ErrCheckoutFailed, ref, r.path, err)
	}
	return nil
}

// resolve attempts to resolve a single revision spec, reporting found/not-found
// instead of using error control flow for the fallback.
func (r *GoGitRepository) resolve(rev string) (plumbing.Hash, bool) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil || hash == nil {
		return plumbing.ZeroHash, false
	}
	return *hash, true
}

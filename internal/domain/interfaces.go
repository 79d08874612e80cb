package domain

import "context"

// Repository is an opened git working copy with an index, a head reference
// and zero or more named remotes. Each handle is owned by exactly one logical
// caller at a time; no locking is provided, and two reconciliations must not
// run against the same path concurrently.
type Repository interface {
	// Path returns the working-tree path of the repository.
	Path() string

	// HeadCommit returns the SHA of the current head commit.
	// Returns ErrEmptyRepository if the head is unborn.
	HeadCommit() (string, error)

	// RemoteURL returns the first URL of the named remote.
	// Returns ErrNoRemoteOrigin if the remote is not configured.
	RemoteURL(name string) (string, error)

	// ResolveAndCheckout resolves ref (tag, branch or commit-like identifier)
	// to a commit, preferring a local match and falling back to the
	// origin/<ref> remote-tracking branch, then force-checkouts the commit in
	// detached form, discarding uncommitted local changes.
	// Returns ErrRefNotFound or ErrCheckoutFailed.
	ResolveAndCheckout(ctx context.Context, ref string) error

	// StageAndDiff stages the full set of working-tree differences, deletions
	// included, and returns the classified changes against the previous tree
	// state. Never fails solely because the repository has no commits.
	StageAndDiff(ctx context.Context) (*ChangeSet, error)

	// Commit builds a commit from the currently staged index. An explicit
	// identity is used for both author and committer; with a nil identity the
	// repository's own user.name/user.email configuration is consulted.
	// Returns the new commit SHA or ErrCommitFailed.
	Commit(ctx context.Context, message string, identity *Identity, allowEmpty bool) (string, error)

	// Push publishes the current head to the named remote. A single attempt,
	// no internal retry; returns ErrPublishFailed on any failure.
	Push(ctx context.Context, remote string) error

	// Rollback discards the current head by resetting the head reference and
	// index back to commitSHA, leaving the working tree untouched. An empty
	// commitSHA restores the unborn state of a previously empty repository.
	Rollback(ctx context.Context, commitSHA string) error

	// Close releases any resources held by the repository.
	Close() error
}

// Reconciler reconciles a rendered output tree against the catalog repository.
type Reconciler interface {
	// Reconcile wholesale-replaces the catalog working tree with the rendered
	// output, diffs, commits, and publishes or rolls back depending on the
	// input mode.
	Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error)
}

// Pinner pins a batch of component repositories to their desired versions.
type Pinner interface {
	// Pin checks out the desired ref in every named repository. Failures are
	// collected per repository and never abort the batch.
	Pin(ctx context.Context, repos map[string]Repository, versions map[string]string) *PinResult
}

// ReportRenderer renders a ChangeSet into a human-readable diff report.
type ReportRenderer interface {
	// Render produces the per-entry reports concatenated with blank-line
	// separation. Returns the empty string for an empty change set.
	Render(cs *ChangeSet) string
}

// OutputWriter writes a rendered diff report to an output destination.
type OutputWriter interface {
	// WriteReport writes the report followed by a trailing newline.
	WriteReport(report string) error
}

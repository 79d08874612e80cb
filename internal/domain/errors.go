package domain

import "errors"

// Domain errors for catalog reconciliation and version resolution.
//
// Propagation policy: ErrRefNotFound and ErrCheckoutFailed are non-fatal at
// batch granularity (one component is skipped, the rest proceed);
// ErrDiffContent is localized to a single change entry; ErrCommitFailed and
// ErrPublishFailed abort the whole reconciliation.
var (
	// ErrRepositoryNotFound indicates the specified path is not a valid Git repository.
	ErrRepositoryNotFound = errors.New("git repository not found at specified path")

	// ErrEmptyRepository indicates the repository has no commits yet (unborn HEAD).
	ErrEmptyRepository = errors.New("repository has no commits")

	// ErrNoRemoteOrigin indicates no 'origin' remote is configured in the repository.
	ErrNoRemoteOrigin = errors.New("no 'origin' remote configured")

	// ErrRefNotFound indicates a symbolic version resolved to no commit, neither
	// locally nor as a remote-tracking branch of origin.
	ErrRefNotFound = errors.New("revision not found in repository or on origin")

	// ErrCheckoutFailed indicates a ref resolved but the detached checkout failed
	// at a lower level (corrupt object, transport error).
	ErrCheckoutFailed = errors.New("failed to checkout revision")

	// ErrDiffContent indicates a blob could not be decoded for line-level
	// diffing. Degraded to a placeholder entry, never fatal.
	ErrDiffContent = errors.New("cannot render content diff")

	// ErrCommitFailed indicates index or commit creation failed. Fatal to the
	// current reconciliation.
	ErrCommitFailed = errors.New("failed to create commit")

	// ErrPublishFailed indicates the push to the catalog remote failed. Fatal;
	// the catalog is left committed but unpublished for manual recovery.
	ErrPublishFailed = errors.New("failed to push catalog to remote")
)

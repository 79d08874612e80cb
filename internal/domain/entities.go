// Package domain defines the core business entities and interfaces for catalogctl.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import "time"

// ChangeKind classifies a single entry of a ChangeSet.
//
// The set of kinds is closed on purpose: a new change category surfacing from
// the version-control layer must be mapped here explicitly instead of falling
// through a default branch.
type ChangeKind int

const (
	// ChangeAdded marks a path that exists only in the new tree state.
	ChangeAdded ChangeKind = iota

	// ChangeDeleted marks a path that existed only in the old tree state.
	ChangeDeleted

	// ChangeRenamed marks a path that moved; the entry carries a similarity
	// ratio instead of a line-level diff.
	ChangeRenamed

	// ChangeModified marks a path whose content changed in place.
	ChangeModified
)

// String returns the human-readable label for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	case ChangeRenamed:
		return "renamed"
	case ChangeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// ChangeEntry describes one changed path between the old and the new tree
// state. The diff direction is forward: FromPath belongs to the old state,
// ToPath to the new state.
type ChangeEntry struct {
	// Kind classifies the change.
	Kind ChangeKind

	// FromPath is the path in the old state. Empty for ChangeAdded.
	FromPath string

	// ToPath is the path in the new state. Empty for ChangeDeleted.
	ToPath string

	// Similarity is the [0,1] line-sequence similarity ratio.
	// Only meaningful for ChangeRenamed.
	Similarity float64

	// Diff is the unified line diff. Only set for ChangeModified; renames
	// carry the similarity ratio instead, by design.
	Diff string

	// Binary indicates the content diff was degraded to a placeholder
	// because at least one blob could not be decoded as text.
	Binary bool
}

// Path returns the path identifying the entry in the new state, falling back
// to the old state path for deletions.
func (e ChangeEntry) Path() string {
	if e.ToPath != "" {
		return e.ToPath
	}
	return e.FromPath
}

// ChangeSet is the result of staging and diffing a repository. It is
// constructed fresh per call and never mutated afterwards.
type ChangeSet struct {
	// Entries is the ordered (by path) sequence of changes.
	Entries []ChangeEntry
}

// Changed reports whether the change set contains at least one entry.
func (cs *ChangeSet) Changed() bool {
	return len(cs.Entries) > 0
}

// Identity is the author/committer identity used when building commits.
// Resolved once per commit operation and never mutated.
type Identity struct {
	// Name is the display name, e.g. "Catalog Bot".
	Name string

	// Email is the address recorded in the commit.
	Email string
}

// ReconcileMetadata carries the exact commit identifiers of every component
// and configuration source repository that contributed to the rendered
// output. It is embedded into the catalog commit message.
type ReconcileMetadata struct {
	// ComponentCommits maps component name to the commit SHA currently
	// checked out for it.
	ComponentCommits map[string]string

	// ConfigCommits maps configuration source name to its commit SHA.
	ConfigCommits map[string]string
}

// ReconcileInput are the parameters of a single catalog reconciliation.
type ReconcileInput struct {
	// RenderedDir is the directory holding the freshly rendered output tree
	// that wholesale-replaces the catalog working tree.
	RenderedDir string

	// Metadata is embedded into the commit message.
	Metadata ReconcileMetadata

	// Push selects publish mode (push the commit to origin) over preview
	// mode (discard the commit, keep the rendered working tree).
	Push bool
}

// ReconcileResult is the outcome of a successful reconciliation.
type ReconcileResult struct {
	// Report is the rendered, human-readable diff report.
	Report string

	// Changed is true iff the rendered output differed from the previous
	// catalog state.
	Changed bool

	// CommitSHA identifies the commit built from the staged index. In
	// preview mode the commit is discarded again, but its identifier is
	// still reported for inspection.
	CommitSHA string

	// Published is true iff the commit was pushed to the remote.
	Published bool
}

// PinResult is the outcome of pinning a batch of repositories to their
// desired versions. Per-repository failures are non-fatal and collected here.
type PinResult struct {
	// Pinned lists the names that were successfully checked out, sorted.
	Pinned []string

	// Failed maps each failed name to its resolution or checkout error.
	Failed map[string]error
}

// DefaultRemoteName is the remote every catalog repository is expected to
// publish to.
const DefaultRemoteName = "origin"

// CompilationTimestampLayout is the millisecond-precision layout used for the
// compilation timestamp line of catalog commit messages.
const CompilationTimestampLayout = "2006-01-02T15:04:05.000"

// Clock returns the current time; injected into the reconciler so commit
// messages are deterministic under test except for the timestamp itself.
type Clock func() time.Time

package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// renameThreshold is the minimum line-sequence similarity ratio for a
// deleted/added pair to be reported as a rename, matching git's default
// rename detection threshold of 50%.
const renameThreshold = 0.5

// StageAndDiff stages the full set of working-tree differences into the
// index and returns the classified changes.
//
// Deletions are staged explicitly before the bulk add: a wildcard add does
// not pick up paths that are gone from the working tree. The diff base is a
// snapshot of the index taken before staging, which equals the head commit's
// tree (or the canonical empty tree of a freshly initialized repository)
// whenever index and HEAD agree; this makes the operation idempotent and
// means it never fails solely because the repository has no commits yet.
//
// The diff direction is forward: Added entries name paths that exist in the
// new state, Deleted entries paths that existed only in the old state.
func (r *GoGitRepository) StageAndDiff(ctx context.Context) (*domain.ChangeSet, error) {
	before := r.indexSnapshot()

	status, err := r.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status of %s: %w", r.path, err)
	}

	for path, st := range status {
		if st.Worktree == git.Deleted {
			if _, err := r.wt.Remove(path); err != nil {
				return nil, fmt.Errorf("failed to stage deletion of %s in %s: %w", path, r.path, err)
			}
		}
	}

	if err := r.wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("failed to stage working tree of %s: %w", r.path, err)
	}

	after := r.indexSnapshot()
	entries := r.classify(ctx, before, after)

	r.logger.Debug(ctx, "staged and diffed working tree", map[string]interface{}{
		"path":    r.path,
		"changes": len(entries),
	})

	return &domain.ChangeSet{Entries: entries}, nil
}

// indexSnapshot captures the current index as a path-to-blob mapping. A
// missing index reads as empty, which is exactly the canonical empty tree a
// freshly initialized repository diffs against.
func (r *GoGitRepository) indexSnapshot() map[string]plumbing.Hash {
	snap := make(map[string]plumbing.Hash)
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return snap
	}
	for _, e := range idx.Entries {
		snap[e.Name] = e.Hash
	}
	return snap
}

// classify turns the before/after index snapshots into an ordered sequence
// of change entries. Every change kind is assigned here explicitly; there is
// no default bucket for unclassified changes.
func (r *GoGitRepository) classify(ctx context.Context, before, after map[string]plumbing.Hash) []domain.ChangeEntry {
	var added, deleted []string
	for path := range after {
		if _, ok := before[path]; !ok {
			added = append(added, path)
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			deleted = append(deleted, path)
		}
	}
	sort.Strings(added)
	sort.Strings(deleted)

	entries, added, deleted := r.detectRenames(before, after, added, deleted)

	for _, path := range added {
		entries = append(entries, domain.ChangeEntry{Kind: domain.ChangeAdded, ToPath: path})
	}
	for _, path := range deleted {
		entries = append(entries, domain.ChangeEntry{Kind: domain.ChangeDeleted, FromPath: path})
	}

	for path, newHash := range after {
		oldHash, ok := before[path]
		if !ok || oldHash == newHash {
			continue
		}
		entries = append(entries, r.modifiedEntry(ctx, path, oldHash, newHash))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path() < entries[j].Path() })
	return entries
}

// detectRenames pairs deleted paths with added paths by content similarity.
// Identical blobs short-cut to ratio 1.0; text content is compared over line
// sequences. Binary or undecodable content is never paired. Returns the
// rename entries plus the added/deleted paths that remain unpaired.
func (r *GoGitRepository) detectRenames(
	before, after map[string]plumbing.Hash,
	added, deleted []string,
) ([]domain.ChangeEntry, []string, []string) {
	var entries []domain.ChangeEntry
	var remainingDeleted []string
	usedAdded := make(map[string]bool)

	for _, del := range deleted {
		oldLines, oldErr := r.blobLines(before[del])

		bestPath := ""
		bestRatio := 0.0
		for _, add := range added {
			if usedAdded[add] {
				continue
			}
			if before[del] == after[add] {
				bestPath, bestRatio = add, 1.0
				break
			}
			if oldErr != nil {
				continue
			}
			newLines, err := r.blobLines(after[add])
			if err != nil {
				continue
			}
			ratio := difflib.NewMatcher(oldLines, newLines).Ratio()
			if ratio > bestRatio {
				bestPath, bestRatio = add, ratio
			}
		}

		if bestPath != "" && bestRatio >= renameThreshold {
			usedAdded[bestPath] = true
			entries = append(entries, domain.ChangeEntry{
				Kind:       domain.ChangeRenamed,
				FromPath:   del,
				ToPath:     bestPath,
				Similarity: bestRatio,
			})
			continue
		}
		remainingDeleted = append(remainingDeleted, del)
	}

	var remainingAdded []string
	for _, add := range added {
		if !usedAdded[add] {
			remainingAdded = append(remainingAdded, add)
		}
	}
	return entries, remainingAdded, remainingDeleted
}

// modifiedEntry renders a context-free unified diff for an in-place change.
// Undecodable content degrades to a placeholder instead of failing the whole
// operation.
func (r *GoGitRepository) modifiedEntry(ctx context.Context, path string, oldHash, newHash plumbing.Hash) domain.ChangeEntry {
	entry := domain.ChangeEntry{Kind: domain.ChangeModified, FromPath: path, ToPath: path}

	diff, err := r.unifiedDiff(path, oldHash, newHash)
	if err != nil {
		r.logger.Warn(ctx, "content diff unavailable", map[string]interface{}{
			"path":  r.path,
			"file":  path,
			"error": err.Error(),
		})
		entry.Binary = true
		entry.Diff = fmt.Sprintf("--- %s\n+++ %s\nBinary files differ", path, path)
		return entry
	}
	entry.Diff = diff
	return entry
}

func (r *GoGitRepository) unifiedDiff(path string, oldHash, newHash plumbing.Hash) (string, error) {
	oldText, err := r.blobText(oldHash)
	if err != nil {
		return "", err
	}
	newText, err := r.blobText(newHash)
	if err != nil {
		return "", err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: path,
		ToFile:   path,
		Context:  0,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrDiffContent, path, err)
	}
	return strings.TrimRight(diff, "\n"), nil
}

// blobText reads a blob and decodes it as text.
// Returns domain.ErrDiffContent for binary or invalid content.
func (r *GoGitRepository) blobText(hash plumbing.Hash) (string, error) {
	blob, err := r.repo.BlobObject(hash)
	if err != nil {
		return "", fmt.Errorf("%w: blob %s: %w", domain.ErrDiffContent, hash, err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return "", fmt.Errorf("%w: blob %s: %w", domain.ErrDiffContent, hash, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: blob %s: %w", domain.ErrDiffContent, hash, err)
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return "", fmt.Errorf("%w: binary content in blob %s", domain.ErrDiffContent, hash)
	}
	return string(data), nil
}

func (r *GoGitRepository) blobLines(hash plumbing.Hash) ([]string, error) {
	text, err := r.blobText(hash)
	if err != nil {
		return nil, err
	}
	return strings.Split(text, "\n"), nil
}

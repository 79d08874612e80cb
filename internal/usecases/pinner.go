package usecases

import (
	"context"
	"sort"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// VersionPinner pins a batch of component repositories to their desired
// symbolic versions. Per-repository failures never abort the batch; they are
// logged and collected so the caller can decide how to proceed.
type VersionPinner struct {
	logger Logger
}

// NewVersionPinner creates a VersionPinner.
func NewVersionPinner(log Logger) *VersionPinner {
	return &VersionPinner{logger: log}
}

// Pin checks out the desired ref in every named repository, in name order.
// Repositories without a desired version are skipped untouched.
func (p *VersionPinner) Pin(ctx context.Context, repos map[string]domain.Repository, versions map[string]string) *domain.PinResult {
	names := make([]string, 0, len(repos))
	for name := range repos {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &domain.PinResult{Failed: make(map[string]error)}
	for _, name := range names {
		ref, ok := versions[name]
		if !ok || ref == "" {
			continue
		}

		if err := repos[name].ResolveAndCheckout(ctx, ref); err != nil {
			p.logger.Warn(ctx, "failed to pin repository version", map[string]interface{}{
				"name":  name,
				"ref":   ref,
				"error": err.Error(),
			})
			result.Failed[name] = err
			continue
		}

		p.logger.Debug(ctx, "pinned repository version", map[string]interface{}{
			"name": name,
			"ref":  ref,
		})
		result.Pinned = append(result.Pinned, name)
	}
	return result
}

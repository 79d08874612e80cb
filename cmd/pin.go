package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// newPinCmd creates the pin subcommand.
func newPinCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <dependencies-dir> <name=ref> [<name=ref>...]",
		Short: "Pin component repositories to symbolic versions",
		Long: `pin checks out the given ref in each named component repository below the
dependencies directory. Checkouts are detached and discard uncommitted local
changes, so a repository always ends up at exactly the requested version.

Failures are per-repository: a ref that does not resolve in one component
never stops the others from being pinned. The command exits non-zero when any
pin failed, after attempting all of them.

Examples:
  catalogctl pin ./dependencies web=v2.1.0 api=main`,
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPin(cmd, args, deps)
		},
	}
}

// runPin executes the batch pin with injected dependencies.
func runPin(cmd *cobra.Command, args []string, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dir := args[0]
	versions, err := parseVersionArgs(args[1:])
	if err != nil {
		return err
	}

	cfg, err := deps.ConfigLoader()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := deps.LoggerFactory(level, cfg.LogAppName)
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}

	repos := make(map[string]domain.Repository, len(versions))
	failed := make(map[string]error)
	for name := range versions {
		repo, openErr := deps.RepoOpener(filepath.Join(dir, name), log)
		if openErr != nil {
			log.Warn(ctx, "cannot open component repository", map[string]interface{}{
				"name":  name,
				"error": openErr.Error(),
			})
			failed[name] = openErr
			continue
		}
		repos[name] = repo
	}
	defer func() {
		for name, repo := range repos {
			if closeErr := repo.Close(); closeErr != nil {
				log.Warn(ctx, "failed to close component repository", map[string]interface{}{
					"name":  name,
					"error": closeErr.Error(),
				})
			}
		}
	}()

	result := deps.PinnerFactory(log).Pin(ctx, repos, versions)
	for name, pinErr := range result.Failed {
		failed[name] = pinErr
	}

	log.Info(ctx, "version pinning complete", map[string]interface{}{
		"pinned": len(result.Pinned),
		"failed": len(failed),
	})

	if len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for name := range failed {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("failed to pin %d of %d repositories: %s",
			len(failed), len(versions), strings.Join(names, ", "))
	}
	return nil
}

// parseVersionArgs parses name=ref pairs into a version map.
func parseVersionArgs(args []string) (map[string]string, error) {
	versions := make(map[string]string, len(args))
	for _, arg := range args {
		name, ref, ok := strings.Cut(arg, "=")
		if !ok || name == "" || ref == "" {
			return nil, fmt.Errorf("invalid version pin %q, expected <name>=<ref>", arg)
		}
		versions[name] = ref
	}
	return versions, nil
}

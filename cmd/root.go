// Package cmd provides the CLI commands for catalogctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger at the given level.
	LoggerFactory func(level, appName string) (Logger, error)

	// ConfigLoader loads application configuration.
	ConfigLoader func() (*AppConfig, error)

	// RepoOpener opens an existing git working copy at the given path.
	RepoOpener func(path string, log Logger) (domain.Repository, error)

	// ReconcilerFactory creates a Reconciler for the opened catalog repository.
	ReconcilerFactory func(
		repo domain.Repository,
		identity *domain.Identity,
		remote string,
		log Logger,
	) domain.Reconciler

	// PinnerFactory creates a Pinner for batch version checkouts.
	PinnerFactory func(log Logger) domain.Pinner

	// OutputWriterFactory creates an OutputWriter for the diff report.
	OutputWriterFactory func() domain.OutputWriter

	// Stdout is the writer for standard output.
	Stdout io.Writer

	// Stderr is the writer for standard error.
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// AuthorName is the commit author display name. May be empty.
	AuthorName string

	// AuthorEmail is the commit author email address. May be empty.
	AuthorEmail string

	// RemoteName is the remote the catalog publishes to.
	RemoteName string

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// Command-line flags.
var (
	push            bool
	authorName      string
	authorEmail     string
	dependenciesDir string
	verbose         bool
)

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for catalogctl.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "catalogctl <catalog-path> <rendered-dir>",
		Short: "Reconcile a rendered configuration tree against a git catalog repository",
		Long: `catalogctl reconciles a freshly rendered GitOps configuration tree against a
persisted, git-backed catalog repository.

The catalog working tree is wholesale-replaced with the rendered output, the
result is staged and diffed, and a commit is built with a deterministic
message recording the exact component and configuration commits that produced
the render. With --push the commit is published to origin; without it the
commit is discarded again so the remote stays untouched while the working
tree keeps the rendered output for inspection.

The diff report is always printed, in both modes.

Examples:
  # Preview the reconciliation, leave the remote untouched
  catalogctl ./catalog ./compiled

  # Publish the reconciliation to origin
  catalogctl ./catalog ./compiled --push

  # Record component commit pins from checked-out dependencies
  catalogctl ./catalog ./compiled --dependencies-dir ./dependencies --push

  # Enable verbose logging
  catalogctl ./catalog ./compiled -v`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, args, deps)
		},
	}

	rootCmd.Flags().BoolVar(&push, "push", false,
		"Push the catalog commit to origin instead of discarding it")
	rootCmd.Flags().StringVar(&authorName, "author-name", "",
		"Commit author name (overrides environment configuration)")
	rootCmd.Flags().StringVar(&authorEmail, "author-email", "",
		"Commit author email (overrides environment configuration)")
	rootCmd.Flags().StringVar(&dependenciesDir, "dependencies-dir", "",
		"Directory of checked-out component repositories whose head commits are recorded in the commit message")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	rootCmd.AddCommand(newPinCmd(deps))

	return rootCmd
}

// runReconcile executes the catalog reconciliation with injected dependencies.
func runReconcile(cmd *cobra.Command, args []string, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	catalogPath := args[0]
	renderedDir := args[1]

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

	log.Info(ctx, "starting catalog reconciliation", map[string]interface{}{
		"catalog":  catalogPath,
		"rendered": renderedDir,
		"push":     push,
	})

	repo, err := deps.RepoOpener(catalogPath, log)
	if err != nil {
		log.Error(ctx, "failed to open catalog repository", err, map[string]interface{}{
			"path": catalogPath,
		})
		if errors.Is(err, domain.ErrRepositoryNotFound) {
			return fmt.Errorf("not a git repository: %s", catalogPath)
		}
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			log.Warn(ctx, "failed to close catalog repository", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	metadata := collectMetadata(ctx, deps, log)

	reconciler := deps.ReconcilerFactory(repo, resolveIdentity(cfg), cfg.RemoteName, log)
	result, err := reconciler.Reconcile(ctx, domain.ReconcileInput{
		RenderedDir: renderedDir,
		Metadata:    metadata,
		Push:        push,
	})
	if err != nil {
		log.Error(ctx, "catalog reconciliation failed", err, nil)
		if errors.Is(err, domain.ErrPublishFailed) {
			return fmt.Errorf("catalog committed but not published; inspect %s and push manually: %w", catalogPath, err)
		}
		return err
	}

	writer := deps.OutputWriterFactory()
	if err := writer.WriteReport(result.Report); err != nil {
		log.Error(ctx, "failed to write diff report", err, nil)
		return fmt.Errorf("output error: %w", err)
	}

	log.Info(ctx, "catalog reconciliation complete", map[string]interface{}{
		"commit":    result.CommitSHA,
		"changed":   result.Changed,
		"published": result.Published,
	})

	return nil
}

// resolveIdentity picks the commit identity: explicit flags win over the
// environment configuration; neither configured means nil, so the catalog
// repository's own user configuration decides.
func resolveIdentity(cfg *AppConfig) *domain.Identity {
	name, email := cfg.AuthorName, cfg.AuthorEmail
	if authorName != "" {
		name = authorName
	}
	if authorEmail != "" {
		email = authorEmail
	}
	if name == "" || email == "" {
		return nil
	}
	return &domain.Identity{Name: name, Email: email}
}

// collectMetadata records the head commit of every repository directly under
// the dependencies directory, keyed by directory name. Unreadable entries
// are skipped with a warning; the reconciliation proceeds without them.
func collectMetadata(ctx context.Context, deps *Dependencies, log Logger) domain.ReconcileMetadata {
	metadata := domain.ReconcileMetadata{}
	if dependenciesDir == "" {
		return metadata
	}

	entries, err := os.ReadDir(dependenciesDir)
	if err != nil {
		log.Warn(ctx, "cannot read dependencies directory", map[string]interface{}{
			"path":  dependenciesDir,
			"error": err.Error(),
		})
		return metadata
	}

	metadata.ComponentCommits = make(map[string]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dependenciesDir, name)

		repo, err := deps.RepoOpener(path, log)
		if err != nil {
			log.Warn(ctx, "skipping dependency, not a repository", map[string]interface{}{
				"name": name,
				"path": path,
			})
			continue
		}
		sha, err := repo.HeadCommit()
		if closeErr := repo.Close(); closeErr != nil {
			log.Warn(ctx, "failed to close dependency repository", map[string]interface{}{
				"name":  name,
				"error": closeErr.Error(),
			})
		}
		if err != nil {
			log.Warn(ctx, "skipping dependency without head commit", map[string]interface{}{
				"name": name,
				"path": path,
			})
			continue
		}
		metadata.ComponentCommits[name] = sha
	}
	return metadata
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

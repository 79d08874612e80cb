// Package main is the entry point for the catalogctl CLI application.
// catalogctl reconciles a rendered GitOps configuration tree against a
// git-backed catalog repository, publishing or previewing the result.
package main

import (
	"os"

	"github.com/gitops-tools/catalogctl/cmd"
	"github.com/gitops-tools/catalogctl/internal/adapters/git"
	logadapter "github.com/gitops-tools/catalogctl/internal/adapters/logger"
	"github.com/gitops-tools/catalogctl/internal/adapters/output"
	"github.com/gitops-tools/catalogctl/internal/domain"
	"github.com/gitops-tools/catalogctl/internal/infrastructure/config"
	"github.com/gitops-tools/catalogctl/internal/usecases"
)

func main() {
	cmd.SetDefaultDependencies(buildDependencies())
	cmd.Execute()
}

// buildDependencies wires the production dependencies for the root command.
func buildDependencies() *cmd.Dependencies {
	return &cmd.Dependencies{
		LoggerFactory: func(level, appName string) (cmd.Logger, error) {
			return logadapter.NewZapAdapter(level, appName)
		},

		ConfigLoader: func() (*cmd.AppConfig, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return &cmd.AppConfig{
				AuthorName:  cfg.AuthorName,
				AuthorEmail: cfg.AuthorEmail,
				RemoteName:  cfg.RemoteName,
				LogLevel:    cfg.LogLevel,
				LogAppName:  cfg.LogAppName,
			}, nil
		},

		RepoOpener: func(path string, log cmd.Logger) (domain.Repository, error) {
			return git.Open(path, log)
		},

		ReconcilerFactory: func(
			repo domain.Repository,
			identity *domain.Identity,
			remote string,
			log cmd.Logger,
		) domain.Reconciler {
			return usecases.NewCatalogReconciler(repo, output.NewRenderer(), log,
				usecases.WithIdentity(identity),
				usecases.WithRemote(remote),
			)
		},

		PinnerFactory: func(log cmd.Logger) domain.Pinner {
			return usecases.NewVersionPinner(log)
		},

		OutputWriterFactory: func() domain.OutputWriter {
			return output.NewWriter()
		},

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

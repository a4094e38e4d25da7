package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/fimo-dev/fimo/internal/accounts"
	"github.com/fimo-dev/fimo/internal/config"
	"github.com/fimo-dev/fimo/internal/gitops"
	"github.com/fimo-dev/fimo/internal/importer"
	"github.com/fimo-dev/fimo/internal/model"
)

// project is a loaded fimo.yaml with its accounts resolved.
type project struct {
	dir      string
	cfg      *config.Config
	accounts *accounts.Service
}

func loadProject(configPath string) (*project, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(absPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(absPath)
	accts, err := cfg.ResolveAccounts(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	svc, err := accounts.NewService(accts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &project{dir: dir, cfg: cfg, accounts: svc}, nil
}

func (p *project) logDir() string {
	return p.cfg.LogDir(p.dir)
}

// importAll imports the selected accounts in order and stops at the first
// account that fails.
func (p *project) importAll(names []string, logger *log.Logger, each func(*importer.AccountImporter, error) error) error {
	selected, err := p.accounts.Select(names)
	if err != nil {
		return err
	}
	for _, a := range selected {
		imp := importer.New(a, logger)
		importErr := imp.Import()
		if err := each(imp, importErr); err != nil {
			return err
		}
	}
	return nil
}

// commit records the rule files and import log of the given accounts when
// the project is a git repository with auto-commit enabled.
func (p *project) commit(imps []*importer.AccountImporter, message string) (string, error) {
	if !p.cfg.Git.AutoCommit || !gitops.IsRepo(p.dir) {
		return "", nil
	}
	paths := []string{p.logDir()}
	for _, imp := range imps {
		paths = append(paths, filepath.Join(imp.Account().Path, importer.RulesDir))
	}
	author := gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
	return gitops.CommitPaths(p.dir, message, author, paths...)
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "fimo",
		Level:  level,
	})
}

func allRecords(imps []*importer.AccountImporter) []model.AccountRecord {
	var records []model.AccountRecord
	for _, imp := range imps {
		records = append(records, imp.Records()...)
	}
	return records
}

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fimo-dev/fimo/internal/auditlog"
	"github.com/fimo-dev/fimo/internal/config"
	"github.com/fimo-dev/fimo/internal/importer"
)

type importOptions struct {
	configPath string
	accounts   []string
	verbose    bool
	noLog      bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import and label the statement exports of all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.FileName, "path to "+config.FileName)
	cmd.Flags().StringSliceVar(&opts.accounts, "account", nil, "import only these accounts")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVar(&opts.noLog, "no-log", false, "do not append to the import log")

	return cmd
}

func runImport(out, errOut io.Writer, opts importOptions) error {
	p, err := loadProject(opts.configPath)
	if err != nil {
		return err
	}
	logger := newLogger(errOut, opts.verbose)

	var imported []*importer.AccountImporter
	err = p.importAll(opts.accounts, logger, func(imp *importer.AccountImporter, importErr error) error {
		name := imp.Account().Name
		fmt.Fprintf(out, "Importing from %s\n", name)

		entries := auditlog.FromReports(time.Now().UTC(), name, imp.Reports())
		if importErr != nil {
			entries = append(entries, auditlog.Entry{
				Timestamp: time.Now().UTC(),
				Account:   name,
				Status:    auditlog.StatusFailed,
			})
		}
		if !opts.noLog {
			if err := auditlog.Append(p.logDir(), entries); err != nil {
				logger.Warn("failed to write import log", "err", err)
			}
		}

		if importErr != nil {
			return importErr
		}
		imported = append(imported, imp)
		return nil
	})
	if err != nil {
		return err
	}

	for _, imp := range imported {
		for _, msg := range imp.ImportErrors() {
			fmt.Fprintf(out, "Warning: %s\n", msg)
		}
	}
	records := allRecords(imported)
	fmt.Fprintf(out, "Imported %d records from %d accounts\n", len(records), len(imported))

	msg := fmt.Sprintf("import: %d records, %d unlabeled", len(records), len(importer.Unlabeled(records)))
	hash, err := p.commit(imported, msg)
	if err != nil {
		return fmt.Errorf("committing rule files: %w", err)
	}
	if hash != "" {
		fmt.Fprintf(out, "Committed rule changes (%s)\n", hash)
	}
	return nil
}

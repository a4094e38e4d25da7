package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fimo-dev/fimo/internal/config"
	"github.com/fimo-dev/fimo/internal/importer"
	"github.com/fimo-dev/fimo/internal/report"
)

type reportOptions struct {
	configPath string
	query      report.Query
}

func newReportCommand() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List imported records by label and spender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.FileName, "path to "+config.FileName)
	cmd.Flags().StringVar(&opts.query.Label, "label", "", "only records with this label")
	cmd.Flags().StringVar(&opts.query.Spender, "spender", "", "only records of this spender")

	return cmd
}

func runReport(out, errOut io.Writer, opts reportOptions) error {
	p, err := loadProject(opts.configPath)
	if err != nil {
		return err
	}
	logger := newLogger(errOut, false)

	var imported []*importer.AccountImporter
	err = p.importAll(nil, logger, func(imp *importer.AccountImporter, importErr error) error {
		if importErr != nil {
			return importErr
		}
		imported = append(imported, imp)
		return nil
	})
	if err != nil {
		return err
	}

	records := report.Filter(allRecords(imported), opts.query)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPENDER\tDATE\tVALUE\tRECEIVER\tPURPOSE")
	for _, row := range report.Rows(records) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tCOUNT\tTOTAL")
	for _, t := range report.Totals(records) {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Label, t.Count, report.FormatValue(t.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d records, total %s\n", len(records), report.FormatValue(report.Sum(records)))
	return nil
}

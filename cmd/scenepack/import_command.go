package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scenepack/internal/archive"
	"scenepack/internal/document"
	"scenepack/internal/importer"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var anchor string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "import <archive-dir>",
		Short: "Import an archive into the configured destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, instance, cleanup, err := ctx.openInstance()
			if err != nil {
				return err
			}
			defer cleanup()

			reader, err := archive.NewDirReader(args[0])
			if err != nil {
				return err
			}
			pack, err := archive.Open(reader)
			if err != nil {
				return err
			}
			defer pack.Close()

			imp, err := importer.New(reg, instance.Config.Package.Name)
			if err != nil {
				return err
			}
			report, err := imp.Import(cmd.Context(), pack, importer.Options{Anchor: anchor})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s (%s)\n", pack.Manifest.Title, pack.Manifest.Version)
			fmt.Fprintln(out, renderImportReport(report))
			if report.WelcomeJournal != "" {
				fmt.Fprintf(out, "Welcome journal: %s\n", report.WelcomeJournal)
			}
			for _, warning := range report.AssetWarnings {
				printWarning(out, "Warning: asset %s not materialized: %s", warning.URL, warning.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&anchor, "anchor", "", "Import only the named document and its related content")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	return cmd
}

func renderImportReport(report *importer.Report) string {
	rows := make([][]string, 0, len(report.Created)+3)
	for _, kind := range document.ProcessingOrder() {
		created := report.Created[kind]
		skipped := report.Skipped[kind]
		if created == 0 && skipped == 0 {
			continue
		}
		rows = append(rows, []string{string(kind), strconv.Itoa(created), strconv.Itoa(skipped)})
	}
	rows = append(rows, []string{"Folders", strconv.Itoa(report.Folders), ""})
	rows = append(rows, []string{"Assets", strconv.Itoa(report.Assets), ""})
	rows = append(rows, []string{"Resolved refs", strconv.Itoa(report.Resolved), ""})
	return renderTable(
		[]string{"Kind", "Created", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}

package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"scenepack/internal/archive"
	"scenepack/internal/document"
	"scenepack/internal/exporter"
	"scenepack/internal/slug"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var welcomeJournal string
	var kindFilters []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the configured package into an archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, instance, cleanup, err := ctx.openInstance()
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := instance.Config
			kinds, err := parseKindFilters(kindFilters)
			if err != nil {
				return err
			}

			selection := exporter.Selection{}
			for _, kind := range document.ProcessingOrder() {
				if len(kinds) > 0 && !kinds[kind] {
					continue
				}
				docs, err := instance.Documents.Query(cmd.Context(), kind, nil)
				if err != nil {
					return err
				}
				if len(docs) > 0 {
					selection[kind] = docs
				}
			}
			if len(selection) == 0 {
				return fmt.Errorf("nothing to export for package %q", cfg.Package.Name)
			}

			target := outputDir
			if target == "" {
				target = filepath.Join(cfg.Paths.ArchiveDir, slug.Make(cfg.Package.Name))
			}
			writer, err := archive.NewDirWriter(target)
			if err != nil {
				return err
			}

			exp, err := exporter.New(reg, cfg.Package.Name)
			if err != nil {
				return err
			}
			report, err := exp.Export(cmd.Context(), selection, writer, exporter.Options{WelcomeJournal: welcomeJournal})
			if err != nil {
				return err
			}
			if err := writer.Close(); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %s to %s\n", cfg.Package.Name, target)
			fmt.Fprintln(out, renderExportReport(report))
			for _, warning := range report.AssetWarnings {
				printWarning(out, "Warning: asset %s not bundled: %s", warning.URL, warning.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Archive directory (defaults under archive_dir)")
	cmd.Flags().StringVar(&welcomeJournal, "welcome-journal", "", "Journal entry to surface after first import")
	cmd.Flags().StringSliceVar(&kindFilters, "kind", nil, "Restrict export to the named document kinds")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	return cmd
}

func parseKindFilters(values []string) (map[document.Kind]bool, error) {
	if len(values) == 0 {
		return nil, nil
	}
	kinds := make(map[document.Kind]bool, len(values))
	for _, value := range values {
		kind, ok := document.ParseKind(value)
		if !ok {
			return nil, fmt.Errorf("unknown document kind %q", value)
		}
		kinds[kind] = true
	}
	return kinds, nil
}

func renderExportReport(report *exporter.Report) string {
	rows := make([][]string, 0, len(report.Created)+2)
	for _, kind := range document.ProcessingOrder() {
		count, ok := report.Created[kind]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(kind), strconv.Itoa(count)})
	}
	rows = append(rows, []string{"Folders", strconv.Itoa(report.Folders)})
	rows = append(rows, []string{"Assets", strconv.Itoa(report.Assets)})
	return renderTable(
		[]string{"Kind", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}

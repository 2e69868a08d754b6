package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scenepack/internal/document"
	"scenepack/internal/store/sqlite"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show document counts in the configured destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			db, err := sqlite.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := db.Counts(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"package":   cfg.Package.Name,
					"documents": counts,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Package: %s\n", cfg.Package.Name)
			rows := make([][]string, 0, len(counts))
			total := 0
			for _, kind := range document.ProcessingOrder() {
				count, ok := counts[kind]
				if !ok {
					continue
				}
				total += count
				rows = append(rows, []string{string(kind), strconv.Itoa(count)})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No documents stored")
				return nil
			}
			rows = append(rows, []string{"Total", strconv.Itoa(total)})
			fmt.Fprintln(out, renderTable(
				[]string{"Kind", "Documents"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit counts as JSON")
	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scenepack/internal/archive"
	"scenepack/internal/document"
)

func newInspectCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "inspect <archive-dir>",
		Short:       "Show an archive's manifest and contents",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := archive.NewDirReader(args[0])
			if err != nil {
				return err
			}
			pack, err := archive.Open(reader)
			if err != nil {
				return err
			}
			defer pack.Close()

			if jsonOutput {
				return writeJSON(cmd, pack.Manifest)
			}

			manifest := pack.Manifest
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) by %s\n", manifest.Title, manifest.Version, manifest.Author)
			if manifest.Description != "" {
				fmt.Fprintln(out, manifest.Description)
			}
			fmt.Fprintf(out, "Format %s", manifest.FormatVersion)
			if manifest.MinimumVersion != "" {
				fmt.Fprintf(out, ", requires %s or newer", manifest.MinimumVersion)
			}
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(manifest.Counts))
			for _, kind := range document.ProcessingOrder() {
				count, ok := manifest.Counts[kind]
				if !ok {
					continue
				}
				rows = append(rows, []string{string(kind), strconv.Itoa(count)})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Kind", "Documents"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the manifest as JSON")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdlhea/heapp/internal/store"
)

type exportOptions struct {
	chunkSize int
	keepStore bool
	summary   string
	title     string
}

func newExportCommand(a *app) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <store" + store.Ext + "> <output.csv|output.xlsx>",
		Short: "Export an intermediate result store to CSV or Excel",
		Long: `Export the results kept in an intermediate store, for example after an
export that failed or was interrupted. The format follows the extension of
the output file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath, dest := args[0], args[1]
			if opts.chunkSize == 0 {
				opts.chunkSize = a.cfg.Batch.ChunkSize
			}
			rep := newProgressReporter(cmd.OutOrStdout())

			n, err := store.CountRecords(storePath, opts.chunkSize)
			if err != nil {
				return err
			}
			rep.println(rep.p.Sprintf("Store %s holds %d results", storePath, n))

			if opts.summary != "" {
				if err := writeSummary(cmd.Context(), storePath, opts.summary, opts.title); err != nil {
					return err
				}
				rep.println(fmt.Sprintf("Summary written to %s", opts.summary))
			}
			return exportStore(cmd.Context(), rep, storePath, dest, opts.chunkSize, !opts.keepStore)
		},
	}

	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Results read per chunk (default from config, else 100)")
	cmd.Flags().BoolVar(&opts.keepStore, "keep-store", false, "Keep the store after a successful export")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "Also write a summary to this .md or .html file")
	cmd.Flags().StringVar(&opts.title, "title", "Batch summary", "Title of the summary report")

	return cmd
}

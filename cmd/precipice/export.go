// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"precipice-cli/internal/export"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	exportInputs  []string
	exportOutput  string
	exportKindStr string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Merge recorded trace files into one table or histogram",
		Long: `Merge previously recorded trace files into a single output. Traces are
concatenated in input order, and either written back out as one CSV
table or rendered as a histogram page with one series per trace.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := export.ParseKind(exportKindStr)
			if err != nil {
				return err
			}

			n, err := export.ExportSet(kind, exportOutput, exportInputs)
			if err != nil {
				fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return err
			}

			log.Debug("finished exporting", "bytes", n)
			fmt.Printf("Wrote %s.\n", ValueStyle.Render(exportOutput+kind.Extension()))
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	exportCmd.Flags().StringArrayVarP(&exportInputs, "input", "i", nil, "input trace CSV file (repeatable)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "precipice_bench", "output file name without extension")
	exportCmd.Flags().StringVarP(&exportKindStr, "type", "t", string(export.KindHistogram), "output format: table or histogram")
}

package cmd

import (
	"fmt"

	"github.com/KaramelBytes/loanlens-cli/internal/analysis"
	"github.com/KaramelBytes/loanlens-cli/internal/dashboard"
	"github.com/KaramelBytes/loanlens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descSampleRows int
	descOutputPath string
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Show the dataset, summary statistics and column types",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := serviceOptions()
		if cmd.Flags().Changed("sample-rows") {
			opts.Describe.SampleRows = descSampleRows
		}
		path := datasetArg(args)

		if descOutputPath != "" {
			ds, err := sharedCache().Load(path)
			if err != nil {
				return err
			}
			md := analysis.Describe(ds, opts.Describe).Markdown()
			if err := utils.WriteOutput(descOutputPath, []byte(md)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}

		_, err := renderTerminal(cmd.Context(), cmd, opts, dashboard.Request{
			Path:     path,
			Sections: []dashboard.Section{dashboard.SectionData},
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of leading rows to show")
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "write the summary as Markdown to this path")
}

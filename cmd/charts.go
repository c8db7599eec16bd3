package cmd

import (
	"github.com/KaramelBytes/loanlens-cli/internal/dashboard"
	"github.com/spf13/cobra"
)

var chartsPNGDir string

var chartsCmd = &cobra.Command{
	Use:   "charts [file]",
	Short: "Show the loan amount charts, optionally rendering them as PNG",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := serviceOptions()
		if chartsPNGDir != "" {
			opts.ChartDir = chartsPNGDir
		}
		_, err := renderTerminal(cmd.Context(), cmd, opts, dashboard.Request{
			Path:     datasetArg(args),
			Sections: []dashboard.Section{dashboard.SectionCharts},
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartsCmd.Flags().StringVar(&chartsPNGDir, "png-dir", "", "directory to write one PNG per chart (overrides config chart_dir)")
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/loanlens-cli/internal/dashboard"
	"github.com/KaramelBytes/loanlens-cli/internal/display"
	"github.com/KaramelBytes/loanlens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	dashAge        int
	dashFormat     string
	dashOutputPath string
	dashSections   string
)

type dashboardDocument struct {
	Page    display.Page       `json:"page" yaml:"page"`
	Outcome *dashboard.Outcome `json:"outcome" yaml:"outcome"`
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [file]",
	Short: "Run the full dashboard: data, charts, model and prediction",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secs, err := dashboard.ParseSections(dashSections)
		if err != nil {
			return err
		}
		req := dashboard.Request{Path: datasetArg(args), Age: &dashAge, Sections: secs}

		format := strings.ToLower(strings.TrimSpace(dashFormat))
		if format == "" || format == "text" {
			if dashOutputPath != "" {
				return fmt.Errorf("--output requires --format json or yaml")
			}
			_, err := renderTerminal(cmd.Context(), cmd, serviceOptions(), req)
			return err
		}

		if err := cfg.Validate(); err != nil {
			return err
		}
		rec := display.NewRecorder()
		oc, err := newService(serviceOptions()).Render(cmd.Context(), req, rec)
		if err != nil {
			return err
		}
		b, err := utils.Encode(dashboardDocument{Page: rec.Page(), Outcome: oc}, format)
		if err != nil {
			return err
		}
		if dashOutputPath != "" {
			if err := utils.WriteOutput(dashOutputPath, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote dashboard to %s\n", dashOutputPath)
		} else if _, err := cmd.OutOrStdout().Write(b); err != nil {
			return err
		}
		if oc.FileMissing || oc.TrainErr != nil {
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().IntVar(&dashAge, "age", dashboard.DefaultAge, "applicant age in [18, 100] for the prediction")
	dashboardCmd.Flags().StringVar(&dashFormat, "format", "text", "output format: text|json|yaml")
	dashboardCmd.Flags().StringVarP(&dashOutputPath, "output", "o", "", "write json/yaml output to this path")
	dashboardCmd.Flags().StringVar(&dashSections, "sections", "", "comma-separated sections: data,charts,model (default all)")
}

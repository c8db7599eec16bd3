package cmd

import (
	"github.com/KaramelBytes/loanlens-cli/internal/dashboard"
	"github.com/spf13/cobra"
)

var predictAge int

var predictCmd = &cobra.Command{
	Use:   "predict [file]",
	Short: "Train the model and predict the loan amount for an age",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := renderTerminal(cmd.Context(), cmd, serviceOptions(), dashboard.Request{
			Path:     datasetArg(args),
			Age:      &predictAge,
			Sections: []dashboard.Section{dashboard.SectionModel},
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().IntVar(&predictAge, "age", dashboard.DefaultAge, "applicant age in [18, 100]")
}

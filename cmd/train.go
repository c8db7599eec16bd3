package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/loanlens-cli/internal/display"
	"github.com/KaramelBytes/loanlens-cli/internal/regression"
	"github.com/KaramelBytes/loanlens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var trainFormat string

var trainCmd = &cobra.Command{
	Use:   "train [file]",
	Short: "Fit loan amount on age and report RMSE and R² on the held-out split",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ds, err := sharedCache().Load(datasetArg(args))
		if err != nil {
			return err
		}
		res, err := regression.Train(ds, serviceOptions().Train)
		if err != nil {
			return err
		}

		switch trainFormat {
		case "", "text":
			newTerminal(cmd.OutOrStdout()).KeyValues("Model", []display.KV{
				{Key: "Equation", Value: fmt.Sprintf("%s = %.4f * %s + %.2f", res.Model.Target, res.Model.Slope, res.Model.Feature, res.Model.Intercept)},
				{Key: "Train rows", Value: strconv.Itoa(res.TrainSize)},
				{Key: "Test rows", Value: strconv.Itoa(res.TestSize)},
				{Key: "RMSE", Value: fmt.Sprintf("%.2f", res.Metrics.RMSE)},
				{Key: "R²", Value: fmt.Sprintf("%.2f%%", res.Metrics.R2*100)},
			})
			return nil
		default:
			b, err := utils.Encode(res, trainFormat)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVar(&trainFormat, "format", "text", "output format: text|json|yaml")
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"deliverycore/internal/forecast"

	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <milestone_id>",
	Short: "Print a baseline P50/P80 forecast for one milestone as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := loader.Load()
		if err != nil {
			return err
		}
		result, err := forecast.Forecast(context.Background(), args[0], state, forecast.Options{})
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

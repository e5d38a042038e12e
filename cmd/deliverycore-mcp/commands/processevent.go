package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"deliverycore/internal/rules"

	"github.com/spf13/cobra"
)

var processEventCmd = &cobra.Command{
	Use:   "process-event <event.json>",
	Short: "Run one event (as a JSON file) through the rule engine and print the resulting commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var event rules.Event
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("parsing event file %q: %w", args[0], err)
		}

		state, err := loader.Load()
		if err != nil {
			return err
		}

		commands := engine.ProcessEvent(event, state)
		out, err := json.MarshalIndent(commands, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

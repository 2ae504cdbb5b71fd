package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bassista/trackctl/internal/schedule"
)

func init() {
	scheduleCmd.AddCommand(scheduleParseCmd)
	scheduleCmd.AddCommand(scheduleFormatCmd)
	RootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Work with schedule time expressions",
}

var scheduleParseCmd = &cobra.Command{
	Use:   "parse <expr>",
	Short: "Decode a canonical time expression (e.g. sunrise+00:30)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr := schedule.Parse(args[0])
		fmt.Printf("reference: %s\nsign:      %s\noffset:    %s\n", expr.Reference, expr.Sign, expr.Offset)
		return expr.Validate()
	},
}

var scheduleFormatCmd = &cobra.Command{
	Use:   "format <reference> <sign> <offset>",
	Short: "Encode an editable time expression back to canonical form",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr := schedule.TimeExpr{Reference: args[0], Sign: args[1], Offset: args[2]}
		if err := expr.Validate(); err != nil {
			return err
		}
		fmt.Println(expr.Format())
		return nil
	},
}

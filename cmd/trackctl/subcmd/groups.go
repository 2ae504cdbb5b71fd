package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	groupsCmd.AddCommand(groupsUseCmd)
	RootCmd.AddCommand(groupsCmd)
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List config groups and the active selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		scope, err := a.InitScope(a.BaseCtx)
		if err != nil {
			return err
		}

		if !scope.Enabled {
			fmt.Println("backend is not running in server mode; no config groups")
			return nil
		}
		for _, g := range scope.Groups {
			marker := " "
			if g == scope.Current {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, g)
		}
		return nil
	},
}

var groupsUseCmd = &cobra.Command{
	Use:   "use <group>",
	Short: "Switch the active config group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		if _, err := a.InitScope(a.BaseCtx); err != nil {
			return err
		}
		if err := a.Scope.SetCurrentGroup(args[0]); err != nil {
			return err
		}
		fmt.Printf("active config group: %s\n", args[0])
		return nil
	},
}

package subcmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var servicesRefresh bool

func init() {
	servicesCmd.Flags().BoolVar(&servicesRefresh, "refresh", false, "force a fresh fetch instead of the cached status")
	RootCmd.AddCommand(servicesCmd)
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Show appliance service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		if _, err := a.InitScope(a.BaseCtx); err != nil {
			return err
		}

		services, err := a.Services.Get(a.BaseCtx, servicesRefresh)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Service", "Active", "Enabled", "Status", "Uptime"})
		for _, s := range services {
			t.AppendRow(table.Row{s.Name, s.Active, s.Enabled, s.Status, s.Uptime})
		}
		t.Render()
		return nil
	},
}

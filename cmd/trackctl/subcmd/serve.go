package subcmd

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/bassista/trackctl/internal/cache"
	"github.com/bassista/trackctl/internal/gateway"
	"github.com/bassista/trackctl/internal/logger"
)

func init() {
	RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local console gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		if _, err := a.InitScope(a.BaseCtx); err != nil {
			return err
		}
		a.StartWatchers(confPath)

		// The backend advertises how often the console should refresh
		// service status; fall back to the local TTL when unreachable.
		refreshEvery := a.Config.Cache.ServiceTTL
		if sys, err := a.System.Get(a.BaseCtx, false); err == nil && sys.StatusRefreshInterval > 0 {
			refreshEvery = time.Duration(sys.StatusRefreshInterval) * time.Second
		}
		cache.StartRefresher(a.BaseCtx, a.Services, refreshEvery)

		gin.SetMode(a.Config.Gateway.GinMode)
		gin.DefaultWriter = logger.Logger.Writer()
		gin.DefaultErrorWriter = logger.Logger.Writer()

		g := gateway.New(a.Config.Gateway, a.Services, a.System, a.Scope, a.Client)
		return g.Serve(a.BaseCtx)
	},
}

// Package gateway is the local console gateway: a small HTTP server that
// fronts the appliance backend for browser consumers, serving service and
// system status out of the shared resource caches so any number of widgets
// cause at most one upstream fetch per TTL window.
package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"

	"github.com/bassista/trackctl/internal/api"
	"github.com/bassista/trackctl/internal/cache"
	"github.com/bassista/trackctl/internal/config"
	"github.com/bassista/trackctl/internal/logger"
	"github.com/bassista/trackctl/internal/schedule"
	"github.com/bassista/trackctl/internal/scope"
)

// Backend is the slice of the api client the gateway forwards writes through.
type Backend interface {
	ServiceAction(ctx context.Context, service, action string) (api.ActionResult, error)
	Deploy(ctx context.Context, groupID string) (api.DeployResult, error)
}

// Gateway holds the gateway's immutable dependencies.
type Gateway struct {
	cfg      config.GatewayConfig
	services *cache.Resource[[]api.ServiceStatus]
	system   *cache.Resource[api.SystemConfig]
	resolver *scope.Resolver
	backend  Backend
}

// New wires the gateway. The caches are invalidated whenever the active
// config group switches, so stale cross-group data is never served.
func New(
	cfg config.GatewayConfig,
	services *cache.Resource[[]api.ServiceStatus],
	system *cache.Resource[api.SystemConfig],
	resolver *scope.Resolver,
	backend Backend,
) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		services: services,
		system:   system,
		resolver: resolver,
		backend:  backend,
	}

	resolver.OnGroupChange(func(group string) {
		logger.WithComponent("gateway").Infof("config group switched to %q, invalidating caches", group)
		services.Invalidate()
		system.Invalidate()
	})

	return g
}

// Router builds the gin engine with all middleware and routes.
func (g *Gateway) Router() *gin.Engine {
	r := gin.New()
	r.Use(honeybadgerMiddleware(logger.Logger))
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(g.cfg.AllowedOrigins))
	r.Use(requestTimeout(g.cfg.RequestTimeout))

	r.GET("/healthz", g.health)
	r.GET("/status/services", g.listServices)
	r.GET("/status/services/:name", g.getService)
	r.GET("/status/system", g.systemConfig)
	r.GET("/groups", g.listGroups)
	r.POST("/groups/current", g.setGroup)
	r.POST("/schedule/parse", g.parseTimeExpr)
	r.POST("/schedule/format", g.formatTimeExpr)
	r.POST("/actions", g.serviceAction)
	r.POST("/deploy", g.deploy)

	return r
}

func (g *Gateway) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listServices serves the cached service list. ?refresh=true forces a fetch
// (or joins the one already in flight).
func (g *Gateway) listServices(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("refresh"))
	services, err := g.services.Get(c.Request.Context(), force)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services)
}

// getService looks a unit up in the cached list without upstream I/O.
func (g *Gateway) getService(c *gin.Context) {
	name := c.Param("name")
	svc, ok := cache.FindService(g.services, name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found in cached status"})
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (g *Gateway) systemConfig(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("refresh"))
	cfg, err := g.system.Get(c.Request.Context(), force)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (g *Gateway) listGroups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled": g.resolver.Enabled(),
		"groups":  g.resolver.Groups(),
		"current": g.resolver.CurrentGroup(),
	})
}

type setGroupRequest struct {
	Group string `json:"group" binding:"required"`
}

func (g *Gateway) setGroup(c *gin.Context) {
	var req setGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := g.resolver.SetCurrentGroup(req.Group); err != nil {
		if errdefs.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": req.Group})
}

type parseRequest struct {
	Expr string `json:"expr" binding:"required"`
}

// parseTimeExpr decodes a canonical schedule time expression into its
// editable form for the console's schedule editor.
func (g *Gateway) parseTimeExpr(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	c.JSON(http.StatusOK, schedule.Parse(req.Expr))
}

// formatTimeExpr encodes an editable schedule time expression back to its
// canonical string, rejecting values outside the grammar.
func (g *Gateway) formatTimeExpr(c *gin.Context) {
	var expr schedule.TimeExpr
	if err := c.ShouldBindJSON(&expr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := expr.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expr": expr.Format()})
}

type actionRequest struct {
	Service string `json:"service" binding:"required"`
	Action  string `json:"action" binding:"required"`
}

func (g *Gateway) serviceAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	res, err := g.backend.ServiceAction(c.Request.Context(), req.Service, req.Action)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	// Service state likely changed; next status read should refetch.
	g.services.Invalidate()
	c.JSON(http.StatusOK, res)
}

func (g *Gateway) deploy(c *gin.Context) {
	group := g.resolver.CurrentGroup()
	if group == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "no active config group to deploy"})
		return
	}
	res, err := g.backend.Deploy(c.Request.Context(), group)
	if err != nil {
		if errdefs.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

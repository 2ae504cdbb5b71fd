package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/enrichman/httpgrace"

	"github.com/bassista/trackctl/internal/logger"
)

// Serve runs the gateway until the context is canceled or a termination
// signal arrives, then shuts down gracefully within the configured timeout.
func (g *Gateway) Serve(ctx context.Context) error {
	srv := g.newGraceServer(ctx, g.Router())

	logger.WithComponent("gateway").Infof("console gateway listening on port %d", g.cfg.Port)
	if err := srv.ListenAndServe(fmt.Sprintf(":%d", g.cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway server: %w", err)
	}
	return nil
}

func (g *Gateway) newGraceServer(ctx context.Context, handler http.Handler) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	return httpgrace.NewServer(handler,
		httpgrace.WithTimeout(g.cfg.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("gateway").Info("shutting down console gateway....")
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(g.cfg.ReadTimeout),
			httpgrace.WithWriteTimeout(g.cfg.WriteTimeout),
			httpgrace.WithIdleTimeout(g.cfg.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), "[gateway] ", log.LstdFlags)
			},
		),
	)
}

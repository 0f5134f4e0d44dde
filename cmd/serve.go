package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teamhub/wunschbox/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API: aggregated search, track lookup, and the wish
// queue.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(server.NewSearchHandler(app.agg, r.logger))
	router.Handler(server.NewTrackHandler(app.agg, r.logger))
	router.Handler(server.NewWishHandler(app.wishes, r.logger))

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	r.logger.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

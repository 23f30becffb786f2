package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "phonecalls/internal/config"
	router "phonecalls/internal/http"
	"phonecalls/internal/http/handlers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

// ginMode honours GIN_MODE and otherwise runs release mode in production.
func ginMode(env intconfig.Env) string {
	switch {
	case env.GinMode != "":
		return env.GinMode
	case env.IsProduction():
		return gin.ReleaseMode
	default:
		return gin.DebugMode
	}
}

func newHandler(a *app) *handlers.Handler {
	return &handlers.Handler{
		Source:       a.source,
		Logger:       a.log,
		Paging:       a.env.Paging,
		CookieSecure: a.env.CookieSecure,
		Location:     a.loc,
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	gin.SetMode(ginMode(a.env))

	r, err := router.NewRouter(a.env, newHandler(a), a.log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", zap.String("addr", a.env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("server stopped")
	return nil
}

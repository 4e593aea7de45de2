package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"medflow-backend/internal/handlers"
	"medflow-backend/internal/session"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	ctx := context.Background()
	if err := seed(ctx, a); err != nil {
		return err
	}

	sessions, err := session.NewManager(session.Options{
		Secret: a.cfg.SessionSecret,
		Dir:    a.cfg.SessionDir,
		Secure: a.cfg.SessionSecure,
		MaxAge: a.cfg.SessionMaxAge,
	}, log)
	if err != nil {
		return err
	}

	h := handlers.NewHandlers(a.svc, a.accounts, sessions, log, a.files.MaxBytes())
	router := handlers.NewRouter(h, a.metrics, log, handlers.RouterConfig{
		CORSOrigins: a.cfg.CORSOrigins,
		UploadDir:   a.files.Dir(),
		Debug:       !a.cfg.IsProduction() && a.cfg.LogLevel == "debug",
	})

	server := &http.Server{
		Addr:         ":" + a.cfg.ListenPort,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  2 * a.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", server.Addr).Info("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

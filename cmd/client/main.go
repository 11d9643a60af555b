package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/monopoly-client/internal/config"
	"github.com/DoyleJ11/monopoly-client/internal/httpapi"
	"github.com/DoyleJ11/monopoly-client/internal/remote"
	"github.com/DoyleJ11/monopoly-client/internal/session"
)

func main() {
	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := remote.New(cfg.RemoteURL, cfg.RemoteTimeout, log)
	h := session.NewHub(ctx, session.Config{
		Service:       svc,
		RollDelay:     cfg.RollDelay,
		AutoplayDelay: cfg.AutoplayDelay,
		Log:           log,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.SetupRoutes(h, svc, log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("remote", cfg.RemoteURL))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		h.Inbox() <- session.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

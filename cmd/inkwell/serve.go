package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell-blog/inkwell/backend/internal/auth"
	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/cache"
	"github.com/inkwell-blog/inkwell/backend/internal/database"
	"github.com/inkwell-blog/inkwell/backend/internal/handlers"
	"github.com/inkwell-blog/inkwell/backend/internal/mail"
	"github.com/inkwell-blog/inkwell/backend/internal/notify"
	"github.com/inkwell-blog/inkwell/backend/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := database.NewRedisClient(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	svc := blog.New(db.GetDB(), cache.New(rdb), mail.New(cfg.Mail), notify.New(cfg.Twilio), blog.Options{
		PageSize:     cfg.Blog.PageSize,
		SimilarLimit: cfg.Blog.SimilarLimit,
		SimilarTTL:   cfg.Blog.SimilarTTL,
		MailTimeout:  cfg.Mail.Timeout,
		SiteURL:      cfg.Site.URL,
	})
	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)

	srv := server.New(cfg, db, handlers.NewHandler(db.GetDB(), svc, tokens), tokens)
	defer srv.Stop()
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("✅ Server exited")
	return nil
}

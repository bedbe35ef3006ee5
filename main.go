package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"botwerk-server/ai"
	"botwerk-server/config"
	"botwerk-server/engine"
	"botwerk-server/handlers"
	"botwerk-server/middleware"
	"botwerk-server/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logrus.WithError(err).Warn("Failed to read .env file")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          "botwerk-server",
		Short:        "Bot builder backend: accounts, bots, chat sessions and template replies",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if err := config.ConfigureLogging(cfg.LogLevel); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	if err := config.BindFlags(cmd, v); err != nil {
		logrus.WithError(err).Fatal("Failed to bind flags")
	}
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == "" {
		logrus.Warn("No JWT secret configured, using the built-in development secret")
	}
	middleware.SetSecret(cfg.JWTSecret)

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	responder, err := newResponder(cfg)
	if err != nil {
		return err
	}

	hub := handlers.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(cfg, s, hub, responder),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ReplyTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("Shutdown did not complete cleanly")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":      httpServer.Addr,
		"db":        cfg.DBPath,
		"responder": cfg.Responder,
	}).Info("Botwerk server starting")

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newResponder builds the configured reply strategy. The OpenAI responder always
// falls back to the template engine.
func newResponder(cfg *config.Config) (ai.Responder, error) {
	templates, err := engine.New()
	if err != nil {
		return nil, err
	}

	if cfg.Responder != config.ResponderOpenAI {
		return templates, nil
	}

	openAI := ai.NewOpenAIResponder(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if !openAI.IsConfigured() {
		logrus.Warn("OpenAI responder selected but no API key set, replies come from templates only")
		return templates, nil
	}
	logrus.Infof("OpenAI responder initialized with model: %s", openAI.Model())
	return ai.Fallback{Primary: openAI, Secondary: templates}, nil
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/config"
	"github.com/Zachkp/webresume/internal/contact"
	"github.com/Zachkp/webresume/internal/fetcher"
	"github.com/Zachkp/webresume/internal/media"
	"github.com/Zachkp/webresume/internal/session"
	"github.com/Zachkp/webresume/internal/store"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resume site",
	Long: `Run the resume site, its REST API and the admin panel.

Configuration is read from the environment (and a .env file if present).
An empty database is seeded with the built-in resume.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	log := newLogger()

	cfg := config.Load()
	err = cfg.Validate()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}
	if cfg.DefaultAdminCredentials() {
		log.Warn("using default admin credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	st, err = store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	err = seedIfEmpty(ctx, st, log)
	if err != nil {
		return err
	}

	var source fetcher.Source = fetcher.StoreSource{Store: st}
	if cfg.ResumeAPIURL != "" {
		source = fetcher.NewHTTPSource(cfg.ResumeAPIURL)
	}
	poller := fetcher.NewPoller(fetcher.New(source, nil, log), cfg.RefreshInterval)
	poller.Start(ctx)
	defer poller.Stop()

	chatService := chat.NewService(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModel, cfg.ChatPersona, log)
	if cfg.ChatAPIKey == "" {
		log.Warn("CHAT_API_KEY not set, chat replies will fail")
	}

	sessions := session.NewRegistry(cfg.SessionTTL, chatService, cfg.ChatPersona)
	go sessions.Run(ctx, time.Minute)

	srv := &server{
		cfg:      cfg,
		log:      log,
		store:    st,
		poller:   poller,
		sessions: sessions,
		chat:     chatService,
		contact:  contact.NewService(st, relays(cfg, log), log),
		media:    &media.Library{Dir: cfg.MediaDir, URLPrefix: "media", MaxBytes: cfg.MaxUploadBytes},
		admin:    newAdminAuth(cfg.AdminUsername, cfg.AdminPassword),
	}
	go srv.runVisitorCleanup(ctx, 24*time.Hour)

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := srv.router()
	loadTemplates(router, cfg.TemplatesGlob)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting webresume", "port", cfg.Port, "admin", "/admin/login")
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}

// relays builds the contact notifiers enabled by the configuration.
func relays(cfg config.Config, log *slog.Logger) contact.Notifiers {
	var ns contact.Notifiers
	if cfg.TelegramEnabled() {
		ns = append(ns, contact.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, log))
		log.Info("contact relay enabled", "relay", "telegram")
	}
	if cfg.SMTPEnabled() {
		ns = append(ns, &contact.SMTPNotifier{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			To:   cfg.ToEmail,
			Log:  log,
		})
		log.Info("contact relay enabled", "relay", "smtp")
	}
	return ns
}

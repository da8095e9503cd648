package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/csrf"
	ghandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"yatube/auth"
	"yatube/cache"
	"yatube/config"
	"yatube/database"
	"yatube/handlers"
	"yatube/metrics"
	"yatube/repositories"
	"yatube/routes"
)

func initLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

func main() {
	initLogger()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database initialization failed")
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	sessions := auth.NewSessions(cfg.SessionKey, repositories.NewUserRepository(db))
	pageCache := cache.NewPageCache(cfg.IndexCacheTTL)
	h := handlers.New(db, sessions, m, cfg.PerPage, cfg.MediaRoot)

	router := routes.New(routes.Deps{
		Handlers:  h,
		Sessions:  sessions,
		PageCache: pageCache,
		IndexTTL:  cfg.IndexCacheTTL,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		MediaRoot: cfg.MediaRoot,
	})

	// SIGHUP clears the page cache without a restart.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			pageCache.Clear()
			logrus.Info("page cache cleared")
		}
	}()

	csrfProtect := csrf.Protect(
		[]byte(cfg.SessionKey),
		csrf.ErrorHandler(http.HandlerFunc(h.CSRFFailure)),
	)
	server := ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(logrus.StandardLogger()),
	)(csrfProtect(router))

	logrus.WithField("addr", cfg.ListenAddr).Info("server starting")
	if err := http.ListenAndServe(cfg.ListenAddr, server); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

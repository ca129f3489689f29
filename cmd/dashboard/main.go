// Package main provides the embedded dashboard backend. Clients communicate
// via REST/WebSocket on localhost.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/plantboard/backend/cmd/dashboard/handlers"
	"github.com/plantboard/backend/internal/app"
	"github.com/plantboard/backend/internal/config"
	"github.com/plantboard/backend/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Get().Error("load config", err, nil)
		os.Exit(1)
	}

	logging.Init(os.Stdout, parseLevel(cfg.LogLevel))
	log := logging.Get()

	application, err := app.New(cfg, nil, log)
	if err != nil {
		log.Error("startup failed", err, nil)
		os.Exit(1)
	}

	hub := NewWSHub(log)
	application.Coordinator.OnChange(hub.BroadcastSyncStatus)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 15*time.Second)
	application.Bootstrap(bootstrapCtx)
	cancelBootstrap()

	application.Start()
	go forwardConnectivity(application, hub)

	mux := http.NewServeMux()
	syncHandler := handlers.NewSyncHandler(application.Coordinator, application.Monitor, application.Queue)
	actionHandler := handlers.NewActionHandler(application.Dispatcher, application.Store, string(application.Source))

	mux.HandleFunc("/api/health", actionHandler.Health)
	mux.HandleFunc("/api/state", actionHandler.GetState)
	mux.HandleFunc("/api/actions", actionHandler.PostAction)
	mux.HandleFunc("/api/sync/status", syncHandler.GetStatus)
	mux.HandleFunc("/api/sync/pending", syncHandler.GetPending)
	mux.HandleFunc("/api/sync/now", syncHandler.TriggerSync)
	mux.HandleFunc("/api/connectivity", syncHandler.SetConnectivity)
	mux.HandleFunc("/ws", HandleWebSocket(hub))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // WebSocket connections are long-lived
	}

	go func() {
		log.Info("dashboard backend listening", logging.Fields{"addr": cfg.ListenAddr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", err, nil)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
	application.Close()
}

// forwardConnectivity mirrors monitor transitions onto the event stream.
func forwardConnectivity(application *app.App, hub *WSHub) {
	ch := application.Monitor.Subscribe()
	for range ch {
		hub.BroadcastConnectivity(application.Monitor.Online(), application.Monitor.Health())
	}
}

func parseLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

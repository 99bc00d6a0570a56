package utmcsensors

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	server *http.Server
)

type handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler returns the HTTP API backed by svc.
func NewHandler(svc *Service) http.Handler {
	h := &handler{svc: svc, logger: svc.logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/sensors/bearings.json", h.handleBearings("json"))
	mux.HandleFunc("/api/sensors/bearings.xml", h.handleBearings("xml"))
	mux.HandleFunc("/api/sensors/current.json", h.handleCurrent("json"))
	mux.HandleFunc("/api/sensors/current.xml", h.handleCurrent("xml"))
	return mux
}

func StartServer(svc *Service, port int) {
	addr := fmt.Sprintf(":%d", port)
	server = &http.Server{
		Addr:              addr,
		Handler:           NewHandler(svc),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// a cold snapshot waits on the Overpass API
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()
	slog.Info("server listening", "addr", addr)
}

func HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	slog.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "err", err)
		} else {
			slog.Info("server shut down successfully")
		}
	}
}

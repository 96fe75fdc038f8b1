package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"logsieve/internal/config"
	"logsieve/internal/engine"
	"logsieve/internal/logger"
	"logsieve/internal/server"
)

func main() {
	flagConfig := flag.String("config", "", "path to YAML config file")
	flagPort := flag.Int("port", 0, "HTTP port (overrides config)")
	flagDirs := flag.String("dirs", "", "comma-separated log directories (overrides config)")
	flag.Parse()

	cfgPath := *flagConfig
	if cfgPath == "" {
		cfgPath = os.Getenv("LOGSIEVE_CONFIG")
	}
	if cfgPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			cfgPath = "config.yaml"
		}
	}

	// Flags override through the environment so reloads keep honoring them.
	if *flagDirs != "" {
		os.Setenv("LOG_DIRECTORIES", *flagDirs)
	}
	if *flagPort != 0 {
		os.Setenv("SERVER_PORT", strconv.Itoa(*flagPort))
	}

	store, err := config.NewStore(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	cfg := store.Current()

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	eng := engine.New(store)
	srv := server.New(store, eng)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("exited gracefully")
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/highlightly/apiclient"
	"github.com/danielhkuo/highlightly/auth"
	"github.com/danielhkuo/highlightly/cliparse"
	"github.com/danielhkuo/highlightly/db"
	"github.com/danielhkuo/highlightly/device"
	"github.com/danielhkuo/highlightly/handlers"
	"github.com/danielhkuo/highlightly/middleware"
	"github.com/danielhkuo/highlightly/netstatus"
	"github.com/danielhkuo/highlightly/notify"
	"github.com/danielhkuo/highlightly/router"
	"github.com/danielhkuo/highlightly/scheduler"
	"github.com/danielhkuo/highlightly/session"
	"github.com/danielhkuo/highlightly/storage"
	"github.com/danielhkuo/highlightly/stores"
	"github.com/danielhkuo/highlightly/timer"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	kv := db.NewKV(dbConn)
	syncArea := storage.NewArea(kv, storage.AreaSync)
	localArea := storage.NewArea(kv, storage.AreaLocal)
	bus := storage.NewBus()
	notifier := notify.NewBroadcast(bus)
	clock := timer.System()

	deviceUUID, err := device.EnsureUUID(ctx, localArea)
	if err != nil {
		slog.Error("device uuid unavailable", "error", err)
		os.Exit(1)
	}

	client := apiclient.New(cfg.APIURL, apiclient.WithTimeout(cfg.HTTPTimeout))
	restoreDeviceID(ctx, localArea, client)

	monitor := netstatus.New(client, clock, cfg.ProbeInterval)
	wordDB := db.NewWordStore(dbConn)

	sched := scheduler.New(scheduler.Config{
		SyncInterval:      cfg.SyncInterval,
		UserCheckInterval: cfg.UserCheckInterval,
		InitialDelay:      cfg.InitialDelay,
		MaxRetryAttempts:  scheduler.MaxRetryAttempts,
	}, scheduler.Deps{
		Clock:    clock,
		Sync:     syncArea,
		Local:    localArea,
		Words:    wordDB,
		API:      client,
		Bus:      bus,
		Notifier: notifier,
		Online:   monitor.Online,
	})
	monitor.OnOnline(sched.OnOnline)

	authStore := stores.NewAuthStore(syncArea, client, bus, notifier, stores.AuthHooks{
		OnLogin:  func(context.Context) { sched.Start(ctx) },
		OnLogout: func(context.Context) { sched.Stop() },
	})
	activation := stores.NewActivationStore(authStore, bus, notifier)
	disallowed := stores.NewDisallowedStore(authStore, bus)
	records := stores.NewRecordsStore(ctx, authStore, clock)
	words := stores.NewWordsStore(wordDB, notifier)

	if err := authStore.Init(ctx); err != nil {
		slog.Error("failed to restore session", "error", err)
	}
	activation.Init()
	disallowed.Init()
	records.Init()
	if err := words.Load(ctx); err != nil {
		slog.Error("failed to load words", "error", err)
	}

	// Session changes made by the scheduler or relayed from other
	// contexts reach the stores through the bus.
	authEvents, stopAuthEvents := bus.Subscribe(64)
	defer stopAuthEvents()
	go authStore.Listen(ctx, authEvents, activation, disallowed)

	if authStore.Get().IsAuthenticated {
		sched.Start(ctx)
	}
	monitor.Start(ctx)

	// Create router
	mux := router.NewRouter(handlers.Services{
		Auth:       authStore,
		Activation: activation,
		Disallowed: disallowed,
		Records:    records,
		Words:      words,
		Scheduler:  sched,
		Bus:        bus,
		Local:      localArea,
		API:        client,
	}, cfg, deviceUUID)

	// Create server. Requests inherit ctx so open event streams end on shutdown.
	server := http.Server{
		Handler:     middleware.CORS(mux),
		Addr:        "127.0.0.1:" + strconv.Itoa(cfg.Port),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		sched.Stop()
		monitor.Stop()

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := records.Flush(shutdownCtx); err != nil {
			slog.Error("failed to flush records", "error", err)
		}
		cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "bridge_key", auth.GenerateBridgeKey(deviceUUID, cfg.BridgeSalt))
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// setupLogging installs the default logger. "auto" picks text on a
// terminal and JSON otherwise.
func setupLogging(cfg cliparse.Config) {
	level, err := cliparse.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := cfg.LogFormat
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			format = "text"
		}
	}

	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// restoreDeviceID gives the API client the device id from a previous run.
func restoreDeviceID(ctx context.Context, s storage.Store, client *apiclient.Client) {
	items, err := s.Get(ctx, session.KeyDeviceID)
	if err != nil {
		slog.Warn("failed to read device id", "error", err)
		return
	}
	var id string
	if _, err := storage.Decode(items, session.KeyDeviceID, &id); err != nil {
		slog.Warn("failed to decode device id", "error", err)
		return
	}
	if id != "" {
		client.SetDeviceID(id)
	}
}

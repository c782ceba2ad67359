package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/client"
	"github.com/cleberrangel/journey-goals-api/internal/config"
	"github.com/cleberrangel/journey-goals-api/internal/database"
	"github.com/cleberrangel/journey-goals-api/internal/handler"
	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/cleberrangel/journey-goals-api/internal/middleware"
	"github.com/cleberrangel/journey-goals-api/internal/migration"
	"github.com/cleberrangel/journey-goals-api/internal/repository"
	"github.com/cleberrangel/journey-goals-api/internal/service"
	"github.com/cleberrangel/journey-goals-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "2.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, File: cfg.LogFile})
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("backend", cfg.StorageBackend).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Msg("Journey Goals API iniciando")

	metrics.Init()
	gin.SetMode(cfg.GinMode)

	hub := websocket.NewHub()
	go hub.Run()

	ctx := context.Background()

	// Seleciona o backend de armazenamento das metas
	var (
		store  service.GoalStore
		health *handler.HealthHandler
		db     *sql.DB
	)
	switch cfg.StorageBackend {
	case config.BackendRemote:
		journey := client.NewClient(cfg.Journey.BaseURL, cfg.Journey.Token, cfg.Journey.RateLimitPerMinute)
		store = journey
		health = handler.NewRemoteHealthHandler(journey.Ping, hub, Version)
		log.Info().Str("base_url", cfg.Journey.BaseURL).Msg("Usando API remota de metas")

	default:
		db, err = database.Connect(ctx, cfg.Database, database.Pool{})
		if err != nil {
			log.Fatal().Err(err).Msg("Erro ao conectar ao banco de dados")
		}
		if err := migration.NewMigrator(db).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Erro ao executar migrations")
		}
		store = repository.NewStore(db)
		health = handler.NewHealthHandler(db, hub, Version)
	}

	// Inicializa serviços
	dashboardService := service.NewDashboardService(store, cfg.DashboardCacheTTL, cfg.StreakIncludeRepeating)
	goalService := service.NewGoalService(store, hub, dashboardService)
	snapshotService := service.NewSnapshotService(store, goalService, dashboardService, cfg.SnapshotCron)
	reportService := service.NewReportService(store, dashboardService)

	if err := snapshotService.Start(); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SnapshotCron).Msg("Erro ao agendar snapshots diários")
	}

	router := handler.NewRouter(handler.Handlers{
		Goals:     handler.NewGoalHandler(goalService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Snapshots: handler.NewSnapshotHandler(snapshotService),
		Reports:   handler.NewReportHandler(reportService),
		WebSocket: handler.NewWebSocketHandler(hub),
		Health:    health,
	}, middleware.AuthConfig{
		Token:     cfg.TokenAPI,
		TokenHash: cfg.TokenAPIHash,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no shutdown do servidor")
	}

	snapshotService.Stop()
	hub.Stop()
	dashboardService.Close()
	if db != nil {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar banco de dados")
		}
	}

	log.Info().Msg("Servidor encerrado")
}

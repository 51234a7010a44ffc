// Точка входа Catalog Module: каталог агентов, консультантов и компонентов.
// Загружает конфигурацию, выбирает хранилище записей (PostgreSQL или память),
// применяет миграции, создаёт хранилище файлов, кодек токенов, сервисный слой
// и API handlers, запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bigkaa/goartstore/catalog-module/internal/api/handlers"
	"github.com/bigkaa/goartstore/catalog-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/catalog-module/internal/config"
	"github.com/bigkaa/goartstore/catalog-module/internal/database"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
	"github.com/bigkaa/goartstore/catalog-module/internal/server"
	"github.com/bigkaa/goartstore/catalog-module/internal/service"
	"github.com/bigkaa/goartstore/catalog-module/internal/storage/filestore"
	"github.com/bigkaa/goartstore/catalog-module/internal/token"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Catalog Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Хранилище записей
	var (
		backend   repository.Backend
		pgChecker handlers.ReadinessChecker
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pg, err := database.Open(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка подготовки PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pg.Close()

		backend = repository.NewPostgresBackend(pg.Pool)
		pgChecker = pg.Checker

		// 3.1 topologymetrics: проверка PostgreSQL через существующий пул
		dephealthSvc, err := service.NewDephealthService(
			"catalog-module",
			cfg.DephealthGroup,
			pg.SQLDB(),
			cfg.DatabaseURL("postgres"),
			cfg.DephealthCheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
		} else if err := dephealthSvc.Start(ctx); err != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		} else {
			defer dephealthSvc.Stop()
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	case config.BackendMemory:
		logger.Warn("Записи хранятся в памяти и будут потеряны при перезапуске")
		backend = repository.NewMemoryBackend()
	}
	stores := repository.NewStores(backend)

	// 4. Хранилище файлов
	blobs, err := filestore.New(cfg.DataDir)
	if err != nil {
		logger.Error("Ошибка инициализации хранилища файлов",
			slog.String("data_dir", cfg.DataDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// 5. Кодек токенов доступа к файлам
	tokens, err := token.New(cfg.SecretKey, cfg.TokenAlgorithm)
	if err != nil {
		logger.Error("Ошибка создания кодека токенов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Services
	files := service.NewFileService(stores.Files, blobs, logger)
	enricher := service.NewEnricher(stores, tokens, cfg.FileTokenTTL, cfg.APIPrefix)
	cascade := service.NewCascade(stores, files, logger)

	svc := handlers.Services{
		Agents:      service.NewAgentService(stores, files, enricher, cascade, logger),
		Consultants: service.NewConsultantService(stores, files, enricher, cascade, logger),
		Components:  service.NewComponentService(stores, files, enricher, cascade, logger),
		Documents:   service.NewDocumentService(stores, files, enricher, cascade, logger),
		Reviews:     service.NewReviewService(stores, logger),
		Downloads:   service.NewDownloadService(files, tokens, logger),
	}

	// 7. API handler
	apiHandler := handlers.NewAPIHandler(handlers.NewHealthHandler(pgChecker), svc, handlers.Options{
		PageDefaultLimit: cfg.PageDefaultLimit,
		PageMaxLimit:     cfg.PageMaxLimit,
		MaxUploadMemory:  cfg.MaxUploadMemory,
	}, logger)

	// 8. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Catalog Module остановлен")
}

package main

import (
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"energosphere-server/internal/auth"
	"energosphere-server/internal/config"
	"energosphere-server/internal/registry"
	"energosphere-server/internal/server"
	"energosphere-server/internal/store"
	"energosphere-server/internal/version"
	"energosphere-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var seed int64
	var dataDir string
	// Читаем флаг -seed. По умолчанию 0 (значит сгенерировать случайно).
	flag.Int64Var(&seed, "seed", 0, "Event scheduler seed (0 for random)")
	flag.StringVar(&dataDir, "data", "data", "Directory for persistent state")
	flag.Parse()

	logger.Log.Info("Starting Energosphere...")
	logger.Log.Info(version.String())

	// Формируем конфиг
	cfg := config.FromEnv()
	if seed != 0 {
		cfg.Seed = seed
		logger.Log.Infof("🎲 Using explicit event seed: %d", seed)
	} else {
		cfg.Seed = time.Now().UnixNano()
		logger.Log.Infof("🎲 Using random event seed: %d", cfg.Seed)
	}

	port := os.Getenv("ES_PORT")
	if port == "" {
		port = "8080"
	}

	// 2. Хранилище и аутентификация
	repo, err := store.NewFileRepo(dataDir)
	if err != nil {
		logger.Log.Fatal("Failed to open player store:", err)
	}

	authSvc, err := auth.NewAuth(dataDir)
	if err != nil {
		logger.Log.Fatal("Failed to init auth:", err)
	}

	// 3. Инициализация ядра с конфигом
	svc := registry.NewService(cfg, repo, rand.New(rand.NewSource(cfg.Seed)))
	svc.Start()

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 4. Запуск сервера
	srv := server.New(svc, authSvc, port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error:", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")

	// Останавливаем цикл и сохраняем всех игроков
	svc.Stop()
	svc.Checkpoint()

	logger.Log.Info("Done.")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/cache"
	"github.com/central-university-dev/go-MentionsRelay/internal/bot/clients"
	"github.com/central-university-dev/go-MentionsRelay/internal/bot/clients/kafka"
	bothandler "github.com/central-university-dev/go-MentionsRelay/internal/bot/handler"
	"github.com/central-university-dev/go-MentionsRelay/internal/bot/notify"
	"github.com/central-university-dev/go-MentionsRelay/internal/bot/repository"
	botservice "github.com/central-university-dev/go-MentionsRelay/internal/bot/service"
	"github.com/central-university-dev/go-MentionsRelay/internal/common/metrics"
	"github.com/central-university-dev/go-MentionsRelay/internal/common/middleware"
	"github.com/central-university-dev/go-MentionsRelay/internal/config"
	"github.com/central-university-dev/go-MentionsRelay/internal/database"
	domainerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/pkg"
	"github.com/central-university-dev/go-MentionsRelay/pkg/txs"
)

type closer interface {
	Close() error
}

func gracefulShutdown(server *http.Server, kafkaConsumer *kafka.Consumer,
	digestService *botservice.DigestService, redisClosers []closer,
	stopCh <-chan struct{}, appLogger *slog.Logger) {
	<-stopCh
	appLogger.Info("Получен сигнал завершения")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера",
			"error", err,
		)
	}

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии Kafka консьюмера",
				"error", err,
			)
		}
	}

	if digestService != nil {
		digestService.Stop()
	}

	for _, c := range redisClosers {
		if err := c.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии соединения с Redis",
				"error", err,
			)
		}
	}

	appLogger.Info("Сервер успешно остановлен")
}

func startHTTPServer(server *http.Server, port int, stopCh chan<- struct{}, appLogger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLogger.Info("Получен системный сигнал",
			"signal", sig.String(),
		)
		close(stopCh)
	}()

	go func() {
		appLogger.Info("Запуск HTTP сервера бота",
			"port", port,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Ошибка при запуске HTTP сервера",
				"error", err,
			)
			close(stopCh)
		}
	}()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen,gocognit // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при подключении к базе данных",
			"error", err,
		)

		return fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	defer db.Close()

	txManager := txs.NewTxManager(db.Pool, appLogger)

	repoFactory := repository.NewFactory(db, cfg, appLogger)

	configRepo, err := repoFactory.CreateConfigRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория конфигураций",
			"error", err,
		)

		return fmt.Errorf("ошибка создания репозитория конфигураций: %w", err)
	}

	configCache := cache.NewConfigCache(configRepo, appLogger)

	gatewayClient := clients.NewGatewayClient(cfg.GatewayBaseURL, cfg, appLogger)

	var redisClosers []closer

	var presenceProvider botservice.PresenceProvider = gatewayClient

	if cfg.RedisURL != "" {
		presenceCache, cacheErr := cache.NewRedisPresenceCache(
			gatewayClient,
			cfg.RedisURL,
			cfg.RedisPassword,
			cfg.RedisDB,
			cfg.PresenceCacheTTL,
			appLogger,
		)
		if cacheErr != nil {
			appLogger.Error("Ошибка при подключении к Redis",
				"error", cacheErr,
			)
		} else {
			appLogger.Info("Кэш статусов Redis успешно инициализирован")

			presenceProvider = presenceCache
			redisClosers = append(redisClosers, presenceCache)
		}
	}

	var notifier notify.Notifier

	var digestService *botservice.DigestService

	switch strings.ToLower(cfg.NotificationMode) {
	case "instant":
		notifier = notify.NewInstantNotifier(gatewayClient, appLogger)
	case "digest":
		if cfg.RedisURL == "" {
			return errors.New("режим дайджеста требует настроенного Redis (REDIS_URL)")
		}

		digestCache, cacheErr := cache.NewRedisDigestCache(
			ctx,
			cfg.RedisURL,
			cfg.RedisPassword,
			cfg.RedisDB,
			cfg.DigestTTL,
			appLogger,
		)
		if cacheErr != nil {
			appLogger.Error("Ошибка при подключении к Redis для дайджестов",
				"error", cacheErr,
			)

			return fmt.Errorf("ошибка подключения к Redis для дайджестов: %w", cacheErr)
		}

		redisClosers = append(redisClosers, digestCache)

		notifier = notify.NewDigestNotifier(digestCache, appLogger)

		digestService = botservice.NewDigestService(digestCache, gatewayClient, cfg.DigestDeliveryTime, appLogger)
		digestService.Start(ctx)
	default:
		return &domainerrors.ErrUnknownNotificationMode{Mode: cfg.NotificationMode}
	}

	mentionService := botservice.NewMentionService(
		configCache,
		presenceProvider,
		notifier,
		cfg.BotUserID,
		appLogger,
	)

	settingsService := botservice.NewSettingsService(
		configCache,
		gatewayClient,
		txManager,
		appLogger,
	)

	var kafkaConsumer *kafka.Consumer

	if strings.EqualFold(cfg.MessageTransport, "KAFKA") {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		kafkaConsumer = kafka.NewConsumer(
			brokers,
			"mentions-bot-group",
			cfg.TopicMessageEvents,
			cfg.TopicDeadLetterQueue,
			mentionService,
			appLogger,
		)

		kafkaConsumer.Start(ctx)
		appLogger.Info("Kafka консьюмер успешно запущен")
	}

	messageHandler := bothandler.NewMessageHandler(mentionService, appLogger)
	settingsHandler := bothandler.NewSettingsHandler(settingsService, appLogger)
	router := bothandler.NewRouter(messageHandler, settingsHandler)

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, appLogger)
	metricsMiddleware := middleware.NewMetricsMiddleware("bot")

	handler := rateLimiter.Middleware(metricsMiddleware.Middleware(router))

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик",
				"error", err,
			)
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCh := make(chan struct{})

	startHTTPServer(httpServer, cfg.ServerPort, stopCh, appLogger)
	gracefulShutdown(httpServer, kafkaConsumer, digestService, redisClosers, stopCh, appLogger)

	return nil
}

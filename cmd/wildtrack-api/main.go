package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wildtrack-api/internal/config"
	"wildtrack-api/internal/database"
	"wildtrack-api/internal/events"
	httpapi "wildtrack-api/internal/http"
	"wildtrack-api/internal/logger"
	wtmqtt "wildtrack-api/internal/mqtt"
	"wildtrack-api/internal/provider"
	"wildtrack-api/internal/repository"
	"wildtrack-api/internal/service"
	"wildtrack-api/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载并校验配置（store 连接参数和 provider 凭证缺失时拒绝启动）
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "wildtrack-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 建立数据库连接（先于接收流量，连不上直接失败）
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 4. Redis（摘要缓存 + 告警事件流）；非核心依赖，连不上降级运行
	var kv store.KV
	var publisher *events.Publisher
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable, running without digest cache and event stream", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			kv = store.NewRedisKV(redisClient)
			publisher = events.NewPublisher(redisClient, cfg.Redis.Stream, log)
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 5. 创建语言模型 Provider（凭证缺失在 Validate 已拦截，这里兜底）
	prov, err := provider.New(&cfg.Provider, log)
	if err != nil {
		log.Fatal("Failed to create provider", zap.Error(err))
	}
	log.Info("Provider configured", zap.String("provider", prov.Name()))

	// 6. 组装仓库和服务
	loc, err := time.LoadLocation(cfg.Service.Timezone)
	if err != nil {
		log.Fatal("Invalid service timezone", zap.Error(err))
	}

	alertsRepo := repository.NewAlertsRepository(db, log)
	alertService := service.NewAlertService(alertsRepo, publisher, log)
	analyticsService := service.NewAnalyticsService(alertsRepo, loc, log)
	summaryBuilder := service.NewSummaryBuilder(alertsRepo, log)
	chatService := service.NewChatService(
		summaryBuilder, prov, kv,
		cfg.Chat.DigestCacheTTL, cfg.Provider.Timeout, cfg.Chat.Fallback,
		log,
	)

	// 7. 路由
	router := httpapi.NewRouter(log)
	router.RegisterAlertRoutes(httpapi.NewAlertHandler(alertService, cfg.Service.RecentLimit, log))
	router.RegisterAnalyticsRoutes(httpapi.NewAnalyticsHandler(analyticsService, log))
	router.RegisterChatRoutes(httpapi.NewChatHandler(chatService, log))
	router.RegisterHealthRoute()
	router.HandleHandler("/metrics", promhttp.Handler())

	// 8. 边缘设备 MQTT 上报桥（可选）
	var mqttClient *wtmqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = wtmqtt.NewClient(&cfg.MQTT)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		broker := wtmqtt.NewEdgeBroker(alertService, log)
		if err := mqttClient.Subscribe(cfg.MQTT.Topic, cfg.MQTT.QoS, broker.HandleMessage); err != nil {
			log.Fatal("Failed to subscribe to edge topic", zap.Error(err))
		}
		log.Info("Edge MQTT bridge enabled", zap.String("topic", cfg.MQTT.Topic))
	}

	// 9. 启动 HTTP 服务
	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 10. 等待信号（优雅关闭）
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	if mqttClient != nil {
		mqttClient.Disconnect()
	}

	log.Info("wildtrack-api stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"beacon-core/internal/bootstrap"
	"beacon-core/internal/handler"
	"beacon-core/internal/notify"
	"beacon-core/internal/server"
	"beacon-core/internal/service"
	"beacon-core/internal/worker"
	"beacon-core/pkg/config"
	"beacon-core/pkg/database"
	"beacon-core/pkg/logger"
	"beacon-core/pkg/utils/lock"
)

const version = "1.0.0"

func main() {
	// 0. 初始化 Config
	config.Init()
	cfg := &config.Global

	// 1. 初始化 Logger
	logger.Init(cfg.App.Env)
	defer logger.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 2. 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 3. 组装 Beacon (节点客户端 + 通知)
	b, closeBeacon, err := bootstrap.NewBeacon(ctx, cfg, reg)
	if err != nil {
		logger.Fatal("Beacon 初始化失败", zap.Error(err))
	}
	defer closeBeacon()

	// 4. Redis (可选): 多副本互斥 + 邮件队列
	var rdb *redis.Client
	var locker lock.DistributedLock
	if cfg.Redis.Addr != "" {
		rdb, err = database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		defer rdb.Close()
		locker = lock.NewRedisLock(rdb)
		logger.Info("Redis 连接成功", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. 邮件 Worker (queue 模式下消费 email:deliver)
	var wrk *worker.Server
	if cfg.Notify.Mode == "queue" && cfg.Worker.Enabled {
		wrk = worker.NewServer(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Worker.Concurrency, notify.NewSMTPNotifier(cfg.SMTP))
		if err := wrk.Start(); err != nil {
			logger.Fatal("Worker 启动失败", zap.Error(err))
		}
	}

	// 6. 调度器
	cron := service.NewCronService(b, cfg.Interval, locker, cfg.Redis.LockTTL)
	if err := cron.Start(); err != nil {
		logger.Fatal("Cron 启动失败", zap.Error(err))
	}

	// 7. 状态 HTTP 服务
	router := server.NewHTTPRouter(handler.NewStatusHandler(b, version), reg)
	app := server.New(server.Config{HttpPort: cfg.App.HttpPort}, router)
	app.Start()

	logger.Info("beacon started",
		zap.String("version", version),
		zap.Int("nodes", len(cfg.Nodes)),
		zap.Int("subscribers", len(cfg.Subscribers)),
		zap.String("notify", cfg.Notify.Mode))

	// 8. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("⚠️  Shutting down beacon...")

	cron.Stop()
	app.Shutdown()
	if wrk != nil {
		wrk.Stop()
	}
	logger.Info("beacon exited properly")
}

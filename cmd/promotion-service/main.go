// cmd/promotion-service/main.go
package main

import (
	"context"
	"log"

	"promo/internal/pkg/bootstrap"
	"promo/internal/pkg/mq"
	"promo/internal/pkg/redis"
	"promo/internal/pkg/zklock"
	"promo/internal/service/promotion/application"
	"promo/internal/service/promotion/infrastructure"
	"promo/internal/service/promotion/infrastructure/adapter"
	"promo/internal/service/promotion/interfaces"
)

const serviceName = "promotion-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	if err := bootstrap.Init(); err != nil {
		log.Fatalf("FATAL: failed to load config: %v", err)
	}
	cfg := bootstrap.GetCurrentConfig()

	// 持久化层
	db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		log.Fatalf("FATAL: failed to initialize mysql: %v", err)
	}
	promotionRepo := infrastructure.NewGormPromotionRepository(db)
	participationRepo := infrastructure.NewGormParticipationRepository(db)

	// 快路径共享存储
	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
	if err != nil {
		log.Fatalf("FATAL: failed to initialize redis: %v", err)
	}
	admissionStore := adapter.NewAdmissionRedisAdapter(redisClient)
	promotionCache := adapter.NewPromotionCacheAdapter(redisClient, promotionRepo, cfg.App.CacheTTL.Std())

	// 下游事件
	winnerWriter := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.WinnerTopic)
	notifier := adapter.NewWinnerKafkaAdapter(winnerWriter)

	// 应用服务
	promotionSvc := application.NewPromotionService(promotionRepo, admissionStore, promotionCache)
	participationSvc := application.NewParticipationService(promotionCache, admissionStore, cfg.App.QueueSizeMultiplier)
	querySvc := application.NewParticipationQueryService(promotionRepo, participationRepo)

	// 多实例部署时用 ZooKeeper 锁保证只有一个 worker 在排空
	var gate application.LeaderGate
	if len(cfg.Infra.Zookeeper.Addrs) > 0 {
		zkConn, err := zklock.Connect(cfg.Infra.Zookeeper.Addrs)
		if err != nil {
			log.Fatalf("FATAL: failed to connect to zookeeper: %v", err)
		}
		defer zkConn.Close()
		gate, err = zklock.NewLeaderLock(zkConn, "resolution-worker")
		if err != nil {
			log.Fatalf("FATAL: failed to initialize worker leader lock: %v", err)
		}
	}

	worker := application.NewResolutionWorker(
		promotionCache,
		participationRepo,
		admissionStore,
		notifier,
		cfg.App.WorkerInterval.Std(),
		cfg.App.WorkerBatchSize,
		gate,
	)
	worker.Start(context.Background())

	limiter := interfaces.NewPerIPLimiter(cfg.App.RateLimitPerSecond, cfg.App.RateLimitBurst)
	handler := interfaces.NewPromotionHandler(promotionSvc, participationSvc, querySvc, limiter)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.Http.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: []func(ctx context.Context) error{
			func(ctx context.Context) error { return worker.Stop(ctx) },
			func(context.Context) error { return winnerWriter.Close() },
			func(context.Context) error { return redisClient.Close() },
		},
	})
}

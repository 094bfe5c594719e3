package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "chat_presence_service/cmd/chat_service/docs" // 引入 Swagger 文档
	"chat_presence_service/internal/chat/app"
	"chat_presence_service/internal/chat/domain"
	"chat_presence_service/internal/chat/repository"
	"chat_presence_service/internal/chat/router"
	"chat_presence_service/pkg/config"
	"chat_presence_service/pkg/database"
	"chat_presence_service/pkg/logger"
	"chat_presence_service/pkg/middlewares"
	testtool "chat_presence_service/pkg/test_tool"
	"chat_presence_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	if err != nil {
		logger.Log.Fatal("load config failed", zap.Error(err))
	}
	testtool.StartPprof(cfg.Pprof)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 訊息儲存
	var msgRepo repository.MessageRepository
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Log.Warn("message storage is in memory, history is lost on restart")
		msgRepo = repository.NewMemoryMessageRepository()
	default:
		mongo, err := database.NewMongoDB(ctx, database.MongoConnection(cfg.MongoSQL), cfg.MongoSQL.Database)
		if err != nil {
			logger.Log.Fatal("Unable to connect to mongoDB database after retries",
				zap.String("host", cfg.MongoSQL.Host),
				zap.Error(err),
			)
		}
		defer mongo.Close(context.Background())
		if err := repository.EnsureMessageIndexes(ctx, mongo.Database); err != nil {
			logger.Log.Warn("ensure message indexes failed", zap.Error(err))
		}
		msgRepo = repository.NewMongoMessageRepository(mongo.Database)
	}

	// 2. member directory (postgreSQL), 沒設定 host 時不檢查 user 是否存在
	var userRepo repository.UserRepository
	if cfg.PostgreSQL.Host != "" {
		pool, err := database.NewDatabaseConnection(ctx, database.PostgresConnection(cfg.PostgreSQL))
		if err != nil {
			logger.Log.Fatal("Unable to connect to postgreSQL database after retries", zap.Error(err))
		}
		defer pool.Close()
		userRepo = repository.NewUserRepository(pool)
	}

	// 3. session 撤銷檢查 (redis)
	var sessions middlewares.SessionChecker
	if cfg.Redis.Enabled {
		masterName, sentinel := config.GetRedisSetting()
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis.Addr, masterName, sentinel, cfg.Redis.RedisDB)
		if err != nil {
			logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
		}
		defer redisClient.Close()
		sessions = repository.NewSessionRepository(database.NewRedisRepository[domain.MemberSession](redisClient))
	}

	// 4. 圖片附件 (minIO)
	var attachRepo repository.AttachmentRepository
	if cfg.MinIO.Enabled {
		minioClient, err := database.NewMinIOConnection(ctx, database.NewMinIOSetting(cfg.MinIO))
		if err != nil {
			logger.Log.Fatal("Unable to connect to minIO after retries", zap.Error(err))
		}
		attachRepo = repository.NewAttachmentRepository(minioClient)
	}

	// 5. jwt verifier, secret 不可為空
	verifier, err := token.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		logger.Log.Fatal("invalid auth config", zap.Error(err))
	}

	// 6. registry / gateway / use cases
	registry := app.NewConnectionRegistry()
	gateway := app.NewChatWebsocketHandler(registry, cfg.Websocket)
	messageUC := app.NewMessageUseCase(msgRepo, userRepo, attachRepo, gateway, cfg.Message)
	contactUC := app.NewContactUseCase(userRepo, registry)

	// 7. 啟動 Fiber
	r := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Message.WithDefaults().MaxImageBytes*2) + 64*1024,
	})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Log.Fatal("Failed to open access log file", zap.Error(err))
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	router.RegisterRoutes(r, router.Handlers{
		Chat:      app.NewChatHandler(messageUC, contactUC, registry),
		Websocket: gateway,
		Verifier:  verifier,
		Sessions:  sessions,
	})

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down chat service")
		registry.Shutdown()
		if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Error("fiber shutdown", zap.Error(err))
		}
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Chat Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}

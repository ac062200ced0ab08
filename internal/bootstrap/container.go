package bootstrap

import (
	"log"
	"time"

	"blocknote-be/internal/config"
	"blocknote-be/internal/controller"
	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/memory"
	"blocknote-be/internal/repository/unitofwork"
	"blocknote-be/internal/service"
	"blocknote-be/internal/websocket"

	pktNats "blocknote-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    *controller.AuthController
	PageController    *controller.PageController
	BlockController   *controller.BlockController
	HistoryController *controller.HistoryController

	// Background services (exposed for main.go to run)
	HistoryWriter IHistoryWriterRunner

	// WebSockets
	WebSocketHub *websocket.Hub
}

// IHistoryWriterRunner is what main.go needs from the history consumer.
type IHistoryWriterRunner = service.IHistoryWriterService

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus for async history capture
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// Redis backs cross-instance websocket delivery; optional.
	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.App.RedisURL); err != nil {
		log.Printf("[WARN] Invalid Redis URL, realtime activity runs single-instance: %v", err)
	} else {
		rdb = redis.NewClient(opts)
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	hub := websocket.NewHub(rdb, wsLogger)
	go hub.Run()

	// NATS domain events; optional, services tolerate a nil publisher.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// In-memory refresh-token sessions
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Auth.RefreshTokenTTLHrs) * time.Hour)

	// 4. Services
	recorder := service.NewHistoryRecorder(pubSub, cfg.History.TopicName, sysLogger)
	historyWriter := service.NewHistoryWriterService(
		pubSub,
		cfg.History.TopicName,
		uowFactory,
		hub,
		sysLogger,
		cfg.History.MaxWriteAttempts,
	)

	authService := service.NewAuthService(uowFactory, sessionRepo, cfg.Auth, sysLogger)
	pageService := service.NewPageService(uowFactory, natsPub, sysLogger)
	blockService := service.NewBlockService(uowFactory, recorder, natsPub, sysLogger)
	historyService := service.NewHistoryService(uowFactory, sysLogger)
	retentionService := service.NewRetentionService(uowFactory, sysLogger)

	// 5. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		PageController:    controller.NewPageController(pageService),
		BlockController:   controller.NewBlockController(blockService),
		HistoryController: controller.NewHistoryController(historyService, retentionService, cfg.History.RetentionDays),
		HistoryWriter:     historyWriter,
		WebSocketHub:      hub,
	}
}

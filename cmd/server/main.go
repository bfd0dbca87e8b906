package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfulfillment "github.com/minimart/backend/internal/application/fulfillment"
	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/infrastructure/carrier"
	"github.com/minimart/backend/internal/infrastructure/config"
	"github.com/minimart/backend/internal/infrastructure/event"
	"github.com/minimart/backend/internal/infrastructure/logger"
	"github.com/minimart/backend/internal/infrastructure/persistence"
	"github.com/minimart/backend/internal/infrastructure/world"
	"github.com/minimart/backend/internal/interfaces/http/handler"
	"github.com/minimart/backend/internal/interfaces/http/router"
	"github.com/minimart/backend/internal/outbound"
	"github.com/minimart/backend/internal/worldwire"
)

const (
	worldChannelName   = "world"
	carrierChannelName = "carrier"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Minimart Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	outboundRepo := persistence.NewGormOutboundMessageRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize event bus and the audit handler
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := appfulfillment.NewShipmentAuditHandler(log)
	eventBus.Subscribe(auditHandler)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	orderService := appfulfillment.NewOrderService(orderRepo, shipmentRepo)
	shipmentService := appfulfillment.NewShipmentService(shipmentRepo, orderRepo, warehouseRepo, txScope, log)
	shipmentService.SetEventPublisher(eventBus)

	outboundCfg := outbound.Config{
		RetryInterval: cfg.Outbound.RetryInterval,
		RetryBackoff:  cfg.Outbound.RetryBackoff,
		MaxAttempts:   cfg.Outbound.MaxAttempts,
		CallTimeout:   cfg.Outbound.CallTimeout,
	}

	// World client and its reliable channel. Each channel reseeds its sequence
	// counter from the highest persisted number so restarts never reuse one.
	worldClient := world.NewClient(cfg.World, warehouseRepo, log)
	worldSeed, err := outboundRepo.MaxSeq(context.Background(), worldChannelName)
	if err != nil {
		log.Fatal("Failed to read world channel seed", zap.Error(err))
	}
	worldChannel := outbound.NewChannel(worldChannelName, worldSeed, outboundRepo, worldClient.Transport(), outboundCfg, log)
	worldClient.SetChannel(worldChannel)

	dispatcher := world.NewDispatcher(worldChannel, worldClient, log)
	dispatcher.SetHandler(shipmentService)
	worldClient.SetDispatcher(dispatcher)

	// Carrier notifier rides its own channel with an independent sequence space
	carrierSeed, err := outboundRepo.MaxSeq(context.Background(), carrierChannelName)
	if err != nil {
		log.Fatal("Failed to read carrier channel seed", zap.Error(err))
	}
	carrierTransport := carrier.NewTransport(cfg.Carrier, log)
	carrierChannel := outbound.NewChannel(carrierChannelName, carrierSeed, outboundRepo, carrierTransport, outboundCfg, log)
	carrierNotifier := carrier.NewNotifier(carrierChannel, log)

	shipmentService.SetWorldGateway(worldClient)
	shipmentService.SetCarrierNotifier(carrierNotifier)

	worldChannel.Start(context.Background())
	defer worldChannel.Stop()
	carrierChannel.Start(context.Background())
	defer carrierChannel.Stop()

	if cfg.World.ConnectOnStart {
		connectWorldOnStart(cfg, worldClient, worldChannel, outboundRepo, warehouseRepo, log)
	}

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	webhookHandler := handler.NewCarrierWebhookHandler(shipmentService)
	worldHandler := handler.NewWorldHandler(worldClient, worldChannel, outboundRepo, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(log)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(orderHandler).
		Register(shipmentHandler).
		Register(webhookHandler).
		Register(worldHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := worldClient.Disconnect(ctx); err != nil {
		log.Warn("Error disconnecting from world", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// connectWorldOnStart dials a fresh simulator world during startup using the
// warehouses already on record. A fresh world starts a new sequence space, so
// the persisted world channel records are wiped first. The server still comes
// up if the simulator is down; an operator can connect later through the
// world admin API.
func connectWorldOnStart(
	cfg *config.Config,
	client *world.Client,
	channel *outbound.Channel,
	outboundRepo *persistence.GormOutboundMessageRepository,
	warehouses fulfillment.WarehouseRepository,
	log *zap.Logger,
) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.World.DialTimeout*time.Duration(cfg.World.ReconnectTries+1))
	defer cancel()

	known, err := warehouses.List(ctx)
	if err != nil {
		log.Error("Failed to load warehouses for world connect", zap.Error(err))
		return
	}
	wired := make([]worldwire.Warehouse, 0, len(known))
	for _, w := range known {
		wired = append(wired, worldwire.Warehouse{ID: w.ID, X: w.X, Y: w.Y})
	}

	if err := outboundRepo.Wipe(ctx, worldChannelName); err != nil {
		log.Error("Failed to wipe world channel records", zap.Error(err))
		return
	}
	channel.Reset(0)

	worldID, err := client.ConnectWithBackoff(ctx, nil, wired)
	if err != nil {
		log.Warn("World connect on startup failed, continuing without simulator", zap.Error(err))
		return
	}
	log.Info("Connected to world simulator", zap.Int64("world_id", worldID))

	if cfg.World.InitialSimSpeed > 0 {
		if err := client.SetSimSpeed(uint32(cfg.World.InitialSimSpeed)); err != nil {
			log.Warn("Failed to set initial simulation speed", zap.Error(err))
		}
	}
}

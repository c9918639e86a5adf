package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/auth"
	"github.com/Anuragsahu418/Educhat/internal/handler"
	"github.com/Anuragsahu418/Educhat/internal/realtime"
	"github.com/Anuragsahu418/Educhat/internal/server"
	"github.com/Anuragsahu418/Educhat/internal/store/mongodb"
	"github.com/Anuragsahu418/Educhat/internal/upload"
)

type App struct {
	logger   *zap.Logger
	settings Settings

	mongoClient       *mongo.Client
	userStore         *mongodb.UserStore
	messageStore      *mongodb.MessageStore
	announcementStore *mongodb.AnnouncementStore

	websocketServer *server.WebSocketServer
	restServer      *server.RESTServer
}

func NewApp(ctx context.Context, logger *zap.Logger, settings Settings) (*App, error) {
	mongoClient, err := mongodb.Connect(ctx, settings.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	database := mongodb.Database(mongoClient)
	userStore := mongodb.NewUserStore(database)
	messageStore := mongodb.NewMessageStore(database)
	announcementStore := mongodb.NewAnnouncementStore(logger, database)

	uploads, err := upload.NewStorage(logger, settings.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("create upload storage: %w", err)
	}

	originChecker := server.NewOriginChecker(settings.AllowedOrigin)
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	tokens := auth.NewTokenIssuer(settings.JWTSecret)
	hasher := auth.NewPasswordHasher()

	registry := realtime.NewRegistry(logger)
	notifier := realtime.NewNotifier(logger, registry)

	authHandler := handler.NewAuthHandler(userStore, hasher, tokens)
	messageHandler := handler.NewMessageHandler(userStore, messageStore, notifier)
	announcementHandler := handler.NewAnnouncementHandler(announcementStore)

	authMiddleware := server.NewAuthMiddleware(logger, tokens, userStore)
	eventRouter := server.NewEventRouter(logger, registry, notifier)

	websocketServer := server.NewWebSocketServer(
		logger,
		websocketUpgrader,
		registry,
		eventRouter,
	)
	restServer := server.NewRESTServer(
		logger,
		authHandler,
		messageHandler,
		announcementHandler,
		uploads,
		authMiddleware,
		originChecker,
		settings.SecureCookies,
	)

	return &App{
		logger:            logger,
		settings:          settings,
		mongoClient:       mongoClient,
		userStore:         userStore,
		messageStore:      messageStore,
		announcementStore: announcementStore,
		websocketServer:   websocketServer,
		restServer:        restServer,
	}, nil
}

func (a *App) setup(ctx context.Context) error {
	err := a.userStore.Setup(ctx)
	if err != nil {
		return fmt.Errorf("setup user store: %w", err)
	}

	err = a.messageStore.Setup(ctx)
	if err != nil {
		return fmt.Errorf("setup message store: %w", err)
	}

	err = a.announcementStore.Setup(ctx)
	if err != nil {
		return fmt.Errorf("setup announcement store: %w", err)
	}

	a.startHttpServer(ctx)

	return nil
}

func (a *App) startHttpServer(ctx context.Context) {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := mux.NewRouter()

	a.websocketServer.Register(router)
	a.restServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	a.logger.Info("starting http server",
		zap.String("address", address))

	go func() {
		err := httpServer.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start http server",
				zap.Error(err))
		}
	}()

	<-notifyCtx.Done()

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Fatal("http server shutdown failed",
			zap.Error(err))
	}

	err = a.mongoClient.Disconnect(shutdownCtx)
	if err != nil {
		a.logger.Warn("mongodb disconnect failed",
			zap.Error(err))
	}

	a.logger.Info("http server stopped")
}

func main() {
	ctx := context.Background()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		bootstrapLogger, _ := zap.NewDevelopment()
		bootstrapLogger.Fatal("failed to parse settings from environment", zap.Error(err))
	}

	logger, err := buildZapLogger(settings.LogEncoding, settings.LogFile)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	app, err := NewApp(ctx, logger, settings)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	err = app.setup(ctx)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}
}

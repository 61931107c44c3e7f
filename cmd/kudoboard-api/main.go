package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niteshj11/kudoboard/internal/auth"
	"github.com/niteshj11/kudoboard/internal/boards"
	"github.com/niteshj11/kudoboard/internal/config"
	"github.com/niteshj11/kudoboard/internal/database"
	"github.com/niteshj11/kudoboard/internal/gifs"
	"github.com/niteshj11/kudoboard/internal/ids"
	"github.com/niteshj11/kudoboard/internal/logging"
	"github.com/niteshj11/kudoboard/internal/messages"
	"github.com/niteshj11/kudoboard/internal/realtime"
	"github.com/niteshj11/kudoboard/internal/server"
	"github.com/niteshj11/kudoboard/internal/storage"
	"github.com/niteshj11/kudoboard/internal/uploads"
	"github.com/niteshj11/kudoboard/internal/users"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kudoboard-api",
		Short: "Kudoboard appreciation board backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path (empty selects the in-memory store)")
	cmd.PersistentFlags().Int("token-ttl-hours", defaults.GetInt("token.ttl_hours"), "Bearer token TTL in hours")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("giphy-api-key", defaults.GetString("giphy.api_key"), "Giphy API key (empty serves mock GIF results)")
	cmd.PersistentFlags().String("uploads-dir", defaults.GetString("uploads.dir"), "Directory for uploaded images (empty disables uploads)")
	cmd.PersistentFlags().String("client-origin", defaults.GetString("client.origin"), "Allowed CORS origin for the web client")
	cmd.PersistentFlags().Int("realtime-queue-size", defaults.GetInt("realtime.queue_size"), "Per-subscriber event queue size")
	cmd.PersistentFlags().String("signing-secret", "", "Token signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "token.ttl_hours", "token-ttl-hours")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "giphy.api_key", "giphy-api-key")
	bindFlag(cmd, "uploads.dir", "uploads-dir")
	bindFlag(cmd, "client.origin", "client-origin")
	bindFlag(cmd, "realtime.queue_size", "realtime-queue-size")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	var (
		userStore    users.Store
		boardStore   boards.Store
		messageStore messages.Store
	)
	if appConfig.UseMemoryStore() {
		logger.Info("no database path configured, using in-memory store")
		gateway := storage.NewMemoryGateway()
		userStore, boardStore, messageStore = gateway.Users, gateway.Boards, gateway.Messages
	} else {
		db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		gateway := storage.NewGateway(db)
		userStore, boardStore, messageStore = gateway.Users, gateway.Boards, gateway.Messages
	}

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        "kudoboard-auth",
		Audience:      "kudoboard-api",
		TokenTTL:      appConfig.TokenTTL,
	})

	idProvider := ids.NewUUIDProvider()

	hub := realtime.NewHub(appConfig.BroadcastQueue)
	socketHandler := realtime.NewSocketHandler(realtime.SocketHandlerConfig{
		Hub:    hub,
		Logger: logger,
	})

	usersService, err := users.NewService(users.ServiceConfig{
		Store:      userStore,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	messagesService, err := messages.NewService(messages.ServiceConfig{
		Store:       messageStore,
		Broadcaster: hub,
		IDProvider:  idProvider,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	boardsService, err := boards.NewService(boards.ServiceConfig{
		Store:      boardStore,
		Messages:   messageStore,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	gifClient := gifs.NewClient(gifs.ClientConfig{
		APIKey:  appConfig.GiphyAPIKey,
		BaseURL: appConfig.GiphyAPIURL,
		Logger:  logger,
	})

	var blobStore uploads.BlobStore
	if appConfig.UploadsDir != "" {
		diskStore, err := uploads.NewDiskStore(appConfig.UploadsDir)
		if err != nil {
			return err
		}
		blobStore = diskStore
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: tokenManager,
		Users:        usersService,
		Boards:       boardsService,
		Messages:     messagesService,
		Gifs:         gifClient,
		Blobs:        blobStore,
		UploadsDir:   appConfig.UploadsDir,
		Socket:       socketHandler,
		ClientOrigin: appConfig.ClientOrigin,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Package main initializes and starts the ImageHub HTTP server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/iamlokanath/imagehub/internal/config"
	"github.com/iamlokanath/imagehub/internal/db"
	"github.com/iamlokanath/imagehub/internal/filestore"
	"github.com/iamlokanath/imagehub/internal/logger"
	"github.com/iamlokanath/imagehub/internal/repository"
	"github.com/iamlokanath/imagehub/internal/server/handler/http"
	"github.com/iamlokanath/imagehub/internal/service"
	"github.com/iamlokanath/imagehub/internal/token"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("token signing secret is required (flag -s or JWT_SECRET)")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize the binary store for uploaded images.
	files, err := filestore.NewDiskStore(options.UploadDir)
	if err != nil {
		zapLogger.Fatal("cannot init upload dir", zap.Error(err))
	}

	// Sweep upload files that lost their record.
	db.StartOrphanFileCleaner(context.Background(), postgresDB,
		options.UploadDir,
		time.Hour,    // interval
		24*time.Hour, // retention
		zapLogger,
	)

	// Initialize repositories for users and images.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	imageRepo := repository.NewPostgresImageRepository(postgresDB)

	// Initialize business-logic services.
	tokens := token.NewIssuer([]byte(options.JWTSecret), time.Duration(options.TokenTTLMinutes)*time.Minute)
	authService := service.NewAuthService(userRepo, tokens)
	imageService := service.NewImageService(imageRepo, files)

	// Create HTTP handlers for auth and image endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	imagesHandler := &http.ImagesHandler{ImageService: imageService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, imagesHandler, authService, zapLogger, options.UploadDir)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

package main

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"

	"consumerwise/internal/auth"
	"consumerwise/internal/client"
	"consumerwise/internal/configuration"
	"consumerwise/internal/database"
	"consumerwise/internal/feed"
	"consumerwise/internal/logger"
	"consumerwise/internal/server"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-redis/redis/v9"
)

func main() {
	if err := runApp(); err != nil {
		time.Sleep(10 * time.Second)
		os.Exit(1)
	}
}

func runApp() error {
	rand.Seed(time.Now().UnixNano())

	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelInfo, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("consumerwise.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(appContext); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()
	db := database.Database{Database: dbConn.Database(database.Name)}

	redisOpts, err := redis.ParseURL(config.RedisURI)
	if err != nil {
		appLogger.Error("Error parsing Redis URI:", err)
		return err
	}
	appLogger.Info("Connecting to Redis at", redisOpts.Addr)
	rdb := redis.NewClient(redisOpts)
	defer func() {
		if err := rdb.Close(); err != nil {
			appLogger.Error("Error closing Redis client:", err)
		}
	}()

	var cdn *cloudinary.Cloudinary
	if config.CloudinaryURL != "" {
		cdn, err = cloudinary.NewFromURL(config.CloudinaryURL)
		if err != nil {
			appLogger.Error("Error creating Cloudinary client:", err)
			return err
		}
	} else {
		appLogger.Info("No cloudinary_url configured, image uploads are disabled")
	}

	srv := server.Server{
		DB:  db,
		RDB: rdb,
		Client: client.Client{
			Client: &http.Client{Timeout: 15 * time.Second},
			FCMKey: config.FCMKey,
			CDN:    cdn,
			Logger: appLogger,
		},
		Logger:   appLogger,
		Verifier: auth.Verifier{Identities: db},
		Resolver: auth.Resolver{Profiles: db, Logger: appLogger},
		Issuer:   auth.Issuer{Key: config.AuthSecretKey, TTL: config.SessionDuration},
		Feed:     feed.Publisher{RDB: rdb, Logger: appLogger},
	}

	// No WriteTimeout: the watch endpoints hold event streams open for as
	// long as the client stays connected.
	httpSrv := &http.Server{
		Handler:     srv.Router(),
		Addr:        config.ServerAddress,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 15 * time.Second,
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}

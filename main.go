package main

import (
	"context"
	"log"
	"time"

	"medibot/adapters/postgres"
	"medibot/internal"
	"medibot/internal/config"
	"medibot/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// The run archive is optional
	if appConfig.Database.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := postgres.Connect(ctx, appConfig.Database.URL)
		if err == nil {
			err = appContainer.InitWithDatabase(ctx, db)
		}
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
	}

	if err := appContainer.Init(); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if err := appContainer.NewUI().Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

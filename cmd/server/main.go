package main

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/handlers"
	"github.com/ukydev/fleet-maintenance/internal/ingest"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.Mongo.Database)
	assets := &db.MongoCollection{Collection: database.Collection("assets")}
	records := &db.MongoCollection{Collection: database.Collection("service_records")}
	events := &db.MongoCollection{Collection: database.Collection("events")}
	actions := &db.MongoCollection{Collection: database.Collection("actions")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	authService, err := auth.NewService()
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)

	authHandler := handlers.NewAuthHandler(authService, users)
	dashboardHandler := handlers.NewDashboardHandler(assets, records, events, users)
	actionHandler := handlers.NewActionHandler(actions)

	router := mux.NewRouter()
	handlers.SetupRoutes(router, authHandler, dashboardHandler, actionHandler, authMiddleware)

	if cfg.MQTT.Enabled {
		listener := ingest.NewUsageListener(cfg.MQTT, assets)
		if err := listener.Start(); err != nil {
			log.Fatalf("Failed to start usage listener: %v", err)
		}
		defer listener.Stop()
	}

	log.WithField("port", cfg.Server.Port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, router))
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/middleware"
	"github.com/shiyao1122/activity-system/models"
	"github.com/shiyao1122/activity-system/routes"
)

func main() {
	// Load .env if present without overwriting already-set variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	if strings.ToLower(os.Getenv("ENV")) == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}

	for _, envVar := range []string{"DB_HOST", "DB_USER", "DB_NAME", "API_SECRET_KEY", "ADMIN_API_KEY"} {
		if os.Getenv(envVar) == "" {
			logrus.Fatalf("required environment variable %s is not set", envVar)
		}
	}

	db, err := database.Connect()
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}

	// Auto-migrate only in development to avoid accidental production schema
	// changes.
	if strings.ToLower(os.Getenv("ENV")) == "development" {
		logrus.Info("development mode, running auto-migration")
		if err := database.RunMigrationsWithBackup(db,
			&models.Activity{},
			&models.Task{},
			&models.UserActivity{},
			&models.TaskLog{},
			&models.UserRelation{},
		); err != nil {
			logrus.WithError(err).Fatal("failed to migrate database")
		}
	} else {
		logrus.Info("production mode, skipping auto-migration")
	}

	router := routes.InitRouter()

	// Logging -> security headers -> request id -> max body -> timeout -> recovery
	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(
						middleware.RecoveryMiddleware(router),
					),
				),
			),
		),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}
	logrus.Info("server exited")
}

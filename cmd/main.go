package main

import (
	"context"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"talentscout/domain"
	"talentscout/infrastructure"
	"talentscout/interfaces"
	"talentscout/worker"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	// Persistence: MySQL when DB_DSN is configured, otherwise an in-memory
	// demo store that forgets everything on restart.
	var store domain.Store
	if os.Getenv("DB_DSN") != "" {
		mysqlStore, err := infrastructure.NewMySQLStore()
		if err != nil {
			log.Fatalf("database setup failed: %v", err)
		}
		store = mysqlStore
	} else {
		log.Warn("DB_DSN is not set: using in-memory store, data will not survive restarts")
		store = infrastructure.NewMemoryStore()
	}

	gemini := infrastructure.NewGeminiClient()
	assessor := worker.NewAssessor(store, gemini)

	// Batch assessment runs through a queue drained by a single consumer:
	// RabbitMQ when a broker is configured, an in-process channel otherwise.
	var queue worker.Queue
	if os.Getenv("RABBITMQ_URL") != "" {
		rmq, err := infrastructure.NewRabbitMQ()
		if err != nil {
			log.Fatalf("queue setup failed: %v", err)
		}
		defer rmq.Close()

		err = rmq.ConsumeTasks(func(task domain.AssessmentTask) {
			if err := assessor.Handle(ctx, task); err != nil {
				log.Errorf("assessment task failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("queue consumer setup failed: %v", err)
		}
		queue = rmq
	} else {
		log.Info("RABBITMQ_URL is not set: using in-process assessment queue")
		taskQueue := worker.NewTaskQueue(0)
		go taskQueue.Run(ctx, assessor)
		queue = taskQueue
	}

	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	interfaces.NewHTTPHandler(router, store, gemini, assessor, queue)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("server running on http://localhost:%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

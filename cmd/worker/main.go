package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"smsdispatch/internal/cache"
	"smsdispatch/internal/config"
	"smsdispatch/internal/gateway"
	"smsdispatch/internal/queue"
	"smsdispatch/internal/repository"
	"smsdispatch/internal/scheduler"
	"smsdispatch/internal/service"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Connected to database")

	dispatchRepo := repository.NewDispatchRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	gatewayClient := gateway.NewClient(cfg.Gateway)

	var publisher service.EventPublisher
	if cfg.RabbitMQ.Enabled {
		conn, err := queue.NewConnection(cfg.GetRabbitMQURL())
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, dispatch events disabled: %v", err)
		} else {
			defer conn.Close()
			pub, err := queue.NewPublisher(conn, cfg.RabbitMQ.QueueName)
			if err != nil {
				log.Printf("Warning: failed to create publisher, dispatch events disabled: %v", err)
			} else {
				publisher = pub
				log.Println("✅ Connected to RabbitMQ")
			}
		}
	}

	var outcomeCache service.OutcomeCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		outcomeCache = cache.NewRedisCache(rdb, cfg.Redis.TTL)
		log.Println("✅ Outcome cache enabled")
	}

	dispatchSvc := service.NewDispatchService(
		dispatchRepo, customerRepo, gatewayClient,
		publisher, outcomeCache,
		cfg.SMS.BatchSize, cfg.SMS.MaxLength,
	)

	sched, err := scheduler.New(cfg.Scheduler.Interval, func(ctx context.Context) {
		processed, total, err := dispatchSvc.ProcessDue(ctx, time.Now())
		if err != nil {
			log.Printf("Scheduler pass failed: %v", err)
			return
		}
		if total > 0 {
			log.Printf("Scheduler pass: %d/%d due records dispatched", processed, total)
		}
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	sched.Start()
	log.Printf("✅ Worker started (poll interval: %s)", cfg.Scheduler.Interval)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down gracefully...")
	sched.Stop()
	log.Println("✅ Worker stopped")
}

package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"smsdispatch/internal/ai"
	"smsdispatch/internal/cache"
	"smsdispatch/internal/config"
	"smsdispatch/internal/gateway"
	"smsdispatch/internal/handler"
	"smsdispatch/internal/middleware"
	"smsdispatch/internal/queue"
	"smsdispatch/internal/repository"
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

	// Repositories
	dispatchRepo := repository.NewDispatchRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	// Gateway client
	gatewayClient := gateway.NewClient(cfg.Gateway)

	// Optional dispatch event publisher
	var publisher service.EventPublisher
	queueURL := ""
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
				queueURL = cfg.GetRabbitMQURL()
				log.Println("✅ Connected to RabbitMQ")
			}
		}
	}

	// Optional outcome cache
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

	// Services
	dispatchSvc := service.NewDispatchService(
		dispatchRepo, customerRepo, gatewayClient,
		publisher, outcomeCache,
		cfg.SMS.BatchSize, cfg.SMS.MaxLength,
	)
	maskingSvc := service.NewMaskingService()
	healthSvc := service.NewHealthService(db, queueURL, "1.0.0")

	// Optional AI assistant
	var assistant *ai.Service
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		log.Printf("Warning: AI assistant disabled: %v", err)
	} else {
		assistant = ai.NewService(provider)
		log.Printf("✅ AI assistant enabled (provider: %s)", cfg.AI.Provider)
	}

	// Handlers
	smsHandler := handler.NewSMSHandler(
		dispatchSvc, assistant, customerRepo, maskingSvc,
		cfg.SMS.MaxLength, cfg.SMS.MaxLengthExtended,
	)
	healthHandler := handler.NewHealthHandler(healthSvc)

	// Router
	router := mux.NewRouter()
	router.Use(middleware.Recovery)

	router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sms/generate", smsHandler.HandleGenerate).Methods("POST")
	api.HandleFunc("/sms/validate", smsHandler.HandleValidate).Methods("POST")
	api.HandleFunc("/sms/send", smsHandler.HandleSend).Methods("POST")
	api.HandleFunc("/sms/schedule", smsHandler.HandleSchedule).Methods("POST")
	api.HandleFunc("/sms/statistics", smsHandler.HandleStatistics).Methods("GET")
	api.HandleFunc("/query/parse", smsHandler.HandleParseQuery).Methods("POST")
	api.HandleFunc("/customers/query", smsHandler.HandleQueryCustomers).Methods("POST")

	port := ":" + cfg.Server.Port
	log.Printf("🚀 API Server starting on port %s", port)
	log.Printf("📍 Health check: http://localhost%s/health", port)
	log.Printf("🌍 Environment: %s", cfg.Env)

	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

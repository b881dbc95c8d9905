package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/capogreco/string.assembly.fm-sub005/internal/bank"
	"github.com/capogreco/string.assembly.fm-sub005/internal/config"
	"github.com/capogreco/string.assembly.fm-sub005/internal/distribute"
	"github.com/capogreco/string.assembly.fm-sub005/internal/ensemble"
	"github.com/capogreco/string.assembly.fm-sub005/internal/handler"
	"github.com/capogreco/string.assembly.fm-sub005/internal/middleware"
	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
	"github.com/capogreco/string.assembly.fm-sub005/internal/state"
	"github.com/capogreco/string.assembly.fm-sub005/internal/worker"
	ws "github.com/capogreco/string.assembly.fm-sub005/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client; without Redis the bank store falls back to
	// an in-process map and autosave is disabled.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	redisAvailable := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available, banks are in-memory only: %v", err)
		redisAvailable = false
	}

	var bankStore *bank.Store
	if redisAvailable {
		bankStore = bank.NewStore(redisClient)
	} else {
		bankStore = bank.NewStore(nil)
	}

	// Random source for distribution, harmonic ratios and timing jitter.
	seed := cfg.Ensemble.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Initialize validator
	validate := validator.New()

	// Performance state and coordination
	performanceState := state.New(model.DefaultParams())
	hub := ws.NewHub()
	coordinator := ensemble.New(
		performanceState,
		bankStore,
		hub,
		distribute.ParseStrategy(cfg.Ensemble.Strategy),
		rng,
	)
	hub.SetController(coordinator)
	coordinator.SetDefaultTransition(model.TransitionConfig{
		Duration:       cfg.Transition.Duration,
		Stagger:        cfg.Transition.Stagger,
		DurationSpread: cfg.Transition.DurationSpread,
		Glissando:      cfg.Transition.Glissando,
	})

	// Initialize handlers
	performanceHandler := handler.NewPerformanceHandler(coordinator, validate)
	bankHandler := handler.NewBankHandler(coordinator, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"peers":  len(hub.Connected()),
		})
	})

	// Operator API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	api.Put("/chord", performanceHandler.SetChord)
	api.Put("/chord/expression", performanceHandler.SetExpression)
	api.Delete("/chord/expression/:noteName", performanceHandler.ClearExpression)

	api.Put("/harmonics", performanceHandler.SetHarmonics)
	api.Post("/harmonics/toggle", performanceHandler.ToggleHarmonic)

	api.Post("/send", performanceHandler.Send)
	api.Post("/power", performanceHandler.Power)
	api.Get("/ensemble", performanceHandler.Ensemble)

	api.Post("/banks/:id/save", bankHandler.Save)
	api.Post("/banks/:id/load", bankHandler.Load)

	// Peer WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/synth", websocket.New(func(c *websocket.Conn) {
		synthID := c.Query("id")
		if synthID == "" {
			synthID = uuid.New().String()
		}
		hub.HandleConnection(c, synthID)
	}))

	// Autosave worker (needs Redis for the asynq queue)
	if redisAvailable && cfg.Ensemble.AutosaveMinutes > 0 {
		go startAutosave(cfg, coordinator, bankStore)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Controller starting on %s (strategy=%s, seed=%d)", addr, cfg.Ensemble.Strategy, seed)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// startAutosave runs the asynq worker server and enqueues a snapshot task
// on the configured interval.
func startAutosave(cfg *config.Config, coordinator *ensemble.Coordinator, bankStore *bank.Store) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Ensemble.AutosaveMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := asynqClient.Enqueue(worker.NewSnapshotTask(), asynq.Queue("ensemble")); err != nil {
				log.Printf("Failed to enqueue autosave: %v", err)
			}
		}
	}()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			"ensemble": 1,
		},
	})

	snapshotWorker := worker.NewSnapshotWorker(coordinator, bankStore)

	mux := asynq.NewServeMux()
	mux.HandleFunc(worker.TaskTypeSnapshot, snapshotWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}

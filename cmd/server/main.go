package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medassist-backend/internal/api"
	"medassist-backend/internal/completion"
	"medassist-backend/internal/config"
	"medassist-backend/internal/crypto"
	"medassist-backend/internal/handlers"
	"medassist-backend/internal/services"
	"medassist-backend/internal/store"
	"medassist-backend/internal/store/memory"
	"medassist-backend/internal/store/postgres"
)

func main() {
	log.Println("Starting MedAssist Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	box, err := crypto.NewBox(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("FATAL: Failed to create AES-GCM cipher: %v", err)
	}
	log.Println("AES-GCM cipher initialized.")

	// 2. Initialize Store
	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		st = memory.NewMemoryStore()
		log.Println("WARN: Using in-memory store, data is lost on restart.")
	default:
		dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
		}
		defer dbpool.Close()

		if err := dbpool.Ping(dbCtx); err != nil {
			log.Fatalf("FATAL: Unable to ping database: %v\n", err)
		}
		log.Println("Database connection pool established and pinged successfully.")

		pgStore := postgres.NewPostgresStore(dbpool, box)
		if err := pgStore.Migrate(dbCtx); err != nil {
			log.Fatalf("FATAL: Failed to apply database schema: %v", err)
		}
		dbCancel()
		st = pgStore
		log.Println("Postgres store initialized.")
	}

	// 3. Initialize Completion Model
	var completer completion.Completer = completion.Unavailable{}
	if cfg.AI.Enabled() {
		arkCompleter, err := completion.NewArkCompleter(context.Background(), cfg.AI)
		if err != nil {
			log.Printf("WARN: Failed to initialize Ark chat model, chat will answer with the fallback reply: %v", err)
		} else {
			completer = arkCompleter
			log.Printf("Ark chat model %q initialized.", cfg.AI.Model)
		}
	} else {
		log.Println("WARN: ARK credentials or ARK_MODEL not set, chat will answer with the fallback reply.")
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(st, cfg)
	chatService := services.NewChatService(st, completer, cfg.AI.Timeout)
	doctorService := services.NewDoctorService(st)
	appointmentService := services.NewAppointmentService(st)
	log.Println("Services initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService),
		ChatHandler:        handlers.NewChatHandlers(chatService),
		DoctorHandler:      handlers.NewDoctorHandlers(doctorService),
		AppointmentHandler: handlers.NewAppointmentHandlers(appointmentService),
		Config:             cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	// Chat requests wait on the completion model, so writes get the request timeout plus slack
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: api.RequestTimeout(cfg.AI.Timeout) + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
		log.Fatal("Forcing shutdown due to error.")
	}

	log.Println("Server shutdown complete.")
}

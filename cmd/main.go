package main

import (
	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/profile"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/users"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func loadLocalizer(dir string) *localization.Localizer {
	var (
		l   *localization.Localizer
		err error
	)
	if dir != "" {
		l, err = localization.NewLocalizer(dir)
	} else {
		l, err = localization.NewBundled()
	}
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	return l
}

func main() {
	log.Println("Starting ComplaintDesk Backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Ініціалізація залежностей
	s, err := storage.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect storage: %v", err)
	}
	defer s.Close()

	// 2. Міграції (Створення таблиць)
	if err := storage.Migrate(s.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// 3. Сервіси
	complaints := complaint.NewService(s,
		storage.Complaints(s), storage.Comments(s), storage.ChatMessages(s),
		profile.NewJoiner(s))
	hub := chathub.NewManagerService(s.Feed, complaints)
	go hub.Run(ctx) // Головний диспетчер

	// 4. Налаштування Gin та роутингу
	h := handler.NewHandler(hub, complaints, users.NewService(s), loadLocalizer(cfg.LocalesDir))
	r := handler.NewRouter(h, auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL), s, cfg.CORSOrigins)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("INFO: Listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Graceful shutdown failed: %v", err)
	}
}

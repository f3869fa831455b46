package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatlyhq/chatly/config"
	"github.com/chatlyhq/chatly/db"
	"github.com/chatlyhq/chatly/realtime"
	"github.com/chatlyhq/chatly/services"
)

type Server struct {
	Config                 *config.Config
	AuthRepository         db.AuthRepository
	ConversationRepository db.ConversationRepository
	NotificationRepository db.NotificationRepository
	TokenStore             db.TokenStore
	AuthService            services.AuthService
	ConversationService    services.ConversationService
	MessageService         services.MessageService
	MediaService           services.MediaService
	Hub                    *realtime.Hub
	DB                     db.GormDB
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() {
	port := s.Config.Port
	if port == 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.setupRouter(),
	}

	go func() {
		log.Printf("listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
}

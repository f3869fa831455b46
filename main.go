package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/chatlyhq/chatly/config"
	"github.com/chatlyhq/chatly/db"
	"github.com/chatlyhq/chatly/realtime"
	"github.com/chatlyhq/chatly/server"
	"github.com/chatlyhq/chatly/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gormDB := db.GetDB(conf)

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis unreachable: %v", err)
	}

	authRepo := db.NewAuthRepo(gormDB)
	convRepo := db.NewConversationRepo(gormDB)
	messageRepo := db.NewMessageRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)
	outboxRepo := db.NewOutboxRepo(gormDB)
	tokenStore := db.NewTokenStore(rdb)

	mediaService := services.NewMediaService(conf)
	pushService := services.NewPushService(conf)
	authService := services.NewAuthService(authRepo, tokenStore, mediaService, conf)
	conversationService := services.NewConversationService(authRepo, convRepo, messageRepo, mediaService, conf)
	messageService := services.NewMessageService(authRepo, convRepo, messageRepo, mediaService, pushService, conf)

	hub := realtime.NewHub(rdb, convRepo)

	dispatcher := services.NewOutboxDispatcher(outboxRepo, realtime.NewRedisPublisher(rdb))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	s := &server.Server{
		Config:                 conf,
		AuthRepository:         authRepo,
		ConversationRepository: convRepo,
		NotificationRepository: notificationRepo,
		TokenStore:             tokenStore,
		AuthService:            authService,
		ConversationService:    conversationService,
		MessageService:         messageService,
		MediaService:           mediaService,
		Hub:                    hub,
		DB:                     *gormDB,
	}

	s.Start()
}

package services

import (
	"context"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"

	"github.com/chatlyhq/chatly/config"
)

// PushService sends a mobile push notification to a device token.
type PushService interface {
	SendPush(deviceToken, title, body string, data map[string]string) error
}

type fcmPushService struct {
	client *messaging.Client
}

// NewPushService initializes Firebase Cloud Messaging. Returns nil (and the
// callers skip pushes) when no credentials file is configured.
func NewPushService(conf *config.Config) PushService {
	if conf.FirebaseCredFile == "" {
		log.Println("firebase credentials not configured, push notifications disabled")
		return nil
	}

	opt := option.WithCredentialsFile(conf.FirebaseCredFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("error initializing Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("error getting Messaging client: %v", err)
		return nil
	}
	return &fcmPushService{client: client}
}

func (s *fcmPushService) SendPush(deviceToken, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	_, err := s.client.Send(context.Background(), message)
	return err
}

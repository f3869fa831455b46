package services

import (
	"encoding/json"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chatlyhq/chatly/config"
	"github.com/chatlyhq/chatly/db"
	apiError "github.com/chatlyhq/chatly/errors"
	"github.com/chatlyhq/chatly/models"
)

// MessageService persists a message and its side effects atomically, after
// checking the sender's membership and classifying any attached file.
type MessageService interface {
	SendMessage(senderID uint, conversationID uuid.UUID, content string, file *multipart.FileHeader) (*models.Message, error)
}

type messageService struct {
	Config      *config.Config
	authRepo    db.AuthRepository
	convRepo    db.ConversationRepository
	messageRepo db.MessageRepository
	media       MediaService
	push        PushService
}

func NewMessageService(authRepo db.AuthRepository, convRepo db.ConversationRepository,
	messageRepo db.MessageRepository, media MediaService, push PushService, conf *config.Config) MessageService {
	return &messageService{
		Config:      conf,
		authRepo:    authRepo,
		convRepo:    convRepo,
		messageRepo: messageRepo,
		media:       media,
		push:        push,
	}
}

func (s *messageService) SendMessage(senderID uint, conversationID uuid.UUID, content string, file *multipart.FileHeader) (*models.Message, error) {
	member, err := s.convRepo.HasActiveMember(conversationID, senderID)
	if err != nil {
		log.Printf("SendMessage membership check error: %v", err)
		return nil, apiError.New("Failed to send message.", 500)
	}
	if !member {
		return nil, apiError.ErrUnauthorized
	}

	if content == "" && file == nil {
		return nil, apiError.New("message requires a body or a file", 400)
	}

	msgType := models.MessageTypeText
	if file != nil {
		if file.Size > models.MaxAttachmentSize {
			return nil, apiError.New("file exceeds the 20 MB limit", 400)
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
		category, ok := models.CategoryForExtension(ext)
		if !ok {
			return nil, apiError.New("unsupported file type", 400)
		}
		msgType = category
	}

	sender, err := s.authRepo.FindUserByID(senderID)
	if err != nil {
		log.Printf("SendMessage sender lookup error: %v", err)
		return nil, apiError.New("Failed to send message.", 500)
	}

	members, err := s.convRepo.ActiveMembers(conversationID)
	if err != nil {
		log.Printf("SendMessage member load error: %v", err)
		return nil, apiError.New("Failed to send message.", 500)
	}

	// The object store is written before the database transaction. If the
	// transaction rolls back the uploaded file is orphaned; reconciliation
	// happens out of band.
	var attachment *models.Attachment
	if file != nil {
		filePath, err := s.media.UploadChatFile(file, msgType)
		if err != nil {
			log.Printf("SendMessage upload error: %v", err)
			return nil, apiError.New("Failed to send message.", 500)
		}
		attachment = &models.Attachment{
			ID:       uuid.New(),
			FilePath: filePath,
			FileType: msgType,
		}
	}

	msg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         senderID,
		Body:           content,
		Type:           msgType,
		CreatedAt:      time.Now(),
	}

	recipients := make([]models.User, 0, len(members))
	for i := range members {
		if members[i].ID != senderID {
			recipients = append(recipients, members[i])
		}
	}

	notifications := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		notifications = append(notifications, models.Notification{
			UserID:         r.ID,
			SenderID:       senderID,
			Content:        content,
			ConversationID: conversationID,
		})
	}

	events, err := s.buildOutboxEvents(msg, attachment, sender, recipients)
	if err != nil {
		log.Printf("SendMessage event encode error: %v", err)
		return nil, apiError.New("Failed to send message.", 500)
	}

	if err := s.messageRepo.SaveMessageTx(msg, attachment, notifications, events); err != nil {
		log.Printf("SendMessage transaction error: %v", err)
		return nil, apiError.New("Failed to send message.", 500)
	}

	if attachment != nil {
		msg.Attachments = []models.Attachment{*attachment}
	}

	go s.pushToRecipients(sender, msg, recipients)

	return msg, nil
}

func (s *messageService) buildOutboxEvents(msg *models.Message, attachment *models.Attachment,
	sender *models.User, recipients []models.User) ([]models.OutboxEvent, error) {
	attachments := []models.AttachmentResource{}
	if attachment != nil {
		attachments = append(attachments, models.AttachmentResource{
			ID:      attachment.ID,
			Type:    attachment.FileType,
			FileURL: s.media.FileURL(attachment.FilePath),
		})
	}

	sentEvent := models.MessageSentEvent{
		Message: models.MessageSentPayload{
			ID:          msg.ID,
			Body:        msg.Body,
			UserID:      msg.UserID,
			CreatedAt:   msg.CreatedAt.Format(time.RFC3339),
			Attachments: attachments,
			User:        &models.MessageSentUser{Name: sender.Name},
		},
	}
	sentPayload, err := json.Marshal(sentEvent)
	if err != nil {
		return nil, err
	}

	events := []models.OutboxEvent{{
		ID:      uuid.New(),
		Channel: models.ChatChannel(msg.ConversationID),
		Payload: sentPayload,
	}}

	for _, r := range recipients {
		notifEvent := models.NotificationEvent{
			SenderName:     sender.Name,
			SenderID:       sender.ID,
			Content:        msg.Body,
			ProfilePicture: profilePictureURL(sender, s.media, s.Config),
			ConversationID: msg.ConversationID,
			CreatedAt:      msg.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		notifPayload, err := json.Marshal(notifEvent)
		if err != nil {
			return nil, err
		}
		events = append(events, models.OutboxEvent{
			ID:      uuid.New(),
			Channel: models.UserNotificationChannel(r.ID),
			Payload: notifPayload,
		})
	}
	return events, nil
}

// pushToRecipients sends a best-effort mobile push after commit. Failures are
// logged only; the durable notification row already exists.
func (s *messageService) pushToRecipients(sender *models.User, msg *models.Message, recipients []models.User) {
	if s.push == nil {
		return
	}
	body := msg.Body
	if body == "" {
		body = "Sent a " + msg.Type
	}
	for _, r := range recipients {
		if r.DeviceToken == "" {
			continue
		}
		err := s.push.SendPush(r.DeviceToken, sender.Name, body, map[string]string{
			"conversation_id": msg.ConversationID.String(),
			"message_id":      msg.ID.String(),
		})
		if err != nil {
			log.Printf("push to user %d failed: %v", r.ID, err)
		}
	}
}

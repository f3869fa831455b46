package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatlyhq/chatly/config"
	"github.com/chatlyhq/chatly/db"
	apiError "github.com/chatlyhq/chatly/errors"
	"github.com/chatlyhq/chatly/models"
)

// ConversationService resolves and reads conversations. Creation is
// idempotent: an exact-membership match returns the existing conversation
// instead of creating a duplicate.
type ConversationService interface {
	CreatePrivateConversation(requesterID, targetID uint, name string) (*models.Conversation, bool, error)
	CreateGroupConversation(requesterID uint, name string, userIDs []uint) (*models.Conversation, bool, error)
	ListConversations(userID uint) ([]models.ConversationListItem, error)
	GetMessages(userID uint, conversationID uuid.UUID) ([]models.MessageResource, error)
}

type conversationService struct {
	Config      *config.Config
	authRepo    db.AuthRepository
	convRepo    db.ConversationRepository
	messageRepo db.MessageRepository
	media       MediaService
}

func NewConversationService(authRepo db.AuthRepository, convRepo db.ConversationRepository,
	messageRepo db.MessageRepository, media MediaService, conf *config.Config) ConversationService {
	return &conversationService{
		Config:      conf,
		authRepo:    authRepo,
		convRepo:    convRepo,
		messageRepo: messageRepo,
		media:       media,
	}
}

func (s *conversationService) CreatePrivateConversation(requesterID, targetID uint, name string) (*models.Conversation, bool, error) {
	if requesterID == targetID {
		return nil, false, apiError.New("cannot start a conversation with yourself", 400)
	}

	target, err := s.authRepo.FindUserByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apiError.New("selected user does not exist", 400)
		}
		log.Printf("CreatePrivateConversation lookup error: %v", err)
		return nil, false, apiError.ErrInternalServerError
	}

	pairKey := models.PrivatePairKey(requesterID, targetID)
	if existing, err := s.convRepo.FindPrivateByPairKey(pairKey); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("CreatePrivateConversation dedup error: %v", err)
		return nil, false, apiError.ErrInternalServerError
	}

	if name == "" {
		name = target.Name
	}
	conv := &models.Conversation{
		ID:      uuid.New(),
		Name:    name,
		Type:    models.ConversationTypePrivate,
		PairKey: &pairKey,
	}
	if err := s.convRepo.CreateWithMembers(conv, requesterID, []uint{requesterID, targetID}); err != nil {
		// a concurrent request may have won the pair_key unique index
		if existing, findErr := s.convRepo.FindPrivateByPairKey(pairKey); findErr == nil {
			return existing, false, nil
		}
		log.Printf("CreatePrivateConversation create error: %v", err)
		return nil, false, apiError.ErrInternalServerError
	}
	return conv, true, nil
}

func (s *conversationService) CreateGroupConversation(requesterID uint, name string, userIDs []uint) (*models.Conversation, bool, error) {
	others := dedupeIDs(userIDs, requesterID)
	if len(others) < 2 {
		return nil, false, apiError.New("a group conversation needs at least 2 other members", 400)
	}

	users, err := s.authRepo.FindUsersByIDs(others)
	if err != nil {
		log.Printf("CreateGroupConversation lookup error: %v", err)
		return nil, false, apiError.ErrInternalServerError
	}
	if len(users) != len(others) {
		return nil, false, apiError.New("one or more selected users are invalid", 400)
	}

	memberIDs := append([]uint{requesterID}, others...)
	if existing, err := s.convRepo.FindGroupByExactMembers(memberIDs); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("CreateGroupConversation dedup error: %v", err)
		return nil, false, apiError.ErrInternalServerError
	}

	conv := &models.Conversation{
		ID:   uuid.New(),
		Name: name,
		Type: models.ConversationTypeGroup,
	}
	if err := s.convRepo.CreateWithMembers(conv, requesterID, memberIDs); err != nil {
		log.Printf("CreateGroupConversation create error: %v", err)
		return nil, false, apiError.ErrInternalServerError
	}
	return conv, true, nil
}

func (s *conversationService) ListConversations(userID uint) ([]models.ConversationListItem, error) {
	convs, err := s.convRepo.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.ConversationListItem, 0, len(convs))
	for i := range convs {
		conv := &convs[i]
		item := models.ConversationListItem{
			ID:   conv.ID,
			Name: conv.Name,
			Type: conv.Type,
		}

		members, err := s.convRepo.ActiveMembers(conv.ID)
		if err != nil {
			return nil, err
		}
		for j := range members {
			if members[j].ID != userID {
				item.OtherUser = &models.UserSummary{
					ID:             members[j].ID,
					Name:           members[j].Name,
					ProfilePicture: profilePictureURL(&members[j], s.media, s.Config),
				}
				break
			}
		}

		last, err := s.convRepo.LastMessage(conv.ID)
		if err == nil {
			item.LastMessage = &models.LastMessageInfo{
				Content:   last.Body,
				CreatedAt: last.CreatedAt,
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		items = append(items, item)
	}
	return items, nil
}

func (s *conversationService) GetMessages(userID uint, conversationID uuid.UUID) ([]models.MessageResource, error) {
	member, err := s.convRepo.HasActiveMember(conversationID, userID)
	if err != nil {
		log.Printf("GetMessages membership check error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if !member {
		return nil, apiError.ErrUnauthorized
	}

	messages, err := s.messageRepo.ListByConversation(conversationID)
	if err != nil {
		log.Printf("GetMessages list error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	resources := make([]models.MessageResource, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		res := models.MessageResource{
			ID:        msg.ID,
			Body:      msg.Body,
			UserID:    msg.UserID,
			CreatedAt: msg.CreatedAt.Format("2006-01-02 15:04:05"),
			User: models.UserSummary{
				ID:             msg.Sender.ID,
				Name:           msg.Sender.Name,
				ProfilePicture: profilePictureURL(&msg.Sender, s.media, s.Config),
			},
			Attachments: make([]models.AttachmentResource, 0, len(msg.Attachments)),
		}
		for _, att := range msg.Attachments {
			res.Attachments = append(res.Attachments, models.AttachmentResource{
				ID:      att.ID,
				Type:    att.FileType,
				FileURL: s.media.FileURL(att.FilePath),
			})
		}
		resources = append(resources, res)
	}
	return resources, nil
}

// dedupeIDs removes duplicates and the requester from the target id list.
func dedupeIDs(ids []uint, requesterID uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == requesterID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

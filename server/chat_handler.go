package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errs "github.com/chatlyhq/chatly/errors"
	"github.com/chatlyhq/chatly/models"
	"github.com/chatlyhq/chatly/server/response"
)

func (s *Server) handleSearchUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("search query is required", http.StatusBadRequest))
			return
		}

		users, err := s.AuthService.SearchUsers(query)
		if err != nil {
			log.Printf("user search error: %v", err)
			response.JSON(c, "An error occurred while searching users", http.StatusInternalServerError,
				gin.H{"users": []models.UserResponse{}, "total": 0}, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"users": users, "total": len(users)}, nil)
	}
}

func (s *Server) handleGetConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		conversations, err := s.ConversationService.ListConversations(userID)
		if err != nil {
			log.Printf("conversation list error: %v", err)
			response.JSON(c, "could not load conversations", http.StatusInternalServerError,
				gin.H{"conversations": []models.ConversationListItem{}}, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"conversations": conversations}, nil)
	}
}

type createConversationRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Name   string `json:"name"`
}

func (s *Server) handleCreateConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		userID := c.GetUint("userID")
		conv, created, err := s.ConversationService.CreatePrivateConversation(userID, req.UserID, req.Name)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		if !created {
			response.JSON(c, "Conversation already exists", http.StatusOK, gin.H{"conversation_id": conv.ID}, nil)
			return
		}
		response.JSON(c, "Conversation created successfully", http.StatusCreated, gin.H{"conversation_id": conv.ID}, nil)
	}
}

type createGroupConversationRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	UserIDs []uint `json:"user_ids" binding:"required,min=2"`
}

func (s *Server) handleCreateGroupConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createGroupConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		userID := c.GetUint("userID")
		conv, created, err := s.ConversationService.CreateGroupConversation(userID, req.Name, req.UserIDs)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		if !created {
			response.JSON(c, "Similar group conversation already exists", http.StatusOK, gin.H{"conversation_id": conv.ID}, nil)
			return
		}
		response.JSON(c, "Group conversation created successfully", http.StatusCreated, gin.H{"conversation_id": conv.ID}, nil)
	}
}

func (s *Server) handleGetMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid conversation id", http.StatusBadRequest))
			return
		}

		userID := c.GetUint("userID")
		messages, svcErr := s.ConversationService.GetMessages(userID, conversationID)
		if svcErr != nil {
			response.HandleErrors(c, svcErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"messages": messages}, nil)
	}
}

func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid conversation id", http.StatusBadRequest))
			return
		}

		content := c.PostForm("content")
		file, _ := c.FormFile("file")

		userID := c.GetUint("userID")
		msg, svcErr := s.MessageService.SendMessage(userID, conversationID, content, file)
		if svcErr != nil {
			response.HandleErrors(c, svcErr)
			return
		}

		attachments := make([]models.AttachmentResource, 0, len(msg.Attachments))
		for _, att := range msg.Attachments {
			attachments = append(attachments, models.AttachmentResource{
				ID:      att.ID,
				Type:    att.FileType,
				FileURL: s.MediaService.FileURL(att.FilePath),
			})
		}
		response.JSON(c, "Message sent successfully", http.StatusCreated, gin.H{
			"id":          msg.ID,
			"body":        msg.Body,
			"type":        msg.Type,
			"created_at":  msg.CreatedAt,
			"attachments": attachments,
		}, nil)
	}
}

func (s *Server) handleGetNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		notifications, err := s.NotificationRepository.ListForUser(userID, 50)
		if err != nil {
			log.Printf("notification list error: %v", err)
			response.JSON(c, "could not load notifications", http.StatusInternalServerError,
				gin.H{"notifications": []models.Notification{}}, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"notifications": notifications}, nil)
	}
}

func (s *Server) handleMarkNotificationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid notification id", http.StatusBadRequest))
			return
		}
		userID := c.GetUint("userID")
		if err := s.NotificationRepository.MarkRead(userID, uint(notificationID)); err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "notification marked read", http.StatusOK, nil, nil)
	}
}

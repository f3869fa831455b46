package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	errs "github.com/chatlyhq/chatly/errors"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Second, Limit: 10})
	limitSendRate := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errs.ErrorHandler,
		KeyFunc:      senderKeyFunc,
	})

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", s.handleLogin())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.POST("/me/device-token", s.handleUpdateDeviceToken())
	authorized.GET("/users/search", s.handleSearchUsers())
	authorized.GET("/conversations", s.handleGetConversations())
	authorized.POST("/conversations", s.handleCreateConversation())
	authorized.POST("/conversations/group", s.handleCreateGroupConversation())
	authorized.GET("/conversations/:id/messages", s.handleGetMessages())
	authorized.POST("/conversations/:id/messages", limitSendRate, s.handleSendMessage())
	authorized.GET("/notifications", s.handleGetNotifications())
	authorized.PUT("/notifications/:id/read", s.handleMarkNotificationRead())
	authorized.GET("/ws", s.handleWebSocket())
}

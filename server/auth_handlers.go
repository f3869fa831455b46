package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/chatlyhq/chatly/errors"
	"github.com/chatlyhq/chatly/models"
	"github.com/chatlyhq/chatly/server/response"
)

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		var profilePath string
		file, handler, err := c.Request.FormFile("profile_image")
		if err == nil {
			file.Close()
			profilePath, err = s.MediaService.UploadProfileImage(handler)
			if err != nil {
				log.Printf("profile image upload failed: %v", err)
				response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
				return
			}
		} else if err != http.ErrMissingFile {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		user := models.User{
			Name:           c.PostForm("name"),
			Email:          c.PostForm("email"),
			Password:       c.PostForm("password"),
			ProfilePicture: profilePath,
		}
		if user.Name == "" || user.Email == "" || user.Password == "" {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("name, email and password are required", http.StatusBadRequest))
			return
		}

		created, err := s.AuthService.SignupUser(&user)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		response.JSON(c, "Signup successful", http.StatusCreated, models.UserResponse{
			ID:             created.ID,
			Name:           created.Name,
			Email:          created.Email,
			ProfilePicture: created.ProfilePicture,
		}, nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginRequest models.LoginRequest
		if err := c.ShouldBindJSON(&loginRequest); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		loginResponse, apiErr := s.AuthService.LoginUser(&loginRequest)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, loginResponse, nil)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := c.GetString("access_token")
		if accessToken == "" {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		if err := s.AuthService.LogoutUser(c.Request.Context(), accessToken); err != nil {
			log.Printf("logout failed: %v", err)
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "Logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		user, err := s.AuthService.GetUserProfile(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "profile retrieved", http.StatusOK, models.UserResponse{
			ID:             user.ID,
			Name:           user.Name,
			Email:          user.Email,
			ProfilePicture: user.ProfilePicture,
		}, nil)
	}
}

func (s *Server) handleUpdateDeviceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DeviceTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")
		if err := s.AuthService.UpdateDeviceToken(userID, req.DeviceToken); err != nil {
			log.Printf("device token update failed: %v", err)
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "device token saved", http.StatusOK, nil, nil)
	}
}

package services

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/chatlyhq/chatly/config"
	"github.com/chatlyhq/chatly/db"
	apiError "github.com/chatlyhq/chatly/errors"
	"github.com/chatlyhq/chatly/models"
	"github.com/chatlyhq/chatly/services/jwt"
)

// AuthService interface
type AuthService interface {
	SignupUser(user *models.User) (*models.User, error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	LogoutUser(ctx context.Context, accessToken string) error
	GetUserProfile(userID uint) (*models.User, error)
	SearchUsers(query string) ([]models.UserResponse, error)
	UpdateDeviceToken(userID uint, token string) error
}

type authService struct {
	Config     *config.Config
	authRepo   db.AuthRepository
	tokenStore db.TokenStore
	media      MediaService
}

// NewAuthService instantiate an authService
func NewAuthService(authRepo db.AuthRepository, tokenStore db.TokenStore, media MediaService, conf *config.Config) AuthService {
	return &authService{
		Config:     conf,
		authRepo:   authRepo,
		tokenStore: tokenStore,
		media:      media,
	}
}

func (s *authService) SignupUser(user *models.User) (*models.User, error) {
	if err := models.ValidateWhiteSpaces(user); err != nil {
		return nil, apiError.New(err.Error(), 400)
	}
	if err := models.ValidatePassword(user.Password); err != nil {
		return nil, apiError.New(err.Error(), 400)
	}

	if err := s.authRepo.IsEmailExist(user.Email); err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("SignupUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.HashedPassword = string(hashedPassword)
	user.Password = ""

	created, err := s.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("SignupUser error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return created, nil
}

func (s *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	user, err := s.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("invalid email or password", 401)
		}
		log.Printf("LoginUser error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if err := user.VerifyPassword(loginRequest.Password); err != nil {
		return nil, apiError.New("invalid email or password", 401)
	}

	accessToken, err := jwt.GenerateToken(user.ID, s.Config.JWTSecret)
	if err != nil {
		log.Printf("LoginUser token error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if err := s.authRepo.SetUserOnline(user.ID, true); err != nil {
		log.Printf("LoginUser online flag error: %v", err)
	}

	return &models.LoginResponse{
		UserResponse: s.toUserResponse(user),
		AccessToken:  accessToken,
	}, nil
}

func (s *authService) LogoutUser(ctx context.Context, accessToken string) error {
	return s.tokenStore.AddToBlacklist(ctx, accessToken, jwt.AccessTokenValidity)
}

func (s *authService) GetUserProfile(userID uint) (*models.User, error) {
	return s.authRepo.FindUserByID(userID)
}

func (s *authService) SearchUsers(query string) ([]models.UserResponse, error) {
	users, err := s.authRepo.SearchUsersByName(query, 10)
	if err != nil {
		return nil, err
	}
	results := make([]models.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, s.toUserResponse(&users[i]))
	}
	return results, nil
}

func (s *authService) UpdateDeviceToken(userID uint, token string) error {
	return s.authRepo.UpdateDeviceToken(userID, token)
}

func (s *authService) toUserResponse(user *models.User) models.UserResponse {
	return models.UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		ProfilePicture: profilePictureURL(user, s.media, s.Config),
	}
}

// profilePictureURL resolves a stored profile picture path, falling back to
// the default avatar when the user never uploaded one.
func profilePictureURL(user *models.User, media MediaService, conf *config.Config) string {
	if user.ProfilePicture == "" {
		return conf.DefaultAvatarURL
	}
	return media.FileURL(user.ProfilePicture)
}

package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/chatlyhq/chatly/models"
)

type AuthRepository interface {
	CreateUser(user *models.User) (*models.User, error)
	IsEmailExist(email string) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	FindUsersByIDs(ids []uint) ([]models.User, error)
	SearchUsersByName(query string, limit int) ([]models.User, error)
	UpdateDeviceToken(userID uint, token string) error
	SetUserOnline(userID uint, online bool) error
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) CreateUser(user *models.User) (*models.User, error) {
	if err := a.DB.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "could not create user")
	}
	return user, nil
}

func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm count error")
	}
	if count > 0 {
		return errors.New("email already in use")
	}
	return nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := a.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := a.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUsersByIDs(ids []uint) ([]models.User, error) {
	var users []models.User
	if err := a.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "could not load users")
	}
	return users, nil
}

// SearchUsersByName does a case-insensitive contains match on the name.
func (a *authRepo) SearchUsersByName(query string, limit int) ([]models.User, error) {
	var users []models.User
	err := a.DB.Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "user search failed")
	}
	return users, nil
}

func (a *authRepo) UpdateDeviceToken(userID uint, token string) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("device_token", token).Error
}

func (a *authRepo) SetUserOnline(userID uint, online bool) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("online", online).Error
}

package models

import (
	"errors"
	"fmt"

	goval "github.com/go-passwd/validator"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
	"golang.org/x/crypto/bcrypt"
)

// User represents a user of the application
type User struct {
	Model
	Name           string `json:"name" binding:"required,min=2" conform:"trim"`
	Email          string `json:"email" gorm:"unique;not null" binding:"required,email" conform:"trim,lower"`
	Password       string `json:"password,omitempty" gorm:"-" validate:"omitempty,min=6"`
	HashedPassword string `json:"-"`
	ProfilePicture string `json:"profile_picture"`
	DeviceToken    string `json:"-"`
	Online         bool   `json:"online"`

	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// UserResponse is the public shape returned by search and profile endpoints.
type UserResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
}

// UserSummary is the sender block embedded in message payloads.
type UserSummary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	UserResponse
	AccessToken string `json:"access_token"`
}

type DeviceTokenRequest struct {
	DeviceToken string `json:"device_token" binding:"required"`
}

func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(64, errors.New("password cant be more than 64 characters")))
	return passwordValidator.Validate(password)
}

// ValidateWhiteSpaces trims and normalizes string fields per conform tags.
func ValidateWhiteSpaces(data interface{}) error {
	return conform.Strings(data)
}

func TranslateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []error{err}
	}
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans) + "; ")
		errs = append(errs, translatedErr)
	}
	return errs
}

// VerifyPassword verifies the collected password with the user's hashed password
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

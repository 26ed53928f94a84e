package services

import (
	"errors"
	"strings"

	"backend/config"
	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// RegisterUser creates the owner account. The tracker is single user, so a
// second registration is refused once any account exists.
func RegisterUser(email, password, fullName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	var count int64
	if err := config.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("an account already exists")
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:    email,
		Password: hashedPassword,
		FullName: fullName,
		Disabled: false,
	}
	return config.DB.Create(&user).Error
}

// AuthenticateUser checks credentials and returns a signed token.
func AuthenticateUser(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	result := config.DB.Where("email = ? AND disabled = ?", email, false).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", errors.New("user not found or disabled")
		}
		return "", result.Error
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", errors.New("incorrect password")
	}

	return utils.GenerateJWT(user.Email)
}

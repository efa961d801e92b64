package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"smartspend/internal/database"
	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user
func (s *userService) CreateUser(ctx context.Context, email, password, username string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" || password == "" || username == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email, password and username are required")
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		return nil, apperrors.WithMessage(apperrors.ErrFieldTooLong, "username must be at most 30 characters")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, dbError(err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Username:     username,
	}
	if err := db.Create(user).Error; err != nil {
		// a concurrent signup can claim the email between the check and the insert
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, dbError(err)
	}

	return user, nil
}

// Authenticate returns the user whose email and password match. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, dbError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, dbError(err)
	}
	return &user, nil
}

// ResetPassword replaces the password of the user identified by both userID
// and email. Either one not matching the same row fails the reset.
func (s *userService) ResetPassword(ctx context.Context, userID, email, newPassword string) error {
	if userID == "" || email == "" || newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "user id, email and new password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND email = ?", strings.TrimSpace(userID), strings.ToLower(strings.TrimSpace(email))).
		Update("password_hash", string(hashedPassword))
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrIdentityMismatch
	}
	return nil
}

// UpdateUsername changes the display name and returns the updated user.
func (s *userService) UpdateUsername(ctx context.Context, userID, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username cannot be empty")
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		return nil, apperrors.WithMessage(apperrors.ErrFieldTooLong, "username must be at most 30 characters")
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("username", username)
	if result.Error != nil {
		return nil, dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	return s.GetUserByID(ctx, userID)
}

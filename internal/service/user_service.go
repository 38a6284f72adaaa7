package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"go.uber.org/zap"
)

// UserService - идентификация пользователей Telegram
type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(store repository.Store, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: store.Users(),
		logger:   logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	if telegramID == 0 {
		return nil, fmt.Errorf("%w: telegram id is required", ErrValidation)
	}

	existingUser, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storageErr("check existing user", err)
	}

	if existingUser != nil {
		if existingUser.Username == username &&
			existingUser.FirstName == firstName &&
			existingUser.LastName == lastName &&
			existingUser.LanguageCode == languageCode {
			return existingUser, nil
		}

		existingUser.Username = username
		existingUser.FirstName = firstName
		existingUser.LastName = lastName
		existingUser.LanguageCode = languageCode

		if err := s.userRepo.Update(ctx, existingUser); err != nil {
			return nil, storageErr("update user", err)
		}

		s.logger.Info("User updated",
			zap.Int64("user_id", existingUser.ID),
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)

		return existingUser, nil
	}

	user := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LanguageCode: languageCode,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageErr("create user", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return user, nil
}

// Identify возвращает внутренний ID зарегистрированного пользователя
func (s *UserService) Identify(ctx context.Context, telegramID int64) (int64, error) {
	user, err := s.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, fmt.Errorf("%w: telegram user %d is not registered", ErrUnauthorized, telegramID)
	}
	return user.ID, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storageErr("get user by telegram id", err)
	}
	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get user", err)
	}
	return user, nil
}

package service

import (
	"context"
	"strings"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

// UserService covers profile reads and self-service profile edits.
type UserService struct {
	users database.UserRepository
}

func NewUserService(users database.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, displayName, avatar *string) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if displayName != nil {
		name := strings.TrimSpace(*displayName)
		if name == "" || len(name) > 32 {
			return nil, BadRequest("INVALID_DISPLAY_NAME", "display name must be 1-32 characters")
		}
		user.DisplayName = name
	}
	if avatar != nil {
		user.AvatarHash = avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return user, nil
}

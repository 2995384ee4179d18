package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// UserService handles read access to user accounts
type UserService struct {
	db *gorm.DB
}

var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users in registration order and the total count.
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SubscribedTo reports which of authorIDs the follower is subscribed to.
// A nil follower is anonymous and follows nobody.
func (s *UserService) SubscribedTo(ctx context.Context, followerID *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	if followerID == nil || len(authorIDs) == 0 {
		return result, nil
	}

	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id IN ?", *followerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return idSet(ids), nil
}

// idSet parses plucked id columns into a lookup set. Malformed values are skipped.
func idSet(ids []string) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, raw := range ids {
		if id, err := uuid.Parse(raw); err == nil {
			set[id] = true
		}
	}
	return set
}

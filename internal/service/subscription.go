package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// AuthorWithRecipes is one entry of a follower's subscription feed.
type AuthorWithRecipes struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// SubscriptionService manages follower -> author edges
type SubscriptionService struct {
	db *gorm.DB
}

var _ ISubscriptionService = (*SubscriptionService)(nil)

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes the follower follow the author and returns the author.
func (s *SubscriptionService) Subscribe(ctx context.Context, req types.SubscriptionRequest) (*models.User, error) {
	author, err := s.author(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}
	if req.FollowerID == req.AuthorID {
		return nil, ErrCannotSubscribeToSelf
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id = ?", req.FollowerID, req.AuthorID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadySubscribed
	}

	sub := models.Subscription{FollowerID: req.FollowerID, AuthorID: req.AuthorID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return author, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, req types.SubscriptionRequest) error {
	if _, err := s.author(ctx, req.AuthorID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", req.FollowerID, req.AuthorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// ListSubscriptions returns one page of followed authors, each with its total recipe
// count and up to recipesLimit of its newest recipes. recipesLimit < 0 means no limit.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, followerID uuid.UUID, offset, limit, recipesLimit int) ([]AuthorWithRecipes, int64, error) {
	followed := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("author_id").
		Where("follower_id = ?", followerID)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := s.db.WithContext(ctx).
		Where("id IN (?)", followed).
		Order("username ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	if len(authors) == 0 {
		return []AuthorWithRecipes{}, total, nil
	}

	entries, err := s.attachRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FeedEntry returns the author with its recipe count and up to recipesLimit newest recipes.
func (s *SubscriptionService) FeedEntry(ctx context.Context, authorID uuid.UUID, recipesLimit int) (*AuthorWithRecipes, error) {
	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}
	entries, err := s.attachRecipes(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// attachRecipes loads recipe counts with one grouped query and the newest recipes
// with one query per author.
func (s *SubscriptionService) attachRecipes(ctx context.Context, authors []models.User, recipesLimit int) ([]AuthorWithRecipes, error) {
	authorIDs := make([]uuid.UUID, len(authors))
	for i := range authors {
		authorIDs[i] = authors[i].ID
	}

	var counts []struct {
		AuthorID string
		Total    int64
	}
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	countByAuthor := make(map[string]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Total
	}

	entries := make([]AuthorWithRecipes, len(authors))
	for i, author := range authors {
		entries[i] = AuthorWithRecipes{
			Author:       author,
			RecipesCount: countByAuthor[author.ID.String()],
			Recipes:      []models.Recipe{},
		}
		if recipesLimit == 0 {
			continue
		}

		q := s.db.WithContext(ctx).
			Where("author_id = ?", author.ID).
			Order("created_at DESC").Order("id ASC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		if err := q.Find(&entries[i].Recipes).Error; err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *SubscriptionService) author(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &author, nil
}

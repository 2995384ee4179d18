package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// IngredientService serves the ingredient catalog
type IngredientService struct {
	db *gorm.DB
}

var _ IIngredientService = (*IngredientService)(nil)

// NewIngredientService creates a new IngredientService instance
func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// Search returns ingredients whose name starts with prefix, ignoring case.
// An empty prefix returns the whole catalog.
func (s *IngredientService) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name ASC").Order("measurement_unit ASC")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	ingredients := []models.Ingredient{}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// Create adds a catalog entry. A (name, unit) pair may only exist once.
func (s *IngredientService) Create(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	name := strings.TrimSpace(req.Name)
	unit := strings.TrimSpace(req.MeasurementUnit)

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", name, unit).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fieldError("name", "ingredient with this name and measurement unit already exists")
	}

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return nil, err
	}
	return ingredient, nil
}

// BulkLoad inserts every (name, unit) pair not already in the catalog and
// returns how many rows were added.
func (s *IngredientService) BulkLoad(ctx context.Context, items []types.CreateIngredientRequest) (int, error) {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Ingredient
		if err := tx.Select("name", "measurement_unit").Find(&existing).Error; err != nil {
			return err
		}
		seen := make(map[[2]string]bool, len(existing)+len(items))
		for _, e := range existing {
			seen[[2]string{e.Name, e.MeasurementUnit}] = true
		}

		batch := make([]models.Ingredient, 0, len(items))
		for _, item := range items {
			key := [2]string{strings.TrimSpace(item.Name), strings.TrimSpace(item.MeasurementUnit)}
			if !validation.ValidIngredientName(key[0]) || key[1] == "" || seen[key] {
				continue
			}
			seen[key] = true
			batch = append(batch, models.Ingredient{Name: key[0], MeasurementUnit: key[1]})
		}
		if len(batch) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&batch, 500).Error; err != nil {
			return err
		}
		added = len(batch)
		return nil
	})
	return added, err
}

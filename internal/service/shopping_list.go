package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingListHeader is the first line of every rendered shopping list.
const ShoppingListHeader = "Список продуктов:"

// ShoppingListLine is one aggregated (ingredient, unit) row.
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingListService aggregates the ingredients of every recipe in a user's cart
type ShoppingListService struct {
	db *gorm.DB
}

var _ IShoppingListService = (*ShoppingListService)(nil)

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums ingredient amounts over the user's shopping cart in a single
// grouped query, ordered by name and unit.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListLine, error) {
	lines := []ShoppingListLine{}
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Joins("JOIN shopping_cart_items AS sc ON sc.recipe_id = ri.recipe_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name ASC, i.measurement_unit ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// RenderShoppingList formats lines as the downloadable plain-text list.
func RenderShoppingList(lines []ShoppingListLine) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	b.WriteString("\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "%s (%s) — %d\n", line.Name, line.MeasurementUnit, line.Amount)
	}
	return b.String()
}

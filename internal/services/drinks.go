package services

//go:generate mockgen -source=drinks.go -destination=../mocks/mock_store.go -package=mocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-authgate/coffeeshop/internal/models"
	"github.com/go-authgate/coffeeshop/internal/store"
)

var (
	// ErrInvalidDrink indicates a missing or malformed title or recipe
	ErrInvalidDrink = errors.New("invalid drink")

	// ErrDrinkNotFound indicates no drink has the requested id
	ErrDrinkNotFound = errors.New("drink not found")

	// ErrTitleTaken indicates another drink already uses the title
	ErrTitleTaken = errors.New("drink title already exists")
)

// DrinkStore is the persistence used by DrinkService.
type DrinkStore interface {
	ListDrinks(params store.PaginationParams) ([]models.Drink, store.PaginationResult, error)
	GetDrink(id uint) (*models.Drink, error)
	CreateDrink(drink *models.Drink) error
	UpdateDrink(drink *models.Drink) error
	DeleteDrink(id uint) error
}

// DrinkInput is the client supplied body for create and update. Recipe may
// be a single ingredient object or a list of them.
type DrinkInput struct {
	Title  string          `json:"title"`
	Recipe json.RawMessage `json:"recipe"`
}

type DrinkService struct {
	store DrinkStore
}

func NewDrinkService(s DrinkStore) *DrinkService {
	return &DrinkService{store: s}
}

func (s *DrinkService) ListDrinks(params store.PaginationParams) ([]models.Drink, store.PaginationResult, error) {
	return s.store.ListDrinks(params)
}

// CreateDrink validates input and stores a new drink. Both title and recipe
// are required.
func (s *DrinkService) CreateDrink(input DrinkInput) (*models.Drink, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidDrink)
	}
	recipe, err := parseRecipe(input.Recipe)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: recipe is required", ErrInvalidDrink)
	}

	drink := &models.Drink{Title: title, Recipe: recipe}
	if err := s.store.CreateDrink(drink); err != nil {
		return nil, translateStoreError(err)
	}
	return drink, nil
}

// UpdateDrink changes only the fields present in input.
func (s *DrinkService) UpdateDrink(id uint, input DrinkInput) (*models.Drink, error) {
	drink, err := s.store.GetDrink(id)
	if err != nil {
		return nil, translateStoreError(err)
	}

	recipe, err := parseRecipe(input.Recipe)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		drink.Title = title
	}
	if recipe != nil {
		drink.Recipe = recipe
	}

	if err := s.store.UpdateDrink(drink); err != nil {
		return nil, translateStoreError(err)
	}
	return drink, nil
}

func (s *DrinkService) DeleteDrink(id uint) error {
	return translateStoreError(s.store.DeleteDrink(id))
}

// parseRecipe returns nil for an absent or empty recipe.
func parseRecipe(raw json.RawMessage) ([]models.Ingredient, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var recipe []models.Ingredient
	switch raw[0] {
	case '{':
		var one models.Ingredient
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDrink, err)
		}
		recipe = []models.Ingredient{one}
	case '[':
		if err := json.Unmarshal(raw, &recipe); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDrink, err)
		}
	default:
		return nil, fmt.Errorf("%w: recipe must be an object or a list", ErrInvalidDrink)
	}

	if len(recipe) == 0 {
		return nil, nil
	}
	for i, in := range recipe {
		if in.Color == "" || in.Parts <= 0 {
			return nil, fmt.Errorf("%w: ingredient %d needs a color and positive parts", ErrInvalidDrink, i)
		}
	}
	return recipe, nil
}

func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrDrinkNotFound
	case errors.Is(err, store.ErrDuplicate):
		return ErrTitleTaken
	default:
		return err
	}
}

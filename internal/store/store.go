package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-authgate/coffeeshop/internal/config"
	"github.com/go-authgate/coffeeshop/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when no drink has the requested id
	ErrNotFound = errors.New("store: drink not found")

	// ErrDuplicate is returned when a drink title is already taken
	ErrDuplicate = errors.New("store: drink title already exists")
)

// Store persists drinks with gorm.
type Store struct {
	db *gorm.DB
}

// New opens the database for driver and migrates the schema.
func New(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DatabaseDriverSQLite:
		dialector = sqlite.Open(dsn)
	case config.DatabaseDriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Drink{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Reset drops the drinks table, recreates it and inserts the seed drink.
func (s *Store) Reset() error {
	if err := s.db.Migrator().DropTable(&models.Drink{}); err != nil {
		return fmt.Errorf("failed to drop drinks: %w", err)
	}
	if err := s.db.AutoMigrate(&models.Drink{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return s.CreateDrink(SeedDrink())
}

// SeedDrink returns the drink inserted by Reset.
func SeedDrink() *models.Drink {
	return &models.Drink{
		Title:  "water",
		Recipe: []models.Ingredient{{Name: "water", Color: "blue", Parts: 1}},
	}
}

// ListDrinks returns one page of drinks ordered by id, optionally filtered
// by a title substring. Use NewPaginationParams for a bounded page.
func (s *Store) ListDrinks(params PaginationParams) ([]models.Drink, PaginationResult, error) {
	filtered := func() *gorm.DB {
		query := s.db.Model(&models.Drink{})
		if params.Search != "" {
			query = query.Where("title LIKE ?", "%"+params.Search+"%")
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	drinks := []models.Drink{}

	// a zero page size returns every row as a single page
	if params.PageSize <= 0 {
		if err := filtered().Order("id").Find(&drinks).Error; err != nil {
			return nil, PaginationResult{}, err
		}
		return drinks, CalculatePagination(total, 1, int(max(total, 1))), nil
	}

	pagination := CalculatePagination(total, params.Page, params.PageSize)
	params.Page = pagination.CurrentPage

	if err := filtered().Order("id").
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&drinks).Error; err != nil {
		return nil, PaginationResult{}, err
	}
	return drinks, pagination, nil
}

func (s *Store) GetDrink(id uint) (*models.Drink, error) {
	var drink models.Drink
	if err := s.db.First(&drink, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &drink, nil
}

func (s *Store) CreateDrink(drink *models.Drink) error {
	return translate(s.db.Create(drink).Error)
}

// UpdateDrink writes every column of an existing drink.
func (s *Store) UpdateDrink(drink *models.Drink) error {
	result := s.db.Model(drink).Select("*").Omit("created_at").Updates(drink)
	if err := translate(result.Error); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDrink(id uint) error {
	result := s.db.Delete(&models.Drink{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

package repository

import (
	"errors"

	"github.com/openfable/openfable/pkg/database/models"
	"gorm.io/gorm"
)

// CharacterRepository handles database operations for the Character model
type CharacterRepository struct {
	db *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func (r *CharacterRepository) List() ([]models.Character, error) {
	var characters []models.Character
	if err := r.db.Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

// GetByID returns the character stored under id, or nil when none exists.
func (r *CharacterRepository) GetByID(id string) (*models.Character, error) {
	var character models.Character
	err := r.db.First(&character, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &character, nil
}

// ListByRegistryURL returns all characters owned by the given registry,
// served by the registry_url index rather than a full scan.
func (r *CharacterRepository) ListByRegistryURL(url string) ([]models.Character, error) {
	var characters []models.Character
	if err := r.db.Where("registry_url = ?", url).Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (r *CharacterRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Character{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

package repository

import (
	"errors"
	"time"

	"github.com/openfable/openfable/pkg/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistryRepository handles database operations for the Registry model and
// the registry side of the registry/character relationship.
type RegistryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// Upsert overwrites the registry row under its URL and upserts every character
// stamped with that URL, in a single transaction. Characters previously stored
// for the registry but absent from the new set are pruned, so a re-sync never
// leaves stale rows behind. Either everything commits or nothing does.
func (r *RegistryRepository) Upsert(registry *models.Registry, characters []models.Character) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		registry.AddedAt = time.Now()
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			UpdateAll: true,
		}).Create(registry).Error; err != nil {
			return err
		}

		ids := make([]string, 0, len(characters))
		for i := range characters {
			characters[i].RegistryURL = registry.URL
			ids = append(ids, characters[i].ID)
		}

		if len(characters) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&characters).Error; err != nil {
				return err
			}
		}

		// Prune characters dropped from this version of the registry. Rows now
		// claimed by another registry are excluded by the registry_url predicate.
		q := tx.Where("registry_url = ?", registry.URL)
		if len(ids) > 0 {
			q = q.Where("id NOT IN ?", ids)
		}
		return q.Delete(&models.Character{}).Error
	})
}

// UpsertCharacters bulk-upserts characters under an existing registry URL
// without touching the registry row itself.
func (r *RegistryRepository) UpsertCharacters(url string, characters []models.Character) error {
	if len(characters) == 0 {
		return nil
	}
	for i := range characters {
		characters[i].RegistryURL = url
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&characters).Error
}

func (r *RegistryRepository) List() ([]models.Registry, error) {
	var registries []models.Registry
	if err := r.db.Find(&registries).Error; err != nil {
		return nil, err
	}
	return registries, nil
}

// GetByURL returns the registry stored under url, or nil when none exists.
func (r *RegistryRepository) GetByURL(url string) (*models.Registry, error) {
	var registry models.Registry
	err := r.db.First(&registry, "url = ?", url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &registry, nil
}

func (r *RegistryRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Registry{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Remove deletes the registry row and cascades to every character whose
// registry_url matches, using the registry_url index. The character delete runs
// first so a failure mid-cascade leaves the registry row resolvable instead of
// silently orphaning rows.
func (r *RegistryRepository) Remove(url string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registry_url = ?", url).Delete(&models.Character{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Registry{}, "url = ?", url).Error
	})
}

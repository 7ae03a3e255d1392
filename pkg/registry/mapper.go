package registry

import (
	"encoding/json"
	"fmt"

	"github.com/openfable/openfable/pkg/database/models"
)

// CharacterMapper handles conversion between database and domain characters
type CharacterMapper struct{}

// NewCharacterMapper creates a new character mapper
func NewCharacterMapper() *CharacterMapper {
	return &CharacterMapper{}
}

// ToModel converts a validated character to its database row, stamped with
// the owning registry URL.
func (m *CharacterMapper) ToModel(c *Character, registryURL string) (*models.Character, error) {
	gallery, err := json.Marshal(c.GalleryImages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gallery_images for character %s: %w", c.ID, err)
	}
	modelLinks, err := json.Marshal(c.Models3D)
	if err != nil {
		return nil, fmt.Errorf("failed to encode models_3d for character %s: %w", c.ID, err)
	}

	return &models.Character{
		ID:             c.ID,
		RegistryURL:    registryURL,
		Name:           c.Name,
		CreatedAt:      c.CreatedAt,
		PreviewImage:   c.PreviewImage,
		Description:    c.Description,
		AudioSampleURL: c.AudioSampleURL,
		AudioZipURL:    c.AudioZipURL,
		NFCPayload:     c.NFCPayload,
		GalleryImages:  gallery,
		Models3D:       modelLinks,
	}, nil
}

// ToDomain converts a database character back to its domain form
func (m *CharacterMapper) ToDomain(dbChar *models.Character) (*Character, error) {
	if dbChar == nil {
		return nil, nil
	}

	c := &Character{
		ID:             dbChar.ID,
		Name:           dbChar.Name,
		CreatedAt:      dbChar.CreatedAt,
		PreviewImage:   dbChar.PreviewImage,
		Description:    dbChar.Description,
		AudioSampleURL: dbChar.AudioSampleURL,
		AudioZipURL:    dbChar.AudioZipURL,
		NFCPayload:     dbChar.NFCPayload,
		RegistryURL:    dbChar.RegistryURL,
		GalleryImages:  []string{},
		Models3D:       []Model3D{},
	}

	if len(dbChar.GalleryImages) > 0 {
		if err := json.Unmarshal(dbChar.GalleryImages, &c.GalleryImages); err != nil {
			return nil, fmt.Errorf("failed to decode gallery_images for character %s: %w", dbChar.ID, err)
		}
	}
	if len(dbChar.Models3D) > 0 {
		if err := json.Unmarshal(dbChar.Models3D, &c.Models3D); err != nil {
			return nil, fmt.Errorf("failed to decode models_3d for character %s: %w", dbChar.ID, err)
		}
	}

	return c, nil
}

// RegistryMapper handles conversion between database and domain registries
type RegistryMapper struct{}

// NewRegistryMapper creates a new registry mapper
func NewRegistryMapper() *RegistryMapper {
	return &RegistryMapper{}
}

// ToModel converts registry metadata to its database row
func (m *RegistryMapper) ToModel(url string, meta Meta) *models.Registry {
	return &models.Registry{
		URL:        url,
		Name:       meta.Name,
		Version:    meta.Version,
		Maintainer: meta.Maintainer,
	}
}

// ToStored converts a database registry to its stored-registry form
func (m *RegistryMapper) ToStored(dbReg *models.Registry) *StoredRegistry {
	if dbReg == nil {
		return nil
	}
	return &StoredRegistry{
		Meta: Meta{
			Name:       dbReg.Name,
			Version:    dbReg.Version,
			Maintainer: dbReg.Maintainer,
		},
		URL:     dbReg.URL,
		AddedAt: dbReg.AddedAt,
	}
}

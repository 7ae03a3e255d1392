package models

import (
	"gorm.io/datatypes"
)

// Character represents an audio character in the database. The primary key is
// the character ID from the registry document; RegistryURL is a denormalized
// back-reference to the registry that most recently listed the character.
type Character struct {
	ID             string `gorm:"primaryKey"`
	RegistryURL    string `gorm:"index;not null"`
	Name           string `gorm:"index;not null"`
	CreatedAt      string // ISO-8601 string from the document, stored verbatim
	PreviewImage   string
	Description    string `gorm:"type:text"`
	AudioSampleURL string
	AudioZipURL    string
	NFCPayload     string `gorm:"column:nfc_payload"`
	GalleryImages  datatypes.JSON
	Models3D       datatypes.JSON `gorm:"column:models_3d"`
}

// TableName specifies the table name for Character
func (Character) TableName() string {
	return "characters"
}

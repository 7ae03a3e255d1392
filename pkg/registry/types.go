// Package registry defines the character registry domain: the document types
// published by registry maintainers, schema validation with per-character
// partial-failure tolerance, and the ingestion error taxonomy.
package registry

import (
	"time"
)

// Provider identifies where a 3D print model is hosted
type Provider string

const (
	ProviderMakerWorld  Provider = "makerworld"
	ProviderPrintables  Provider = "printables"
	ProviderThingiverse Provider = "thingiverse"
	ProviderDirect      Provider = "direct"
	ProviderOther       Provider = "other"
)

// Model3D is a link to a printable 3D model of a character
type Model3D struct {
	Provider Provider `json:"provider"`
	URL      string   `json:"url"`
}

// Character is a single audio character record as published in a registry
// document. RegistryURL is set once the character is stored and points at the
// registry that most recently listed it.
type Character struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      string    `json:"created_at,omitempty"`
	PreviewImage   string    `json:"preview_image,omitempty"`
	Description    string    `json:"description,omitempty"`
	GalleryImages  []string  `json:"gallery_images"`
	AudioSampleURL string    `json:"audio_sample_url,omitempty"`
	AudioZipURL    string    `json:"audio_zip_url,omitempty"`
	Models3D       []Model3D `json:"models_3d"`
	NFCPayload     string    `json:"nfc_payload,omitempty"`
	RegistryURL    string    `json:"registry_url,omitempty"`
}

// Meta is the top-level identity of a registry document
type Meta struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Maintainer string `json:"maintainer,omitempty"`
}

// Registry is a decoded registry document
type Registry struct {
	Meta       Meta        `json:"meta"`
	Characters []Character `json:"characters"`
}

// StoredRegistry is the persisted form of a registry: its metadata plus the
// URL it was fetched from and the time of the last successful ingestion.
type StoredRegistry struct {
	Meta    Meta      `json:"meta"`
	URL     string    `json:"url"`
	AddedAt time.Time `json:"added_at"`
}

// SkipWarning records a character that failed validation and was skipped
// during ingestion. CharacterID and CharacterName carry whatever identifying
// fields the raw entry had, so the warning can point back at the source.
type SkipWarning struct {
	CharacterID   string      `json:"character_id,omitempty"`
	CharacterName string      `json:"character_name,omitempty"`
	Errors        FieldErrors `json:"errors"`
}

// FetchResult is a successfully ingested registry together with the warnings
// collected for skipped characters.
type FetchResult struct {
	Registry *Registry
	Warnings []SkipWarning
}

// SyncResult is the outcome of refreshing one stored registry URL
type SyncResult struct {
	URL      string
	Registry *Registry
	Warnings []SkipWarning
	Err      error
}

package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMeta(t *testing.T) {
	meta, errs := ValidateMeta(json.RawMessage(`{"name":"Demo","version":"1.2","maintainer":"me@example.com"}`))
	require.Nil(t, errs)
	assert.Equal(t, "Demo", meta.Name)
	assert.Equal(t, "1.2", meta.Version)
	assert.Equal(t, "me@example.com", meta.Maintainer)
}

func TestValidateMetaOptionalFieldsOmitted(t *testing.T) {
	meta, errs := ValidateMeta(json.RawMessage(`{"name":"Demo"}`))
	require.Nil(t, errs)
	assert.Equal(t, Meta{Name: "Demo"}, meta)
}

func TestValidateMetaMissingName(t *testing.T) {
	_, errs := ValidateMeta(json.RawMessage(`{"version":"1"}`))
	require.NotNil(t, errs)
	assert.Equal(t, "meta.name", errs[0].Field)
}

func TestValidateMetaMissing(t *testing.T) {
	_, errs := ValidateMeta(nil)
	require.NotNil(t, errs)
	assert.Equal(t, "meta", errs[0].Field)
}

func TestValidateMetaWrongType(t *testing.T) {
	_, errs := ValidateMeta(json.RawMessage(`{"name":42}`))
	require.NotNil(t, errs)
	assert.Equal(t, "meta.name", errs[0].Field)
}

func TestValidateCharacterDefaults(t *testing.T) {
	c, errs := ValidateCharacter(json.RawMessage(`{"id":"a","name":"Alice"}`))
	require.Nil(t, errs)
	assert.Equal(t, "a", c.ID)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, []string{}, c.GalleryImages)
	assert.Equal(t, []Model3D{}, c.Models3D)
}

func TestValidateCharacterFullRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "luna",
		"name": "Luna",
		"created_at": "2024-03-01T10:00:00Z",
		"preview_image": "https://example.com/luna.png",
		"description": "A fox who sings.",
		"gallery_images": ["https://example.com/1.png", "https://example.com/2.png"],
		"audio_sample_url": "https://example.com/luna.mp3",
		"audio_zip_url": "https://example.com/luna.zip",
		"models_3d": [
			{"provider": "printables", "url": "https://printables.com/model/1"},
			{"url": "https://example.com/luna.stl"}
		],
		"nfc_payload": "openfable:luna"
	}`)

	c, errs := ValidateCharacter(raw)
	require.Nil(t, errs)
	assert.Equal(t, "luna", c.ID)
	assert.Len(t, c.GalleryImages, 2)
	require.Len(t, c.Models3D, 2)
	assert.Equal(t, ProviderPrintables, c.Models3D[0].Provider)
	// Missing provider defaults to "other"
	assert.Equal(t, ProviderOther, c.Models3D[1].Provider)
	assert.Equal(t, "openfable:luna", c.NFCPayload)
}

func TestValidateCharacterEmptyName(t *testing.T) {
	_, errs := ValidateCharacter(json.RawMessage(`{"id":"b","name":""}`))
	require.NotNil(t, errs)
	assert.Equal(t, "name", errs[0].Field)
	assert.Contains(t, errs.Error(), "Name is required")
}

func TestValidateCharacterMissingID(t *testing.T) {
	_, errs := ValidateCharacter(json.RawMessage(`{"name":"Nameless"}`))
	require.NotNil(t, errs)
	assert.Equal(t, "id", errs[0].Field)
}

func TestValidateCharacterBadTimestamp(t *testing.T) {
	_, errs := ValidateCharacter(json.RawMessage(`{"id":"a","name":"Alice","created_at":"yesterday"}`))
	require.NotNil(t, errs)
	assert.Equal(t, "created_at", errs[0].Field)
}

func TestValidateCharacterBadURLs(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "a",
		"name": "Alice",
		"preview_image": "not a url",
		"gallery_images": ["https://ok.example.com/x.png", "also bad"],
		"models_3d": [{"provider": "thingiverse", "url": ""}]
	}`)

	_, errs := ValidateCharacter(raw)
	require.NotNil(t, errs)

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "preview_image")
	assert.Contains(t, fields, "gallery_images[1]")
	assert.Contains(t, fields, "models_3d[0].url")
	assert.NotContains(t, fields, "gallery_images[0]")
}

func TestValidateCharacterUnknownProvider(t *testing.T) {
	raw := json.RawMessage(`{"id":"a","name":"Alice","models_3d":[{"provider":"shapeways","url":"https://example.com/m.stl"}]}`)
	_, errs := ValidateCharacter(raw)
	require.NotNil(t, errs)
	assert.Equal(t, "models_3d[0].provider", errs[0].Field)
}

func TestValidateCharacterUnknownFieldsIgnored(t *testing.T) {
	c, errs := ValidateCharacter(json.RawMessage(`{"id":"a","name":"Alice","favorite_color":"teal"}`))
	require.Nil(t, errs)
	assert.Equal(t, "Alice", c.Name)
}

func TestValidateCharacterWrongType(t *testing.T) {
	_, errs := ValidateCharacter(json.RawMessage(`{"id":"a","name":"Alice","gallery_images":"nope"}`))
	require.NotNil(t, errs)
}

func TestValidateRegistryStrict(t *testing.T) {
	raw := json.RawMessage(`{
		"meta": {"name": "Demo"},
		"characters": [
			{"id": "a", "name": "Alice"},
			{"id": "b", "name": ""}
		]
	}`)

	_, errs := ValidateRegistry(raw)
	require.NotNil(t, errs)
	assert.Equal(t, "characters[1].name", errs[0].Field)
}

func TestValidateRegistryAllValid(t *testing.T) {
	raw := json.RawMessage(`{"meta":{"name":"Demo"},"characters":[{"id":"a","name":"Alice"}]}`)
	reg, errs := ValidateRegistry(raw)
	require.Nil(t, errs)
	assert.Equal(t, "Demo", reg.Meta.Name)
	require.Len(t, reg.Characters, 1)
	assert.Equal(t, []string{}, reg.Characters[0].GalleryImages)
}

func TestValidateRegistryCharactersNotArray(t *testing.T) {
	_, errs := ValidateRegistry(json.RawMessage(`{"meta":{"name":"Demo"},"characters":{"a":1}}`))
	require.NotNil(t, errs)
	assert.Equal(t, "characters", errs[0].Field)
}

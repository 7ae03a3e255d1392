package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openfable/openfable/pkg/database/models"
	"github.com/openfable/openfable/pkg/logging"
	"github.com/openfable/openfable/pkg/registry"
)

// IngestService runs the fetch-validate-persist pipeline for one registry URL
type IngestService struct {
	service *registry.Service
	mapper  *registry.CharacterMapper
	regMap  *registry.RegistryMapper
	logger  logging.Logger
}

var _ registry.IngestServiceInterface = (*IngestService)(nil)

func NewIngestService(s *registry.Service) *IngestService {
	return &IngestService{
		service: s,
		mapper:  registry.NewCharacterMapper(),
		regMap:  registry.NewRegistryMapper(),
		logger:  s.Loggers.CreateLogger("registry_ingest"),
	}
}

// FetchRegistry retrieves the document at url, validates it with per-character
// partial-failure tolerance, and persists the accepted result in a single
// transaction. Fatal failures are classified as *registry.IngestError and
// leave any previously stored copy of the registry untouched; per-character
// failures are returned as warnings alongside the result, never as errors.
func (is *IngestService) FetchRegistry(ctx context.Context, url string) (*registry.FetchResult, error) {
	logger := is.logger.WithRegistry(url)

	body, err := is.service.Client.Get(ctx, url)
	if err != nil {
		logger.Error("Failed to fetch registry document", err, map[string]interface{}{
			"stage": "fetch",
		})
		return nil, registry.NewIngestError(url, registry.ErrUnreachable, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		logger.Error("Registry document failed to decode", err, map[string]interface{}{
			"stage": "decode",
		})
		if _, ok := err.(*json.SyntaxError); ok {
			return nil, registry.NewIngestError(url, registry.ErrMalformedDocument, err)
		}
		// Syntactically valid JSON that is not an object: the document's
		// top-level identity is unreadable.
		return nil, registry.NewIngestError(url, registry.ErrInvalidMetadata, err)
	}

	meta, metaErrs := registry.ValidateMeta(doc["meta"])
	if metaErrs != nil {
		logger.Error("Registry metadata failed validation", metaErrs, map[string]interface{}{
			"stage": "validate_meta",
		})
		return nil, registry.NewIngestError(url, registry.ErrInvalidMetadata, metaErrs)
	}

	rawCharacters, warnings, valid := is.validateCharacters(doc["characters"])
	if rawCharacters == nil {
		logger.Error("Registry characters field is not an array", nil, map[string]interface{}{
			"stage": "validate_shape",
		})
		return nil, registry.NewIngestError(url, registry.ErrInvalidShape, nil)
	}

	if len(valid) == 0 {
		logger.Error("Every character in the registry failed validation", nil, map[string]interface{}{
			"stage":         "validate_characters",
			"total_count":   len(rawCharacters),
			"skipped_count": len(warnings),
		})
		return nil, registry.NewIngestError(url, registry.ErrEmptyAfterValidation, nil)
	}

	rows := make([]models.Character, 0, len(valid))
	for i := range valid {
		row, err := is.mapper.ToModel(&valid[i], url)
		if err != nil {
			return nil, fmt.Errorf("failed to map character for storage: %w", err)
		}
		rows = append(rows, *row)
	}

	// Persistence is the final step: nothing above writes, so a fatal
	// failure leaves the store exactly as it was.
	if err := is.service.RegistryStore.Upsert(is.regMap.ToModel(url, meta), rows); err != nil {
		logger.Error("Failed to persist registry", err, map[string]interface{}{
			"stage":           "persist",
			"character_count": len(valid),
		})
		return nil, fmt.Errorf("failed to persist registry %s: %w", url, err)
	}

	if len(warnings) > 0 {
		logger.Warn("Some characters were skipped during ingestion", map[string]interface{}{
			"stage":         "completed",
			"skipped_count": len(warnings),
		})
	}
	logger.Info("Registry ingested", map[string]interface{}{
		"stage":           "completed",
		"registry_name":   meta.Name,
		"character_count": len(valid),
		"skipped_count":   len(warnings),
	})

	return &registry.FetchResult{
		Registry: &registry.Registry{Meta: meta, Characters: valid},
		Warnings: warnings,
	}, nil
}

// validateCharacters validates each raw character independently, accumulating
// successes and recording failures as skip warnings. A nil first return means
// the characters field was missing or not an array.
func (is *IngestService) validateCharacters(raw json.RawMessage) ([]json.RawMessage, []registry.SkipWarning, []registry.Character) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, nil
	}

	var warnings []registry.SkipWarning
	valid := make([]registry.Character, 0, len(entries))
	for _, entry := range entries {
		c, errs := registry.ValidateCharacter(entry)
		if errs != nil {
			warnings = append(warnings, skipWarning(entry, errs))
			continue
		}
		valid = append(valid, c)
	}
	return entries, warnings, valid
}

// skipWarning builds a warning for a rejected character, pulling whatever
// identifying fields the raw entry carried.
func skipWarning(raw json.RawMessage, errs registry.FieldErrors) registry.SkipWarning {
	var ident struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	// Best effort; a character rejected for a type error may not even have
	// readable id/name fields.
	_ = json.Unmarshal(raw, &ident)

	return registry.SkipWarning{
		CharacterID:   ident.ID,
		CharacterName: ident.Name,
		Errors:        errs,
	}
}

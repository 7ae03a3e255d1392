package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openfable/openfable/pkg/database/models"
	"github.com/openfable/openfable/pkg/logging"
	"github.com/openfable/openfable/pkg/registry"
)

// QueryService serves reads from the local store, so the catalog stays usable
// when registries are offline.
type QueryService struct {
	service *registry.Service
	mapper  *registry.CharacterMapper
	regMap  *registry.RegistryMapper
	logger  logging.Logger
}

var _ registry.QueryServiceInterface = (*QueryService)(nil)

func NewQueryService(s *registry.Service) *QueryService {
	return &QueryService{
		service: s,
		mapper:  registry.NewCharacterMapper(),
		regMap:  registry.NewRegistryMapper(),
		logger:  s.Loggers.CreateLogger("registry_query"),
	}
}

// GetRegistryFromStore returns the cached registry for url, or nil when the
// URL was never ingested.
func (qs *QueryService) GetRegistryFromStore(url string) (*registry.StoredRegistry, error) {
	dbReg, err := qs.service.RegistryStore.GetByURL(url)
	if err != nil {
		return nil, err
	}
	return qs.regMap.ToStored(dbReg), nil
}

func (qs *QueryService) ListRegistries() ([]registry.StoredRegistry, error) {
	dbRegs, err := qs.service.RegistryStore.List()
	if err != nil {
		return nil, err
	}
	registries := make([]registry.StoredRegistry, 0, len(dbRegs))
	for i := range dbRegs {
		registries = append(registries, *qs.regMap.ToStored(&dbRegs[i]))
	}
	return registries, nil
}

func (qs *QueryService) ListCharacters() ([]registry.Character, error) {
	dbChars, err := qs.service.CharacterStore.List()
	if err != nil {
		return nil, err
	}
	return qs.toDomainList(dbChars)
}

// ListCharactersByRegistry returns all characters owned by the given registry
func (qs *QueryService) ListCharactersByRegistry(url string) ([]registry.Character, error) {
	dbChars, err := qs.service.CharacterStore.ListByRegistryURL(url)
	if err != nil {
		return nil, err
	}
	return qs.toDomainList(dbChars)
}

// GetCharacter returns the character stored under id, or nil when absent
func (qs *QueryService) GetCharacter(id string) (*registry.Character, error) {
	dbChar, err := qs.service.CharacterStore.GetByID(id)
	if err != nil {
		return nil, err
	}
	return qs.mapper.ToDomain(dbChar)
}

// ResolveCharacter looks the character up locally first; on a miss with a
// registry URL given it fetches that document on the fly and returns the
// matching entry stamped with the URL, without persisting anything. A nil
// result with nil error means the character could not be found.
func (qs *QueryService) ResolveCharacter(ctx context.Context, id string, registryURL string) (*registry.Character, error) {
	character, err := qs.GetCharacter(id)
	if err != nil {
		return nil, err
	}
	if character != nil || registryURL == "" {
		return character, nil
	}

	body, err := qs.service.Client.Get(ctx, registryURL)
	if err != nil {
		// The on-the-fly path is best effort; an unreachable registry just
		// means the character stays unresolved.
		qs.logger.Warn("On-the-fly registry fetch failed", map[string]interface{}{
			"character_id": id,
			"registry_url": registryURL,
			"error":        err.Error(),
		})
		return nil, nil
	}

	var doc struct {
		Characters []json.RawMessage `json:"characters"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		qs.logger.Warn("On-the-fly registry document failed to decode", map[string]interface{}{
			"character_id": id,
			"registry_url": registryURL,
			"error":        err.Error(),
		})
		return nil, nil
	}

	for _, raw := range doc.Characters {
		c, errs := registry.ValidateCharacter(raw)
		if errs != nil || c.ID != id {
			continue
		}
		c.RegistryURL = registryURL
		return &c, nil
	}
	return nil, nil
}

// RemoveRegistry deletes the registry row and cascades to its characters
func (qs *QueryService) RemoveRegistry(url string) error {
	if err := qs.service.RegistryStore.Remove(url); err != nil {
		return fmt.Errorf("failed to remove registry %s: %w", url, err)
	}
	qs.logger.Info("Registry removed", map[string]interface{}{
		"registry_url": url,
	})
	return nil
}

func (qs *QueryService) toDomainList(dbChars []models.Character) ([]registry.Character, error) {
	characters := make([]registry.Character, 0, len(dbChars))
	for i := range dbChars {
		c, err := qs.mapper.ToDomain(&dbChars[i])
		if err != nil {
			return nil, err
		}
		characters = append(characters, *c)
	}
	return characters, nil
}

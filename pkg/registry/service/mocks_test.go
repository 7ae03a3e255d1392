package service_test

import (
	"context"
	"fmt"

	"github.com/openfable/openfable/pkg/database/models"
	"github.com/openfable/openfable/pkg/logging"
	"github.com/openfable/openfable/pkg/registry"
)

// MockClient serves canned responses per URL
type MockClient struct {
	Responses map[string][]byte
	Errors    map[string]error
	Requests  []string
}

func (m *MockClient) Get(_ context.Context, url string) ([]byte, error) {
	m.Requests = append(m.Requests, url)
	if err, ok := m.Errors[url]; ok {
		return nil, err
	}
	if body, ok := m.Responses[url]; ok {
		return body, nil
	}
	return nil, fmt.Errorf("no response configured for %s", url)
}

// UpsertCall records one transactional registry write
type UpsertCall struct {
	Registry   *models.Registry
	Characters []models.Character
}

// MockRegistryStore implements registry.RegistryStore in memory
type MockRegistryStore struct {
	Registries  []models.Registry
	UpsertCalls []UpsertCall
	RemovedURLs []string
	UpsertErr   error
	ListErr     error
}

func (m *MockRegistryStore) Upsert(reg *models.Registry, characters []models.Character) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.UpsertCalls = append(m.UpsertCalls, UpsertCall{Registry: reg, Characters: characters})
	return nil
}

func (m *MockRegistryStore) UpsertCharacters(url string, characters []models.Character) error {
	return nil
}

func (m *MockRegistryStore) List() ([]models.Registry, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Registries, nil
}

func (m *MockRegistryStore) GetByURL(url string) (*models.Registry, error) {
	for i := range m.Registries {
		if m.Registries[i].URL == url {
			return &m.Registries[i], nil
		}
	}
	return nil, nil
}

func (m *MockRegistryStore) Remove(url string) error {
	m.RemovedURLs = append(m.RemovedURLs, url)
	return nil
}

// MockCharacterStore implements registry.CharacterStore in memory
type MockCharacterStore struct {
	Characters []models.Character
}

func (m *MockCharacterStore) List() ([]models.Character, error) {
	return m.Characters, nil
}

func (m *MockCharacterStore) GetByID(id string) (*models.Character, error) {
	for i := range m.Characters {
		if m.Characters[i].ID == id {
			return &m.Characters[i], nil
		}
	}
	return nil, nil
}

func (m *MockCharacterStore) ListByRegistryURL(url string) ([]models.Character, error) {
	var owned []models.Character
	for _, c := range m.Characters {
		if c.RegistryURL == url {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

var (
	_ registry.Client         = (*MockClient)(nil)
	_ registry.RegistryStore  = (*MockRegistryStore)(nil)
	_ registry.CharacterStore = (*MockCharacterStore)(nil)
)

// newTestService wires a registry.Service around the mocks with quiet logging
func newTestService(client *MockClient, regStore *MockRegistryStore, charStore *MockCharacterStore) *registry.Service {
	return registry.NewService(regStore, charStore, client, logging.NewLoggerFactoryWithLevel("error"))
}

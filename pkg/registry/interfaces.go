package registry

import (
	"context"

	"github.com/openfable/openfable/pkg/database/models"
	"github.com/openfable/openfable/pkg/database/repository"
	"github.com/openfable/openfable/pkg/logging"
)

// RegistryStore is the registry side of the local store
type RegistryStore interface {
	Upsert(registry *models.Registry, characters []models.Character) error
	UpsertCharacters(url string, characters []models.Character) error
	List() ([]models.Registry, error)
	GetByURL(url string) (*models.Registry, error)
	Remove(url string) error
}

// CharacterStore is the character side of the local store
type CharacterStore interface {
	List() ([]models.Character, error)
	GetByID(id string) (*models.Character, error)
	ListByRegistryURL(url string) ([]models.Character, error)
}

var (
	_ RegistryStore  = (*repository.RegistryRepository)(nil)
	_ CharacterStore = (*repository.CharacterRepository)(nil)
)

// Service holds the shared dependencies of the registry services
type Service struct {
	RegistryStore  RegistryStore
	CharacterStore CharacterStore
	Client         Client
	Loggers        logging.LoggerFactory
}

// NewService creates a new Service instance with all dependencies
func NewService(
	registryStore RegistryStore,
	characterStore CharacterStore,
	client Client,
	loggers logging.LoggerFactory,
) *Service {
	return &Service{
		RegistryStore:  registryStore,
		CharacterStore: characterStore,
		Client:         client,
		Loggers:        loggers,
	}
}

// IngestServiceInterface defines the fetch-validate-persist pipeline for one
// registry URL.
type IngestServiceInterface interface {
	FetchRegistry(ctx context.Context, url string) (*FetchResult, error)
}

// SyncServiceInterface defines the batch refresh over all stored registries
type SyncServiceInterface interface {
	UpdateAllRegistries(ctx context.Context) ([]SyncResult, error)
}

// QueryServiceInterface defines the read and removal operations exposed to
// consumers of the local store.
type QueryServiceInterface interface {
	GetRegistryFromStore(url string) (*StoredRegistry, error)
	ListRegistries() ([]StoredRegistry, error)
	ListCharacters() ([]Character, error)
	ListCharactersByRegistry(url string) ([]Character, error)
	GetCharacter(id string) (*Character, error)
	ResolveCharacter(ctx context.Context, id string, registryURL string) (*Character, error)
	RemoveRegistry(url string) error
}

// RegistryServiceInterface combines all registry sub-services
type RegistryServiceInterface interface {
	IngestServiceInterface
	SyncServiceInterface
	QueryServiceInterface
}

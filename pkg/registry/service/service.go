package service

import (
	"github.com/openfable/openfable/pkg/registry"
)

// RegistryService combines ingestion, synchronization, and querying behind
// the full registry service interface.
type RegistryService struct {
	*IngestService
	*SyncService
	*QueryService
}

var _ registry.RegistryServiceInterface = (*RegistryService)(nil)

func NewRegistryService(s *registry.Service) *RegistryService {
	return &RegistryService{
		IngestService: NewIngestService(s),
		SyncService:   NewSyncService(s),
		QueryService:  NewQueryService(s),
	}
}

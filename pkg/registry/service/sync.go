package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openfable/openfable/pkg/registry"
)

// SyncService refreshes every locally known registry, isolating per-registry
// failures so one bad or unreachable registry never aborts the batch.
type SyncService struct {
	service *registry.Service
	ingest  registry.IngestServiceInterface
}

var _ registry.SyncServiceInterface = (*SyncService)(nil)

func NewSyncService(s *registry.Service) *SyncService {
	return &SyncService{
		service: s,
		ingest:  NewIngestService(s),
	}
}

// UpdateAllRegistries re-fetches every stored registry URL independently. The
// returned error covers only the initial store listing; per-URL outcomes,
// failures included, are reported in the results.
func (ss *SyncService) UpdateAllRegistries(ctx context.Context) ([]registry.SyncResult, error) {
	runID := uuid.NewString()
	logger := ss.service.Loggers.CreateSyncLogger(runID)

	stored, err := ss.service.RegistryStore.List()
	if err != nil {
		logger.Error("Failed to list stored registries", err, map[string]interface{}{
			"stage": "list",
		})
		return nil, fmt.Errorf("failed to list stored registries: %w", err)
	}

	logger.Info("Starting registry synchronization", map[string]interface{}{
		"stage":          "started",
		"registry_count": len(stored),
	})

	results := make([]registry.SyncResult, 0, len(stored))
	successCount := 0
	errorCount := 0

	for _, reg := range stored {
		result := registry.SyncResult{URL: reg.URL}

		fetched, err := ss.ingest.FetchRegistry(ctx, reg.URL)
		if err != nil {
			// The previously cached copy stays intact and queryable.
			logger.Error("Failed to refresh registry", err, map[string]interface{}{
				"stage":        "refresh",
				"registry_url": reg.URL,
			})
			result.Err = err
			errorCount++
		} else {
			result.Registry = fetched.Registry
			result.Warnings = fetched.Warnings
			successCount++
		}

		results = append(results, result)
	}

	logger.Info("Registry synchronization completed", map[string]interface{}{
		"stage":          "completed",
		"registry_count": len(stored),
		"success_count":  successCount,
		"error_count":    errorCount,
	})

	return results, nil
}

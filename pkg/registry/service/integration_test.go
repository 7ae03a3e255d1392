package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openfable/openfable/pkg/database/models"
	"github.com/openfable/openfable/pkg/database/repository"
	"github.com/openfable/openfable/pkg/logging"
	"github.com/openfable/openfable/pkg/registry"
	"github.com/openfable/openfable/pkg/registry/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newStoreBackedService(t *testing.T) (*service.RegistryService, *repository.RegistryRepository, *repository.CharacterRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Registry{}, &models.Character{}))

	regRepo := repository.NewRegistryRepository(db)
	charRepo := repository.NewCharacterRepository(db)
	svc := service.NewRegistryService(registry.NewService(
		regRepo, charRepo, registry.NewHTTPClient(0), logging.NewLoggerFactoryWithLevel("error"),
	))
	return svc, regRepo, charRepo
}

func TestFetchThenQueryRoundTrip(t *testing.T) {
	doc := `{"meta":{"name":"Demo"},"characters":[{"id":"a","name":"Alice"},{"id":"b","name":""}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	defer server.Close()

	svc, _, _ := newStoreBackedService(t)

	result, err := svc.FetchRegistry(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)

	stored, err := svc.GetRegistryFromStore(server.URL)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.Registry.Meta, stored.Meta)

	characters, err := svc.ListCharacters()
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.Equal(t, "a", characters[0].ID)
	assert.Equal(t, "Alice", characters[0].Name)
	assert.Equal(t, []string{}, characters[0].GalleryImages)
	assert.Equal(t, []registry.Model3D{}, characters[0].Models3D)
	assert.Equal(t, server.URL, characters[0].RegistryURL)
}

func TestRefetchIsIdempotent(t *testing.T) {
	doc := `{"meta":{"name":"Demo"},"characters":[{"id":"a","name":"Alice"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	defer server.Close()

	svc, regRepo, charRepo := newStoreBackedService(t)

	_, err := svc.FetchRegistry(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = svc.FetchRegistry(context.Background(), server.URL)
	require.NoError(t, err)

	regCount, err := regRepo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, regCount)

	charCount, err := charRepo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, charCount)
}

func TestFailedRefetchKeepsCachedCopy(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "down for maintenance", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"meta":{"name":"Demo"},"characters":[{"id":"a","name":"Alice"}]}`))
	}))
	defer server.Close()

	svc, _, _ := newStoreBackedService(t)

	_, err := svc.FetchRegistry(context.Background(), server.URL)
	require.NoError(t, err)

	failing.Store(true)
	_, err = svc.FetchRegistry(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrUnreachable))

	// The previously cached copy is still intact and queryable
	stored, err := svc.GetRegistryFromStore(server.URL)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Demo", stored.Meta.Name)

	c, err := svc.GetCharacter("a")
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestRemoveRegistryLeavesNoOrphans(t *testing.T) {
	doc := `{"meta":{"name":"Demo"},"characters":[{"id":"a","name":"Alice"},{"id":"b","name":"Bob"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	defer server.Close()

	svc, _, _ := newStoreBackedService(t)

	_, err := svc.FetchRegistry(context.Background(), server.URL)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveRegistry(server.URL))

	characters, err := svc.ListCharacters()
	require.NoError(t, err)
	for _, c := range characters {
		assert.NotEqual(t, server.URL, c.RegistryURL)
	}
	assert.Empty(t, characters)
}

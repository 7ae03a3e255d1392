package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openfable/openfable/pkg/database/models"
	"github.com/openfable/openfable/pkg/registry"
	"github.com/openfable/openfable/pkg/registry/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAllRegistriesIsolatesFailures(t *testing.T) {
	first := "https://one.example.com/registry.json"
	second := "https://two.example.com/registry.json"
	third := "https://three.example.com/registry.json"

	client := &MockClient{
		Responses: map[string][]byte{
			first: []byte(`{"meta":{"name":"One"},"characters":[{"id":"a","name":"Alice"}]}`),
			third: []byte(`{"meta":{"name":"Three"},"characters":[{"id":"c","name":"Carol"}]}`),
		},
		Errors: map[string]error{
			second: errors.New("dial tcp: connection refused"),
		},
	}
	regStore := &MockRegistryStore{Registries: []models.Registry{
		{URL: first, Name: "One"},
		{URL: second, Name: "Two"},
		{URL: third, Name: "Three"},
	}}

	sync := service.NewSyncService(newTestService(client, regStore, &MockCharacterStore{}))
	results, err := sync.UpdateAllRegistries(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byURL := make(map[string]registry.SyncResult)
	for _, r := range results {
		byURL[r.URL] = r
	}

	assert.NoError(t, byURL[first].Err)
	assert.Equal(t, "One", byURL[first].Registry.Meta.Name)

	require.Error(t, byURL[second].Err)
	assert.True(t, errors.Is(byURL[second].Err, registry.ErrUnreachable))
	assert.Nil(t, byURL[second].Registry)

	assert.NoError(t, byURL[third].Err)
	assert.Equal(t, "Three", byURL[third].Registry.Meta.Name)

	// The two healthy registries were re-persisted despite the failure between them
	assert.Len(t, regStore.UpsertCalls, 2)
}

func TestUpdateAllRegistriesEmptyStore(t *testing.T) {
	sync := service.NewSyncService(newTestService(&MockClient{}, &MockRegistryStore{}, &MockCharacterStore{}))

	results, err := sync.UpdateAllRegistries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpdateAllRegistriesListFailure(t *testing.T) {
	regStore := &MockRegistryStore{ListErr: errors.New("database gone")}
	sync := service.NewSyncService(newTestService(&MockClient{}, regStore, &MockCharacterStore{}))

	_, err := sync.UpdateAllRegistries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database gone")
}

func TestUpdateAllRegistriesCollectsWarnings(t *testing.T) {
	url := "https://one.example.com/registry.json"
	client := &MockClient{Responses: map[string][]byte{
		url: []byte(`{"meta":{"name":"One"},"characters":[{"id":"a","name":"Alice"},{"id":"b","name":""}]}`),
	}}
	regStore := &MockRegistryStore{Registries: []models.Registry{{URL: url, Name: "One"}}}

	sync := service.NewSyncService(newTestService(client, regStore, &MockCharacterStore{}))
	results, err := sync.UpdateAllRegistries(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Warnings, 1)
	assert.Equal(t, "b", results[0].Warnings[0].CharacterID)
}

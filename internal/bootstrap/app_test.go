package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tokencount-backend/internal/documents"
	"tokencount-backend/internal/shared/config"
)

func TestBuildDevWithoutDatabaseUsesMemoryStore(t *testing.T) {
	app, err := Build(config.Config{Env: "dev"})
	require.NoError(t, err)
	require.Nil(t, app.DB)
	require.IsType(t, &documents.MemoryStore{}, app.Store)
	require.NotNil(t, app.Router)
	require.Len(t, app.Registry.MediaTypes(), 4)
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	_, err := Build(config.Config{Env: "production"})
	require.Error(t, err)
}

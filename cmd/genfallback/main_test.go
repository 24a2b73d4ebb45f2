package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCatalog(t *testing.T) {
	for _, name := range []string{"asteroids.json", "asteroids.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, writeCatalog(path, catalog.Samples()))

			got, err := catalog.FileSource{Path: path}.Asteroids(context.Background())
			require.NoError(t, err)
			assert.Equal(t, catalog.Samples(), got)
		})
	}
}

func TestCommittedFallbackMatchesSamples(t *testing.T) {
	got, err := catalog.FileSource{Path: filepath.Join("..", "..", "data", "asteroids.json")}.Asteroids(context.Background())
	require.NoError(t, err)
	require.Len(t, got, catalog.SampleCount)
	for i, want := range catalog.Records(catalog.Samples()) {
		rec := got[i].Record()
		assert.Equal(t, want.Label, rec.Label)
		require.NotNil(t, rec.DiameterM)
		require.NotNil(t, rec.VelocityKms)
		assert.InDelta(t, *want.DiameterM, *rec.DiameterM, 1e-9)
		assert.InDelta(t, *want.VelocityKms, *rec.VelocityKms, 1e-9)
	}
}

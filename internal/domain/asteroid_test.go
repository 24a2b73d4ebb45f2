package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func testCatalog() []AsteroidRecord {
	return []AsteroidRecord{
		{ID: "1", Label: "Asteroid 1", VelocityKms: ptr(5.7), DiameterM: ptr(50)},
		{ID: "2", Name: "(2015 AB)", DiameterM: ptr(120), MassKg: ptr(3e9)},
		{ID: "3", Label: "Bennu", VelocityKms: ptr(0)},
		{ID: "4", Label: "Velocityless", DiameterM: ptr(10)},
	}
}

func TestEstimateMassFromDiameter(t *testing.T) {
	mass := EstimateMassFromDiameter(100, 3000)
	assert.InEpsilon(t, 1.5708e9, mass, 1e-4)
	assert.Equal(t, (4.0/3.0)*math.Pi*math.Pow(50, 3)*3000, mass)

	assert.Equal(t, mass, EstimateMassFromDiameter(100, 0), "zero density selects the default")
	assert.InEpsilon(t, mass*2, EstimateMassFromDiameter(100, 6000), 1e-12)
}

func TestFindAsteroid(t *testing.T) {
	t.Run("label case-insensitive", func(t *testing.T) {
		rec, ok := FindAsteroid(testCatalog(), "asteroid 1")
		require.True(t, ok)
		assert.Equal(t, "1", rec.ID)
	})

	t.Run("name field", func(t *testing.T) {
		rec, ok := FindAsteroid(testCatalog(), "(2015 ab)")
		require.True(t, ok)
		assert.Equal(t, "2", rec.ID)
	})

	t.Run("no partial match", func(t *testing.T) {
		_, ok := FindAsteroid(testCatalog(), "Asteroid")
		assert.False(t, ok)
	})
}

func TestResolveInput(t *testing.T) {
	t.Run("record values fill gaps", func(t *testing.T) {
		in, err := ResolveInput(testCatalog(), "Asteroid 1", Overrides{}, 0, "")
		require.NoError(t, err)

		assert.Equal(t, 5.7, in.VelocityKms)
		assert.Equal(t, 50.0, in.DiameterM)
		assert.Equal(t, EstimateMassFromDiameter(50, DefaultDensityKgM3), in.MassKg)
	})

	t.Run("overrides win", func(t *testing.T) {
		in, err := ResolveInput(testCatalog(), "Asteroid 1", Overrides{VelocityKms: ptr(30), DiameterM: ptr(80)}, 0, TargetAir)
		require.NoError(t, err)

		assert.Equal(t, 30.0, in.VelocityKms)
		assert.Equal(t, 80.0, in.DiameterM)
		assert.Equal(t, EstimateMassFromDiameter(80, DefaultDensityKgM3), in.MassKg)
		assert.Equal(t, TargetAir, in.Target)
	})

	t.Run("record mass preferred over estimate", func(t *testing.T) {
		in, err := ResolveInput(testCatalog(), "(2015 AB)", Overrides{}, 0, "")
		require.NoError(t, err)

		assert.Equal(t, 3e9, in.MassKg)
		assert.Equal(t, FallbackVelocityKms, in.VelocityKms)
	})

	t.Run("estimate uses supplied density", func(t *testing.T) {
		in, err := ResolveInput(testCatalog(), "Velocityless", Overrides{}, 2000, "")
		require.NoError(t, err)
		assert.Equal(t, EstimateMassFromDiameter(10, 2000), in.MassKg)
	})

	t.Run("fallbacks when nothing is known", func(t *testing.T) {
		in, err := ResolveInput(testCatalog(), "Bennu", Overrides{}, 0, "")
		require.NoError(t, err)

		assert.Equal(t, FallbackVelocityKms, in.VelocityKms, "non-positive record velocity is ignored")
		assert.Equal(t, FallbackMassKg, in.MassKg)
		assert.Zero(t, in.DiameterM)

		_, err = ComputeDetailedImpact(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "unresolved diameter fails validation")
	})

	t.Run("unknown name with incomplete overrides", func(t *testing.T) {
		_, err := ResolveInput(testCatalog(), "Apophis", Overrides{VelocityKms: ptr(12)}, 0, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAsteroidNotFound))
		assert.False(t, errors.Is(err, ErrInvalidInput))

		var nf *AsteroidNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Apophis", nf.Name)
	})

	t.Run("unknown name with complete overrides", func(t *testing.T) {
		in, err := ResolveInput(testCatalog(), "Apophis", Overrides{VelocityKms: ptr(12), MassKg: ptr(6e10), DiameterM: ptr(370)}, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 370.0, in.DiameterM)
	})

	t.Run("no name returns overrides as-is", func(t *testing.T) {
		in, err := ResolveInput(nil, "", Overrides{MassKg: ptr(1)}, 0, "")
		require.NoError(t, err)
		assert.Equal(t, ImpactInput{MassKg: 1}, in)
	})
}

func TestAsteroidRecord_DisplayName(t *testing.T) {
	assert.Equal(t, "L", AsteroidRecord{ID: "1", Name: "N", Label: "L"}.DisplayName())
	assert.Equal(t, "N", AsteroidRecord{ID: "1", Name: "N"}.DisplayName())
	assert.Equal(t, "1", AsteroidRecord{ID: "1"}.DisplayName())
}

func TestNewAssessment(t *testing.T) {
	frozen := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	result, err := ComputeDetailedImpact(refInput())
	require.NoError(t, err)

	a := NewAssessment(VariantDetailed, "Bennu", result)
	b := NewAssessment(VariantDetailed, "Bennu", result)

	assert.Equal(t, frozen, a.ComputedAt)
	assert.Equal(t, VariantDetailed, a.Variant)
	assert.Equal(t, "Bennu", a.AsteroidName)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

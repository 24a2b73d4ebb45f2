package http_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/couchcryptid/neo-impact-service/internal/assistant"
	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- /api/asteroids ---

func TestAsteroids(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/api/asteroids", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	require.Len(t, body["data"], catalog.SampleCount)
	require.Len(t, body["list"], catalog.SampleCount)

	first := body["list"].([]any)[0].(map[string]any)
	assert.Equal(t, "Asteroid 1", first["name"])
	assert.InDelta(t, 5.0, first["diameter"], 1e-9)
	assert.InDelta(t, 5.0, first["velocity"], 1e-9)
	assert.InDelta(t, domain.EstimateMassFromDiameter(5, 3000), first["mass"], 1e-3)
}

func TestAsteroids_CatalogError(t *testing.T) {
	env := newTestEnv()
	env.catalog.err = errors.New("all sources failed")

	rec := env.do(http.MethodGet, "/api/asteroids", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "all sources failed", body["message"])
}

// --- /api/impact ---

func TestImpact_Defaults(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/impact", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.InDelta(t, 2e17, body["impact_energy_j"], 1)
	assert.InDelta(t, 2e13, body["momentum"], 1)
	assert.InDelta(t, 2e17/4.184e15/0.015, body["hiroshima_equivalent"], 1e-9)
	for _, key := range []string{"summary_text", "crater_diameter_km", "displacement_m", "seismic_magnitude_mw", "blast_radius_km"} {
		assert.NotContains(t, body, key)
	}

	input := body["input"].(map[string]any)
	assert.InDelta(t, 20.0, input["velocity_kms"], 0)
	assert.InDelta(t, 1e9, input["mass_kg"], 0)
	assert.InDelta(t, 100.0, input["diameter_m"], 0)
	assert.NotContains(t, input, "density_kg_m3")
	assert.NotContains(t, input, "target")

	require.Len(t, env.sink.assessments, 1)
	assert.Equal(t, domain.VariantBasic, env.sink.assessments[0].Variant)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.Computations.WithLabelValues("basic", "success")), 0)
}

func TestImpact_NumericStrings(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/impact", `{"velocity_kms":"20","mass_kg":" 1e9 ","diameter_m":100}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 2e17, decode(t, rec)["impact_energy_j"], 1)
}

func TestImpact_NullMeansDefault(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/impact", `{"velocity_kms":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 20.0, decode(t, rec)["input"].(map[string]any)["velocity_kms"], 0)
}

func TestImpact_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "non-numeric string", body: `{"velocity_kms":"fast"}`},
		{name: "boolean", body: `{"mass_kg":true}`},
		{name: "malformed json", body: `{"mass_kg":`},
		{name: "negative mass", body: `{"mass_kg":-5}`, wantField: "mass_kg"},
		{name: "zero velocity", body: `{"velocity_kms":0}`, wantField: "velocity_kms"},
		{name: "nan string", body: `{"diameter_m":"NaN"}`, wantField: "diameter_m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(http.MethodPost, "/api/impact", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, "Invalid numeric input", body["message"])
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, body["field"])
			}
			assert.Empty(t, env.sink.assessments)
		})
	}
}

// --- /api/impact-details ---

func TestImpactDetails_Explicit(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/impact-details",
		`{"velocity_kms":20,"mass_kg":1e9,"diameter_m":100,"target":"Water"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.InDelta(t, 17.2645, body["crater_depth_m"], 1e-3)
	assert.InDelta(t, 0.051793, body["crater_diameter_km"], 1e-5)
	assert.InDelta(t, 1128379.167, body["displacement_m"], 1e-2)
	assert.InDelta(t, 3.37197, body["seismic_magnitude_mw"], 1e-4)
	assert.InDelta(t, 57.4566, body["blast_radius_km"], 1e-3)
	assert.Equal(t, "Estimated impact energy: 2.000e+17 J (47.801 Mt). Approx. crater diameter 0.052 km.", body["summary_text"])
	assert.NotContains(t, body, "hiroshima_equivalent")
	assert.NotContains(t, body, "asteroid_name")

	input := body["input"].(map[string]any)
	assert.Equal(t, "water", input["target"])
	assert.InDelta(t, 3000.0, input["density_kg_m3"], 0)

	assert.Zero(t, env.catalog.calls, "no catalog lookup without a name")
	require.Len(t, env.sink.assessments, 1)
	assert.Equal(t, domain.VariantDetailed, env.sink.assessments[0].Variant)
}

func TestImpactDetails_FlooredMetricsStayInBody(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/impact-details",
		`{"velocity_kms":0.001,"mass_kg":0.000001,"diameter_m":0.01}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	require.Contains(t, body, "seismic_magnitude_mw")
	assert.InDelta(t, 0.0, body["seismic_magnitude_mw"], 0)
	assert.InDelta(t, 0.1, body["blast_radius_km"], 0)
	assert.InDelta(t, 0.001, body["crater_diameter_km"], 0)
	for _, key := range []string{"momentum", "impact_energy_j", "impact_energy_mt", "crater_depth_m", "displacement_m", "summary_text"} {
		assert.Contains(t, body, key)
	}
}

func TestImpact_OverflowNamesField(t *testing.T) {
	for _, route := range []string{"/api/impact", "/api/impact-details"} {
		t.Run(route, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(http.MethodPost, route, `{"velocity_kms":1e200,"mass_kg":1e200,"diameter_m":100}`)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			body := decode(t, rec)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, "momentum", body["field"])
			assert.Contains(t, body["detail"], "overflows")
			assert.Empty(t, env.sink.assessments)
		})
	}
}

func TestImpactDetails_ByAsteroidName(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/impact-details", `{"asteroid_name":"asteroid 3"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "asteroid 3", body["asteroid_name"])
	input := body["input"].(map[string]any)
	assert.InDelta(t, 6.4, input["velocity_kms"], 1e-12)
	assert.InDelta(t, 9.0, input["diameter_m"], 1e-9)
	assert.InDelta(t, domain.EstimateMassFromDiameter(9, 3000), input["mass_kg"], 1e-3)

	require.Len(t, env.sink.assessments, 1)
	assert.Equal(t, "asteroid 3", env.sink.assessments[0].AsteroidName)
}

func TestImpactDetails_NameAliasAndOverride(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/impact-details",
		`{"name":"Asteroid 1","velocity_kms":"30","density_kg_m3":1000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	input := decode(t, rec)["input"].(map[string]any)
	assert.InDelta(t, 30.0, input["velocity_kms"], 0)
	assert.InDelta(t, 5.0, input["diameter_m"], 1e-9)
	assert.InDelta(t, domain.EstimateMassFromDiameter(5, 1000), input["mass_kg"], 1e-6)
	assert.InDelta(t, 1000.0, input["density_kg_m3"], 0)
}

func TestImpactDetails_UnknownAsteroid(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/impact-details", `{"asteroid_name":"Planet X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "Planet X")
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.Computations.WithLabelValues("detailed", "not_found")), 0)
}

func TestImpactDetails_CompleteOverridesSkipCatalog(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/impact-details",
		`{"asteroid_name":"Planet X","velocity_kms":20,"mass_kg":1e9,"diameter_m":100}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, env.catalog.calls)
}

func TestImpactDetails_CatalogUnavailable(t *testing.T) {
	env := newTestEnv()
	env.catalog.err = errors.New("upstream down")

	rec := env.do(http.MethodPost, "/api/impact-details", `{"asteroid_name":"Asteroid 1"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestImpactDetails_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing fields without asteroid", body: `{}`, wantField: "velocity_kms"},
		{name: "unknown target", body: `{"velocity_kms":20,"mass_kg":1e9,"diameter_m":100,"target":"lava"}`, wantField: "target"},
		{name: "negative density", body: `{"velocity_kms":20,"mass_kg":1e9,"diameter_m":100,"density_kg_m3":-1}`, wantField: "density_kg_m3"},
		{name: "non-numeric", body: `{"velocity_kms":"x","mass_kg":1e9,"diameter_m":100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestEnv().do(http.MethodPost, "/api/impact-details", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, "Invalid numeric input or missing asteroid data", body["message"])
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, body["field"])
			}
		})
	}
}

// --- /api/ai-explain and /api/ask-ai ---

func TestExplain_Canned(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/ai-explain", `{"term":"impact"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "impact", body["term"])
	assert.Contains(t, body["explanation"], "kinetic energy")
}

func TestExplain_DefaultTerm(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/ai-explain", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asteroid", decode(t, rec)["term"])
}

func TestExplain_UpstreamFailure(t *testing.T) {
	rec := newTestEnv(withAssistant(failingAssistant{})).do(http.MethodPost, "/api/ai-explain", `{"term":"bolide"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "External LLM call failed", body["message"])
	assert.Contains(t, body["detail"], "status 503")
}

func TestAsk_Fallback(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/ask-ai", `{"query":"What is Bennu?","language":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assistant.FallbackAnswer, decode(t, rec)["response"])
}

func TestAsk_UnexpectedErrorStillAnswers(t *testing.T) {
	rec := newTestEnv(withAssistant(failingAssistant{})).do(http.MethodPost, "/api/ask-ai", `{"query":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assistant.FallbackAnswer, decode(t, rec)["response"])
}

func TestAsk_EmptyQuery(t *testing.T) {
	rec := newTestEnv().do(http.MethodPost, "/api/ask-ai", `{"query":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package kafka

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/config"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 4, 13, 21, 46, 0, 0, time.UTC)
	a := domain.Assessment{
		ID:           "0b7c9c1e-7a53-4c39-9d3f-2f0f8f1c2a11",
		Variant:      domain.VariantDetailed,
		AsteroidName: "Apophis",
		Result:       domain.ImpactResult{EnergyJ: 2e17, CraterDepthM: 17.26},
		ComputedAt:   now,
	}

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte(a.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"variant":"detailed"`)
	assert.Contains(t, string(msg.Value), `"asteroid_name":"Apophis"`)
	assert.Contains(t, string(msg.Value), `"impact_energy_j":200000000000000000`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "variant", msg.Headers[0].Key)
	assert.Equal(t, []byte("detailed"), msg.Headers[0].Value)
	assert.Equal(t, "computed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_NonFinite(t *testing.T) {
	_, err := serializeToMessage(domain.Assessment{
		ID:     "bad",
		Result: domain.ImpactResult{EnergyJ: math.Inf(1)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serialize assessment")
}

func TestLoadBatch_Empty(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaImpactTopic: "impact-assessments"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.NoError(t, w.LoadBatch(context.Background(), nil))
}

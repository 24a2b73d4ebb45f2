package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/neo-impact-service/internal/observability"
	"gopkg.in/yaml.v3"
)

// Source supplies the asteroid catalog.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	Asteroids(ctx context.Context) ([]Asteroid, error)
}

// FileSource reads a catalog from a JSON or YAML file.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "file" }

func (f FileSource) Asteroids(_ context.Context) ([]Asteroid, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Decode(f.Path, data)
}

// Decode parses catalog bytes. Files ending in .yaml or .yml are YAML,
// anything else is JSON.
func Decode(path string, data []byte) ([]Asteroid, error) {
	var out []Asteroid
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	}
	return out, nil
}

// Encode renders a catalog in the format implied by path, mirroring Decode.
func Encode(path string, list []Asteroid) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("encode yaml catalog: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json catalog: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// SampleCount is the size of the generated demo catalog.
const SampleCount = 24

// SampleSource generates a deterministic demo catalog. It never fails.
type SampleSource struct{}

func (SampleSource) Name() string { return "samples" }

func (SampleSource) Asteroids(_ context.Context) ([]Asteroid, error) {
	return Samples(), nil
}

// Samples returns SampleCount asteroids spread on a ring around the scene origin.
func Samples() []Asteroid {
	out := make([]Asteroid, 0, SampleCount)
	for i := range SampleCount {
		out = append(out, Asteroid{
			ID:          ID(itoa(i + 1)),
			Label:       "Asteroid " + itoa(i+1),
			R:           4.5 + float64(i%6)*0.15 + float64(i%3)*0.05,
			Theta:       float64(i) / float64(SampleCount) * 2 * math.Pi,
			Y:           float64(i%5-2) * 0.06,
			Size:        float(0.05 + float64(i%5)*0.02),
			VelocityKms: float(math.Round((5+float64(i%7)*0.7)*100) / 100),
		})
	}
	return out
}

// Chain tries each source in order and returns the first non-empty catalog.
type Chain struct {
	sources []Source
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewChain creates a fallback chain over the given sources.
func NewChain(logger *slog.Logger, metrics *observability.Metrics, sources ...Source) *Chain {
	return &Chain{sources: sources, logger: logger, metrics: metrics}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Asteroids(ctx context.Context) ([]Asteroid, error) {
	var errs []error
	for _, src := range c.sources {
		list, err := src.Asteroids(ctx)
		if err != nil {
			c.logger.Warn("catalog source failed, falling back", "source", src.Name(), "error", err)
			c.metrics.CatalogFetches.WithLabelValues(src.Name(), "error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if len(list) == 0 {
			c.metrics.CatalogFetches.WithLabelValues(src.Name(), "empty").Inc()
			continue
		}
		c.metrics.CatalogFetches.WithLabelValues(src.Name(), "success").Inc()
		return list, nil
	}
	if len(errs) == 0 {
		return nil, errors.New("no catalog source returned data")
	}
	return nil, errors.Join(errs...)
}

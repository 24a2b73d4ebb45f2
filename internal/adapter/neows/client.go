package neows

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client implements catalog.Source using NASA's Near Earth Object Web Service.
type Client struct {
	apiKey     string
	pageSize   int
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NeoWs browse client.
func NewClient(apiKey, baseURL string, pageSize int, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:   apiKey,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *Client) Name() string { return "neows" }

// Asteroids fetches one browse page and maps it onto the scene ring.
func (c *Client) Asteroids(ctx context.Context) ([]catalog.Asteroid, error) {
	params := url.Values{
		"api_key": {c.apiKey},
		"size":    {strconv.Itoa(c.pageSize)},
	}
	fullURL := c.baseURL + "/neo/browse?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamLatency.WithLabelValues("neows").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("neows browse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("neows API error: status %d: %s", resp.StatusCode, body)
	}

	var page browseResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("neows page fetched", "count", len(page.NearEarthObjects))
	return toAsteroids(page.NearEarthObjects), nil
}

func toAsteroids(objects []neo) []catalog.Asteroid {
	n := len(objects)
	out := make([]catalog.Asteroid, 0, n)
	for i, o := range objects {
		a := catalog.Asteroid{
			ID:            catalog.ID(o.NeoReferenceID),
			Label:         o.Name,
			R:             4.8 + float64(i%6)*0.15,
			Theta:         float64(i) / float64(max(1, n)) * 2 * math.Pi,
			Size:          ptr(0.08),
			CloseApproach: o.hasMissDistance(),
		}
		if a.ID == "" {
			a.ID = catalog.ID(strconv.Itoa(i))
		}
		if a.Label == "" {
			a.Label = "NEO " + strconv.Itoa(i)
		}
		if dia, ok := o.meanDiameterMeters(); ok {
			a.Size = ptr(math.Max(0.02, dia/1000))
			a.DiameterM = ptr(dia)
		}
		if v, ok := o.firstVelocityKms(); ok {
			a.VelocityKms = ptr(v)
		}
		out = append(out, a)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// NeoWs API response types.

type browseResponse struct {
	NearEarthObjects []neo `json:"near_earth_objects"`
}

type neo struct {
	NeoReferenceID    string            `json:"neo_reference_id"`
	Name              string            `json:"name"`
	EstimatedDiameter estimatedDiameter `json:"estimated_diameter"`
	CloseApproachData []closeApproach   `json:"close_approach_data"`
}

type estimatedDiameter struct {
	Meters *diameterRange `json:"meters"`
}

type diameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

type closeApproach struct {
	RelativeVelocity struct {
		KilometersPerSecond string `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance map[string]string `json:"miss_distance"`
}

func (n neo) meanDiameterMeters() (float64, bool) {
	m := n.EstimatedDiameter.Meters
	if m == nil {
		return 0, false
	}
	dia := (m.Min + m.Max) / 2
	return dia, dia > 0
}

func (n neo) hasMissDistance() bool {
	for _, ca := range n.CloseApproachData {
		if len(ca.MissDistance) > 0 {
			return true
		}
	}
	return false
}

func (n neo) firstVelocityKms() (float64, bool) {
	for _, ca := range n.CloseApproachData {
		v, err := strconv.ParseFloat(ca.RelativeVelocity.KilometersPerSecond, 64)
		if err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

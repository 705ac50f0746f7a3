package geology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/observability"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://secure.dccae.gov.ie/gsi-wfs/public"

	// Fallback is the user-visible sentence for every failure mode:
	// unreachable service, malformed response, or no feature at the point.
	Fallback = "Geological information unavailable."

	summaryTemplate = "The underlying bedrock geology is primarily %s."
)

// Summarizer produces a best-effort bedrock sentence for a coordinate.
// It never fails: geology data is optional in the report.
type Summarizer interface {
	Summarize(ctx context.Context, coord domain.Coordinate) string
}

// Client implements Summarizer against the GSI public WFS bedrock layer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

func NewClient(timeout time.Duration, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
	}
}

// Summarize queries the bedrock100k layer with a zero-area bounding box at
// the exact point. The first feature's ROCKNAME, lower-cased, goes into the
// summary sentence; anything else degrades to Fallback.
func (c *Client) Summarize(ctx context.Context, coord domain.Coordinate) string {
	logger := zerolog.Ctx(ctx)

	params := url.Values{
		"service":      {"WFS"},
		"version":      {"1.1.0"},
		"request":      {"GetFeature"},
		"typeName":     {"bedrock100k"},
		"srsName":      {"EPSG:4326"},
		"outputFormat": {"application/json"},
		"bbox":         {fmt.Sprintf("%v,%v,%v,%v", coord.Lng, coord.Lat, coord.Lng, coord.Lat)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return c.degrade(logger, "error", err, "failed to create geology request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ExternalRequestDuration.WithLabelValues("gsi").Observe(time.Since(start).Seconds())
	if err != nil {
		// Service unreachable: same sentence as "no data", but logged apart.
		return c.degrade(logger, "error", err, "geology service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.degrade(logger, "error", fmt.Errorf("status %d", resp.StatusCode), "geology service error")
	}

	var wfsResp response
	if err := json.NewDecoder(resp.Body).Decode(&wfsResp); err != nil {
		return c.degrade(logger, "error", err, "failed to decode geology response")
	}

	if len(wfsResp.Features) == 0 || wfsResp.Features[0].Properties.RockName == "" {
		logger.Info().
			Float64("lat", coord.Lat).
			Float64("lng", coord.Lng).
			Msg("no bedrock feature at point")
		c.metrics.GeologyLookups.WithLabelValues("empty").Inc()
		return Fallback
	}

	c.metrics.GeologyLookups.WithLabelValues("success").Inc()
	rock := strings.ToLower(wfsResp.Features[0].Properties.RockName)
	return fmt.Sprintf(summaryTemplate, rock)
}

func (c *Client) degrade(logger *zerolog.Logger, outcome string, err error, msg string) string {
	logger.Warn().Err(err).Msg(msg)
	c.metrics.GeologyLookups.WithLabelValues(outcome).Inc()
	return Fallback
}

// GSI WFS response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

type properties struct {
	RockName string `json:"ROCKNAME"`
}

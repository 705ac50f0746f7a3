package maprender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/observability"
	"github.com/rs/zerolog"
)

const defaultStaticBaseURL = "https://api.mapbox.com"

// StaticProvider fetches a pre-rendered snapshot from the Mapbox Static
// Images API: streets style, a large red pin at the coordinate, fixed zoom
// and dimensions at @2x density.
type StaticProvider struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

func NewStaticProvider(token string, timeout time.Duration, metrics *observability.Metrics) *StaticProvider {
	return &StaticProvider{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultStaticBaseURL,
		metrics: metrics,
	}
}

func (p *StaticProvider) Render(ctx context.Context, coord domain.Coordinate) (domain.MapImage, error) {
	logger := zerolog.Ctx(ctx)

	marker := fmt.Sprintf("pin-l+ff0000(%v,%v)", coord.Lng, coord.Lat)
	u := fmt.Sprintf("%s/styles/v1/mapbox/streets-v11/static/%s/%v,%v,%d/%dx%d@2x?access_token=%s",
		p.baseURL, marker, coord.Lng, coord.Lat, Zoom, Width, Height, p.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.MapImage{}, fmt.Errorf("create static map request: %w", err)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	p.metrics.ExternalRequestDuration.WithLabelValues("mapbox").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn().Err(err).Msg("static map request failed")
		p.metrics.MapRenders.WithLabelValues("static", "error").Inc()
		return domain.MapImage{}, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode).Msg("static map service error")
		p.metrics.MapRenders.WithLabelValues("static", "error").Inc()
		return domain.MapImage{}, ErrUnavailable
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read static map body")
		p.metrics.MapRenders.WithLabelValues("static", "error").Inc()
		return domain.MapImage{}, ErrUnavailable
	}

	p.metrics.MapRenders.WithLabelValues("static", "success").Inc()
	return domain.MapImage{Data: data}, nil
}

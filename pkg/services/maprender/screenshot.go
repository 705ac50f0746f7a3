package maprender

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// leafletPage is a self-contained interactive map centered on the resolved
// coordinate with a single marker. Tile and library assets load over the
// network inside the headless browser.
const leafletPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>html, body, #map { margin: 0; width: 100%%; height: 100%%; }</style>
</head>
<body>
  <div id="map"></div>
  <script>
    var map = L.map('map').setView([%v, %v], %d);
    L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);
    L.marker([%v, %v]).addTo(map);
  </script>
</body>
</html>
`

// ScreenshotProvider renders the Leaflet page in headless Chrome and
// captures the window. Tile loading is asynchronous with no load signal
// exposed, so a bounded settle delay stands in for one.
type ScreenshotProvider struct {
	settle  time.Duration
	timeout time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

func NewScreenshotProvider(
	settle, timeout time.Duration,
	clock clockwork.Clock,
	metrics *observability.Metrics,
) *ScreenshotProvider {
	return &ScreenshotProvider{
		settle:  settle,
		timeout: timeout,
		clock:   clock,
		metrics: metrics,
	}
}

// Render captures a full-window screenshot of the rendered map. Every
// browser failure (launch, navigation, capture) is mapped to ErrUnavailable
// so the caller sees the same contract as the static provider.
func (p *ScreenshotProvider) Render(ctx context.Context, coord domain.Coordinate) (domain.MapImage, error) {
	logger := zerolog.Ctx(ctx)

	start := time.Now()
	data, err := p.capture(ctx, coord)
	p.metrics.ExternalRequestDuration.WithLabelValues("chrome").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn().Err(err).Msg("map screenshot capture failed")
		p.metrics.MapRenders.WithLabelValues("screenshot", "error").Inc()
		return domain.MapImage{}, ErrUnavailable
	}

	p.metrics.MapRenders.WithLabelValues("screenshot", "success").Inc()
	return domain.MapImage{Data: data}, nil
}

func (p *ScreenshotProvider) capture(ctx context.Context, coord domain.Coordinate) ([]byte, error) {
	// Scratch artifacts are isolated per run so concurrent submissions
	// can never trample each other's page.
	dir := filepath.Join(os.TempDir(), "subsidence-map-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	page := filepath.Join(dir, "map.html")
	html := fmt.Sprintf(leafletPage, coord.Lat, coord.Lng, Zoom, coord.Lat, coord.Lng)
	if err := os.WriteFile(page, []byte(html), 0o600); err != nil {
		return nil, fmt.Errorf("write map page: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(Width, Height),
		chromedp.Navigate("file://"+page),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitSettle(ctx, p.clock, p.settle)
		}),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("drive headless browser: %w", err)
	}
	return buf, nil
}

// waitSettle blocks for the settle delay or until the context is done.
func waitSettle(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	select {
	case <-clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

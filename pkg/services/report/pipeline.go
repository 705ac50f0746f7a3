package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/observability"
	"github.com/claimworks/subsidence-report/pkg/services/config"
	"github.com/claimworks/subsidence-report/pkg/services/geocode"
	"github.com/claimworks/subsidence-report/pkg/services/geology"
	"github.com/claimworks/subsidence-report/pkg/services/maprender"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Result carries the assembled document plus the artifacts mirrored back
// to the interactive display.
type Result struct {
	Coordinate     domain.Coordinate
	GeologySummary string
	MapImage       *domain.MapImage
	Document       domain.ReportDocument
}

// Pipeline sequences one submission: geocode, then geology lookup and map
// render in parallel, then assembly. Only credential and resolution
// failures halt a run; everything else degrades into report content.
type Pipeline struct {
	creds    config.Credentials
	geocoder geocode.Resolver
	geology  geology.Summarizer
	maps     maprender.Provider
	metrics  *observability.Metrics
}

func NewPipeline(
	creds config.Credentials,
	geocoder geocode.Resolver,
	geologySvc geology.Summarizer,
	maps maprender.Provider,
	metrics *observability.Metrics,
) *Pipeline {
	return &Pipeline{
		creds:    creds,
		geocoder: geocoder,
		geology:  geologySvc,
		maps:     maps,
		metrics:  metrics,
	}
}

// Generate runs the full pipeline for one claim. The returned error is a
// *domain.ConfigError, domain.ErrAreaCodeNotFound, or nil.
func (p *Pipeline) Generate(ctx context.Context, claim domain.ClaimInput) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if err := p.checkCredentials(); err != nil {
		p.metrics.PipelineHalts.WithLabelValues("config").Inc()
		return nil, err
	}

	coord, err := p.geocoder.Resolve(ctx, claim.Eircode)
	if err != nil {
		if domain.IsConfigError(err) {
			p.metrics.PipelineHalts.WithLabelValues("config").Inc()
			return nil, err
		}
		p.metrics.PipelineHalts.WithLabelValues("resolution").Inc()
		if errors.Is(err, domain.ErrAreaCodeNotFound) {
			return nil, err
		}
		// Anything unexpected from the resolver still halts the run.
		return nil, fmt.Errorf("%w: %s", domain.ErrAreaCodeNotFound, err)
	}

	logger.Info().
		Str("eircode", claim.Eircode).
		Str("location", coord.String()).
		Msg("location resolved")

	// Geology and map are independent of each other; both degrade rather
	// than fail, so the group never returns an error.
	var (
		summary  string
		mapImage *domain.MapImage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary = p.geology.Summarize(gctx, coord)
		return nil
	})
	g.Go(func() error {
		img, renderErr := p.maps.Render(gctx, coord)
		if renderErr != nil {
			logger.Warn().Err(renderErr).Msg("continuing without map image")
			return nil
		}
		mapImage = &img
		return nil
	})
	_ = g.Wait()

	doc := Assemble(claim, &coord, summary, mapImage)
	p.metrics.ReportsGenerated.Inc()

	return &Result{
		Coordinate:     coord,
		GeologySummary: summary,
		MapImage:       mapImage,
		Document:       doc,
	}, nil
}

func (p *Pipeline) checkCredentials() error {
	if p.creds.OpenCageKey == "" {
		return &domain.ConfigError{Field: "OPENCAGE_API_KEY"}
	}
	if p.creds.MapboxToken == "" {
		return &domain.ConfigError{Field: "MAPBOX_API_KEY"}
	}
	return nil
}

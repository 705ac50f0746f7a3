package maprender

import (
	"context"
	"errors"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
)

// Map geometry shared by both strategies: the output must look the same to
// the assembler regardless of how it was produced.
const (
	Zoom   = 16
	Width  = 600
	Height = 400
)

// ErrUnavailable is the uniform soft failure for both strategies. The
// pipeline substitutes a placeholder note and carries on.
var ErrUnavailable = errors.New("map image unavailable")

// Provider produces a single raster snapshot for a coordinate. Callers
// must not depend on which strategy backs it.
type Provider interface {
	Render(ctx context.Context, coord domain.Coordinate) (domain.MapImage, error)
}

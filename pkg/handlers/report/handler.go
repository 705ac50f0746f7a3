package report

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/claimworks/subsidence-report/pkg/models/api"
	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/services/docwriter"
	"github.com/claimworks/subsidence-report/pkg/services/report"
	"github.com/rs/zerolog"
)

const (
	maxUploadBytes  = 32 << 20
	dateParamLayout = "2006-01-02"
)

// photoExtensions mirrors the upload filter of the submission form.
var photoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Generator runs one report pipeline per submission.
type Generator interface {
	Generate(ctx context.Context, claim domain.ClaimInput) (*report.Result, error)
}

type Handler struct {
	pipeline Generator
}

func NewHandler(pipeline Generator) *Handler {
	return &Handler{pipeline: pipeline}
}

// GenerateReport runs the pipeline and streams the .docx artifact back as
// a download with its fixed filename.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	claim, err := parseClaim(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.pipeline.Generate(ctx, claim)
	if err != nil {
		writePipelineError(w, logger, err)
		return
	}

	buf, err := docwriter.Write(result.Document)
	if err != nil {
		logger.Error().Err(err).Msg("failed to serialize report")
		writeError(w, http.StatusInternalServerError, "failed to serialize report")
		return
	}

	w.Header().Set("Content-Type", docwriter.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", docwriter.ReportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("failed to write report body")
	}
}

// PreviewReport runs the same pipeline but returns the mirror artifacts as
// JSON instead of the document: resolved location, geology sentence, and
// the map snapshot.
func (h *Handler) PreviewReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	claim, err := parseClaim(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.pipeline.Generate(ctx, claim)
	if err != nil {
		writePipelineError(w, logger, err)
		return
	}

	preview := api.ReportPreview{
		Latitude:       result.Coordinate.Lat,
		Longitude:      result.Coordinate.Lng,
		Location:       result.Coordinate.String(),
		GeologySummary: result.GeologySummary,
		MapAvailable:   result.MapImage != nil,
		PhotoCount:     len(claim.HistoricalPhotos),
	}
	if result.MapImage != nil {
		preview.MapImage = base64.StdEncoding.EncodeToString(result.MapImage.Data)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(preview); err != nil {
		logger.Error().Err(err).Msg("failed to encode preview")
	}
}

func parseClaim(r *http.Request) (domain.ClaimInput, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return domain.ClaimInput{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	inspectionDate, err := time.Parse(dateParamLayout, r.FormValue("inspection_date"))
	if err != nil {
		return domain.ClaimInput{}, fmt.Errorf("inspection_date must be YYYY-MM-DD")
	}

	claim := domain.ClaimInput{
		Insurer:        r.FormValue("insurer"),
		ClaimRef:       r.FormValue("claim_ref"),
		Address:        r.FormValue("address"),
		Eircode:        strings.TrimSpace(r.FormValue("eircode")),
		InspectionDate: inspectionDate,
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["photos"] {
			photo, err := readPhoto(header)
			if err != nil {
				return domain.ClaimInput{}, err
			}
			if photo != nil {
				claim.HistoricalPhotos = append(claim.HistoricalPhotos, *photo)
			}
		}
	}

	return claim, nil
}

// readPhoto loads one uploaded file, skipping anything that is not an
// accepted image type.
func readPhoto(header *multipart.FileHeader) (*domain.Photo, error) {
	if !photoExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded photo %q: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded photo %q: %w", header.Filename, err)
	}

	return &domain.Photo{Filename: header.Filename, Data: data}, nil
}

func writePipelineError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	switch {
	case domain.IsConfigError(err):
		logger.Error().Err(err).Msg("pipeline blocked by configuration")
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, domain.ErrAreaCodeNotFound):
		writeError(w, http.StatusUnprocessableEntity, "Unable to resolve Eircode.")
	default:
		logger.Error().Err(err).Msg("pipeline failed")
		writeError(w, http.StatusInternalServerError, "report generation failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Error: msg})
}

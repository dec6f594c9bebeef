package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/de-tools/traffic-atlas/pkg/adapters"
	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	reportsvc "github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/rs/zerolog"
)

const (
	msgMisconfigured = "API token or account ID not set."
	msgNoZones       = "No zones found or error fetching zones."
	msgInternal      = "internal error"
)

var errMisconfigured = errors.New("backend credentials not configured")

type Generator interface {
	Generate(ctx context.Context, creds domain.Credentials) (*domain.Report, error)
	ListZones(ctx context.Context, creds domain.Credentials) ([]domain.Zone, error)
}

type Handler struct {
	generator      Generator
	creds          domain.Credentials
	requireAccount bool
}

func NewHandler(generator Generator, creds domain.Credentials, requireAccount bool) *Handler {
	return &Handler{
		generator:      generator,
		creds:          creds,
		requireAccount: requireAccount,
	}
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.checkCredentials(); err != nil {
		writeError(ctx, w, err)
		return
	}

	includeZones, _ := strconv.ParseBool(r.URL.Query().Get("include_zones"))

	report, err := h.generator.Generate(ctx, h.creds)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapReportDomainToApi(report, includeZones))
}

func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.checkCredentials(); err != nil {
		writeError(ctx, w, err)
		return
	}

	zones, err := h.generator.ListZones(ctx, h.creds)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapZonesDomainToApi(zones))
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, api.Health{Status: "ok"})
}

func (h *Handler) checkCredentials() error {
	if !h.creds.HasToken() || (h.requireAccount && h.creds.AccountID == "") {
		return errMisconfigured
	}
	return nil
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := zerolog.Ctx(ctx)

	switch {
	case errors.Is(err, errMisconfigured):
		logger.Error().Err(err).Msg("report requested without backend credentials")
		writeJSON(ctx, w, http.StatusInternalServerError, api.Error{Error: msgMisconfigured})
	case errors.Is(err, reportsvc.ErrNoZones):
		logger.Warn().Err(err).Msg("zone listing produced nothing")
		writeJSON(ctx, w, http.StatusBadGateway, api.Error{Error: msgNoZones})
	default:
		logger.Error().Err(err).Msg("unexpected report failure")
		writeJSON(ctx, w, http.StatusInternalServerError, api.Error{Error: msgInternal})
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

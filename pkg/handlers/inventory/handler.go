package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/api"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/services/inventory"
	"github.com/de-tools/repo-atlas/pkg/services/workflow"
)

type DashboardProvider interface {
	Summary(ctx context.Context) (*domain.MetricsSummary, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
}

type RateReporter interface {
	RateUsage() *domain.RateUsage
}

type Handler struct {
	explorer   inventory.Explorer
	controller workflow.Controller
	dashboard  DashboardProvider
	rate       RateReporter
}

func NewHandler(
	explorer inventory.Explorer,
	controller workflow.Controller,
	dashboard DashboardProvider,
	rate RateReporter,
) *Handler {
	return &Handler{
		explorer:   explorer,
		controller: controller,
		dashboard:  dashboard,
		rate:       rate,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stale, err := h.controller.IsStale(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	summary, err := h.dashboard.Summary(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	res := api.Status{
		Stale:      stale,
		InProgress: h.controller.InProgress(),
		Summary:    adapters.MapMetricsSummaryDomainToApi(summary),
	}
	if h.rate != nil {
		res.Rate = adapters.MapRateUsageDomainToApi(h.rate.RateUsage())
	}
	writeJSON(ctx, w, http.StatusOK, res)
}

// StartSync triggers a background sync and answers 202 without waiting for it.
func (h *Handler) StartSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.controller.Start(ctx)
	if errors.Is(err, workflow.ErrSyncInProgress) {
		writeError(ctx, w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusAccepted, api.SyncAccepted{Status: string(domain.SyncStatusRunning)})
}

func (h *Handler) SyncReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report := h.controller.LastReport()
	if report == nil {
		writeError(ctx, w, http.StatusNotFound, errors.New("no sync has run yet"))
		return
	}
	writeJSON(ctx, w, http.StatusOK, adapters.MapSyncReportDomainToApi(*report))
}

func (h *Handler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	repos, err := h.explorer.ListRepositories(ctx, domain.RepositoryFilter{
		Pod:             query.Get("pod"),
		EnvironmentType: query.Get("environment"),
		Search:          query.Get("search"),
	})
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	response := make([]api.Repository, 0, len(repos))
	for _, repo := range repos {
		response = append(response, adapters.MapRepositoryDomainToApi(repo))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ListFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pods, err := h.explorer.Pods(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	envs, err := h.explorer.EnvironmentTypes(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, api.Filters{Pods: pods, EnvironmentTypes: envs})
}

func (h *Handler) RepositoryOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("invalid repository id: %w", err))
		return
	}

	repo, err := h.explorer.GetRepository(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(ctx, w, http.StatusNotFound, fmt.Errorf("repository %d not found", id))
		return
	}
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	rules, err := h.explorer.ListOwnershipRules(ctx, id)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	response := api.RepositoryOwnership{
		Repository: adapters.MapRepositoryDomainToApi(*repo),
		Rules:      make([]api.OwnershipRule, 0, len(rules)),
	}
	for _, rule := range rules {
		response.Rules = append(response.Rules, adapters.MapOwnershipRuleDomainToApi(rule))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teams, err := h.explorer.ListTeams(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	response := make([]api.Team, 0, len(teams))
	for _, team := range teams {
		response = append(response, adapters.MapTeamDomainToApi(team))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ListFindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFindingFilter(r)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	list, err := h.explorer.ListFindings(ctx, filter)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	response := make([]api.Finding, 0, len(list))
	for _, f := range list {
		response = append(response, adapters.MapFindingDomainToApi(f))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) FindingStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dashboard, err := h.dashboard.Dashboard(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, adapters.MapDashboardDomainToApi(*dashboard))
}

func (h *Handler) ListCompliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks, err := h.explorer.ListCompliance(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	response := make([]api.ComplianceCheck, 0, len(checks))
	for _, c := range checks {
		response = append(response, adapters.MapComplianceCheckDomainToApi(c))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func parseFindingFilter(r *http.Request) (domain.FindingFilter, error) {
	query := r.URL.Query()
	filter := domain.FindingFilter{
		RepositoryName: query.Get("repository"),
		Tool:           domain.Tool(query.Get("tool")),
		Severity:       query.Get("severity"),
		OwnerStatus:    domain.OwnerStatus(query.Get("owner")),
	}
	return filter, filter.Validate()
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

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	zerolog.Ctx(ctx).Warn().
		Err(err).
		Int("status", status).
		Msg("request failed")
	writeJSON(ctx, w, status, api.Error{Error: err.Error()})
}

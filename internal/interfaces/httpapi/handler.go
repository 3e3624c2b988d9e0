package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mraditya/leaguesim/internal/platform/logging"
	"github.com/mraditya/leaguesim/internal/usecase"
)

type Handler struct {
	orc         *usecase.Orchestrator
	projections *usecase.Projections
	stream      *Stream
	logger      *logging.Logger
}

func NewHandler(
	orc *usecase.Orchestrator,
	projections *usecase.Projections,
	stream *Stream,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		orc:         orc,
		projections: projections,
		stream:      stream,
		logger:      logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetWorld(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWorld")
	defer span.End()

	summary, err := h.projections.WorldSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "world summary failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	summary, err := h.projections.WorldSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary.Leagues)
}

func (h *Handler) GetLeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueTable")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	rows, err := h.projections.LeagueTable(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "league table failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) ListTopScorers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopScorers")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	limit, err := queryLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.projections.TopScorers(ctx, leagueID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "top scorers failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) ListTopAssisters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopAssisters")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	limit, err := queryLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.projections.TopAssisters(ctx, leagueID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "top assisters failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) ListBestDefense(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBestDefense")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	rows, err := h.projections.BestDefense(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "best defense failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	t, err := h.projections.TeamDetail(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "team detail failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, t)
}

func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeadToHead")
	defer span.End()

	teamID := r.PathValue("teamID")
	opponentID := r.URL.Query().Get("opponent")
	if opponentID == "" {
		writeError(ctx, w, fmt.Errorf("%w: opponent query parameter is required", usecase.ErrInvalidInput))
		return
	}

	view, err := h.projections.HeadToHead(ctx, teamID, opponentID)
	if err != nil {
		h.logger.WarnContext(ctx, "head to head failed",
			"team_id", teamID, "opponent_id", opponentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) GetPlayerSeasonStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerSeasonStats")
	defer span.End()

	playerID := r.PathValue("playerID")
	season := 0
	if raw := r.URL.Query().Get("season"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: season must be a non-negative year", usecase.ErrInvalidInput))
			return
		}
		season = parsed
	}

	view, err := h.projections.PlayerSeasonStats(ctx, playerID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "player season stats failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) ListMatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchEvents")
	defer span.End()

	matchID := r.PathValue("matchID")
	envs, err := h.projections.MatchEvents(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match events failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, envs)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Advance")
	defer span.End()

	summary, err := h.orc.Advance(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "advance failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "matchday advanced",
		"season", summary.Season,
		"matchday", summary.Matchday,
		"matches_played", summary.MatchesPlayed,
		"events_appended", summary.EventsAppended)
	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Reset")
	defer span.End()

	if r.URL.Query().Get("confirm") != "true" {
		writeError(ctx, w, fmt.Errorf("%w: reset requires confirm=true", usecase.ErrInvalidInput))
		return
	}

	if err := h.orc.Reset(ctx); err != nil {
		h.logger.ErrorContext(ctx, "reset failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "world reset")
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "reset"})
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 100 {
		return 0, fmt.Errorf("%w: limit must be in [1,100]", usecase.ErrInvalidInput)
	}
	return limit, nil
}

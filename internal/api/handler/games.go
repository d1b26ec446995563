package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/diamondstats/internal/api/respond"
	"github.com/albapepper/diamondstats/internal/cache"
	"github.com/albapepper/diamondstats/internal/model"
)

// GetGame returns one game by its key.
// @Summary Get game
// @Tags games
// @Produce json
// @Param gameID path string true "Game key"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /games/{gameID} [get]
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var g model.Game
	var site, homeTeam, awayTeam, gameType *string
	err := h.pool.QueryRow(r.Context(), "game_by_id", gameID).Scan(
		&g.ID, &g.Date, &g.GameNumber, &site, &homeTeam, &awayTeam,
		&gameType, &g.HasBox, &g.HasPBP,
	)
	if err == pgx.ErrNoRows {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("game %s not found", gameID))
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"id":          g.ID,
		"date":        g.Date.Format("2006-01-02"),
		"game_number": g.GameNumber,
		"site":        deref(site),
		"home_team":   deref(homeTeam),
		"away_team":   deref(awayTeam),
		"game_type":   deref(gameType),
		"has_box":     g.HasBox,
		"has_pbp":     g.HasPBP,
	})
}

// GetGameStats returns every batting and pitching line for a game.
// @Summary Get game stat lines
// @Tags games
// @Produce json
// @Param gameID path string true "Game key"
// @Success 200 {object} map[string]interface{}
// @Router /games/{gameID}/stats [get]
func (h *Handler) GetGameStats(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	key := "gamestats:" + gameID

	h.serveCached(w, r, key, cache.TTLHistorical, func() (interface{}, error) {
		batting, err := h.gameBattingLines(r, gameID)
		if err != nil {
			return nil, err
		}
		pitching, err := h.gamePitchingLines(r, gameID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"game_id":  gameID,
			"batting":  batting,
			"pitching": pitching,
		}, nil
	})
}

type statLine struct {
	PlayerID string         `json:"player_id"`
	Team     string         `json:"team"`
	Opponent string         `json:"opponent"`
	Stats    map[string]int `json:"stats"`
}

func (h *Handler) gameBattingLines(r *http.Request, gameID string) ([]statLine, error) {
	rows, err := h.pool.Query(r.Context(), `
		SELECT player_id, team, opponent, at_bats, runs, hits, doubles,
			triples, home_runs, rbi, walks, strikeouts, stolen_bases
		FROM batting_stats WHERE game_id = $1 ORDER BY team, player_id`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []statLine{}
	for rows.Next() {
		var l statLine
		var ab, runs, hits, doubles, triples, hr, rbi, bb, so, sb int
		if err := rows.Scan(&l.PlayerID, &l.Team, &l.Opponent,
			&ab, &runs, &hits, &doubles, &triples, &hr, &rbi, &bb, &so, &sb); err != nil {
			return nil, err
		}
		l.Stats = map[string]int{
			"at_bats": ab, "runs": runs, "hits": hits, "doubles": doubles,
			"triples": triples, "home_runs": hr, "rbi": rbi,
			"walks": bb, "strikeouts": so, "stolen_bases": sb,
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (h *Handler) gamePitchingLines(r *http.Request, gameID string) ([]statLine, error) {
	rows, err := h.pool.Query(r.Context(), `
		SELECT player_id, team, opponent, outs_pitched, hits_allowed,
			runs_allowed, earned_runs, walks, strikeouts, wins, losses, saves
		FROM pitching_stats WHERE game_id = $1 ORDER BY team, player_id`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []statLine{}
	for rows.Next() {
		var l statLine
		var outs, h9, r9, er, bb, so, w9, l9, sv int
		if err := rows.Scan(&l.PlayerID, &l.Team, &l.Opponent,
			&outs, &h9, &r9, &er, &bb, &so, &w9, &l9, &sv); err != nil {
			return nil, err
		}
		l.Stats = map[string]int{
			"outs_pitched": outs, "hits_allowed": h9, "runs_allowed": r9,
			"earned_runs": er, "walks": bb, "strikeouts": so,
			"won": w9, "lost": l9, "saves": sv,
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/albapepper/diamondstats/internal/api/respond"
	"github.com/albapepper/diamondstats/internal/cache"
	"github.com/albapepper/diamondstats/internal/points"
)

// QueryPoints returns fantasy point totals, best first.
// @Summary Query fantasy points
// @Description Returns persisted fantasy point totals for a ruleset, optionally filtered by domain, player, and game date range.
// @Tags points
// @Produce json
// @Param ruleset query string true "Ruleset id"
// @Param domain query string false "Stat domain" Enums(batting, pitching)
// @Param player query string false "Player id"
// @Param from query string false "Earliest game date (YYYY-MM-DD)"
// @Param to query string false "Game date upper bound, exclusive (YYYY-MM-DD)"
// @Param limit query int false "Max rows (default 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /points [get]
func (h *Handler) QueryPoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := points.Filter{
		RulesetID: q.Get("ruleset"),
		Domain:    q.Get("domain"),
		PlayerID:  q.Get("player"),
	}
	if f.RulesetID == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_RULESET", "ruleset query parameter is required")
		return
	}
	if f.Domain != "" && f.Domain != "batting" && f.Domain != "pitching" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DOMAIN", "domain must be 'batting' or 'pitching'")
		return
	}

	var err error
	if s := q.Get("from"); s != "" {
		f.From, err = time.Parse("2006-01-02", s)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "from must be YYYY-MM-DD")
			return
		}
	}
	if s := q.Get("to"); s != "" {
		f.To, err = time.Parse("2006-01-02", s)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "to must be YYYY-MM-DD")
			return
		}
	}
	if s := q.Get("limit"); s != "" {
		f.Limit, _ = strconv.Atoi(s)
	}

	key := fmt.Sprintf("points:%s:%s:%s:%s:%s:%d",
		f.RulesetID, f.Domain, f.PlayerID,
		f.From.Format("2006-01-02"), f.To.Format("2006-01-02"), f.Limit)

	h.serveCached(w, r, key, cache.TTLPoints, func() (interface{}, error) {
		rows, err := points.Query(r.Context(), h.pool, f)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"ruleset": f.RulesetID,
			"count":   len(rows),
			"points":  rows,
		}, nil
	})
}

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/diamondstats/internal/api/respond"
	"github.com/albapepper/diamondstats/internal/cache"
	"github.com/albapepper/diamondstats/internal/ruleset"
)

// ListRulesets returns all stored rulesets.
// @Summary List rulesets
// @Tags rulesets
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /rulesets [get]
func (h *Handler) ListRulesets(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "rulesets", cache.TTLRulesets, func() (interface{}, error) {
		infos, err := ruleset.List(r.Context(), h.pool)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"rulesets": infos}, nil
	})
}

// GetRuleset returns one ruleset document by id.
// @Summary Get ruleset
// @Tags rulesets
// @Produce json
// @Param rulesetID path string true "Ruleset id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /rulesets/{rulesetID} [get]
func (h *Handler) GetRuleset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "rulesetID")

	rs, err := ruleset.Get(r.Context(), h.pool, id)
	if errors.Is(err, ruleset.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("ruleset %q not found", id))
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, rs)
}

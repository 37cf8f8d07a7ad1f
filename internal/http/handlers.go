package http

import (
	"context"
	"fmt"
	"net/http"

	"teambudget/internal/core"
	"teambudget/internal/engine"
	"teambudget/internal/store"
)

type stateResponse struct {
	Version int64            `json:"version"`
	State   core.RosterState `json:"state"`
	Result  engine.Result    `json:"result"`
}

// handleState returns the roster together with everything derived from it.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	_, res, v := s.store.View()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":          v,
		"playerCount":      res.PlayerCount,
		"perPlayerShare":   res.PerPlayerShare,
		"totalCollections": res.TotalCollections,
		"totalPaid":        res.TotalPaid,
		"totalOutstanding": res.TotalOutstanding,
		"budget":           res.Budget,
		"actuals":          res.Actuals,
	})
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var team core.TeamSettings
	if err := decodeJSON(w, r, &team); err != nil {
		respondMutation(w, r, err)
		return
	}
	sanitizeTeam(&team)
	if !respondMutation(w, r, s.store.UpdateTeam(r.Context(), team)) {
		return
	}
	s.writeState(w)
}

// handleUpdateFee sets one fee schedule entry, or the extra games count when
// the key is extraGames.
func (s *Server) handleUpdateFee(w http.ResponseWriter, r *http.Request) {
	var body feeValue
	if err := decodeJSON(w, r, &body); err != nil {
		respondMutation(w, r, err)
		return
	}
	if body.Value == nil {
		respondMutation(w, r, fmt.Errorf("%w: value is required", errInvalidField))
		return
	}

	key := r.PathValue("key")
	var err error
	if key == "extraGames" {
		err = s.store.SetExtraGames(r.Context(), *body.Value)
	} else {
		err = s.store.UpdateFee(r.Context(), key, *body.Value)
	}
	if !respondMutation(w, r, err) {
		return
	}
	s.writeState(w)
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var body addPersonRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondMutation(w, r, err)
		return
	}
	p, err := s.store.AddPerson(r.Context(), body.Type)
	if !respondMutation(w, r, err) {
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	var patch store.PersonPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondMutation(w, r, err)
		return
	}
	sanitizePersonPatch(&patch)
	if !respondMutation(w, r, s.store.UpdatePerson(r.Context(), id, patch)) {
		return
	}
	s.writePerson(w, id)
}

func (s *Server) handleToggleExtra(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	extra, ok := core.ParseExtra(r.PathValue("extra"))
	if !ok {
		respondMutation(w, r, fmt.Errorf("%w: unknown extra %q", errInvalidField, r.PathValue("extra")))
		return
	}
	if !respondMutation(w, r, s.store.ToggleExtra(r.Context(), id, extra)) {
		return
	}
	s.writePerson(w, id)
}

func (s *Server) handleRemovePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	if respondMutation(w, r, s.store.RemovePerson(r.Context(), id, confirmation(r))) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleAddLineItem(add func(context.Context) (core.LineItem, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := add(r.Context())
		if !respondMutation(w, r, err) {
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func (s *Server) handleUpdateLineItem(update func(context.Context, core.ID, store.LineItemPatch) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondMutation(w, r, err)
			return
		}
		var patch store.LineItemPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			respondMutation(w, r, err)
			return
		}
		sanitizeLineItemPatch(&patch)
		if !respondMutation(w, r, update(r.Context(), id, patch)) {
			return
		}
		s.writeState(w)
	}
}

// handleRemoveByID serves deletes that need no confirmation.
func (s *Server) handleRemoveByID(remove func(context.Context, core.ID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondMutation(w, r, err)
			return
		}
		if respondMutation(w, r, remove(r.Context(), id)) {
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func (s *Server) handleAddSponsorship(w http.ResponseWriter, r *http.Request) {
	sp, err := s.store.AddSponsorship(r.Context())
	if !respondMutation(w, r, err) {
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (s *Server) handleUpdateSponsorship(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	var patch store.SponsorshipPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondMutation(w, r, err)
		return
	}
	sanitizeSponsorshipPatch(&patch)
	if !respondMutation(w, r, s.store.UpdateSponsorship(r.Context(), id, patch)) {
		return
	}
	s.writeState(w)
}

func (s *Server) writeState(w http.ResponseWriter) {
	st, res, v := s.store.View()
	writeJSON(w, http.StatusOK, stateResponse{Version: v, State: st, Result: res})
}

type personResponse struct {
	Person core.Person         `json:"person"`
	Result engine.PersonResult `json:"result"`
}

// writePerson answers with the person and their recomputed figures.
func (s *Server) writePerson(w http.ResponseWriter, id core.ID) {
	st, res, _ := s.store.View()
	p, ok := st.PersonByID(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, personResponse{Person: p, Result: res.People[id]})
}

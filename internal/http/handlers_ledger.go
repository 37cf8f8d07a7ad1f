package http

import (
	"net/http"

	"teambudget/internal/core"
	"teambudget/internal/log"
)

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondMutation(w, r, err)
		return
	}
	sanitizeTransaction(&in)
	tx, err := s.store.AddTransaction(r.Context(), in)
	if !respondMutation(w, r, err) {
		return
	}
	log.NewStructuredLogger(log.FromContext(r.Context())).LogTransactionRecorded(r.Context(),
		int64(tx.ID), string(tx.Type), tx.Amount.Float(), tx.Category, s.store.Version())
	writeJSON(w, http.StatusCreated, tx)
}

// handleUpdateTransaction replaces every editable field of a transaction.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondMutation(w, r, err)
		return
	}
	sanitizeTransaction(&in)
	tx, err := s.store.UpdateTransaction(r.Context(), id, in)
	if !respondMutation(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	if respondMutation(w, r, s.store.RemoveTransaction(r.Context(), id, confirmation(r))) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleBulkDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	var body bulkDeleteRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondMutation(w, r, err)
		return
	}
	if err := body.validate(); err != nil {
		respondMutation(w, r, err)
		return
	}
	n, err := s.store.RemoveTransactions(r.Context(), body.IDs, confirmation(r))
	if !respondMutation(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"

	"teambudget/internal/backup"
	"teambudget/internal/log"
	"teambudget/internal/report"
)

// Reports are built once per store version; any mutation bumps the version
// and therefore misses the cache.
func (s *Server) budgetReport() report.Budget {
	st, res, v := s.store.View()
	return s.budgetCache.GetOrCompute(v, func() report.Budget {
		return report.BuildBudget(st, res)
	})
}

func (s *Server) ledgerReport() report.Ledger {
	st, res, v := s.store.View()
	return s.ledgerCache.GetOrCompute(v, func() report.Ledger {
		return report.BuildLedger(st, res)
	})
}

func wantsText(r *http.Request) bool {
	return r.URL.Query().Get("format") == "text"
}

func writeText(w http.ResponseWriter, r *http.Request, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to render report", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	b := s.budgetReport()
	if wantsText(r) {
		writeText(w, r, func(out io.Writer) error { return report.WriteBudget(out, b) })
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleLedgerReport(w http.ResponseWriter, r *http.Request) {
	l := s.ledgerReport()
	if wantsText(r) {
		writeText(w, r, func(out io.Writer) error { return report.WriteLedger(out, l) })
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleExportBackup downloads the full state as a dated JSON file.
func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := backup.EncodeBytes(s.store.Snapshot())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode backup", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": backup.FileName(s.now()),
	}))
	_, _ = w.Write(data)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Backup exported", log.FieldOperation, log.OpExport)
}

// handleImportBackup replaces the state with an uploaded backup. The file is
// accepted either as the raw request body or as the "file" field of a
// multipart form.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := backupBody(r)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	defer closeBody()

	state, err := backup.Import(body)
	if err != nil {
		respondMutation(w, r, err)
		return
	}
	if !respondMutation(w, r, s.store.Replace(r.Context(), state)) {
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Backup imported",
		log.FieldOperation, log.OpImport,
		"roster", len(state.Roster),
		"transactions", len(state.Transactions),
	)
	s.writeState(w)
}

func backupBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !respondMutation(w, r, s.store.Reset(r.Context(), confirmation(r))) {
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "State reset", log.FieldOperation, log.OpReset)
	s.writeState(w)
}

package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/csvimport/internal/core"
)

// handleForm serves the upload form.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/upload.html")
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleImport runs one import on the raw request body.
//
// The body is read whole and handed to the service unparsed; the service
// locates the file content positionally.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ImportTimeout)
	defer cancel()
	ctx = withRequestMetadata(ctx, r)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("read body: %w", err), http.StatusBadRequest)
		return
	}

	res, err := s.service.Import(ctx, core.ImportRequest{
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
		Source:      "http",
		Raw:         true,
	})
	if err != nil {
		s.respondError(w, r, err, importStatus(err))
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "CSV uploaded and inserted %d rows into %s.\n", res.Inserted, res.Table)
}

// RowsResponse is the body of GET /api/rows.
type RowsResponse struct {
	Table string             `json:"table"`
	Count int                `json:"count"`
	Rows  []core.ImportedRow `json:"rows"`
}

// handleRows lists the destination table in insertion order.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.Rows(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []core.ImportedRow{}
	}

	writeJSON(w, http.StatusOK, RowsResponse{
		Table: s.service.Table(),
		Count: len(rows),
		Rows:  rows,
	})
}

// handleStatus reports whether an import is running.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package server

import (
	"net/http"
)

func (s *Server) handleBases(w http.ResponseWriter, r *http.Request) {
	bases, err := s.airtableFor(r).Bases(r.Context())
	if err != nil {
		s.logger.Error("airtable: list bases", "error", err)
		writeAirtableError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bases": bases})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	baseID := r.URL.Query().Get("baseId")
	if baseID == "" {
		writeError(w, http.StatusBadRequest, "baseId is required")
		return
	}
	tables, err := s.airtableFor(r).Tables(r.Context(), baseID)
	if err != nil {
		s.logger.Error("airtable: list tables", "base", baseID, "error", err)
		writeAirtableError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	baseID, tableID := query.Get("baseId"), query.Get("tableId")
	if baseID == "" || tableID == "" {
		writeError(w, http.StatusBadRequest, "baseId and tableId are required")
		return
	}
	fields, err := s.airtableFor(r).Fields(r.Context(), baseID, tableID)
	if err != nil {
		s.logger.Error("airtable: list fields", "base", baseID, "table", tableID, "error", err)
		writeAirtableError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/types"
)

// ---------------------------------------------------------------------
// Scan Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req types.ScanRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, &ErrValidation{Message: types.ValidationMessage(err)})
		return
	}
	opts := req.Resolve(s.scanner.Defaults())

	if req.Kind == types.KindAll {
		scans, err := s.scanner.ScanAll(r.Context(), agencyID, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.jsonResponse(w, http.StatusCreated, map[string]any{"scans": scans})
		return
	}

	kind, err := types.ParseContactKind(req.Kind)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "kind", Message: err.Error()})
		return
	}
	scan, err := s.scanner.Scan(r.Context(), agencyID, kind, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, scan)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	filters := db.ScanFilters{AgencyID: agencyID}
	if kindStr := r.URL.Query().Get("kind"); kindStr != "" {
		kind, err := types.ParseContactKind(kindStr)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "kind", Message: err.Error()})
			return
		}
		filters.Kind = kind
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 500 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be between 1 and 500"})
			return
		}
		filters.Limit = limit
	}

	scans, err := s.store.ListScans(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"scans": scans, "count": len(scans)})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	scanID, err := s.pathID(r, "scan")
	if err != nil {
		s.writeError(w, err)
		return
	}

	scan, err := s.store.GetScan(r.Context(), agencyID, scanID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if scan == nil {
		s.writeError(w, &ErrNotFound{Resource: "scan", ID: scanID.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, scan)
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	scanID, err := s.pathID(r, "scan")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteScan(r.Context(), agencyID, scanID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "scan", ID: scanID.String()}
		}
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/types"
)

// ---------------------------------------------------------------------
// Dismissal Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateDismissal(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req types.DismissRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, &ErrValidation{Field: "signature", Message: types.ValidationMessage(err)})
		return
	}

	dismissal := &db.Dismissal{
		AgencyID:  agencyID,
		Signature: types.NormalizeSignature(req.Signature),
		Note:      strings.TrimSpace(req.Note),
	}
	if err := s.store.CreateDismissal(r.Context(), dismissal); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, dismissal)
}

func (s *Server) handleListDismissals(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dismissals, err := s.store.ListDismissals(r.Context(), agencyID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"dismissals": dismissals, "count": len(dismissals)})
}

func (s *Server) handleDeleteDismissal(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	dismissalID, err := s.pathID(r, "dismissal")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteDismissal(r.Context(), agencyID, dismissalID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "dismissal", ID: dismissalID.String()}
		}
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

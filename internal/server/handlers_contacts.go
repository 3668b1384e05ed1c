package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/types"
)

// ---------------------------------------------------------------------
// Contact Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	kinds := types.AllContactKinds()
	if kindStr := r.URL.Query().Get("kind"); kindStr != "" && kindStr != types.KindAll {
		kind, err := types.ParseContactKind(kindStr)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "kind", Message: err.Error()})
			return
		}
		kinds = []types.ContactKind{kind}
	}

	contacts := []types.Contact{}
	for _, kind := range kinds {
		batch, err := s.store.ListContacts(r.Context(), agencyID, kind)
		if err != nil {
			s.writeError(w, err)
			return
		}
		contacts = append(contacts, batch...)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"contacts": contacts, "count": len(contacts)})
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req types.CreateContactRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, &ErrValidation{Message: types.ValidationMessage(err)})
		return
	}

	contact := &types.Contact{
		AgencyID: agencyID,
		Kind:     types.ContactKind(req.Kind),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    req.Phone,
	}
	if err := s.store.CreateContact(r.Context(), contact); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, contact)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	contactID, err := s.pathID(r, "contact")
	if err != nil {
		s.writeError(w, err)
		return
	}

	contact, err := s.store.GetContact(r.Context(), agencyID, contactID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if contact == nil {
		s.writeError(w, &ErrNotFound{Resource: "contact", ID: contactID.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	agencyID, err := s.agencyID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	contactID, err := s.pathID(r, "contact")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteContact(r.Context(), agencyID, contactID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "contact", ID: contactID.String()}
		}
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"net/http"

	"github.com/jonathan/estate-desk/internal/types"
)

// maxCheckRecords bounds a stateless check; detection is quadratic in the record count.
const maxCheckRecords = 5000

// CheckResponse is the result of a stateless duplicate check
type CheckResponse struct {
	RecordCount int                                       `json:"record_count"`
	Threshold   float64                                   `json:"threshold"`
	Clustering  string                                    `json:"clustering"`
	FoldAccents bool                                      `json:"fold_accents"`
	Groups      []types.DuplicateGroup[types.InputRecord] `json:"groups"`
}

func (s *Server) handleCheckDuplicates(w http.ResponseWriter, r *http.Request) {
	var req types.CheckRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, &ErrValidation{Message: types.ValidationMessage(err)})
		return
	}
	if len(req.Records) > maxCheckRecords {
		s.writeError(w, &ErrValidation{Field: "records", Message: "too many records"})
		return
	}

	opts := req.Resolve(s.scanner.Defaults())
	groups, err := s.scanner.Check(req.Records, opts)
	if err != nil {
		s.writeError(w, &ErrValidation{Message: err.Error()})
		return
	}

	s.jsonResponse(w, http.StatusOK, CheckResponse{
		RecordCount: len(req.Records),
		Threshold:   opts.Threshold,
		Clustering:  string(opts.Clustering),
		FoldAccents: opts.FoldAccents,
		Groups:      groups,
	})
}

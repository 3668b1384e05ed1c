package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/estate-desk/internal/dedup"
)

var validate = validator.New()

// DetectionOptions are the optional detector settings accepted by the API.
type DetectionOptions struct {
	Threshold   *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Clustering  string   `json:"clustering,omitempty" validate:"omitempty,oneof=greedy transitive"`
	FoldAccents bool     `json:"fold_accents,omitempty"`
}

// Resolve applies the requested settings on top of defaults.
func (o DetectionOptions) Resolve(defaults dedup.Options) dedup.Options {
	opts := defaults
	if o.Threshold != nil {
		opts.Threshold = *o.Threshold
	}
	if o.Clustering != "" {
		opts.Clustering = dedup.Clustering(o.Clustering)
	}
	if o.FoldAccents {
		opts.FoldAccents = true
	}
	return opts
}

// CheckRequest asks for duplicate groups among caller-supplied records.
type CheckRequest struct {
	Records []InputRecord `json:"records" validate:"dive"`
	DetectionOptions
}

// Validate validates the CheckRequest and rejects repeated record ids.
func (r *CheckRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(r.Records))
	for _, rec := range r.Records {
		if _, ok := seen[rec.ID]; ok {
			return fmt.Errorf("duplicate record id: %s", rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}
	return nil
}

// ScanRequest asks for a stored scan of one contact kind, or of every kind.
type ScanRequest struct {
	Kind string `json:"kind" validate:"required,oneof=tenant owner acquirer prospect all"`
	DetectionOptions
}

// Validate validates the ScanRequest using the validator.
func (r *ScanRequest) Validate() error {
	return validate.Struct(r)
}

// DismissRequest records that a group is not a real duplicate.
type DismissRequest struct {
	Signature string `json:"signature" validate:"required"`
	Note      string `json:"note,omitempty" validate:"max=500"`
}

// Validate validates the DismissRequest; a signature needs at least two members.
func (r *DismissRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if len(strings.Split(NormalizeSignature(r.Signature), ",")) < 2 {
		return fmt.Errorf("signature must list at least two records")
	}
	return nil
}

// CreateContactRequest creates a contact for the caller's agency.
type CreateContactRequest struct {
	Kind  string  `json:"kind" validate:"required,oneof=tenant owner acquirer prospect"`
	Name  string  `json:"name" validate:"required,max=200"`
	Email string  `json:"email" validate:"max=320"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
}

// Validate validates the CreateContactRequest using the validator.
func (r *CreateContactRequest) Validate() error {
	return validate.Struct(r)
}

// ValidationMessage flattens validator errors into one readable line.
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

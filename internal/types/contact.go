// Package types provides type definitions for structured data shared by the
// estate-desk CLI, API server and storage layer.
package types

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/dedup"
)

// ContactKind is the role a contact plays for an agency.
type ContactKind string

const (
	KindTenant   ContactKind = "tenant"
	KindOwner    ContactKind = "owner"
	KindAcquirer ContactKind = "acquirer"
	KindProspect ContactKind = "prospect"
)

// KindAll selects every contact kind in scan requests.
const KindAll = "all"

// AllContactKinds returns every contact kind in display order.
func AllContactKinds() []ContactKind {
	return []ContactKind{KindTenant, KindOwner, KindAcquirer, KindProspect}
}

// ParseContactKind parses a kind name case-insensitively.
func ParseContactKind(s string) (ContactKind, error) {
	k := ContactKind(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AllContactKinds(), k) {
		return "", fmt.Errorf("unknown contact kind: %q", s)
	}
	return k, nil
}

// Contact is a person known to an agency: a tenant, an owner, an acquirer
// or a prospect.
type Contact struct {
	ID        uuid.UUID   `json:"id"`
	AgencyID  uuid.UUID   `json:"agency_id"`
	Kind      ContactKind `json:"kind"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     *string     `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// DedupKey implements dedup.Record.
func (c Contact) DedupKey() string { return c.ID.String() }

// DedupFields implements dedup.Record.
func (c Contact) DedupFields() dedup.Fields {
	return dedup.Fields{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// InputRecord is a caller-supplied record checked without touching storage.
// A JSON null name or email decodes to the empty string.
type InputRecord struct {
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// DedupKey implements dedup.Record.
func (r InputRecord) DedupKey() string { return r.ID }

// DedupFields implements dedup.Record.
func (r InputRecord) DedupFields() dedup.Fields {
	return dedup.Fields{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

// DuplicateGroup is a duplicate group ready to be rendered or stored.
type DuplicateGroup[T dedup.Record] struct {
	// Signature is the sorted member keys joined by commas. It identifies the
	// group across scans so review decisions can be matched.
	Signature string   `json:"signature"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons"`
	Members   []T      `json:"group"`
}

// NewDuplicateGroups converts detector output into signed groups.
func NewDuplicateGroups[T dedup.Record](groups []dedup.Group[T]) []DuplicateGroup[T] {
	out := make([]DuplicateGroup[T], 0, len(groups))
	for _, g := range groups {
		out = append(out, DuplicateGroup[T]{
			Signature: Signature(g.Members),
			Score:     g.Score,
			Reasons:   g.Reasons,
			Members:   g.Members,
		})
	}
	return out
}

// Signature returns the order-independent key of a set of records.
func Signature[T dedup.Record](members []T) string {
	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, m.DedupKey())
	}
	slices.Sort(keys)
	return strings.Join(keys, ",")
}

// NormalizeSignature sorts the keys of a client-supplied signature and drops
// blanks, so "b, a" and "a,b" name the same group.
func NormalizeSignature(sig string) string {
	keys := []string{}
	for _, k := range strings.Split(sig, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return strings.Join(slices.Compact(keys), ",")
}

package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/types"
)

// Scan is a stored duplicate scan over one kind of contact
type Scan struct {
	ID             uuid.UUID                             `json:"id"`
	AgencyID       uuid.UUID                             `json:"agency_id"`
	Kind           types.ContactKind                     `json:"kind"`
	Threshold      float64                               `json:"threshold"`
	Clustering     string                                `json:"clustering"`
	FoldAccents    bool                                  `json:"fold_accents"`
	RecordCount    int                                   `json:"record_count"`
	GroupCount     int                                   `json:"group_count"`
	DismissedCount int                                   `json:"dismissed_count"`
	Groups         []types.DuplicateGroup[types.Contact] `json:"groups,omitempty"`
	CreatedAt      time.Time                             `json:"created_at"`
}

// ScanFilters holds optional filters for listing scans
type ScanFilters struct {
	AgencyID uuid.UUID
	Kind     types.ContactKind
	Limit    int
}

// Dismissal records that an operator reviewed a group and found no duplicate
type Dismissal struct {
	ID        uuid.UUID `json:"id"`
	AgencyID  uuid.UUID `json:"agency_id"`
	Signature string    `json:"signature"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

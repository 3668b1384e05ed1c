package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateDismissal records a reviewed group. Dismissing the same signature
// twice updates the note and keeps the original row.
func (db *DB) CreateDismissal(ctx context.Context, d *Dismissal) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO duplicate_dismissals (agency_id, signature, note)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (agency_id, signature) DO UPDATE SET note = EXCLUDED.note
		 RETURNING id, created_at`,
		d.AgencyID, d.Signature, d.Note,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dismissal: %w", err)
	}
	return nil
}

// ListDismissals retrieves an agency's dismissals, newest first
func (db *DB) ListDismissals(ctx context.Context, agencyID uuid.UUID) ([]Dismissal, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, agency_id, signature, note, created_at
		 FROM duplicate_dismissals WHERE agency_id = $1
		 ORDER BY created_at DESC`,
		agencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dismissals: %w", err)
	}
	defer rows.Close()

	dismissals := []Dismissal{}
	for rows.Next() {
		var d Dismissal
		if err := rows.Scan(&d.ID, &d.AgencyID, &d.Signature, &d.Note, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dismissal: %w", err)
		}
		dismissals = append(dismissals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list dismissals: %w", err)
	}
	return dismissals, nil
}

// ListDismissedSignatures returns the set of dismissed group signatures
func (db *DB) ListDismissedSignatures(ctx context.Context, agencyID uuid.UUID) (map[string]bool, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT signature FROM duplicate_dismissals WHERE agency_id = $1`,
		agencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dismissed signatures: %w", err)
	}
	defer rows.Close()

	signatures := make(map[string]bool)
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		signatures[sig] = true
	}
	return signatures, rows.Err()
}

// DeleteDismissal removes a dismissal so the group shows up in scans again
func (db *DB) DeleteDismissal(ctx context.Context, agencyID, dismissalID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM duplicate_dismissals WHERE id = $1 AND agency_id = $2`,
		dismissalID, agencyID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete dismissal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("dismissal %s: %w", dismissalID, ErrNotFound)
	}
	return nil
}

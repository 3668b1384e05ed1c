package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/estate-desk/internal/types"
)

// CreateScan stores a scan with its groups and fills in its ID and creation time
func (db *DB) CreateScan(ctx context.Context, scan *Scan) error {
	groups := scan.Groups
	if groups == nil {
		groups = []types.DuplicateGroup[types.Contact]{}
	}
	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to marshal scan groups: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO duplicate_scans
		   (agency_id, kind, threshold, clustering, fold_accents,
		    record_count, group_count, dismissed_count, groups)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		scan.AgencyID, string(scan.Kind), scan.Threshold, scan.Clustering, scan.FoldAccents,
		scan.RecordCount, scan.GroupCount, scan.DismissedCount, groupsJSON,
	).Scan(&scan.ID, &scan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}
	return nil
}

// GetScan retrieves a scan with its groups; nil when missing
func (db *DB) GetScan(ctx context.Context, agencyID, scanID uuid.UUID) (*Scan, error) {
	var scan Scan
	var kind string
	var groupsJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, agency_id, kind, threshold, clustering, fold_accents,
		        record_count, group_count, dismissed_count, groups, created_at
		 FROM duplicate_scans WHERE id = $1 AND agency_id = $2`,
		scanID, agencyID,
	).Scan(&scan.ID, &scan.AgencyID, &kind, &scan.Threshold, &scan.Clustering, &scan.FoldAccents,
		&scan.RecordCount, &scan.GroupCount, &scan.DismissedCount, &groupsJSON, &scan.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	scan.Kind = types.ContactKind(kind)

	if len(groupsJSON) > 0 {
		if err := json.Unmarshal(groupsJSON, &scan.Groups); err != nil {
			return nil, fmt.Errorf("failed to decode scan groups: %w", err)
		}
	}
	return &scan, nil
}

// ListScans retrieves recent scans without their groups
func (db *DB) ListScans(ctx context.Context, filters ScanFilters) ([]Scan, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT id, agency_id, kind, threshold, clustering, fold_accents,
	                 record_count, group_count, dismissed_count, created_at
		FROM duplicate_scans WHERE agency_id = $1`
	args := []any{filters.AgencyID}
	argNum := 2

	if filters.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, string(filters.Kind))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := []Scan{}
	for rows.Next() {
		var s Scan
		var kind string
		if err := rows.Scan(&s.ID, &s.AgencyID, &kind, &s.Threshold, &s.Clustering, &s.FoldAccents,
			&s.RecordCount, &s.GroupCount, &s.DismissedCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate scan: %w", err)
		}
		s.Kind = types.ContactKind(kind)
		scans = append(scans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

// DeleteScan deletes a stored scan
func (db *DB) DeleteScan(ctx context.Context, agencyID, scanID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM duplicate_scans WHERE id = $1 AND agency_id = $2`,
		scanID, agencyID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("scan %s: %w", scanID, ErrNotFound)
	}
	return nil
}

// Package service runs duplicate detection over stored contacts and records the results.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/jonathan/estate-desk/internal/types"
	"golang.org/x/sync/errgroup"
)

// Store is the persistence the scanner needs. *db.DB implements it.
type Store interface {
	ListContacts(ctx context.Context, agencyID uuid.UUID, kind types.ContactKind) ([]types.Contact, error)
	ListDismissedSignatures(ctx context.Context, agencyID uuid.UUID) (map[string]bool, error)
	CreateScan(ctx context.Context, scan *db.Scan) error
}

// Scanner runs duplicate detection for agencies
type Scanner struct {
	store    Store
	defaults dedup.Options
}

// NewScanner creates a scanner. Requests that leave an option unset get the
// value from defaults.
func NewScanner(store Store, defaults dedup.Options) *Scanner {
	return &Scanner{store: store, defaults: defaults}
}

// Defaults returns the scanner's default detection options
func (s *Scanner) Defaults() dedup.Options {
	return s.defaults
}

// Check groups caller-supplied records without touching storage
func (s *Scanner) Check(records []types.InputRecord, opts dedup.Options) ([]types.DuplicateGroup[types.InputRecord], error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		recordRun(checkKind, time.Since(start).Seconds(), 0, err)
		return nil, err
	}

	groups := types.NewDuplicateGroups(dedup.Detect(records, opts))
	recordRun(checkKind, time.Since(start).Seconds(), len(groups), nil)
	return groups, nil
}

// Scan detects duplicates among an agency's contacts of one kind, drops the
// groups an operator already dismissed and stores the result.
func (s *Scanner) Scan(ctx context.Context, agencyID uuid.UUID, kind types.ContactKind, opts dedup.Options) (*db.Scan, error) {
	start := time.Now()
	scan, err := s.scan(ctx, agencyID, kind, opts)
	groups := 0
	if scan != nil {
		groups = scan.GroupCount
	}
	recordRun(string(kind), time.Since(start).Seconds(), groups, err)
	if err != nil {
		log.Printf("[scan] agency=%s kind=%s failed: %v", agencyID, kind, err)
		return nil, err
	}
	log.Printf("[scan] agency=%s kind=%s records=%d groups=%d dismissed=%d in %v",
		agencyID, kind, scan.RecordCount, scan.GroupCount, scan.DismissedCount, time.Since(start).Round(time.Millisecond))
	return scan, nil
}

func (s *Scanner) scan(ctx context.Context, agencyID uuid.UUID, kind types.ContactKind, opts dedup.Options) (*db.Scan, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Clustering == "" {
		opts.Clustering = dedup.ClusterGreedy
	}

	contacts, err := s.store.ListContacts(ctx, agencyID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s contacts: %w", kind, err)
	}
	dismissed, err := s.store.ListDismissedSignatures(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dismissals: %w", err)
	}

	all := types.NewDuplicateGroups(dedup.Detect(contacts, opts))
	kept := make([]types.DuplicateGroup[types.Contact], 0, len(all))
	for _, g := range all {
		if dismissed[g.Signature] {
			continue
		}
		kept = append(kept, g)
	}

	scan := &db.Scan{
		AgencyID:       agencyID,
		Kind:           kind,
		Threshold:      opts.Threshold,
		Clustering:     string(opts.Clustering),
		FoldAccents:    opts.FoldAccents,
		RecordCount:    len(contacts),
		GroupCount:     len(kept),
		DismissedCount: len(all) - len(kept),
		Groups:         kept,
	}
	if err := s.store.CreateScan(ctx, scan); err != nil {
		return nil, fmt.Errorf("failed to store scan: %w", err)
	}
	return scan, nil
}

// ScanAll scans every contact kind concurrently. Results follow
// types.AllContactKinds order; the first failure cancels the other scans.
func (s *Scanner) ScanAll(ctx context.Context, agencyID uuid.UUID, opts dedup.Options) ([]*db.Scan, error) {
	kinds := types.AllContactKinds()
	scans := make([]*db.Scan, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			scan, err := s.Scan(gctx, agencyID, kind, opts)
			if err != nil {
				return err
			}
			scans[i] = scan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scans, nil
}

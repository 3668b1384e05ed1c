package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/jonathan/estate-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	contacts  map[types.ContactKind][]types.Contact
	dismissed map[string]bool
	scans     []*db.Scan
	listErr   map[types.ContactKind]error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contacts:  map[types.ContactKind][]types.Contact{},
		dismissed: map[string]bool{},
		listErr:   map[types.ContactKind]error{},
	}
}

func (f *fakeStore) ListContacts(_ context.Context, _ uuid.UUID, kind types.ContactKind) ([]types.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[kind]; err != nil {
		return nil, err
	}
	return f.contacts[kind], nil
}

func (f *fakeStore) ListDismissedSignatures(_ context.Context, _ uuid.UUID) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.dismissed))
	for k, v := range f.dismissed {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) CreateScan(_ context.Context, scan *db.Scan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	scan.ID = uuid.New()
	f.scans = append(f.scans, scan)
	return nil
}

func strPtr(s string) *string { return &s }

func tenantFixtures() []types.Contact {
	return []types.Contact{
		{ID: uuid.New(), Kind: types.KindTenant, Name: "Jean Dupont", Email: "jean@test.com", Phone: strPtr("0700000001")},
		{ID: uuid.New(), Kind: types.KindTenant, Name: "Dupont Jean", Email: "jean.d@test.com", Phone: strPtr("0700000001")},
		{ID: uuid.New(), Kind: types.KindTenant, Name: "Marie Koné", Email: "marie@test.com", Phone: strPtr("0600000002")},
	}
}

func TestScanner_Scan(t *testing.T) {
	store := newFakeStore()
	tenants := tenantFixtures()
	store.contacts[types.KindTenant] = tenants
	scanner := NewScanner(store, dedup.DefaultOptions())
	agencyID := uuid.New()

	scan, err := scanner.Scan(context.Background(), agencyID, types.KindTenant, dedup.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, agencyID, scan.AgencyID)
	assert.Equal(t, 3, scan.RecordCount)
	assert.Equal(t, 1, scan.GroupCount)
	assert.Equal(t, 0, scan.DismissedCount)
	assert.Equal(t, "greedy", scan.Clustering)
	require.Len(t, scan.Groups, 1)
	assert.Equal(t, tenants[0].ID, scan.Groups[0].Members[0].ID)
	assert.Equal(t, types.Signature(tenants[:2]), scan.Groups[0].Signature)

	require.Len(t, store.scans, 1)
	assert.Same(t, scan, store.scans[0])
}

func TestScanner_ScanSkipsDismissedGroups(t *testing.T) {
	store := newFakeStore()
	tenants := tenantFixtures()
	store.contacts[types.KindTenant] = tenants
	store.dismissed[types.Signature(tenants[:2])] = true
	scanner := NewScanner(store, dedup.DefaultOptions())

	scan, err := scanner.Scan(context.Background(), uuid.New(), types.KindTenant, dedup.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, scan.GroupCount)
	assert.Equal(t, 1, scan.DismissedCount)
	assert.Empty(t, scan.Groups)
	assert.NotNil(t, scan.Groups)
}

func TestScanner_ScanErrors(t *testing.T) {
	t.Run("invalid options", func(t *testing.T) {
		store := newFakeStore()
		scanner := NewScanner(store, dedup.DefaultOptions())

		_, err := scanner.Scan(context.Background(), uuid.New(), types.KindTenant, dedup.Options{Threshold: 2})
		assert.Error(t, err)
		assert.Empty(t, store.scans)
	})

	t.Run("list failure", func(t *testing.T) {
		store := newFakeStore()
		boom := errors.New("connection reset")
		store.listErr[types.KindOwner] = boom
		scanner := NewScanner(store, dedup.DefaultOptions())

		_, err := scanner.Scan(context.Background(), uuid.New(), types.KindOwner, dedup.DefaultOptions())
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, store.scans)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newFakeStore()
		store.createErr = errors.New("disk full")
		scanner := NewScanner(store, dedup.DefaultOptions())

		_, err := scanner.Scan(context.Background(), uuid.New(), types.KindTenant, dedup.DefaultOptions())
		assert.ErrorContains(t, err, "failed to store scan")
	})
}

func TestScanner_ScanAll(t *testing.T) {
	store := newFakeStore()
	store.contacts[types.KindTenant] = tenantFixtures()
	store.contacts[types.KindOwner] = []types.Contact{
		{ID: uuid.New(), Kind: types.KindOwner, Name: "Awa Diallo", Email: "awa@test.com"},
		{ID: uuid.New(), Kind: types.KindOwner, Name: "Awa Diallo", Email: "AWA@test.com"},
	}
	scanner := NewScanner(store, dedup.DefaultOptions())

	scans, err := scanner.ScanAll(context.Background(), uuid.New(), dedup.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, scans, len(types.AllContactKinds()))
	for i, kind := range types.AllContactKinds() {
		assert.Equal(t, kind, scans[i].Kind)
	}
	assert.Equal(t, 1, scans[0].GroupCount)
	assert.Equal(t, 1, scans[1].GroupCount)
	assert.Equal(t, 0, scans[2].RecordCount)
	assert.Len(t, store.scans, 4)
}

func TestScanner_ScanAllFails(t *testing.T) {
	store := newFakeStore()
	store.listErr[types.KindProspect] = errors.New("timeout")
	scanner := NewScanner(store, dedup.DefaultOptions())

	scans, err := scanner.ScanAll(context.Background(), uuid.New(), dedup.DefaultOptions())
	assert.ErrorContains(t, err, "timeout")
	assert.Nil(t, scans)
}

func TestScanner_Check(t *testing.T) {
	scanner := NewScanner(newFakeStore(), dedup.DefaultOptions())
	records := []types.InputRecord{
		{ID: "1", Name: "Jean Dupont", Email: "jean@test.com", Phone: strPtr("0700000001")},
		{ID: "2", Name: "Dupont Jean", Email: "jean.d@test.com", Phone: strPtr("0700000001")},
		{ID: "3", Name: "Marie Koné", Email: "marie@test.com", Phone: strPtr("0600000002")},
	}

	groups, err := scanner.Check(records, scanner.Defaults())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "1,2", groups[0].Signature)
	assert.Equal(t, dedup.ExactPhoneScore, groups[0].Score)

	_, err = scanner.Check(records, dedup.Options{Threshold: -0.1})
	assert.Error(t, err)
}

package snapshot

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gudang/internal/core/apperror"
	"gudang/internal/core/id"
	"gudang/internal/core/types"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
)

type memItemRepo struct {
	items map[inventory.Key]*inventory.Item
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[inventory.Key]*inventory.Item)}
}

func (r *memItemRepo) GetByKey(_ context.Context, key inventory.Key) (*inventory.Item, error) {
	item, ok := r.items[key]
	if !ok {
		return nil, apperror.NewNotFound("item", key.Name)
	}
	clone := *item
	return &clone, nil
}

func (r *memItemRepo) GetByKeyForUpdate(ctx context.Context, key inventory.Key) (*inventory.Item, error) {
	return r.GetByKey(ctx, key)
}

func (r *memItemRepo) GetByName(_ context.Context, name string) (*inventory.Item, error) {
	for _, item := range r.items {
		if item.Name == name {
			clone := *item
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("item", name)
}

func (r *memItemRepo) Insert(_ context.Context, item *inventory.Item) error {
	key := item.Key()
	if _, ok := r.items[key]; ok {
		return apperror.NewDuplicate("item", "name, unit", key.Name)
	}
	clone := *item
	r.items[key] = &clone
	return nil
}

func (r *memItemRepo) Update(_ context.Context, item *inventory.Item) error {
	clone := *item
	r.items[item.Key()] = &clone
	return nil
}

func (r *memItemRepo) List(_ context.Context) ([]inventory.Item, error) {
	out := make([]inventory.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memItemRepo) ListLowStock(_ context.Context) ([]inventory.Item, error) {
	return nil, nil
}

func (r *memItemRepo) Count(_ context.Context) (int, error) {
	return len(r.items), nil
}

type memMovementRepo struct {
	movements []ledger.Movement
}

func (r *memMovementRepo) Append(_ context.Context, m *ledger.Movement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memMovementRepo) List(_ context.Context, _ ledger.Filter) ([]ledger.Movement, error) {
	out := make([]ledger.Movement, len(r.movements))
	copy(out, r.movements)
	return out, nil
}

func (r *memMovementRepo) ExistsTrxCode(_ context.Context, code string) (bool, error) {
	for _, m := range r.movements {
		if m.TrxCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMovementRepo) Count(_ context.Context) (int, error) {
	return len(r.movements), nil
}

type memTxManager struct{}

func (memTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (memTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func seedStore(t *testing.T, items *memItemRepo, movements *memMovementRepo) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

	beras := &inventory.Item{
		ID:        id.New(),
		Name:      "Beras",
		Unit:      "kg",
		Category:  "Sembako",
		Quantity:  qty(42),
		MinStock:  qty(5),
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, items.Insert(ctx, beras))

	require.NoError(t, movements.Append(ctx, &ledger.Movement{
		ID:         id.New(),
		TrxType:    ledger.MovementIn,
		ItemID:     beras.ID,
		Name:       "Beras",
		Unit:       "kg",
		Quantity:   qty(42),
		Supplier:   "Toko Makmur",
		TrxCode:    "TRX-IN-20240401-080000-123",
		BundleCode: "TRX-IN-20240401-080000-123",
		CreatedAt:  created,
	}))
}

func newTestService(t *testing.T, items *memItemRepo, movements *memMovementRepo) *Service {
	t.Helper()
	svc, err := NewService(items, movements, memTxManager{})
	require.NoError(t, err)
	return svc
}

func TestExportRestore_RoundTrip(t *testing.T) {
	sourceItems := newMemItemRepo()
	sourceMovements := &memMovementRepo{}
	seedStore(t, sourceItems, sourceMovements)

	ctx := context.Background()
	data, err := newTestService(t, sourceItems, sourceMovements).Export(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	targetItems := newMemItemRepo()
	targetMovements := &memMovementRepo{}
	require.NoError(t, newTestService(t, targetItems, targetMovements).Restore(ctx, data))

	restoredItems, err := targetItems.List(ctx)
	require.NoError(t, err)
	originalItems, err := sourceItems.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, originalItems, restoredItems)

	restoredMovements, err := targetMovements.List(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, sourceMovements.movements, restoredMovements)
}

func TestRestore_RejectsNonEmptyStore(t *testing.T) {
	sourceItems := newMemItemRepo()
	sourceMovements := &memMovementRepo{}
	seedStore(t, sourceItems, sourceMovements)

	ctx := context.Background()
	data, err := newTestService(t, sourceItems, sourceMovements).Export(ctx)
	require.NoError(t, err)

	// Restoring into the already populated source must fail.
	err = newTestService(t, sourceItems, sourceMovements).Restore(ctx, data)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStoreNotEmpty, appErr.Code)
	assert.Equal(t, 1, appErr.Details["items"])
	assert.Equal(t, 1, appErr.Details["movements"])
}

func TestRestore_RejectsGarbageData(t *testing.T) {
	svc := newTestService(t, newMemItemRepo(), &memMovementRepo{})

	err := svc.Restore(context.Background(), []byte("definitely not zstd"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRestore_RejectsUnsupportedVersion(t *testing.T) {
	items := newMemItemRepo()
	movements := &memMovementRepo{}
	svc := newTestService(t, items, movements)
	ctx := context.Background()

	data, err := svc.Export(ctx)
	require.NoError(t, err)

	// Re-encode the payload with a bumped version.
	payload, err := svc.decoder.DecodeAll(data, nil)
	require.NoError(t, err)
	tampered := []byte(`{"version":99,"items":[],"movements":[]}`)
	require.NotEqual(t, payload, tampered)

	err = svc.Restore(ctx, svc.encoder.EncodeAll(tampered, nil))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 99, appErr.Details["version"])
}

func TestExport_EmptyStoreStillValidArchive(t *testing.T) {
	items := newMemItemRepo()
	movements := &memMovementRepo{}
	ctx := context.Background()

	data, err := newTestService(t, items, movements).Export(ctx)
	require.NoError(t, err)

	require.NoError(t, newTestService(t, newMemItemRepo(), &memMovementRepo{}).Restore(ctx, data))
}

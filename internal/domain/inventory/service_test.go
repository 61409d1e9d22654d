package inventory

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
)

type memRepo struct {
	items map[Key]*Item
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[Key]*Item)}
}

func (r *memRepo) GetByKey(_ context.Context, key Key) (*Item, error) {
	item, ok := r.items[key]
	if !ok {
		return nil, apperror.NewNotFound("item", key.Name)
	}
	clone := *item
	return &clone, nil
}

func (r *memRepo) GetByKeyForUpdate(ctx context.Context, key Key) (*Item, error) {
	return r.GetByKey(ctx, key)
}

func (r *memRepo) GetByName(_ context.Context, name string) (*Item, error) {
	var found *Item
	for _, item := range r.items {
		if item.Name != name {
			continue
		}
		if found == nil || item.Unit < found.Unit {
			found = item
		}
	}
	if found == nil {
		return nil, apperror.NewNotFound("item", name)
	}
	clone := *found
	return &clone, nil
}

func (r *memRepo) Insert(_ context.Context, item *Item) error {
	key := item.Key()
	if _, ok := r.items[key]; ok {
		return apperror.NewDuplicate("item", "name", key.Name)
	}
	clone := *item
	r.items[key] = &clone
	return nil
}

func (r *memRepo) Update(_ context.Context, item *Item) error {
	key := item.Key()
	existing, ok := r.items[key]
	if !ok {
		return apperror.NewNotFound("item", key.Name)
	}
	clone := *item
	clone.CreatedAt = existing.CreatedAt
	r.items[key] = &clone
	return nil
}

func (r *memRepo) List(_ context.Context) ([]Item, error) {
	out := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) ListLowStock(ctx context.Context) ([]Item, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(all))
	for _, item := range all {
		if item.IsLowStock() {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	return len(r.items), nil
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func newTestService(repo Repository) *Service {
	clock := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	return NewServiceWithClock(repo, func() time.Time { return clock })
}

func TestUpsertOnReceipt_CreatesItemOnFirstReceipt(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	itemID, err := svc.UpsertOnReceipt(ctx, NewKey("Beras", "kg"), qty(25), ReceiptAttrs{
		Category:     "Sembako",
		MinStock:     qty(5),
		RackLocation: "A-01",
	})
	require.NoError(t, err)
	assert.False(t, id.IsNil(itemID))

	item, err := svc.GetByKey(ctx, NewKey("Beras", "kg"))
	require.NoError(t, err)
	assert.Equal(t, itemID, item.ID)
	assert.Equal(t, qty(25), item.Quantity)
	assert.Equal(t, "Sembako", item.Category)
	assert.Equal(t, qty(5), item.MinStock)
	assert.Equal(t, "A-01", item.RackLocation)
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
}

func TestUpsertOnReceipt_AccumulatesAndOverwritesAttrs(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	firstID, err := svc.UpsertOnReceipt(ctx, NewKey("Gula", "kg"), qty(10), ReceiptAttrs{
		Category:     "Sembako",
		RackLocation: "B-02",
	})
	require.NoError(t, err)

	secondID, err := svc.UpsertOnReceipt(ctx, NewKey("Gula", "kg"), qty(4), ReceiptAttrs{
		Category:     "Bahan Pokok",
		MinStock:     qty(3),
		RackLocation: "B-05",
	})
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID, "same key must resolve to the same item")

	item, err := svc.GetByKey(ctx, NewKey("Gula", "kg"))
	require.NoError(t, err)
	assert.Equal(t, qty(14), item.Quantity)
	assert.Equal(t, "Bahan Pokok", item.Category)
	assert.Equal(t, qty(3), item.MinStock)
	assert.Equal(t, "B-05", item.RackLocation)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertOnReceipt_CreatedAtImmutable(t *testing.T) {
	repo := newMemRepo()
	created := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	later := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)

	clock := created
	svc := NewServiceWithClock(repo, func() time.Time { return clock })
	ctx := context.Background()

	_, err := svc.UpsertOnReceipt(ctx, NewKey("Minyak", "liter"), qty(8), ReceiptAttrs{})
	require.NoError(t, err)

	clock = later
	_, err = svc.UpsertOnReceipt(ctx, NewKey("Minyak", "liter"), qty(2), ReceiptAttrs{})
	require.NoError(t, err)

	item, err := svc.GetByKey(ctx, NewKey("Minyak", "liter"))
	require.NoError(t, err)
	assert.Equal(t, created, item.CreatedAt)
	assert.Equal(t, later, item.UpdatedAt)
}

func TestDeductOnIssue_SubtractsStock(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.UpsertOnReceipt(ctx, NewKey("Masker", "box"), qty(20), ReceiptAttrs{})
	require.NoError(t, err)

	_, err = svc.DeductOnIssue(ctx, NewKey("Masker", "box"), qty(7))
	require.NoError(t, err)

	item, err := svc.GetByKey(ctx, NewKey("Masker", "box"))
	require.NoError(t, err)
	assert.Equal(t, qty(13), item.Quantity)
}

func TestDeductOnIssue_InsufficientStockLeavesItemUntouched(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.UpsertOnReceipt(ctx, NewKey("Sabun", "pcs"), qty(3), ReceiptAttrs{})
	require.NoError(t, err)

	_, err = svc.DeductOnIssue(ctx, NewKey("Sabun", "pcs"), qty(5))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 5.0, appErr.Details["requested"])
	assert.Equal(t, 3.0, appErr.Details["available"])

	item, err := svc.GetByKey(ctx, NewKey("Sabun", "pcs"))
	require.NoError(t, err)
	assert.Equal(t, qty(3), item.Quantity)
}

func TestDeductOnIssue_UnknownItem(t *testing.T) {
	svc := newTestService(newMemRepo())

	_, err := svc.DeductOnIssue(context.Background(), NewKey("Tidak Ada", "pcs"), qty(1))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListLowStock_ThresholdIsInclusive(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.UpsertOnReceipt(ctx, NewKey("Beras", "kg"), qty(5), ReceiptAttrs{MinStock: qty(5)})
	require.NoError(t, err)
	_, err = svc.UpsertOnReceipt(ctx, NewKey("Gula", "kg"), qty(10), ReceiptAttrs{MinStock: qty(3)})
	require.NoError(t, err)
	_, err = svc.UpsertOnReceipt(ctx, NewKey("Minyak", "liter"), qty(1), ReceiptAttrs{MinStock: qty(2)})
	require.NoError(t, err)

	low, err := svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Beras", low[0].Name)
	assert.Equal(t, "Minyak", low[1].Name)
}

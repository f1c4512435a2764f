package stockitem

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain"
	"tokopos/internal/domain/audit"
)

type mockRepo struct {
	byID   map[id.ID]*StockItem
	byCode map[string]*StockItem
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:   make(map[id.ID]*StockItem),
		byCode: make(map[string]*StockItem),
	}
}

func (m *mockRepo) Create(ctx context.Context, item *StockItem) error {
	m.byID[item.ID] = item
	m.byCode[item.Code] = item
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, itemID id.ID) (*StockItem, error) {
	item, ok := m.byID[itemID]
	if !ok {
		return nil, apperror.NewNotFound("stock item", itemID)
	}
	return item, nil
}

func (m *mockRepo) GetByCode(ctx context.Context, code string) (*StockItem, error) {
	item, ok := m.byCode[code]
	if !ok {
		return nil, apperror.NewNotFound("stock item", code)
	}
	return item, nil
}

func (m *mockRepo) Update(ctx context.Context, item *StockItem) error {
	m.byID[item.ID] = item
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, itemID id.ID) error {
	if item, ok := m.byID[itemID]; ok {
		item.DeletionMark = true
	}
	return nil
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockItem], error) {
	return domain.ListResult[*StockItem]{}, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, itemID id.ID) (*StockItem, error) {
	return m.GetByID(ctx, itemID)
}

func (m *mockRepo) ExistingIDs(ctx context.Context, itemIDs []id.ID) (map[id.ID]bool, error) {
	out := make(map[id.ID]bool)
	for _, itemID := range itemIDs {
		_, ok := m.byID[itemID]
		out[itemID] = ok
	}
	return out, nil
}

func (m *mockRepo) AdjustQuantity(ctx context.Context, itemID id.ID, delta int64) error {
	item, err := m.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	item.Quantity += delta
	return nil
}

func (m *mockRepo) AdjustQuantities(ctx context.Context, deltas []QuantityDelta) error {
	for _, d := range deltas {
		if err := m.AdjustQuantity(ctx, d.ItemID, d.Delta); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockRepo) SetCostPrice(ctx context.Context, itemID id.ID, cost types.Money) error {
	item, err := m.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	item.CostPrice = cost
	return nil
}

func TestCreate_RejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepo(), nil)

	first := NewStockItem("BRS-5", "Beras 5kg")
	require.NoError(t, svc.Create(ctx, first))

	second := NewStockItem("BRS-5", "Beras 5kg premium")
	err := svc.Create(ctx, second)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDuplicate, apperror.GetCode(err))
}

func TestCreate_RejectsInvalidItem(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepo(), nil)

	cases := []struct {
		name string
		item *StockItem
	}{
		{"empty code", NewStockItem("", "Beras 5kg")},
		{"empty name", NewStockItem("BRS-5", "  ")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Create(ctx, tc.item)
			require.Error(t, err)
			assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
		})
	}

	negative := NewStockItem("GLA-1", "Gula 1kg")
	negative.SellPrice = types.MustMoney("-1")
	err := svc.Create(ctx, negative)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

type mockRecorder struct {
	entries []audit.Entry
}

func (m *mockRecorder) Record(ctx context.Context, entry audit.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func TestUpdate_AuditsFieldDiff(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	recorder := &mockRecorder{}
	svc := NewService(repo, recorder)

	item := NewStockItem("BRS-5", "Beras 5kg")
	item.SellPrice = types.MustMoney("15000")
	require.NoError(t, svc.Create(ctx, item))

	updated := *item
	updated.SellPrice = types.MustMoney("16000")
	require.NoError(t, svc.Update(ctx, &updated))

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, "stock_item", entry.EntityType)
	assert.Equal(t, audit.ActionEdit, entry.Action)

	// Only the edited field appears in the diff.
	var changes map[string]any
	require.NoError(t, json.Unmarshal(entry.Changes, &changes))
	assert.Contains(t, changes, "sellPrice")
	assert.NotContains(t, changes, "name")
	assert.NotContains(t, changes, "code")
}

func TestDelete_RequiresExistingItem(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	svc := NewService(repo, nil)

	err := svc.Delete(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))

	item := NewStockItem("BRS-5", "Beras 5kg")
	require.NoError(t, svc.Create(ctx, item))
	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.True(t, repo.byID[item.ID].DeletionMark)
}

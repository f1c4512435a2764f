package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

var testDate = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

func TestAddLine_NumbersAndTotals(t *testing.T) {
	inv := NewInvoice("Budi", testDate, StatusPaid)
	inv.AddLine(id.New(), "Beras 5kg", 2, types.MustMoney("68000"), PriceRetail, types.MustMoney("60000"))
	inv.AddLine(id.New(), "Gula 1kg", 3, types.MustMoney("15000"), PriceRetail, types.MustMoney("12500"))

	require.Len(t, inv.Lines, 2)
	assert.Equal(t, 1, inv.Lines[0].LineNo)
	assert.Equal(t, 2, inv.Lines[1].LineNo)

	// 2*68000 + 3*15000
	assert.True(t, inv.Total.Equal(types.MustMoney("181000")), "total = %s", inv.Total)
}

func TestLineProfit_UsesCapturedCost(t *testing.T) {
	line := Line{
		Quantity:  4,
		UnitPrice: types.MustMoney("10000"),
		UnitCost:  types.MustMoney("7500"),
	}

	assert.True(t, line.Profit().Equal(types.MustMoney("10000")))
	assert.True(t, line.Amount().Equal(types.MustMoney("40000")))
}

func TestInvoiceProfit_SumsLines(t *testing.T) {
	inv := NewInvoice("", testDate, StatusPaid)
	inv.AddLine(id.New(), "A", 1, types.MustMoney("100"), PriceRetail, types.MustMoney("60"))
	inv.AddLine(id.New(), "B", 2, types.MustMoney("50"), PriceWholesale, types.MustMoney("45"))

	assert.True(t, inv.Profit().Equal(types.MustMoney("50")))
}

func TestValidate_RejectsEmptyCart(t *testing.T) {
	inv := NewInvoice("Budi", testDate, StatusPaid)

	err := inv.Validate(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestValidate_RejectsBadLines(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Line)
	}{
		{"nil item reference", func(l *Line) { l.ItemID = id.Nil() }},
		{"zero quantity", func(l *Line) { l.Quantity = 0 }},
		{"negative quantity", func(l *Line) { l.Quantity = -1 }},
		{"negative price", func(l *Line) { l.UnitPrice = types.MustMoney("-1") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := NewInvoice("Budi", testDate, StatusPaid)
			inv.AddLine(id.New(), "Beras 5kg", 1, types.MustMoney("68000"), PriceRetail, types.Zero())
			tc.mutate(&inv.Lines[0])

			err := inv.Validate(context.Background())
			require.Error(t, err)
			assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
		})
	}
}

func TestValidate_RejectsUnknownStatus(t *testing.T) {
	inv := NewInvoice("Budi", testDate, Status("pending"))
	inv.AddLine(id.New(), "Beras 5kg", 1, types.MustMoney("68000"), PriceRetail, types.Zero())

	err := inv.Validate(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidStatus, apperror.GetCode(err))
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("paid")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, status)

	status, err = ParseStatus("unpaid")
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, status)

	for _, raw := range []string{"", "PAID", "pending", "settled"} {
		_, err := ParseStatus(raw)
		require.Error(t, err, "raw=%q", raw)
		assert.Equal(t, apperror.CodeInvalidStatus, apperror.GetCode(err))
	}
}

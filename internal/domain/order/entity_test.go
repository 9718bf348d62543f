package order

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	o, err := NewOrder(3, []OrderItem{
		{BookID: 1, Quantity: 2, Price: 1500},
		{BookID: 2, Quantity: 1, Price: 999},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, o.Status)
	assert.Equal(t, int64(3999), o.TotalPrice)
	assert.Equal(t, 3, o.TotalQuantity())

	_, err = NewOrder(0, nil)
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = NewOrder(0, []OrderItem{{BookID: 1, Quantity: 0, Price: 1}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	t.Run("总金额溢出", func(t *testing.T) {
		_, err := NewOrder(0, []OrderItem{{BookID: 1, Quantity: 999, Price: math.MaxInt64 / 100}})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = NewOrder(0, []OrderItem{
			{BookID: 1, Quantity: 1, Price: MaxTotal},
			{BookID: 2, Quantity: 1, Price: 1},
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("恰好等于上限", func(t *testing.T) {
		o, err := NewOrder(0, []OrderItem{{BookID: 1, Quantity: 2, Price: MaxTotal / 2}})
		require.NoError(t, err)
		assert.Equal(t, MaxTotal, o.TotalPrice)
	})
}

func TestStatus_NeedsRestock(t *testing.T) {
	restock := []Status{StatusFailure, StatusExpired, StatusReversed, StatusHold}
	for _, s := range restock {
		assert.True(t, s.NeedsRestock(), s)
	}

	keep := []Status{StatusCreated, StatusProcessing, StatusSuccess, Status("unknown")}
	for _, s := range keep {
		assert.False(t, s.NeedsRestock(), s)
	}

	assert.True(t, StatusHold.IsKnown())
	assert.False(t, Status("refunded").IsKnown())
}

func TestOrder_ApplyStatus(t *testing.T) {
	o, err := NewOrder(0, []OrderItem{{BookID: 1, Quantity: 1, Price: 100}})
	require.NoError(t, err)

	assert.False(t, o.ApplyStatus(StatusProcessing))
	assert.True(t, o.ApplyStatus(StatusHold), "第一次进入回补状态需要回补")
	assert.False(t, o.ApplyStatus(StatusFailure), "已经回补过不再回补")
	assert.Equal(t, StatusFailure, o.Status)
	assert.True(t, o.Restocked)
}

func TestOrder_MatchesInvoice(t *testing.T) {
	o := &Order{}
	assert.False(t, o.MatchesInvoice(""), "未关联发票时不匹配任何值")

	o.AttachInvoice("p2_9ZgpZVsl3")
	assert.True(t, o.MatchesInvoice("p2_9ZgpZVsl3"))
	assert.False(t, o.MatchesInvoice("other"))
}

func TestOrder_IsOwnedBy(t *testing.T) {
	assert.True(t, (&Order{UserID: 5}).IsOwnedBy(5))
	assert.False(t, (&Order{UserID: 5}).IsOwnedBy(6))
	assert.False(t, (&Order{UserID: 0}).IsOwnedBy(0), "匿名订单不属于任何用户")
}

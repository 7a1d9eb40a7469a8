package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdepth/internal/common"
)

func rawPrice(dollars float64) int64 {
	return int64(dollars * float64(common.FixedPriceScale))
}

func addOrder(id uint64, side common.Side, dollars float64, size uint32, last bool) common.Message {
	var flags common.Flags
	if last {
		flags = common.FlagLast
	}
	return common.Message{
		Action:  common.ActionAdd,
		Side:    side,
		OrderID: id,
		Price:   common.PriceFromRaw(rawPrice(dollars)),
		Size:    size,
		Flags:   flags,
		TsRecv:  int64(id),
	}
}

// TestAddAndBBO checks that a single resting bid is reported as the
// best bid with no opposing offer.
func TestAddAndBBO(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, true)))

	bid, offer := ob.BBO()
	require.NotNil(t, bid.Price)
	assert.Equal(t, rawPrice(100.00), bid.Price.Raw)
	assert.Equal(t, uint64(5), bid.Size)
	assert.True(t, offer.Empty())
}

// TestFullCancelAtHeadRemovesLevel checks that cancelling an order's
// full size deletes the now-empty price level.
func TestFullCancelAtHeadRemovesLevel(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(9, common.SideBid, 101.00, 4, true)))
	require.NoError(t, ob.Apply(common.Message{
		Action: common.ActionCancel, OrderID: 9, Size: 4, TsRecv: 2,
	}))

	assert.Empty(t, ob.Bids())
	bid, _ := ob.BBO()
	assert.True(t, bid.Empty())
}

// TestModifyPriceLosesPriority checks that changing an order's price
// moves it to the back of its new price level's queue.
func TestModifyPriceLosesPriority(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, false)))
	require.NoError(t, ob.Apply(addOrder(2, common.SideBid, 100.00, 3, false)))
	require.NoError(t, ob.Apply(addOrder(3, common.SideBid, 100.00, 7, true)))

	require.NoError(t, ob.Apply(common.Message{
		Action: common.ActionModify, Side: common.SideBid, OrderID: 1,
		Price: common.PriceFromRaw(rawPrice(99.99)), Size: 5, TsRecv: 4,
	}))

	levels := ob.Bids()
	require.Len(t, levels, 2)
	assert.Equal(t, rawPrice(100.00), levels[0].Price.Raw)
	assert.Equal(t, uint64(2), levels[0].Head().OrderID)
	assert.Equal(t, uint64(3), levels[0].Tail().OrderID)
	assert.Equal(t, rawPrice(99.99), levels[1].Price.Raw)
}

// TestModifySizeIncreaseLosesPriority checks that increasing an order's
// size sends it to the tail of its price level.
func TestModifySizeIncreaseLosesPriority(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, false)))
	require.NoError(t, ob.Apply(addOrder(2, common.SideBid, 100.00, 3, true)))

	require.NoError(t, ob.Apply(common.Message{
		Action: common.ActionModify, Side: common.SideBid, OrderID: 1,
		Price: common.PriceFromRaw(rawPrice(100.00)), Size: 9, TsRecv: 3,
	}))

	level := ob.Bids()[0]
	assert.Equal(t, uint64(2), level.Head().OrderID)
	assert.Equal(t, uint64(1), level.Tail().OrderID)
}

// TestModifySizeDecreasePreservesPriority is the modify-down law.
func TestModifySizeDecreasePreservesPriority(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, false)))
	require.NoError(t, ob.Apply(addOrder(2, common.SideBid, 100.00, 3, true)))

	require.NoError(t, ob.Apply(common.Message{
		Action: common.ActionModify, Side: common.SideBid, OrderID: 1,
		Price: common.PriceFromRaw(rawPrice(100.00)), Size: 2, TsRecv: 3,
	}))

	level := ob.Bids()[0]
	assert.Equal(t, uint64(1), level.Head().OrderID)
	assert.Equal(t, uint64(2), level.Tail().OrderID)
	assert.Equal(t, uint64(5), level.NumShares())
}

// TestCancelLawRestoresPriorState: Add then full Cancel of the same
// size restores the book (modulo ts_last_update).
func TestCancelLawRestoresPriorState(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, true)))
	require.NoError(t, ob.Apply(common.Message{
		Action: common.ActionCancel, OrderID: 1, Size: 5, TsRecv: 2,
	}))

	assert.Empty(t, ob.Bids())
	assert.Empty(t, ob.Offers())
}

// TestClearEmptiesBookAndAdvancesTimestamp checks that a Clear action
// empties both sides and still advances the last-update timestamp.
func TestClearEmptiesBookAndAdvancesTimestamp(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, true)))
	require.NoError(t, ob.Apply(addOrder(2, common.SideAsk, 100.10, 8, true)))

	require.NoError(t, ob.Apply(common.Message{Action: common.ActionClear, TsRecv: 99}))

	assert.Empty(t, ob.Bids())
	assert.Empty(t, ob.Offers())
	assert.Equal(t, int64(99), ob.LastUpdate())
}

func TestTradeAndFillAreNoOps(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, true)))

	require.NoError(t, ob.Apply(common.Message{Action: common.ActionTrade, TsRecv: 2}))
	require.NoError(t, ob.Apply(common.Message{Action: common.ActionFill, TsRecv: 3}))

	bid, _ := ob.BBO()
	assert.Equal(t, uint64(5), bid.Size)
}

func TestAddDuplicateOrderErrors(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, true)))

	err := ob.Apply(addOrder(1, common.SideBid, 101.00, 5, true))
	assert.ErrorIs(t, err, common.ErrDuplicateOrder)
}

func TestCancelUnknownOrderErrors(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	err := ob.Apply(common.Message{Action: common.ActionCancel, OrderID: 404, Size: 1})
	assert.ErrorIs(t, err, common.ErrUnknownOrder)
}

func TestFullDepthBookRejectsTOBFlag(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	err := ob.Apply(common.Message{Action: common.ActionAdd, Flags: common.FlagTOB})
	assert.ErrorIs(t, err, common.ErrFlagMisuse)
}

func TestAddUndefinedPriceErrors(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	err := ob.Apply(common.Message{
		Action: common.ActionAdd, Side: common.SideBid, OrderID: 1,
		Price: common.PriceFromRaw(common.UndefPrice), Size: 5,
	})
	assert.ErrorIs(t, err, common.ErrInvariantViolation)
}

func TestFailedApplyLeavesStateUnchanged(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 100.00, 5, true)))

	before := ob.LastUpdate()
	err := ob.Apply(common.Message{Action: common.ActionCancel, OrderID: 999, Size: 1, TsRecv: 50})
	assert.Error(t, err)
	assert.Equal(t, before, ob.LastUpdate())
}

func TestCrossedBookIsPermitted(t *testing.T) {
	ob := NewOrderBook("X", 1, 1)
	require.NoError(t, ob.Apply(addOrder(1, common.SideBid, 101.00, 5, false)))
	require.NoError(t, ob.Apply(addOrder(2, common.SideAsk, 100.00, 5, true)))

	bid, offer := ob.BBO()
	assert.True(t, bid.Price.Raw > offer.Price.Raw)
}

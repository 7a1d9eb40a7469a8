package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdepth/internal/common"
	"marketdepth/internal/engine"
)

func rawPrice(dollars float64) int64 {
	return int64(dollars * float64(common.FixedPriceScale))
}

func mboAdd(publisherID uint16, instrumentID uint32, orderID uint64, side common.Side, dollars float64, size uint32, last bool) MBORecord {
	var flags common.Flags
	if last {
		flags = common.FlagLast
	}
	return MBORecord{Message: common.Message{
		Action:       common.ActionAdd,
		Side:         side,
		OrderID:      orderID,
		Price:        common.PriceFromRaw(rawPrice(dollars)),
		Size:         size,
		PublisherID:  publisherID,
		InstrumentID: instrumentID,
		Flags:        flags,
	}}
}

func TestLazyBookCreationOnFirstAdd(t *testing.T) {
	m := New()

	_, offer := m.BBO(1, 100)
	assert.True(t, offer.Empty())

	require.NoError(t, m.Apply(mboAdd(1, 100, 1, common.SideBid, 100.00, 5, true)))
	bid, _ := m.BBO(1, 100)
	assert.Equal(t, rawPrice(100.00), bid.Price.Raw)
}

// TestBookVariantFixedAtCreation: the first Add's F_TOB flag decides the
// book variant forever, even if later records disagree.
func TestBookVariantFixedAtCreation(t *testing.T) {
	m := New()
	tobAdd := mboAdd(1, 100, 1, common.SideBid, 50.00, 200, false)
	tobAdd.Flags |= common.FlagTOB
	require.NoError(t, m.Apply(tobAdd))

	book := m.GetOrderBook(1, 100)
	_, isTOB := book.(*engine.TopOfBookBook)
	assert.True(t, isTOB)

	// A later full-depth Add for the same pair must not change the
	// variant already fixed by the first Add.
	fullDepthAdd := mboAdd(1, 100, 2, common.SideAsk, 50.05, 300, true)
	require.NoError(t, m.Apply(fullDepthAdd))
	_, stillTOB := m.GetOrderBook(1, 100).(*engine.TopOfBookBook)
	assert.True(t, stillTOB)
}

func TestNonAddOnUnknownPairIsTolerated(t *testing.T) {
	m := New()
	err := m.Apply(MBORecord{Message: common.Message{
		Action: common.ActionCancel, PublisherID: 1, InstrumentID: 100, OrderID: 7,
	}})
	assert.NoError(t, err)

	book := m.GetOrderBook(1, 100)
	bid, offer := book.BBO()
	assert.True(t, bid.Empty())
	assert.True(t, offer.Empty())
}

func TestSymbolMappingDoesNotTouchIsReady(t *testing.T) {
	m := New()
	require.NoError(t, m.Apply(mboAdd(1, 100, 1, common.SideBid, 100.00, 5, false)))
	assert.False(t, m.IsReady())

	require.NoError(t, m.Apply(SymbolMappingRecord{InstrumentID: 100, Symbol: "AAPL"}))
	assert.False(t, m.IsReady())

	// The mapping arrived after the book was created, so the book's
	// display name — fixed at creation — is still the raw numeric id.
	assert.Equal(t, "AAPL", m.symbolFor(100))
	ob := m.GetOrderBook(1, 100).(*engine.OrderBook)
	assert.Equal(t, "100", ob.Instrument)
}

func TestSystemRecordIsNoOp(t *testing.T) {
	m := New()
	require.NoError(t, m.Apply(SystemRecord{}))
	assert.True(t, m.IsReady())
}

// TestConsolidatedBBO checks that the fold across publishers keeps the
// highest bid and the lowest offer.
func TestConsolidatedBBO(t *testing.T) {
	m := New()
	require.NoError(t, m.Apply(mboAdd(1, 100, 1, common.SideBid, 100.00, 10, true)))
	require.NoError(t, m.Apply(mboAdd(2, 100, 2, common.SideBid, 100.05, 4, true)))
	require.NoError(t, m.Apply(mboAdd(2, 100, 3, common.SideAsk, 100.20, 3, true)))
	require.NoError(t, m.Apply(mboAdd(1, 100, 4, common.SideAsk, 100.10, 8, true)))

	bid, offer := m.ConsolidatedBBO(100)
	assert.Equal(t, rawPrice(100.05), bid.Price.Raw)
	assert.Equal(t, uint64(4), bid.Size)
	assert.Equal(t, rawPrice(100.10), offer.Price.Raw)
	assert.Equal(t, uint64(8), offer.Size)
}

func TestUnsupportedRecordErrors(t *testing.T) {
	m := New()
	err := m.Apply(unsupportedRecord{})
	assert.ErrorIs(t, err, common.ErrUnsupportedRecord)
}

type unsupportedRecord struct{}

func (unsupportedRecord) Kind() RecordKind { return RecordKind(99) }

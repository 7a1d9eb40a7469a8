package engine

import (
	"fmt"

	"marketdepth/internal/book"
	"marketdepth/internal/common"
)

// TopOfBookBook manages a reduced feed that only ever carries the
// current best bid and best offer — two optional slots, no queues, no
// price maps.
type TopOfBookBook struct {
	Instrument   string
	PublisherID  uint16
	InstrumentID uint32

	bid   *book.OrderNode
	offer *book.OrderNode

	tsLastUpdate int64
}

// NewTopOfBookBook creates an empty top-of-book book.
func NewTopOfBookBook(instrument string, publisherID uint16, instrumentID uint32) *TopOfBookBook {
	return &TopOfBookBook{
		Instrument:   instrument,
		PublisherID:  publisherID,
		InstrumentID: instrumentID,
	}
}

// LastUpdate returns the ts_recv of the most recently, successfully
// applied message.
func (tb *TopOfBookBook) LastUpdate() int64 { return tb.tsLastUpdate }

// Orders returns a flat listing of whichever slots are populated.
func (tb *TopOfBookBook) Orders() []*book.OrderNode {
	var orders []*book.OrderNode
	if tb.bid != nil {
		orders = append(orders, tb.bid)
	}
	if tb.offer != nil {
		orders = append(orders, tb.offer)
	}
	return orders
}

// Apply updates the book per msg's action. Only T, N, R, A are legal;
// C and M are not used by top-of-book feeds and are refused.
func (tb *TopOfBookBook) Apply(msg common.Message) error {
	switch msg.Action {
	case common.ActionTrade, common.ActionNone:
		// No change: trades do not affect the book because all trades
		// are accompanied by new Add actions that do update it.
	case common.ActionClear:
		tb.bid, tb.offer = nil, nil
	case common.ActionAdd:
		if !msg.Flags.IsTOB() {
			return fmt.Errorf("%w: top-of-book add without F_TOB", common.ErrFlagMisuse)
		}
		tb.add(msg)
	case common.ActionCancel, common.ActionModify:
		return fmt.Errorf("%w: %q not supported on a top-of-book feed", common.ErrInvalidAction, msg.Action)
	default:
		return fmt.Errorf("%w: %q", common.ErrInvalidAction, msg.Action)
	}

	tb.tsLastUpdate = msg.TsRecv
	return nil
}

// add replaces the slot for msg.Side. A "blank" side — size zero and an
// undefined price — clears the slot instead. Per the pairing rule, a
// non-final record in a batch wipes the other side pending its
// partner.
func (tb *TopOfBookBook) add(msg common.Message) {
	var node *book.OrderNode
	if msg.Size != 0 || !msg.Price.IsUndefined() {
		node = book.NewOrderNode(msg)
	}

	if msg.Side == common.SideBid {
		tb.bid = node
	} else {
		tb.offer = node
	}

	if !msg.Flags.IsLast() {
		if msg.Side == common.SideBid {
			tb.offer = nil
		} else {
			tb.bid = nil
		}
	}
}

// BBO returns the current best bid and offer, i.e. whatever is
// currently resident in the two slots.
func (tb *TopOfBookBook) BBO() (common.BestBidOffer, common.BestBidOffer) {
	var bestBid, bestOffer common.BestBidOffer

	if tb.bid != nil {
		price := tb.bid.Price
		bestBid = common.BestBidOffer{Price: &price, Size: uint64(tb.bid.Size)}
	}
	if tb.offer != nil {
		price := tb.offer.Price
		bestOffer = common.BestBidOffer{Price: &price, Size: uint64(tb.offer.Size)}
	}

	return bestBid, bestOffer
}

// String renders the same header as OrderBook.String but with just the
// single best bid/offer line.
func (tb *TopOfBookBook) String() string {
	bestBid, bestOffer := tb.BBO()

	var offers, bids []depthLine
	if !bestOffer.Empty() {
		offers = append(offers, depthLine{price: *bestOffer.Price, size: bestOffer.Size})
	}
	if !bestBid.Empty() {
		bids = append(bids, depthLine{price: *bestBid.Price, size: bestBid.Size})
	}

	return renderBook(tb.Instrument, tb.PublisherID, tb.tsLastUpdate, offers, bids)
}

// Package engine implements the per-(publisher, instrument) book state
// machines: the full-depth OrderBook and the top-of-book-only
// TopOfBookBook, both implementing the Book interface the Market package
// routes messages through.
package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"

	"marketdepth/internal/book"
	"marketdepth/internal/common"
)

// Book is the shared trait both book variants implement. The two
// variants share almost no behaviour beyond this surface, so a tagged
// interface is preferred over inheritance.
type Book interface {
	Apply(msg common.Message) error
	BBO() (common.BestBidOffer, common.BestBidOffer)
	LastUpdate() int64
	fmt.Stringer
}

// OrderBook manages the full-depth L3 book for one (publisher,
// instrument) pair: two price-ordered maps of PriceLevelQueue plus an
// order-id index.
type OrderBook struct {
	Instrument   string
	PublisherID  uint16
	InstrumentID uint32

	// bids is sorted highest price first so MinMut() returns the best bid.
	bids *btree.BTreeG[*book.PriceLevelQueue]
	// offers is sorted lowest price first so MinMut() returns the best offer.
	offers *btree.BTreeG[*book.PriceLevelQueue]
	orders map[uint64]*book.OrderNode

	tsLastUpdate int64
}

// NewOrderBook creates an empty full-depth book for the given
// instrument/publisher pair.
func NewOrderBook(instrument string, publisherID uint16, instrumentID uint32) *OrderBook {
	return &OrderBook{
		Instrument:   instrument,
		PublisherID:  publisherID,
		InstrumentID: instrumentID,
		bids:         newBidTree(),
		offers:       newOfferTree(),
		orders:       make(map[uint64]*book.OrderNode),
	}
}

// LastUpdate returns the ts_recv of the most recently, successfully
// applied message.
func (ob *OrderBook) LastUpdate() int64 { return ob.tsLastUpdate }

// Apply updates the book per msg's action.
func (ob *OrderBook) Apply(msg common.Message) error {
	if msg.Flags.IsTOB() {
		return fmt.Errorf("%w: full-depth book received F_TOB", common.ErrFlagMisuse)
	}

	switch msg.Action {
	case common.ActionTrade, common.ActionFill, common.ActionNone:
		// Trades and fills are informational; the matching cancel/modify
		// that follows carries the size change.
	case common.ActionClear:
		ob.clear()
	case common.ActionAdd:
		if err := ob.add(msg); err != nil {
			return err
		}
	case common.ActionCancel:
		if err := ob.cancel(msg); err != nil {
			return err
		}
	case common.ActionModify:
		if err := ob.modify(msg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", common.ErrInvalidAction, msg.Action)
	}

	ob.tsLastUpdate = msg.TsRecv
	return nil
}

func (ob *OrderBook) clear() {
	ob.orders = make(map[uint64]*book.OrderNode)
	ob.bids = newBidTree()
	ob.offers = newOfferTree()
	log.Debug().
		Uint16("publisher", ob.PublisherID).
		Uint32("instrument", ob.InstrumentID).
		Msg("book cleared")
}

func newBidTree() *btree.BTreeG[*book.PriceLevelQueue] {
	return btree.NewBTreeG(func(a, b *book.PriceLevelQueue) bool {
		return a.Price.Raw > b.Price.Raw
	})
}

func newOfferTree() *btree.BTreeG[*book.PriceLevelQueue] {
	return btree.NewBTreeG(func(a, b *book.PriceLevelQueue) bool {
		return a.Price.Raw < b.Price.Raw
	})
}

func (ob *OrderBook) treeFor(side common.Side) (*btree.BTreeG[*book.PriceLevelQueue], error) {
	switch side {
	case common.SideAsk:
		return ob.offers, nil
	case common.SideBid:
		return ob.bids, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidSide, side)
	}
}

func (ob *OrderBook) add(msg common.Message) error {
	if _, exists := ob.orders[msg.OrderID]; exists {
		return fmt.Errorf("%w: order %d", common.ErrDuplicateOrder, msg.OrderID)
	}
	if msg.Price.IsUndefined() {
		return fmt.Errorf("%w: add with undefined price for order %d", common.ErrInvariantViolation, msg.OrderID)
	}

	tree, err := ob.treeFor(msg.Side)
	if err != nil {
		return err
	}

	probe := &book.PriceLevelQueue{Price: msg.Price}
	queue, ok := tree.GetMut(probe)
	if !ok {
		queue = book.NewPriceLevelQueue(msg.Price)
		tree.Set(queue)
		log.Debug().
			Uint16("publisher", msg.PublisherID).
			Uint32("instrument", msg.InstrumentID).
			Str("side", msg.Side.String()).
			Msg("price level created")
	}

	node := queue.Append(msg)
	ob.orders[msg.OrderID] = node
	return nil
}

func (ob *OrderBook) cancel(msg common.Message) error {
	node, ok := ob.orders[msg.OrderID]
	if !ok {
		return fmt.Errorf("%w: order %d", common.ErrUnknownOrder, msg.OrderID)
	}

	if err := ob.removeFromQueue(node, msg.Size); err != nil {
		return err
	}

	if node.Size == 0 {
		delete(ob.orders, msg.OrderID)
	} else {
		node.TsRecv = msg.TsRecv
	}
	return nil
}

func (ob *OrderBook) modify(msg common.Message) error {
	node, ok := ob.orders[msg.OrderID]
	if !ok {
		return fmt.Errorf("%w: order %d", common.ErrUnknownOrder, msg.OrderID)
	}
	if node.Side != msg.Side {
		return fmt.Errorf("%w: order %d cannot change sides", common.ErrInvariantViolation, msg.OrderID)
	}

	switch {
	case node.Price.Raw != msg.Price.Raw:
		// Price change loses priority: cancel the full remaining size,
		// then add fresh at the new price.
		return ob.cancelAndReplace(node, msg)
	case msg.Size > node.Size:
		// Size increase loses priority.
		return ob.cancelAndReplace(node, msg)
	case msg.Size < node.Size:
		// Shrinking in place keeps priority.
		if err := ob.removeFromQueue(node, node.Size-msg.Size); err != nil {
			return err
		}
		node.TsRecv = msg.TsRecv
		return nil
	default:
		// Size unchanged: no-op on shares, timestamp bump only.
		node.TsRecv = msg.TsRecv
		return nil
	}
}

func (ob *OrderBook) cancelAndReplace(node *book.OrderNode, msg common.Message) error {
	if err := ob.removeFromQueue(node, node.Size); err != nil {
		return err
	}
	delete(ob.orders, msg.OrderID)
	return ob.add(msg)
}

// removeFromQueue decrements node by amount within its queue, deleting
// the price level if it empties out.
func (ob *OrderBook) removeFromQueue(node *book.OrderNode, amount uint32) error {
	tree, err := ob.treeFor(node.Side)
	if err != nil {
		return err
	}

	probe := &book.PriceLevelQueue{Price: node.Price}
	queue, ok := tree.GetMut(probe)
	if !ok {
		return fmt.Errorf("%w: price level missing for order %d", common.ErrInvariantViolation, node.OrderID)
	}

	if err := queue.Remove(node, amount); err != nil {
		return err
	}

	if node.Size == 0 && queue.Empty() {
		tree.Delete(probe)
		log.Debug().
			Uint16("publisher", node.PublisherID).
			Uint32("instrument", node.InstrumentID).
			Str("side", node.Side.String()).
			Msg("price level deleted")
	}
	return nil
}

// BBO returns the best bid and offer: the aggregate depth at the
// highest bid price and the lowest offer price, respectively.
func (ob *OrderBook) BBO() (common.BestBidOffer, common.BestBidOffer) {
	var bestBid, bestOffer common.BestBidOffer

	if level, ok := ob.bids.Min(); ok {
		price := level.Price
		bestBid = common.BestBidOffer{Price: &price, Size: level.NumShares()}
	}
	if level, ok := ob.offers.Min(); ok {
		price := level.Price
		bestOffer = common.BestBidOffer{Price: &price, Size: level.NumShares()}
	}

	return bestBid, bestOffer
}

// Bids returns the bid-side price levels, highest price first.
func (ob *OrderBook) Bids() []*book.PriceLevelQueue { return ob.bids.Items() }

// Offers returns the offer-side price levels, lowest price first.
func (ob *OrderBook) Offers() []*book.PriceLevelQueue { return ob.offers.Items() }

// String renders an L2 depth dump: offers highest-to-lowest above bids
// highest-to-lowest, each line "price x aggregate_depth", with a header
// naming instrument and publisher and the last update time in UTC and
// US/Eastern.
func (ob *OrderBook) String() string {
	offers := ob.Offers()
	offerLines := make([]depthLine, len(offers))
	for i, level := range offers {
		offerLines[i] = depthLine{price: level.Price, size: level.NumShares()}
	}

	bids := ob.Bids()
	bidLines := make([]depthLine, len(bids))
	for i, level := range bids {
		bidLines[i] = depthLine{price: level.Price, size: level.NumShares()}
	}

	return renderBook(ob.Instrument, ob.PublisherID, ob.tsLastUpdate, offerLines, bidLines)
}

// Package market implements the cross-exchange aggregator: the
// publisher -> instrument -> book router, the symbology table, the
// is_ready read gate, and consolidated BBO.
package market

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog/log"

	"marketdepth/internal/common"
	"marketdepth/internal/engine"
)

// Market owns one book per (publisher, instrument) pair and answers
// both per-exchange and consolidated BBO queries.
type Market struct {
	// exchanges is publisher_id -> (instrument_id -> book). A nil inner
	// map means the publisher has never been seen on an Add.
	exchanges map[uint16]map[uint32]engine.Book
	symbology map[uint32]string

	// isReady mirrors the most recently applied MBO record's F_LAST bit.
	// It starts true, matching the reference: a stream that never sends
	// paired top-of-book updates is always ready.
	isReady bool
}

// New creates an empty Market.
func New() *Market {
	return &Market{
		exchanges: make(map[uint16]map[uint32]engine.Book),
		symbology: make(map[uint32]string),
		isReady:   true,
	}
}

// IsReady reports whether the most recently applied MBO record carried
// F_LAST — i.e. whether any in-flight paired batch has fully landed.
// For full-depth feeds every record sets F_LAST, so this is effectively
// always true after any Apply. Consumers of top-of-book feeds must
// check this before trusting Market state.
func (m *Market) IsReady() bool { return m.isReady }

// symbolFor resolves the display name for an instrument id, falling
// back to the raw numeric id when no symbol mapping has arrived yet.
func (m *Market) symbolFor(instrumentID uint32) string {
	if symbol, ok := m.symbology[instrumentID]; ok {
		return symbol
	}
	return fmt.Sprintf("%d", instrumentID)
}

// getOrCreateBook finds the book for (publisherID, instrumentID),
// lazily creating it when msg is an Add. The book variant — full-depth
// or top-of-book — is fixed forever at creation time from msg.Flags'
// F_TOB bit. Non-add messages for an unknown pair fall through to a
// throwaway, never-stored book, matching the original's ephemeral
// empty-book behaviour.
func (m *Market) getOrCreateBook(msg common.Message) engine.Book {
	instruments, known := m.exchanges[msg.PublisherID]

	if !known && msg.Action == common.ActionAdd {
		instruments = make(map[uint32]engine.Book)
		m.exchanges[msg.PublisherID] = instruments
	}

	if instruments != nil {
		if book, ok := instruments[msg.InstrumentID]; ok {
			return book
		}
		if msg.Action == common.ActionAdd {
			instrument := m.symbolFor(msg.InstrumentID)
			var book engine.Book
			if msg.Flags.IsTOB() {
				book = engine.NewTopOfBookBook(instrument, msg.PublisherID, msg.InstrumentID)
			} else {
				book = engine.NewOrderBook(instrument, msg.PublisherID, msg.InstrumentID)
			}
			instruments[msg.InstrumentID] = book
			return book
		}
	}

	return engine.NewOrderBook(m.symbolFor(msg.InstrumentID), msg.PublisherID, msg.InstrumentID)
}

// GetOrderBook returns the book tracked for (publisherID, instrumentID),
// or a fresh, never-stored empty full-depth book if the pair is
// unknown — safe to call, and to query BBO from, on any key.
func (m *Market) GetOrderBook(publisherID uint16, instrumentID uint32) engine.Book {
	if instruments, ok := m.exchanges[publisherID]; ok {
		if book, ok := instruments[instrumentID]; ok {
			return book
		}
	}
	return engine.NewOrderBook(m.symbolFor(instrumentID), publisherID, instrumentID)
}

// Apply routes a decoded record:
//   - SymbolMappingRecord updates the symbology table only.
//   - MBORecord is routed to the owning book (creating it lazily on
//     Add), applied, and drives is_ready from F_LAST. Errors from the
//     underlying book are logged and swallowed rather than propagated —
//     non-add messages against an unknown (publisher, instrument) pair
//     are tolerated this way.
//   - SystemRecord (heartbeats) is a no-op.
func (m *Market) Apply(rec Record) error {
	switch r := rec.(type) {
	case SymbolMappingRecord:
		m.symbology[r.InstrumentID] = r.Symbol
		return nil

	case MBORecord:
		book := m.getOrCreateBook(r.Message)
		if err := book.Apply(r.Message); err != nil {
			if errors.Is(err, common.ErrUnknownOrder) || errors.Is(err, common.ErrInvariantViolation) {
				log.Debug().
					Uint16("publisher", r.PublisherID).
					Uint32("instrument", r.InstrumentID).
					Err(err).
					Msg("tolerated book apply error")
			} else {
				log.Error().
					Uint16("publisher", r.PublisherID).
					Uint32("instrument", r.InstrumentID).
					Err(err).
					Msg("book apply error")
			}
		}
		m.isReady = r.Flags.IsLast()
		return nil

	case SystemRecord:
		return nil

	default:
		return fmt.Errorf("%w: %T", common.ErrUnsupportedRecord, rec)
	}
}

// BBO returns the best bid/offer for one exchange's view of instrumentID.
func (m *Market) BBO(publisherID uint16, instrumentID uint32) (common.BestBidOffer, common.BestBidOffer) {
	return m.GetOrderBook(publisherID, instrumentID).BBO()
}

// ConsolidatedBBO folds every known publisher's BBO for instrumentID
// into a single pair: the highest bid and the lowest offer win. Empty
// per-exchange sides are skipped. Publishers are visited in ascending id
// order and ties keep whichever was seen first, so on equal prices the
// lowest publisher id wins (see DESIGN.md for why this departs from a
// naive lower-bid-wins fold).
func (m *Market) ConsolidatedBBO(instrumentID uint32) (common.BestBidOffer, common.BestBidOffer) {
	var bestBid, bestOffer common.BestBidOffer

	for _, publisherID := range slices.Sorted(maps.Keys(m.exchanges)) {
		book := m.GetOrderBook(publisherID, instrumentID)
		bid, offer := book.BBO()

		if !bid.Empty() && (bestBid.Empty() || bid.Price.Raw > bestBid.Price.Raw) {
			bestBid = bid
		}
		if !offer.Empty() && (bestOffer.Empty() || offer.Price.Raw < bestOffer.Price.Raw) {
			bestOffer = offer
		}
	}

	return bestBid, bestOffer
}

package common

// Message is the engine's decoded input record: one logical MBO update,
// already stripped of its wire encoding. An upstream decoder is assumed
// to produce these; the engine never reads files, sockets, or compressed
// streams itself.
type Message struct {
	Action       Action
	Side         Side
	OrderID      uint64
	Price        Price
	Size         uint32
	PublisherID  uint16
	InstrumentID uint32
	TsEvent      int64
	TsRecv       int64
	Flags        Flags
}

// BestBidOffer is the result of a bbo() query: a price (absent for an
// empty side) and the aggregate depth at that price, defaulting to zero.
type BestBidOffer struct {
	Price *Price
	Size  uint64
}

// Empty reports whether this side currently has no resting liquidity.
func (b BestBidOffer) Empty() bool { return b.Price == nil }

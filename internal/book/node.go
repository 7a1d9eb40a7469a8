// Package book implements the price-level FIFO queue: the leaf data
// structure that preserves time priority for resting orders at one
// price. It is deliberately the smallest, most mechanical piece of the
// engine — OrderBook and TopOfBookBook in package engine own the
// price-ordered maps and the message state machine built on top of it.
package book

import "marketdepth/internal/common"

// OrderNode is one resting order. It is the unit of time priority:
// earlier-appended nodes rank ahead of later ones within their queue.
//
// A node is exclusively owned by the PriceLevelQueue containing it; any
// external index (OrderBook.orders) holds a non-owning handle that must
// be dropped before, or atomically with, the node's removal from its
// queue.
type OrderNode struct {
	OrderID      uint64
	Price        common.Price
	Size         uint32
	Side         common.Side
	PublisherID  uint16
	InstrumentID uint32
	TsRecv       int64

	prev, next *OrderNode
}

// NewOrderNode builds a node from a decoded message, linkless until
// PriceLevelQueue.Append attaches it.
func NewOrderNode(msg common.Message) *OrderNode {
	return &OrderNode{
		OrderID:      msg.OrderID,
		Price:        msg.Price,
		Size:         msg.Size,
		Side:         msg.Side,
		PublisherID:  msg.PublisherID,
		InstrumentID: msg.InstrumentID,
		TsRecv:       msg.TsRecv,
	}
}
